package irc

// Event is an inbound protocol event. Events are delivered on a single
// channel in network arrival order (FIFO per connection).
type Event interface {
	event()
}

// Registered is emitted once the server accepted the registration
// (welcome numeric).
type Registered struct{}

// Joined is emitted when the local user finished joining a channel.
type Joined struct {
	Channel string
}

// Parted is emitted when the local user left a channel.
type Parted struct {
	Channel string
}

// Message is a PRIVMSG from another user to a channel or to the local
// user directly.
type Message struct {
	Nick   string
	Target string
	Text   string
}

// Action is a third-person CTCP ACTION message.
type Action struct {
	Nick   string
	Target string
	Text   string
}

// ErrorEvent carries a server error reply. Command holds the symbolic
// name of the numeric (e.g. "err_passwdmismatch").
type ErrorEvent struct {
	Command string
	Text    string
}

// ChannelEntry is one row of a LIST reply.
type ChannelEntry struct {
	Name  string
	Topic string
	Users int
}

// ChannelList carries a complete LIST reply. Partial lists are never
// emitted; rows accumulate until the end-of-list numeric.
type ChannelList struct {
	Entries []ChannelEntry
}

// Names carries the member list of a channel.
type Names struct {
	Channel string
	Nicks   []string
}

// Disconnected is the final event on a connection; the event channel is
// closed after it.
type Disconnected struct {
	Reason string
}

func (Registered) event()   {}
func (Joined) event()       {}
func (Parted) event()       {}
func (Message) event()      {}
func (Action) event()       {}
func (ErrorEvent) event()   {}
func (ChannelList) event()  {}
func (Names) event()        {}
func (Disconnected) event() {}
