// Package session owns the live connection to the chat network and turns
// its events into tab updates and presentation signals.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"irc4osu/directory"
	"irc4osu/irc"
	"irc4osu/pipeline"
	"irc4osu/storage"
	"irc4osu/tabs"
)

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateReady
)

// refreshInterval is how often the channel directory is re-listed while
// the session is ready.
const refreshInterval = 60 * time.Second

// FormState is a login form state change pushed to the presentation
// collaborator.
type FormState string

const (
	FormLoading FormState = "loading"
	FormError   FormState = "error"
	FormHide    FormState = "hide"
	FormRestore FormState = "restore"
)

// Network is the protocol connection the session drives. Satisfied by
// *irc.Client.
type Network interface {
	Join(channel string)
	Part(channel string)
	Say(target, text string)
	Action(target, text string)
	List()
	Disconnect()
	Events() <-chan irc.Event
}

// Dialer opens a network connection; swapped for a fake in tests.
type Dialer func(cfg irc.Config) (Network, error)

// Presenter receives the session's outward signals. Implementations must
// not block.
type Presenter interface {
	LoginFormState(state FormState, reason string)
	RecordAppended(tab string, rec tabs.Record)
	Joining(channel string)
	TabOpened(tab tabs.Tab)
	TabClosed(name string)
	DirectoryUpdated(entries []directory.Entry)
	Notify(n pipeline.Notification)
}

// Options configures a session.
type Options struct {
	Server         string
	DefaultChannel string
	Dial           Dialer
	Refresh        time.Duration // directory refresh period, 60s default
}

// Session multiplexes one network connection into tabs. Exactly one
// session is live at a time; starting a new one tears down the previous
// connection and refresh timer first.
type Session struct {
	opts      Options
	creds     *storage.CredentialStore
	settings  func() bool
	avatars   pipeline.Avatars
	tabs      *tabs.Registry
	dir       *directory.Directory
	presenter Presenter
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	net         Network
	pipe        *pipeline.Pipeline
	username    string
	firstLogin  bool
	stopRefresh chan struct{}
}

// New creates a disconnected session. settings reports whether mention
// notifications are currently enabled.
func New(opts Options, creds *storage.CredentialStore, settings func() bool, avatars pipeline.Avatars, registry *tabs.Registry, dir *directory.Directory, presenter Presenter, logger *zap.Logger) *Session {
	if opts.Dial == nil {
		opts.Dial = func(cfg irc.Config) (Network, error) {
			return irc.Dial(cfg, logger)
		}
	}
	if opts.Refresh == 0 {
		opts.Refresh = refreshInterval
	}
	return &Session{
		opts:      opts,
		creds:     creds,
		settings:  settings,
		avatars:   avatars,
		tabs:      registry,
		dir:       dir,
		presenter: presenter,
		logger:    logger,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tabs returns the tab registry.
func (s *Session) Tabs() *tabs.Registry {
	return s.tabs
}

// Directory returns the channel directory.
func (s *Session) Directory() *directory.Directory {
	return s.dir
}

// Start connects and authenticates with creds. A credentials record with
// no resolved user id marks a first-time login: identity is resolved and
// persisted before the login form is hidden.
func (s *Session) Start(creds storage.Credentials) {
	s.Stop()

	s.presenter.LoginFormState(FormLoading, "")

	pipe := pipeline.New(creds.Username, s.avatars, s.settings, s.presenter.Notify, s.logger)

	s.mu.Lock()
	s.state = StateConnecting
	s.username = creds.Username
	s.firstLogin = creds.UserID == 0
	s.pipe = pipe
	s.mu.Unlock()

	conn, err := s.opts.Dial(irc.Config{
		Server:   s.opts.Server,
		Nick:     creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		s.logger.Warn("connect failed", zap.Error(err))
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		s.presenter.LoginFormState(FormError, "connection")
		return
	}

	s.mu.Lock()
	s.state = StateAuthenticating
	s.net = conn
	s.mu.Unlock()

	go s.run(conn, creds, pipe)
}

// Stop cancels the refresh timer, closes the connection and leaves the
// session disconnected. Safe to call when already stopped.
func (s *Session) Stop() {
	s.mu.Lock()
	stop := s.stopRefresh
	conn := s.net
	s.stopRefresh = nil
	s.net = nil
	s.state = StateDisconnected
	s.mu.Unlock()

	// The timer must die before the connection so a refresh never fires
	// against a closed socket.
	if stop != nil {
		close(stop)
	}
	if conn != nil {
		conn.Disconnect()
	}
}

// Logout stops the session and clears the persisted credentials.
func (s *Session) Logout() error {
	s.Stop()
	s.presenter.LoginFormState(FormRestore, "")
	return s.creds.Clear()
}

// run is the session's control loop: it consumes connection events in
// arrival order until the connection dies. The pipeline is captured here
// so a torn-down connection's backlog never touches the next session's
// state; events from a connection that is no longer current are dropped.
func (s *Session) run(conn Network, creds storage.Credentials, pipe *pipeline.Pipeline) {
	for ev := range conn.Events() {
		if !s.live(conn) {
			continue
		}

		switch ev := ev.(type) {
		case irc.Registered:
			s.onReady(conn, creds)

		case irc.Joined:
			tab := s.tabs.Open(ev.Channel)
			s.tabs.SetActive(ev.Channel)
			s.presenter.TabOpened(tab)
			s.system(pipe, ev.Channel, "Joined "+ev.Channel)

		case irc.Parted:
			s.logger.Debug("parted", zap.String("channel", ev.Channel))

		case irc.Message:
			s.deliver(pipe, ev.Nick, ev.Target, ev.Text, tabs.KindMessage)

		case irc.Action:
			s.deliver(pipe, ev.Nick, ev.Target, ev.Text, tabs.KindAction)

		case irc.ErrorEvent:
			s.onError(conn, ev)

		case irc.ChannelList:
			entries := make([]directory.Entry, 0, len(ev.Entries))
			for _, e := range ev.Entries {
				entries = append(entries, directory.Entry{
					Name:      e.Name,
					Topic:     e.Topic,
					UserCount: e.Users,
				})
			}
			s.dir.Replace(entries)
			s.presenter.DirectoryUpdated(s.dir.List())

		case irc.Names:
			s.logger.Debug("names", zap.String("channel", ev.Channel), zap.Int("count", len(ev.Nicks)))

		case irc.Disconnected:
			s.logger.Info("disconnected", zap.String("reason", ev.Reason))
			s.mu.Lock()
			live := s.net == conn
			if live {
				stop := s.stopRefresh
				s.stopRefresh = nil
				s.net = nil
				s.state = StateDisconnected
				if stop != nil {
					close(stop)
				}
			}
			s.mu.Unlock()
			if live {
				for _, name := range s.tabs.Names() {
					s.system(pipe, name, "Disconnected from server")
				}
			}
		}
	}
}

// live reports whether conn is still the session's current connection.
func (s *Session) live(conn Network) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net == conn
}

// system appends a status notice to the named tab.
func (s *Session) system(pipe *pipeline.Pipeline, tabName, text string) {
	rec := pipe.Render("", tabName, text, tabs.KindSystem)
	if err := s.tabs.Append(tabName, rec); err != nil {
		return
	}
	s.presenter.RecordAppended(tabName, rec)
}

// onReady finishes the login sequence once the server accepted the
// registration: refresh the directory, arm the refresh timer, persist
// identity on first login, then let the presentation hide the form.
func (s *Session) onReady(conn Network, creds storage.Credentials) {
	s.mu.Lock()
	// Servers may resend the welcome numeric; the timer must be armed
	// exactly once per connection.
	if s.state == StateReady {
		s.mu.Unlock()
		return
	}
	s.state = StateReady
	stop := make(chan struct{})
	s.stopRefresh = stop
	first := s.firstLogin
	s.mu.Unlock()

	conn.List()
	go s.refreshLoop(conn, stop)

	if first {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.creds.Save(ctx, &creds)
		cancel()
		if err != nil {
			// Without a resolved identity the login is not complete;
			// surface it so the user can retry.
			s.logger.Warn("saving credentials failed", zap.Error(err))
			s.Stop()
			s.presenter.LoginFormState(FormError, "lookup")
			return
		}
	}

	s.presenter.LoginFormState(FormHide, "")

	if s.opts.DefaultChannel != "" {
		s.JoinChannel(s.opts.DefaultChannel)
	}
}

func (s *Session) refreshLoop(conn Network, stop chan struct{}) {
	ticker := time.NewTicker(s.opts.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			conn.List()
		}
	}
}

// onError inspects a server error event. Credential rejection tears the
// session down; everything else is logged and the connection stays up.
func (s *Session) onError(conn Network, ev irc.ErrorEvent) {
	if ev.Command != "err_passwdmismatch" {
		s.logger.Warn("server error", zap.String("command", ev.Command), zap.String("text", ev.Text))
		return
	}

	s.Stop()
	s.presenter.LoginFormState(FormError, "credentials")
}

// deliver renders an inbound message and appends it to the right tab. A
// channel target maps to the channel's tab; a target naming the local
// user maps to a private tab keyed by sender, opened on first receive.
func (s *Session) deliver(pipe *pipeline.Pipeline, nick, target, text string, kind tabs.Kind) {
	name := target
	if !tabs.IsChannel(target) {
		name = nick
		if _, ok := s.tabs.Get(name); !ok {
			s.presenter.TabOpened(s.tabs.Open(name))
		}
	}

	rec := pipe.Render(nick, name, text, kind)
	if err := s.tabs.Append(name, rec); err != nil {
		s.logger.Warn("dropping message for closed tab", zap.String("tab", name))
		return
	}
	s.presenter.RecordAppended(name, rec)
}

// SendText routes typed input from the named tab: plain text and actions
// go to that tab's target, direct commands open (or reuse) the private
// tab for their user. The local echo is synthesized immediately; the
// server does not echo own messages back.
func (s *Session) SendText(tabName, raw string) {
	s.mu.Lock()
	conn := s.net
	pipe := s.pipe
	ready := s.state == StateReady
	username := s.username
	s.mu.Unlock()
	if !ready || conn == nil {
		s.logger.Warn("send while not ready", zap.String("tab", tabName))
		return
	}

	cmd := ParseCommand(raw)
	switch cmd.Kind {
	case ActionCommand:
		conn.Action(tabName, cmd.Text)
		s.echo(pipe, username, tabName, cmd.Text, tabs.KindAction)

	case DirectCommand:
		if cmd.Target == "" {
			return
		}
		if _, ok := s.tabs.Get(cmd.Target); !ok {
			s.presenter.TabOpened(s.tabs.Open(cmd.Target))
		}
		s.tabs.SetActive(cmd.Target)
		conn.Say(cmd.Target, cmd.Text)
		s.echo(pipe, username, cmd.Target, cmd.Text, tabs.KindMessage)

	default:
		conn.Say(tabName, cmd.Text)
		s.echo(pipe, username, tabName, cmd.Text, tabs.KindMessage)
	}
}

func (s *Session) echo(pipe *pipeline.Pipeline, author, tabName, text string, kind tabs.Kind) {
	rec := pipe.Render(author, tabName, text, kind)
	if err := s.tabs.Append(tabName, rec); err != nil {
		s.logger.Warn("echo for unknown tab", zap.String("tab", tabName))
		return
	}
	s.presenter.RecordAppended(tabName, rec)
}

// JoinChannel asks the network to join name. The tab is attached and made
// active when the join completes.
func (s *Session) JoinChannel(name string) {
	s.mu.Lock()
	conn := s.net
	s.mu.Unlock()
	if conn == nil {
		return
	}
	s.presenter.Joining(name)
	conn.Join(name)
}

// CloseTab parts the channel (for channel tabs) and removes the tab and
// its history.
func (s *Session) CloseTab(name string) {
	s.mu.Lock()
	conn := s.net
	s.mu.Unlock()

	if tab, ok := s.tabs.Get(name); ok && tab.IsChannel && conn != nil {
		conn.Part(name)
	}
	s.tabs.Close(name)
	s.presenter.TabClosed(name)
}

// LocalUser returns the username the session is logged in as.
func (s *Session) LocalUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}
