package irc

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient wires a client over an in-process pipe so tests can play
// the server side.
func newTestClient(t *testing.T, cfg Config) (*Client, net.Conn) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	c := attach(clientConn, cfg, zap.NewNop())
	t.Cleanup(func() {
		serverConn.Close()
		clientConn.Close()
	})
	return c, serverConn
}

func readLine(t *testing.T, conn net.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func serverSend(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRegistrationSequence(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "cool guy", Password: "pw"})
	go c.register()

	reader := bufio.NewReader(server)
	server.SetReadDeadline(time.Now().Add(5 * time.Second))
	for _, want := range []string{"PASS pw", "NICK cool_guy", "USER cool_guy 0 * :cool_guy"} {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, want, strings.TrimRight(line, "\r\n"))
	}
}

func TestRegisteredEvent(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})
	serverSend(t, server, ":cho.ppy.sh 001 bob :Welcome to the osu!Bancho.")

	ev := nextEvent(t, c)
	assert.IsType(t, Registered{}, ev)
}

func TestPingPong(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})
	serverSend(t, server, "PING :cho.ppy.sh")
	assert.Equal(t, "PONG :cho.ppy.sh", readLine(t, server))
	_ = c
}

func TestMessageAndActionEvents(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})

	serverSend(t, server, ":alice!alice@ppy.sh PRIVMSG #english :hi there")
	ev := nextEvent(t, c)
	msg, ok := ev.(Message)
	require.True(t, ok)
	assert.Equal(t, "alice", msg.Nick)
	assert.Equal(t, "#english", msg.Target)
	assert.Equal(t, "hi there", msg.Text)

	serverSend(t, server, ":alice!alice@ppy.sh PRIVMSG #english :\x01ACTION waves\x01")
	ev = nextEvent(t, c)
	act, ok := ev.(Action)
	require.True(t, ok)
	assert.Equal(t, "waves", act.Text)

	// Private message targets the local nick
	serverSend(t, server, ":alice!alice@ppy.sh PRIVMSG bob :psst")
	ev = nextEvent(t, c)
	msg, ok = ev.(Message)
	require.True(t, ok)
	assert.Equal(t, "bob", msg.Target)
}

func TestPasswordMismatchEvent(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})
	serverSend(t, server, ":cho.ppy.sh 464 bob :Bad authentication token.")

	ev := nextEvent(t, c)
	errEv, ok := ev.(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "err_passwdmismatch", errEv.Command)
}

func TestChannelListAccumulation(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})

	serverSend(t, server, ":cho.ppy.sh 321 bob Channel :Users Name")
	serverSend(t, server, ":cho.ppy.sh 322 bob #english 412 :General chat")
	serverSend(t, server, ":cho.ppy.sh 322 bob #osu 1337 :Main channel")

	// No event until the end-of-list numeric
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event before end of list: %#v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	serverSend(t, server, ":cho.ppy.sh 323 bob :End of /LIST")
	ev := nextEvent(t, c)
	list, ok := ev.(ChannelList)
	require.True(t, ok)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, ChannelEntry{Name: "#english", Topic: "General chat", Users: 412}, list.Entries[0])
	assert.Equal(t, ChannelEntry{Name: "#osu", Topic: "Main channel", Users: 1337}, list.Entries[1])
}

func TestJoinedAndPartedEvents(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})

	// Someone else joining is not our join
	serverSend(t, server, ":alice!alice@ppy.sh JOIN :#english")
	serverSend(t, server, ":bob!bob@ppy.sh JOIN :#english")

	ev := nextEvent(t, c)
	joined, ok := ev.(Joined)
	require.True(t, ok)
	assert.Equal(t, "#english", joined.Channel)

	serverSend(t, server, ":bob!bob@ppy.sh PART #english")
	ev = nextEvent(t, c)
	parted, ok := ev.(Parted)
	require.True(t, ok)
	assert.Equal(t, "#english", parted.Channel)
}

func TestNamesEvent(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})
	serverSend(t, server, ":cho.ppy.sh 353 bob = #english :bob alice @peppy")

	ev := nextEvent(t, c)
	names, ok := ev.(Names)
	require.True(t, ok)
	assert.Equal(t, "#english", names.Channel)
	assert.Equal(t, []string{"bob", "alice", "@peppy"}, names.Nicks)
}

func TestOutboundPrimitives(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})
	reader := bufio.NewReader(server)
	server.SetReadDeadline(time.Now().Add(5 * time.Second))

	expect := func(want string) {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, want, strings.TrimRight(line, "\r\n"))
	}

	go func() {
		c.Join("#english")
		c.Say("#english", "hello")
		c.Action("#english", "waves")
		c.Part("#english")
		c.List()
	}()

	expect("JOIN #english")
	expect("PRIVMSG #english :hello")
	expect("PRIVMSG #english :\x01ACTION waves\x01")
	expect("PART #english")
	expect("LIST")
}

func TestConnectionLost(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})
	server.Close()

	ev := nextEvent(t, c)
	disc, ok := ev.(Disconnected)
	require.True(t, ok)
	assert.Equal(t, "connection lost", disc.Reason)

	_, open := <-c.Events()
	assert.False(t, open, "event channel should close after Disconnected")
}

func TestEventOrderIsFIFO(t *testing.T) {
	c, server := newTestClient(t, Config{Nick: "bob"})

	go func() {
		for i := 0; i < 20; i++ {
			serverSend(t, server, ":alice!a@ppy.sh PRIVMSG #english :msg")
		}
	}()

	for i := 0; i < 20; i++ {
		ev := nextEvent(t, c)
		_, ok := ev.(Message)
		require.True(t, ok)
	}
}

func TestParseLine(t *testing.T) {
	m := parseLine(":alice!alice@ppy.sh PRIVMSG #english :hi :) there")
	assert.Equal(t, "alice", m.nick())
	assert.Equal(t, "PRIVMSG", m.command)
	assert.Equal(t, "#english", m.param(0))
	assert.Equal(t, "hi :) there", m.trailing())

	m = parseLine("PING :server")
	assert.Equal(t, "PING", m.command)
	assert.Equal(t, "server", m.trailing())

	m = parseLine(":cho.ppy.sh 322 bob #osu 42 :topic text")
	assert.Equal(t, "322", m.command)
	assert.Equal(t, "#osu", m.param(1))
	assert.Equal(t, "42", m.param(2))
	assert.Equal(t, "topic text", m.trailing())
}
