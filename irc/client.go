// Package irc implements the chat protocol client: one TCP connection,
// outbound primitives (join, say, action, list) and a FIFO event stream.
package irc

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const dialTimeout = 10 * time.Second

// Config holds the connection parameters.
type Config struct {
	// Server is the address to connect to (host:port).
	Server string
	// Nick is the login username. Spaces are sent as underscores, the
	// way the network expects them on the wire.
	Nick string
	// Password authenticates the connection.
	Password string
}

// Client is a connected protocol client. Inbound traffic is parsed by a
// single reader goroutine and delivered through Events in arrival order.
type Client struct {
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader
	events chan Event
	logger *zap.Logger

	sendMu sync.Mutex
	mu     sync.Mutex
	closed bool

	// LIST replies accumulate here until the end-of-list numeric so a
	// partial directory is never observable.
	listing []ChannelEntry
}

// Dial connects to the server and sends the registration sequence. The
// server's acceptance arrives later as a Registered event.
func Dial(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", cfg.Server, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("irc: dial %s: %w", cfg.Server, err)
	}
	c := attach(conn, cfg, logger)
	c.register()
	return c, nil
}

// attach wraps an established connection. Split from Dial so tests can
// drive a client over a pipe.
func attach(conn net.Conn, cfg Config, logger *zap.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		conn:   conn,
		reader: bufio.NewReader(conn),
		events: make(chan Event, 64),
		logger: logger,
	}
	go c.readLoop()
	return c
}

// Events returns the inbound event stream. The channel is closed after a
// final Disconnected event.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) register() {
	nick := wireNick(c.cfg.Nick)
	if c.cfg.Password != "" {
		c.send("PASS " + c.cfg.Password)
	}
	c.send("NICK " + nick)
	c.send("USER " + nick + " 0 * :" + nick)
}

// Join asks the server to join the named channel. Completion arrives as a
// Joined event.
func (c *Client) Join(channel string) {
	c.send("JOIN " + channel)
}

// Part leaves the named channel.
func (c *Client) Part(channel string) {
	c.send("PART " + channel)
}

// Say sends a plain message to a channel or user. The server does not
// echo it back.
func (c *Client) Say(target, text string) {
	c.send("PRIVMSG " + target + " :" + text)
}

// Action sends a third-person action to a channel or user.
func (c *Client) Action(target, text string) {
	c.send("PRIVMSG " + target + " :\x01ACTION " + text + "\x01")
}

// List requests the channel directory. The complete reply arrives as one
// ChannelList event.
func (c *Client) List() {
	c.send("LIST")
}

// Disconnect quits and closes the connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.send("QUIT :irc4osu")
	c.conn.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) send(line string) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil && !c.isClosed() {
		c.logger.Warn("write failed", zap.Error(err))
	}
}

func (c *Client) readLoop() {
	defer close(c.events)

	for {
		raw, err := c.reader.ReadString('\n')
		if err != nil {
			if c.isClosed() {
				c.events <- Disconnected{Reason: "closed"}
			} else {
				c.events <- Disconnected{Reason: "connection lost"}
			}
			return
		}
		raw = strings.TrimRight(raw, "\r\n")
		if raw == "" {
			continue
		}
		c.handle(parseLine(raw))
	}
}

func (c *Client) handle(m message) {
	switch m.command {
	case "PING":
		c.send("PONG :" + m.trailing())

	case "001":
		c.events <- Registered{}

	case "PRIVMSG":
		nick := m.nick()
		target := m.param(0)
		text := m.trailing()
		if strings.HasPrefix(text, "\x01ACTION ") && strings.HasSuffix(text, "\x01") {
			c.events <- Action{Nick: nick, Target: target, Text: text[len("\x01ACTION ") : len(text)-1]}
		} else {
			c.events <- Message{Nick: nick, Target: target, Text: text}
		}

	case "JOIN":
		if m.nick() == wireNick(c.cfg.Nick) {
			channel := m.param(0)
			if channel == "" {
				channel = m.trailing()
			}
			c.events <- Joined{Channel: channel}
		}

	case "PART":
		if m.nick() == wireNick(c.cfg.Nick) {
			c.events <- Parted{Channel: m.param(0)}
		}

	case "321": // start of LIST
		c.listing = nil

	case "322": // one LIST row: <me> <channel> <count> :<topic>
		users, _ := strconv.Atoi(m.param(2))
		c.listing = append(c.listing, ChannelEntry{
			Name:  m.param(1),
			Topic: m.trailing(),
			Users: users,
		})

	case "323": // end of LIST
		c.events <- ChannelList{Entries: c.listing}
		c.listing = nil

	case "353": // NAMES reply: <me> = <channel> :<nicks>
		channel := m.param(2)
		c.events <- Names{Channel: channel, Nicks: strings.Fields(m.trailing())}

	case "ERROR":
		c.logger.Info("server error", zap.String("text", m.trailing()))

	default:
		if name, ok := numericNames[m.command]; ok {
			c.events <- ErrorEvent{Command: name, Text: m.trailing()}
		}
	}
}

func wireNick(nick string) string {
	return strings.ReplaceAll(nick, " ", "_")
}
