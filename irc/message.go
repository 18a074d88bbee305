package irc

import "strings"

// message is one parsed IRC line: an optional prefix, a command or
// numeric, and its parameters (trailing parameter included last).
type message struct {
	prefix  string
	command string
	params  []string
}

// nick returns the sender nick from the prefix (the part before "!").
func (m message) nick() string {
	if i := strings.IndexByte(m.prefix, '!'); i >= 0 {
		return m.prefix[:i]
	}
	return m.prefix
}

// param returns the i-th parameter or "" when absent.
func (m message) param(i int) string {
	if i < len(m.params) {
		return m.params[i]
	}
	return ""
}

// trailing returns the last parameter, conventionally the free text.
func (m message) trailing() string {
	if len(m.params) == 0 {
		return ""
	}
	return m.params[len(m.params)-1]
}

// parseLine parses a raw IRC line without its CRLF terminator.
func parseLine(raw string) message {
	var m message

	if strings.HasPrefix(raw, ":") {
		if i := strings.IndexByte(raw, ' '); i >= 0 {
			m.prefix = raw[1:i]
			raw = raw[i+1:]
		} else {
			m.prefix = raw[1:]
			return m
		}
	}

	if i := strings.Index(raw, " :"); i >= 0 {
		trailing := raw[i+2:]
		fields := strings.Fields(raw[:i])
		if len(fields) > 0 {
			m.command = fields[0]
			m.params = append(fields[1:], trailing)
		} else {
			m.params = []string{trailing}
		}
		return m
	}

	fields := strings.Fields(raw)
	if len(fields) > 0 {
		m.command = fields[0]
		m.params = fields[1:]
	}
	return m
}

// numericNames maps reply numerics to the error command names callers
// switch on.
var numericNames = map[string]string{
	"401": "err_nosuchnick",
	"403": "err_nosuchchannel",
	"433": "err_nicknameinuse",
	"464": "err_passwdmismatch",
	"465": "err_yourebannedcreep",
	"471": "err_channelisfull",
	"473": "err_inviteonlychan",
	"474": "err_bannedfromchan",
	"475": "err_badchannelkey",
}
