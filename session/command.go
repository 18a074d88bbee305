package session

import "strings"

// CommandKind tags the result of parsing typed input.
type CommandKind int

const (
	// PlainMessage is ordinary speech sent to the current tab.
	PlainMessage CommandKind = iota
	// ActionCommand is third-person narration ("/me waves").
	ActionCommand
	// DirectCommand routes text to a named user ("/pm user hi",
	// "/msg user hi").
	DirectCommand
)

// Command is one parsed line of input. Input is parsed once at send time
// instead of string-prefix dispatch at every consumer.
type Command struct {
	Kind   CommandKind
	Target string // DirectCommand only
	Text   string
}

// ParseCommand classifies raw typed input. Unrecognized slash commands
// pass through as plain text.
func ParseCommand(raw string) Command {
	if !strings.HasPrefix(raw, "/") {
		return Command{Kind: PlainMessage, Text: raw}
	}

	verb, rest, _ := strings.Cut(raw, " ")
	switch verb {
	case "/me":
		return Command{Kind: ActionCommand, Text: rest}
	case "/pm", "/msg":
		target, text, _ := strings.Cut(rest, " ")
		return Command{Kind: DirectCommand, Target: target, Text: text}
	default:
		return Command{Kind: PlainMessage, Text: raw}
	}
}
