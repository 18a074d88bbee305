// Package pipeline turns inbound message and action events into display
// records: timestamping, mention highlighting, inline link extraction and
// the mention notification side effect.
package pipeline

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"irc4osu/tabs"
)

// Notification is a desktop notification request handed to the
// presentation collaborator.
type Notification struct {
	Icon  string // avatar file path, empty when resolution failed
	Title string
	Body  string
}

// Avatars resolves a username to a cached avatar file path.
type Avatars interface {
	Path(ctx context.Context, username string) (string, error)
}

// Pipeline renders raw message events for display. It has no network
// access beyond the notification side channel.
type Pipeline struct {
	localUser string
	avatars   Avatars
	notify    func(Notification)
	enabled   func() bool // whether notifications are enabled
	logger    *zap.Logger

	now func() time.Time // stubbed in tests
}

// New creates a pipeline for the local user. notify is invoked
// fire-and-forget when another user mentions localUser and enabled
// returns true.
func New(localUser string, avatars Avatars, enabled func() bool, notify func(Notification), logger *zap.Logger) *Pipeline {
	return &Pipeline{
		localUser: localUser,
		avatars:   avatars,
		notify:    notify,
		enabled:   enabled,
		logger:    logger,
		now:       time.Now,
	}
}

// linkPattern matches bracketed markup of the form "[URL label]".
var linkPattern = regexp.MustCompile(`\[(\S+://\S+) ([^\]]+)\]`)

// Render produces the display record for a message or action received on
// tab. The record still has to be appended by the caller.
func (p *Pipeline) Render(author, tab, text string, kind tabs.Kind) tabs.Record {
	display, links := extractLinks(text)

	rec := tabs.Record{
		Time:   p.now(),
		Author: author,
		Tab:    tab,
		Text:   display,
		Kind:   kind,
		Links:  links,
	}
	rec.Stamp = rec.Time.Format("15:04")

	// The local user's own echoes never count as mentions.
	if author != p.localUser {
		if idx := strings.Index(display, p.localUser); idx >= 0 {
			rec.Mentions = []tabs.Span{{Start: idx, End: idx + len(p.localUser)}}
			p.dispatchNotification(author, tab, display)
		}
	}

	return rec
}

// extractLinks rewrites every "[URL label]" into its label and records a
// structured link spanning the label in the rewritten text.
func extractLinks(text string) (string, []tabs.Link) {
	matches := linkPattern.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var (
		b     strings.Builder
		links []tabs.Link
		prev  int
	)
	for _, m := range matches {
		b.WriteString(text[prev:m[0]])
		url := text[m[2]:m[3]]
		label := text[m[4]:m[5]]
		start := b.Len()
		b.WriteString(label)
		links = append(links, tabs.Link{
			URL:   url,
			Label: label,
			Span:  tabs.Span{Start: start, End: b.Len()},
		})
		prev = m[1]
	}
	b.WriteString(text[prev:])
	return b.String(), links
}

// dispatchNotification resolves the sender's avatar and emits the
// notification request. It never blocks the caller; a failed avatar
// lookup just means the notification goes out without an icon.
func (p *Pipeline) dispatchNotification(author, tab, body string) {
	if p.notify == nil || p.enabled == nil || !p.enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		icon := ""
		if p.avatars != nil {
			path, err := p.avatars.Path(ctx, author)
			if err != nil {
				p.logger.Warn("avatar lookup failed", zap.String("user", author), zap.Error(err))
			} else {
				icon = path
			}
		}

		p.notify(Notification{
			Icon:  icon,
			Title: author + " mentions you in " + tab,
			Body:  body,
		})
	}()
}
