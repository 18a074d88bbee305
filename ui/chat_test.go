package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"irc4osu/tabs"
)

func TestRenderBodyPlain(t *testing.T) {
	rec := tabs.Record{Text: "hello there"}
	assert.Equal(t, "hello there", renderBody(rec))
}

func TestRenderBodyEscapesMarkup(t *testing.T) {
	rec := tabs.Record{Text: "not [red]colored[-]"}
	body := renderBody(rec)
	assert.NotContains(t, body, "[red]c")
}

func TestRenderBodyMentionSpan(t *testing.T) {
	rec := tabs.Record{
		Text:     "hey bob, look",
		Mentions: []tabs.Span{{Start: 4, End: 7}},
	}
	assert.Equal(t, "hey [#ff66aa::b]bob[-::-], look", renderBody(rec))
}

func TestRenderBodyLinkSpan(t *testing.T) {
	rec := tabs.Record{
		Text: "see the wiki now",
		Links: []tabs.Link{{
			URL:   "https://osu.ppy.sh/wiki",
			Label: "the wiki",
			Span:  tabs.Span{Start: 4, End: 12},
		}},
	}
	assert.Equal(t, "see [#66aaff::u]the wiki[-::-] now", renderBody(rec))
}

func TestRenderRecordKinds(t *testing.T) {
	base := tabs.Record{Stamp: "09:05", Author: "alice", Text: "waves"}

	msg := base
	msg.Kind = tabs.KindMessage
	assert.Equal(t, "[#8888aa]09:05[-] [#ff66aa]alice[-]: waves", renderRecord(msg))

	act := base
	act.Kind = tabs.KindAction
	assert.Equal(t, "[#8888aa]09:05[-] [#ff66aa]* alice[-] waves", renderRecord(act))

	sys := tabs.Record{Stamp: "09:05", Text: "Joined #english", Kind: tabs.KindSystem}
	assert.Equal(t, "[#8888aa]09:05 -- Joined #english[-]", renderRecord(sys))
}
