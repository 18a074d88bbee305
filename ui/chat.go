package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rivo/tview"

	"irc4osu/tabs"
)

type styledSpan struct {
	start, end int
	tag        string
}

// renderBody converts a record's text and its highlight spans into tview
// markup. Spans never overlap in practice; if they do, the earlier one wins.
func renderBody(rec tabs.Record) string {
	spans := make([]styledSpan, 0, len(rec.Links)+len(rec.Mentions))
	for _, l := range rec.Links {
		spans = append(spans, styledSpan{l.Start, l.End, "[#66aaff::u]"})
	}
	for _, m := range rec.Mentions {
		spans = append(spans, styledSpan{m.Start, m.End, "[#ff66aa::b]"})
	}
	if len(spans) == 0 {
		return tview.Escape(rec.Text)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.start < pos || sp.end > len(rec.Text) {
			continue
		}
		b.WriteString(tview.Escape(rec.Text[pos:sp.start]))
		b.WriteString(sp.tag)
		b.WriteString(tview.Escape(rec.Text[sp.start:sp.end]))
		b.WriteString("[-::-]")
		pos = sp.end
	}
	b.WriteString(tview.Escape(rec.Text[pos:]))
	return b.String()
}

func renderRecord(rec tabs.Record) string {
	body := renderBody(rec)
	switch rec.Kind {
	case tabs.KindAction:
		return fmt.Sprintf("[#8888aa]%s[-] [#ff66aa]* %s[-] %s",
			rec.Stamp, tview.Escape(rec.Author), body)
	case tabs.KindSystem:
		return fmt.Sprintf("[#8888aa]%s -- %s[-]", rec.Stamp, body)
	default:
		return fmt.Sprintf("[#8888aa]%s[-] [#ff66aa]%s[-]: %s",
			rec.Stamp, tview.Escape(rec.Author), body)
	}
}
