// Package tabs tracks the open conversation surfaces (channels and
// private chats) and their message history.
package tabs

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrNoTab is returned for operations against a tab that is not open.
// Callers must Open a tab before appending to it.
var ErrNoTab = errors.New("tabs: no such tab")

// Kind classifies a display record.
type Kind int

const (
	KindMessage Kind = iota
	KindAction
	KindSystem
)

// Span marks a byte range inside a record's display text.
type Span struct {
	Start int
	End   int
}

// Link is an inline link extracted from bracketed markup.
type Link struct {
	URL   string
	Label string
	Span
}

// Record is one rendered message. It is immutable once created and
// appended to exactly one tab's history in arrival order.
type Record struct {
	Time     time.Time
	Stamp    string // zero-padded HH:MM of receipt
	Author   string
	Tab      string
	Text     string // display text, bracket markup already rewritten
	Kind     Kind
	Links    []Link
	Mentions []Span
}

// Tab is a snapshot of one conversation surface.
type Tab struct {
	Name       string
	IsChannel  bool
	AutoScroll bool
	Unread     int
}

type tabState struct {
	Tab
	records []Record
}

// Registry owns the set of open tabs and the active selection. All
// methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	tabs   map[string]*tabState
	active string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tabs: make(map[string]*tabState)}
}

// IsChannel reports whether name denotes a channel rather than a private
// chat, derived from the leading sigil.
func IsChannel(name string) bool {
	return strings.HasPrefix(name, "#")
}

// Open returns the tab named name, creating it with default attributes
// if it is not open yet. The first opened tab becomes active.
func (r *Registry) Open(name string) Tab {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tabs[name]; ok {
		return t.Tab
	}

	t := &tabState{Tab: Tab{
		Name:       name,
		IsChannel:  IsChannel(name),
		AutoScroll: true,
	}}
	r.tabs[name] = t
	r.order = append(r.order, name)
	if r.active == "" {
		r.active = name
	}
	return t.Tab
}

// Close removes the tab and its history. Closing the active tab moves the
// selection to the previous tab in join order.
func (r *Registry) Close(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tabs[name]; !ok {
		return
	}
	delete(r.tabs, name)

	idx := 0
	for i, n := range r.order {
		if n == name {
			idx = i
			break
		}
	}
	r.order = append(r.order[:idx], r.order[idx+1:]...)

	if r.active == name {
		r.active = ""
		if len(r.order) > 0 {
			if idx > 0 {
				r.active = r.order[idx-1]
			} else {
				r.active = r.order[0]
			}
		}
	}
}

// SetActive selects the named tab and clears its unread count. If the tab
// is not open the selection is unchanged and the current active tab is
// returned.
func (r *Registry) SetActive(name string) Tab {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tabs[name]
	if !ok {
		if cur, ok := r.tabs[r.active]; ok {
			return cur.Tab
		}
		return Tab{}
	}
	r.active = name
	t.Unread = 0
	return t.Tab
}

// Active returns the active tab, if any.
func (r *Registry) Active() (Tab, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tabs[r.active]
	if !ok {
		return Tab{}, false
	}
	return t.Tab, true
}

// Append adds rec to the named tab's history. Appends to inactive tabs
// bump their unread count.
func (r *Registry) Append(name string, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tabs[name]
	if !ok {
		return ErrNoTab
	}
	t.records = append(t.records, rec)
	if r.active != name {
		t.Unread++
	}
	return nil
}

// SetAutoScroll records whether the presentation should force-scroll the
// named tab on new records.
func (r *Registry) SetAutoScroll(name string, autoScroll bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tabs[name]
	if !ok {
		return ErrNoTab
	}
	t.AutoScroll = autoScroll
	return nil
}

// Get returns a snapshot of the named tab.
func (r *Registry) Get(name string) (Tab, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tabs[name]
	if !ok {
		return Tab{}, false
	}
	return t.Tab, true
}

// Names returns the open tab names in join order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Records returns a copy of the named tab's history.
func (r *Registry) Records(name string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tabs[name]
	if !ok {
		return nil, ErrNoTab
	}
	return append([]Record(nil), t.records...), nil
}
