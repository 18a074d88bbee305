// Package directory holds the periodically refreshed list of channels
// visible on the network.
package directory

import "sync"

// Entry is one channel row of the directory snapshot.
type Entry struct {
	Name      string
	Topic     string
	UserCount int
}

// Directory is the channel directory. The whole snapshot is replaced
// atomically on each refresh; readers always observe either the previous
// or the new list in full.
type Directory struct {
	mu      sync.RWMutex
	entries []Entry
}

func New() *Directory {
	return &Directory{}
}

// Replace installs entries as the new snapshot.
func (d *Directory) Replace(entries []Entry) {
	snapshot := append([]Entry(nil), entries...)
	d.mu.Lock()
	d.entries = snapshot
	d.mu.Unlock()
}

// List returns the current snapshot. Filtering out channels that are
// already open as tabs is the presentation layer's concern.
func (d *Directory) List() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Entry(nil), d.entries...)
}
