// Package avatar maintains a disk cache of user avatars with a
// time-to-live.
package avatar

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTL is how long a cached avatar stays valid.
const TTL = 24 * time.Hour

// Fetcher downloads the avatar image for a username.
type Fetcher interface {
	Avatar(ctx context.Context, username string) (io.ReadCloser, error)
}

// Cache maps usernames to avatar image files on disk. Entries older than
// the TTL are refetched. Concurrent requests for the same username share
// one download.
type Cache struct {
	dir     string
	fetcher Fetcher
	group   singleflight.Group

	now func() time.Time // stubbed in tests
}

// New creates a cache storing files under dir.
func New(dir string, fetcher Fetcher) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, fetcher: fetcher, now: time.Now}, nil
}

// Path returns the path of a valid cached avatar for username, fetching
// it first when the entry is missing or stale.
func (c *Cache) Path(ctx context.Context, username string) (string, error) {
	path := c.filePath(username)

	if info, err := os.Stat(path); err == nil {
		if c.now().Sub(info.ModTime()) < TTL {
			return path, nil
		}
	}

	_, err, _ := c.group.Do(username, func() (interface{}, error) {
		// Another waiter may have completed the download while this
		// call was queued.
		if info, err := os.Stat(path); err == nil {
			if c.now().Sub(info.ModTime()) < TTL {
				return nil, nil
			}
		}
		return nil, c.download(ctx, username, path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// download streams the avatar to path, replacing any stale file only
// after the write completed.
func (c *Cache) download(ctx context.Context, username, path string) error {
	body, err := c.fetcher.Avatar(ctx, username)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(c.dir, ".avatar-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *Cache) filePath(username string) string {
	return filepath.Join(c.dir, url.PathEscape(username))
}
