package avatar

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls int32
	delay time.Duration
}

func (f *fakeFetcher) Avatar(ctx context.Context, username string) (io.ReadCloser, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return io.NopCloser(strings.NewReader("avatar-of-" + username)), nil
}

func (f *fakeFetcher) count() int {
	return int(atomic.LoadInt32(&f.calls))
}

func TestCacheTTL(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache, err := New(t.TempDir(), fetcher)
	require.NoError(t, err)

	base := time.Now()
	cache.now = func() time.Time { return base }

	path, err := cache.Path(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.count())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "avatar-of-bob", string(raw))

	// Pin the entry's creation time so the TTL math is exact.
	require.NoError(t, os.Chtimes(path, base, base))

	// Served from disk 23 hours in
	cache.now = func() time.Time { return base.Add(23 * time.Hour) }
	_, err = cache.Path(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.count())

	// Exactly one refetch 25 hours in
	cache.now = func() time.Time { return base.Add(25 * time.Hour) }
	_, err = cache.Path(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.count())
}

func TestCacheCoalescesConcurrentFetches(t *testing.T) {
	fetcher := &fakeFetcher{delay: 50 * time.Millisecond}
	cache, err := New(t.TempDir(), fetcher)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Path(context.Background(), "bob")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fetcher.count())
}

func TestCacheDistinctUsers(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache, err := New(t.TempDir(), fetcher)
	require.NoError(t, err)

	pathBob, err := cache.Path(context.Background(), "bob")
	require.NoError(t, err)
	pathAlice, err := cache.Path(context.Background(), "alice")
	require.NoError(t, err)

	assert.NotEqual(t, pathBob, pathAlice)
	assert.Equal(t, 2, fetcher.count())
}
