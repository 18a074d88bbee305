package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"irc4osu/tabs"
)

type fakeAvatars struct {
	path string
	err  error
}

func (f *fakeAvatars) Path(ctx context.Context, username string) (string, error) {
	return f.path, f.err
}

func newTestPipeline(enabled bool, avatars Avatars, notify func(Notification)) *Pipeline {
	p := New("alice", avatars, func() bool { return enabled }, notify, zap.NewNop())
	p.now = func() time.Time {
		return time.Date(2016, 8, 7, 9, 5, 0, 0, time.UTC)
	}
	return p
}

func TestMentionHighlighting(t *testing.T) {
	notified := make(chan Notification, 1)
	p := newTestPipeline(true, &fakeAvatars{path: "/cache/bob"}, func(n Notification) {
		notified <- n
	})

	rec := p.Render("bob", "#english", "hi alice how are you", tabs.KindMessage)

	require.Len(t, rec.Mentions, 1)
	span := rec.Mentions[0]
	assert.Equal(t, "alice", rec.Text[span.Start:span.End])

	select {
	case n := <-notified:
		assert.Equal(t, "bob mentions you in #english", n.Title)
		assert.Equal(t, "hi alice how are you", n.Body)
		assert.Equal(t, "/cache/bob", n.Icon)
	case <-time.After(time.Second):
		t.Fatal("expected a notification request")
	}

	// Exactly one
	select {
	case <-notified:
		t.Fatal("got a second notification request")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMentionIsCaseSensitive(t *testing.T) {
	p := newTestPipeline(true, nil, func(Notification) {
		t.Error("unexpected notification")
	})

	rec := p.Render("bob", "#english", "hi Alice", tabs.KindMessage)
	assert.Empty(t, rec.Mentions)
}

func TestMentionNotificationDisabled(t *testing.T) {
	notified := make(chan Notification, 1)
	p := newTestPipeline(false, nil, func(n Notification) {
		notified <- n
	})

	rec := p.Render("bob", "#english", "hi alice", tabs.KindMessage)
	require.Len(t, rec.Mentions, 1)

	select {
	case <-notified:
		t.Fatal("notifications are disabled")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOwnEchoIsNotAMention(t *testing.T) {
	p := newTestPipeline(true, nil, func(Notification) {
		t.Error("unexpected notification")
	})

	rec := p.Render("alice", "#english", "alice reporting in", tabs.KindMessage)
	assert.Empty(t, rec.Mentions)
}

func TestAvatarFailureDoesNotBlockNotification(t *testing.T) {
	notified := make(chan Notification, 1)
	p := newTestPipeline(true, &fakeAvatars{err: errors.New("down")}, func(n Notification) {
		notified <- n
	})

	p.Render("bob", "#english", "alice!", tabs.KindMessage)

	select {
	case n := <-notified:
		assert.Empty(t, n.Icon)
	case <-time.After(time.Second):
		t.Fatal("expected a notification request")
	}
}

func TestLinkExtraction(t *testing.T) {
	p := newTestPipeline(false, nil, nil)

	rec := p.Render("bob", "#english", "see [http://x.com here]", tabs.KindMessage)

	assert.Equal(t, "see here", rec.Text)
	require.Len(t, rec.Links, 1)
	assert.Equal(t, "http://x.com", rec.Links[0].URL)
	assert.Equal(t, "here", rec.Links[0].Label)
	assert.Equal(t, "here", rec.Text[rec.Links[0].Start:rec.Links[0].End])
}

func TestLinkExtractionMultiple(t *testing.T) {
	p := newTestPipeline(false, nil, nil)

	rec := p.Render("bob", "#osu", "[http://a.com one] and [osu://b/123 two]!", tabs.KindMessage)

	assert.Equal(t, "one and two!", rec.Text)
	require.Len(t, rec.Links, 2)
	assert.Equal(t, "http://a.com", rec.Links[0].URL)
	assert.Equal(t, "osu://b/123", rec.Links[1].URL)
	assert.Equal(t, "two", rec.Text[rec.Links[1].Start:rec.Links[1].End])
}

func TestPlainTextPassesThrough(t *testing.T) {
	p := newTestPipeline(false, nil, nil)

	rec := p.Render("bob", "#osu", "no markup [just brackets] here", tabs.KindMessage)
	assert.Equal(t, "no markup [just brackets] here", rec.Text)
	assert.Empty(t, rec.Links)
}

func TestTimestampIsZeroPaddedReceiptTime(t *testing.T) {
	p := newTestPipeline(false, nil, nil)

	rec := p.Render("bob", "#osu", "hello", tabs.KindMessage)
	assert.Equal(t, "09:05", rec.Stamp)
}
