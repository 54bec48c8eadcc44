package mission

import (
	"context"
	"fmt"
	"sync"

	"github.com/roman-kulish/follow-mission/internal/feed"
)

// FollowSession scopes a live subscription to the location feed. It exists
// only for the duration of the following phase; Close releases the
// subscription and is safe to call more than once.
type FollowSession struct {
	updates <-chan feed.Sample

	cancel    context.CancelFunc
	closeOnce sync.Once
}

func openFollowSession(ctx context.Context, source feed.Source) (*FollowSession, error) {
	ctx, cancel := context.WithCancel(ctx)

	updates, err := source.BeginUpdates(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribing to location feed: %w", err)
	}

	return &FollowSession{updates: updates, cancel: cancel}, nil
}

// Updates returns the sample stream. The channel is closed when the feed
// is exhausted or the session is closed.
func (s *FollowSession) Updates() <-chan feed.Sample {
	return s.updates
}

// Close releases the feed subscription. Idempotent.
func (s *FollowSession) Close() {
	s.closeOnce.Do(s.cancel)
}
