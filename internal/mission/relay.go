package mission

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

// ErrRelayActive is returned by Activate when the relay is already
// forwarding a session.
var ErrRelayActive = errors.New("relay is already active")

// WithRelayLogger sets the logger for the relay.
func WithRelayLogger(logger *slog.Logger) func(r *TargetRelay) {
	return func(r *TargetRelay) {
		r.logger = logger.With(slog.String("component", "relay"))
	}
}

// WithRelayRecorder sets the recorder notified of every forwarded target.
func WithRelayRecorder(recorder Recorder) func(r *TargetRelay) {
	return func(r *TargetRelay) {
		r.recorder = recorder
	}
}

// TargetRelay bridges the location feed into the vehicle command surface
// while a follow session is live. Samples are forwarded in arrival order,
// one command in flight at a time; a sample the link cannot accept is
// dropped, never queued or retried.
type TargetRelay struct {
	link     vehicle.Link
	recorder Recorder
	logger   *slog.Logger

	mu      sync.Mutex
	active  bool
	session *FollowSession
	stop    chan struct{}
	done    chan struct{}

	// cmdMu serializes command issuance on the shared link.
	cmdMu sync.Mutex
}

// NewTargetRelay creates a relay bound to the given vehicle link.
func NewTargetRelay(link vehicle.Link, options ...func(r *TargetRelay)) *TargetRelay {
	r := TargetRelay{
		link:     link,
		recorder: nopRecorder{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Activate begins forwarding samples from the session until the feed is
// exhausted or Deactivate is called.
func (r *TargetRelay) Activate(session *FollowSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrRelayActive
	}

	r.active = true
	r.session = session
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.forward(session, r.stop, r.done)
	return nil
}

// Deactivate stops forwarding, releases the feed subscription and waits for
// the forwarding goroutine to exit. Safe to call multiple times and before
// Activate; no sample is delivered to the vehicle after it returns.
func (r *TargetRelay) Deactivate() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}

	r.active = false
	session, stop, done := r.session, r.stop, r.done
	r.session = nil
	r.mu.Unlock()

	close(stop)
	session.Close()
	<-done
}

// Done returns a channel closed when the forwarding goroutine exits, which
// happens on feed exhaustion or deactivation. It returns nil before the
// first Activate.
func (r *TargetRelay) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *TargetRelay) forward(session *FollowSession, stop <-chan struct{}, done chan struct{}) {
	defer close(done)

	var forwarded, dropped int
	defer func() {
		r.logger.Info("target forwarding stopped",
			slog.Int("forwarded", forwarded),
			slog.Int("dropped", dropped))
	}()

	for {
		select {
		case <-stop:
			return

		case sample, ok := <-session.Updates():
			if !ok {
				return
			}

			// A sample raced with deactivation: drop it.
			select {
			case <-stop:
				return
			default:
			}

			loc := vehicle.TargetLocation{
				LatitudeDeg:  sample.Latitude,
				LongitudeDeg: sample.Longitude,
			}

			r.cmdMu.Lock()
			err := r.link.SetTargetLocation(loc)
			r.cmdMu.Unlock()

			switch {
			case errors.Is(err, vehicle.ErrBusy):
				dropped++
				r.logger.Debug("link busy, target dropped",
					slog.Float64("latitude", loc.LatitudeDeg),
					slog.Float64("longitude", loc.LongitudeDeg))

			case err != nil:
				dropped++
				r.logger.Warn("target rejected", slog.String("error", err.Error()))

			default:
				forwarded++
				r.recorder.RecordTarget(loc)
			}
		}
	}
}
