package flightlog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roman-kulish/follow-mission/internal/mission"
	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

const maxBatchSize = 100

// WithMaxBatchSize sets how many track points are buffered before they are
// flushed in a single database transaction.
func WithMaxBatchSize(size int) func(*Recorder) {
	return func(r *Recorder) {
		r.maxBatchSize = size
	}
}

// WithLogger sets the logger for the recorder.
func WithLogger(logger *slog.Logger) func(*Recorder) {
	return func(r *Recorder) {
		r.logger = logger.With(slog.String("component", "flightlog"))
	}
}

// Recorder implements mission.Recorder on top of a Store. Transitions are
// written immediately; track points are batched. Database errors are logged
// and swallowed: the flight record is observability, never a reason to
// abandon a flight.
type Recorder struct {
	store     *Store
	sessionID int64

	maxBatchSize int
	logger       *slog.Logger

	mu      sync.Mutex
	pending []TrackPoint
}

// NewRecorder creates a recorder writing into the given session.
func NewRecorder(store *Store, sessionID int64, options ...func(*Recorder)) *Recorder {
	r := Recorder{
		store:        store,
		sessionID:    sessionID,
		maxBatchSize: maxBatchSize,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

func (r *Recorder) RecordTransition(from, to mission.Phase, event string, cmdErr error) {
	t := Transition{
		Timestamp: time.Now().UTC(),
		From:      from.String(),
		To:        to.String(),
		Event:     event,
	}
	if cmdErr != nil {
		msg := cmdErr.Error()
		t.Error = &msg
	}

	if err := r.store.StoreTransition(context.Background(), r.sessionID, t); err != nil {
		r.logger.Error(err.Error())
	}
}

func (r *Recorder) RecordTarget(loc vehicle.TargetLocation) {
	r.mu.Lock()
	r.pending = append(r.pending, TrackPoint{
		Timestamp: time.Now().UTC(),
		Latitude:  loc.LatitudeDeg,
		Longitude: loc.LongitudeDeg,
		Altitude:  loc.AltitudeM,
	})

	var batch []TrackPoint
	if len(r.pending) >= r.maxBatchSize {
		batch = r.pending
		r.pending = nil
	}
	r.mu.Unlock()

	if batch == nil {
		return
	}
	if err := r.store.StoreTrackPoints(context.Background(), r.sessionID, batch); err != nil {
		r.logger.Error(err.Error())
	}
}

// Flush writes any buffered track points.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	return r.store.StoreTrackPoints(context.Background(), r.sessionID, batch)
}
