package mission

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

const statusHistorySize = 32

// WithObserverLogger sets the logger for the observer.
func WithObserverLogger(logger *slog.Logger) func(o *StatusObserver) {
	return func(o *StatusObserver) {
		o.logger = logger.With(slog.String("component", "status"))
	}
}

// StatusObserver renders vehicle flight mode changes correlated with the
// last known target location. It is purely observational: it never issues
// commands and a failure inside the callback is swallowed, so it cannot
// affect the phase sequence or the relay.
type StatusObserver struct {
	link   vehicle.Link
	logger *slog.Logger

	mu     sync.Mutex
	recent []string
}

// NewStatusObserver creates an observer bound to the given vehicle link.
func NewStatusObserver(link vehicle.Link, options ...func(o *StatusObserver)) *StatusObserver {
	o := StatusObserver{
		link:   link,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// Start subscribes the observer to flight mode notifications.
func (o *StatusObserver) Start() {
	o.link.SubscribeFlightMode(o.handleFlightMode)
}

// Recent returns the most recent status lines, oldest first.
func (o *StatusObserver) Recent() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]string, len(o.recent))
	copy(out, o.recent)
	return out
}

func (o *StatusObserver) handleFlightMode(mode vehicle.FlightMode) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn(fmt.Sprintf("status update failed: %v", r))
		}
	}()

	last := o.link.LastTargetLocation()
	line := fmt.Sprintf("[FlightMode: %s] vehicle is tracking %.6f, %.6f degrees",
		mode, last.LatitudeDeg, last.LongitudeDeg)

	o.logger.Info(line)

	o.mu.Lock()
	o.recent = append(o.recent, line)
	if len(o.recent) > statusHistorySize {
		o.recent = o.recent[len(o.recent)-statusHistorySize:]
	}
	o.mu.Unlock()
}
