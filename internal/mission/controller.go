// Package mission sequences a vehicle through a follow-target flight:
// connect, wait for readiness, arm, take off, relay an external position
// stream into target commands, then land. The vehicle link and the location
// feed are collaborators behind narrow contracts; this package owns only
// the sequencing, the forwarding window and the failure policy.
package mission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/follow-mission/internal/feed"
	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

const (
	// DefaultPollInterval is the fixed interval of the readiness polls.
	DefaultPollInterval = time.Second

	// DefaultSettleDelay is how long the vehicle is given to stabilise
	// after takeoff before follow mode is started.
	DefaultSettleDelay = 5 * time.Second
)

// ErrAlreadyRun is returned by Run when the controller has been run before.
// A controller drives exactly one mission; create a new one to fly again.
var ErrAlreadyRun = errors.New("mission controller already run")

// WithLogger sets the logger for the controller and its relay.
func WithLogger(logger *slog.Logger) func(c *Controller) {
	return func(c *Controller) {
		c.logger = logger.With(slog.String("component", "mission"))
	}
}

// WithRecorder sets the recorder notified of phase transitions and
// forwarded targets.
func WithRecorder(recorder Recorder) func(c *Controller) {
	return func(c *Controller) {
		c.recorder = recorder
	}
}

// WithPollInterval overrides the readiness poll interval.
func WithPollInterval(interval time.Duration) func(c *Controller) {
	return func(c *Controller) {
		c.pollInterval = interval
	}
}

// WithSettleDelay overrides the post-takeoff settle delay.
func WithSettleDelay(delay time.Duration) func(c *Controller) {
	return func(c *Controller) {
		c.settleDelay = delay
	}
}

// Controller drives the mission state machine from Disconnected to
// Terminated. Each phase-advancing command is issued exactly once and
// awaited before the next transition is evaluated.
type Controller struct {
	link     vehicle.Link
	source   feed.Source
	relay    *TargetRelay
	recorder Recorder
	logger   *slog.Logger

	pollInterval time.Duration
	settleDelay  time.Duration

	started atomic.Bool

	mu    sync.Mutex
	phase Phase
}

// NewController creates a controller for a single mission over the given
// vehicle link and location source.
func NewController(link vehicle.Link, source feed.Source, options ...func(c *Controller)) *Controller {
	c := Controller{
		link:         link,
		source:       source,
		recorder:     nopRecorder{},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		pollInterval: DefaultPollInterval,
		settleDelay:  DefaultSettleDelay,
		phase:        Disconnected,
	}

	for _, option := range options {
		option(&c)
	}

	c.relay = NewTargetRelay(link, WithRelayLogger(c.logger), WithRelayRecorder(c.recorder))
	return &c
}

// Phase returns the currently active mission phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Run drives the mission to Terminated and blocks until it gets there. It
// returns nil on normal completion, a *CommandError naming the phase and
// reason when a vehicle command fails, or the context error when the
// mission is cancelled before the vehicle is airborne. Run is one-shot.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}

	if err := c.link.Connect(ctx); err != nil {
		return c.abort("connect", err)
	}
	c.advance(Connecting, "link established")

	if err := c.waitUntil(ctx, "waiting for vehicle heartbeat", c.link.IsConnected); err != nil {
		return err
	}
	c.advance(Connected, "heartbeat observed")

	if err := c.waitUntil(ctx, "waiting for vehicle to be ready", c.link.HealthAllOK); err != nil {
		return err
	}
	c.advance(Ready, "health all ok")

	if err := c.command(ctx, "arm", c.link.Arm); err != nil {
		return err
	}
	c.advance(Armed, "armed")

	if err := c.command(ctx, "takeoff", c.link.Takeoff); err != nil {
		return err
	}
	c.advance(Airborne, "in air")

	if err := c.settle(ctx); err != nil {
		return err
	}

	if err := c.command(ctx, "start_follow", c.link.StartFollow); err != nil {
		return err
	}

	session, err := openFollowSession(ctx, c.source)
	if err != nil {
		return c.abort("start_follow", err)
	}
	defer session.Close()

	c.advance(Following, "follow mode started")

	if err = c.relay.Activate(session); err != nil {
		return c.abort("start_follow", err)
	}

	select {
	case <-c.relay.Done():
		c.logger.Info("location feed exhausted")

	case <-ctx.Done():
		c.logger.Info("mission cancelled, returning to land")
	}
	c.relay.Deactivate()

	// The landing path must survive an operator cancel: the vehicle is in
	// the air and still needs stop_follow and land issued.
	ctx = context.WithoutCancel(ctx)

	if err = c.command(ctx, "stop_follow", c.link.StopFollow); err != nil {
		return err
	}
	c.advance(Landing, "follow mode stopped")

	if err = c.command(ctx, "land", c.link.Land); err != nil {
		return err
	}
	c.advance(Terminated, "landed")

	return nil
}

// waitUntil polls predicate at a fixed interval until it holds. There is
// deliberately no timeout: a vehicle that never becomes ready blocks the
// mission rather than failing it. Cancellation is the only way out.
func (c *Controller) waitUntil(ctx context.Context, msg string, predicate func() bool) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for !predicate() {
		c.logger.Info(msg)

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
		}
	}
	return nil
}

func (c *Controller) settle(ctx context.Context) error {
	if c.settleDelay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-time.After(c.settleDelay):
		return nil
	}
}

func (c *Controller) command(ctx context.Context, op string, fn func(context.Context) error) error {
	c.logger.Debug("issuing command", slog.String("command", op))

	if err := fn(ctx); err != nil {
		return c.abort(op, err)
	}
	return nil
}

func (c *Controller) abort(op string, reason error) error {
	c.mu.Lock()
	from := c.phase
	c.phase = Terminated
	c.mu.Unlock()

	cmdErr := &CommandError{Phase: from, Op: op, Reason: reason}
	c.recorder.RecordTransition(from, Terminated, op+" failed", cmdErr)
	c.logger.Error(cmdErr.Error())
	return cmdErr
}

func (c *Controller) advance(to Phase, event string) {
	c.mu.Lock()
	from := c.phase
	c.phase = to
	c.mu.Unlock()

	c.recorder.RecordTransition(from, to, event, nil)
	c.logger.Info(event, slog.String("phase", to.String()))
}
