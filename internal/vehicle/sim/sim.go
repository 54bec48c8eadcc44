// Package sim provides an in-process vehicle link for running missions
// without hardware. Discovery timing and per-command failures are scripted
// through Config, which makes it double as the failure-injection surface
// for mission tests.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

// WithLogger sets the logger for the simulated vehicle.
func WithLogger(logger *slog.Logger) func(v *Vehicle) {
	return func(v *Vehicle) {
		v.logger = logger.With(slog.String("vehicle", v.name))
	}
}

// Vehicle is a scripted vehicle.Link implementation. All methods are safe
// for concurrent use.
type Vehicle struct {
	name string

	mu             sync.Mutex
	config         Config
	connected      bool
	heartbeatPolls int
	healthPolls    int
	setCalls       int
	mode           vehicle.FlightMode
	last           vehicle.TargetLocation
	subscribers    []func(vehicle.FlightMode)

	commands []string
	targets  []vehicle.TargetLocation

	logger *slog.Logger
}

// New creates a simulated vehicle from config.
func New(config Config, options ...func(v *Vehicle)) (*Vehicle, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid simulator config: %w", err)
	}

	name := config.Name
	if name == "" {
		name = "simulator"
	}

	v := Vehicle{
		name:   name,
		config: config,
		mode:   vehicle.FlightModeUnknown,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&v)
	}

	return &v, nil
}

func (v *Vehicle) Connect(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.connected {
		return errors.New("link already established")
	}

	v.connected = true
	v.commands = append(v.commands, "connect")
	v.logger.Info("link established, waiting for heartbeat")
	return nil
}

func (v *Vehicle) IsConnected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.connected {
		return false
	}

	v.heartbeatPolls++
	return v.heartbeatPolls > v.config.HeartbeatAfter
}

func (v *Vehicle) HealthAllOK() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.healthPolls++
	return v.healthPolls > v.config.HealthyAfter
}

func (v *Vehicle) Arm(_ context.Context) error {
	return v.command("arm", v.config.FailArm, vehicle.FlightModeReady)
}

func (v *Vehicle) Takeoff(_ context.Context) error {
	return v.command("takeoff", v.config.FailTakeoff, vehicle.FlightModeTakeoff)
}

func (v *Vehicle) StartFollow(_ context.Context) error {
	return v.command("start_follow", v.config.FailStartFollow, vehicle.FlightModeFollowMe)
}

func (v *Vehicle) StopFollow(_ context.Context) error {
	return v.command("stop_follow", v.config.FailStopFollow, vehicle.FlightModeHold)
}

func (v *Vehicle) Land(_ context.Context) error {
	return v.command("land", v.config.FailLand, vehicle.FlightModeLand)
}

func (v *Vehicle) SetTargetLocation(loc vehicle.TargetLocation) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.setCalls++
	if v.config.BusyEvery > 0 && v.setCalls%v.config.BusyEvery == 0 {
		return vehicle.ErrBusy
	}

	v.last = loc
	v.targets = append(v.targets, loc)
	return nil
}

func (v *Vehicle) LastTargetLocation() vehicle.TargetLocation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

func (v *Vehicle) SubscribeFlightMode(fn func(vehicle.FlightMode)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subscribers = append(v.subscribers, fn)
}

// Commands returns the names of all commands issued so far, in order.
func (v *Vehicle) Commands() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]string, len(v.commands))
	copy(out, v.commands)
	return out
}

// Targets returns every target location the vehicle accepted, in order.
// Locations rejected with a busy link are not included.
func (v *Vehicle) Targets() []vehicle.TargetLocation {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]vehicle.TargetLocation, len(v.targets))
	copy(out, v.targets)
	return out
}

func (v *Vehicle) command(name, failReason string, mode vehicle.FlightMode) error {
	v.mu.Lock()
	v.commands = append(v.commands, name)

	if failReason != "" {
		v.mu.Unlock()
		return errors.New(failReason)
	}

	v.mode = mode
	subscribers := make([]func(vehicle.FlightMode), len(v.subscribers))
	copy(subscribers, v.subscribers)
	v.mu.Unlock()

	v.logger.Debug("command accepted", slog.String("command", name), slog.String("mode", string(mode)))

	for _, fn := range subscribers {
		fn(mode)
	}
	return nil
}
