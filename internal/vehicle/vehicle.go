package vehicle

import (
	"context"
	"errors"
)

// ErrBusy is returned by SetTargetLocation when the link cannot accept
// another command right now. Callers may drop the update and move on.
var ErrBusy = errors.New("vehicle link busy")

// FlightMode is the vehicle-reported flight mode, as published to
// flight mode subscribers.
type FlightMode string

const (
	FlightModeUnknown  FlightMode = "Unknown"
	FlightModeReady    FlightMode = "Ready"
	FlightModeTakeoff  FlightMode = "Takeoff"
	FlightModeHold     FlightMode = "Hold"
	FlightModeFollowMe FlightMode = "FollowMe"
	FlightModeLand     FlightMode = "Land"
)

// TargetLocation is a single position command for the vehicle to track.
// It is a plain value; construct a fresh one per update.
type TargetLocation struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeM    float64

	VelocityNorthMS float32
	VelocityEastMS  float32
	VelocityDownMS  float32
}

// Link is the command surface of a connected vehicle. Implementations own
// the transport and telemetry decoding; the mission layer only sequences
// calls and interprets errors.
//
// Command methods return nil on success. A non-nil error carries the
// vehicle-supplied reason and is never retried by callers.
type Link interface {
	// Connect establishes the link. Discovery is confirmed separately via
	// IsConnected polling.
	Connect(ctx context.Context) error

	// IsConnected reports whether a vehicle heartbeat has been observed.
	IsConnected() bool

	// HealthAllOK reports whether the vehicle passes all pre-flight checks.
	HealthAllOK() bool

	Arm(ctx context.Context) error
	Takeoff(ctx context.Context) error
	Land(ctx context.Context) error

	StartFollow(ctx context.Context) error
	StopFollow(ctx context.Context) error

	// SetTargetLocation sends a target position, fire-and-forget. It may
	// return ErrBusy when a previous command is still in flight.
	SetTargetLocation(loc TargetLocation) error

	// LastTargetLocation returns the most recent target the vehicle
	// accepted, or a zero value if none has been sent yet.
	LastTargetLocation() TargetLocation

	// SubscribeFlightMode registers a callback invoked on every flight
	// mode change. Callbacks must not block.
	SubscribeFlightMode(fn func(FlightMode))
}
