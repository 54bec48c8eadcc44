package mission

import "github.com/roman-kulish/follow-mission/internal/vehicle"

// Recorder receives mission events for the flight record. Implementations
// must be safe for concurrent use and must never block for long: recording
// is observability, a slow or failing recorder must not stall the mission.
type Recorder interface {
	// RecordTransition is called after every phase change. cmdErr is the
	// command failure that forced the transition, or nil.
	RecordTransition(from, to Phase, event string, cmdErr error)

	// RecordTarget is called for every target location forwarded to the
	// vehicle.
	RecordTarget(loc vehicle.TargetLocation)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransition(_, _ Phase, _ string, _ error)   {}
func (nopRecorder) RecordTarget(_ vehicle.TargetLocation)            {}
