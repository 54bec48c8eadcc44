package flightlog

import "time"

// Session represents one recorded mission.
type Session struct {
	ID        int64
	StartTime time.Time
	Vehicle   string
	Config    *string
}

// Transition is a single phase change of the mission state machine.
type Transition struct {
	Timestamp time.Time
	From      string
	To        string
	Event     string
	Error     *string
}

// TrackPoint is one target location forwarded to the vehicle.
type TrackPoint struct {
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	Altitude  float64
}
