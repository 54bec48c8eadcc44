package mission

// Phase is one discrete stage of the mission. Exactly one phase is active
// at a time; the controller owns all transitions.
type Phase int

const (
	Disconnected Phase = iota
	Connecting
	Connected
	Ready
	Armed
	Airborne
	Following
	Landing
	Terminated
)

var phaseNames = map[Phase]string{
	Disconnected: "disconnected",
	Connecting:   "connecting",
	Connected:    "connected",
	Ready:        "ready",
	Armed:        "armed",
	Airborne:     "airborne",
	Following:    "following",
	Landing:      "landing",
	Terminated:   "terminated",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}
