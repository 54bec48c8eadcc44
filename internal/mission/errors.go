package mission

import "fmt"

// CommandError reports a vehicle command failure. Command failures are
// unrecoverable: the mission is abandoned the moment one occurs.
type CommandError struct {
	Phase  Phase  // phase the mission was in when the command was issued
	Op     string // command name, e.g. "arm"
	Reason error  // vehicle-supplied reason
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed in phase %s: %s", e.Op, e.Phase, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Reason
}
