package sim

import "fmt"

// Config controls discovery timing and failure injection of the simulated
// vehicle. Zero values mean immediate discovery and all commands succeeding.
type Config struct {
	// Name identifies the vehicle in logs and in the flight record.
	Name string `yaml:"name"`

	// HeartbeatAfter is the number of IsConnected polls before the first
	// heartbeat is reported.
	HeartbeatAfter int `yaml:"heartbeatAfter"`

	// HealthyAfter is the number of HealthAllOK polls before the vehicle
	// reports all pre-flight checks passing.
	HealthyAfter int `yaml:"healthyAfter"`

	// BusyEvery makes every Nth SetTargetLocation call report a busy link.
	// Zero disables busy injection.
	BusyEvery int `yaml:"busyEvery"`

	// Failure reasons per command. An empty string means the command
	// succeeds; anything else is returned verbatim as the failure reason.
	FailArm         string `yaml:"failArm"`
	FailTakeoff     string `yaml:"failTakeoff"`
	FailStartFollow string `yaml:"failStartFollow"`
	FailStopFollow  string `yaml:"failStopFollow"`
	FailLand        string `yaml:"failLand"`
}

func (c *Config) validate() error {
	if c.HeartbeatAfter < 0 || c.HealthyAfter < 0 {
		return fmt.Errorf("discovery poll counts must not be negative")
	}
	if c.BusyEvery < 0 {
		return fmt.Errorf("busyEvery must not be negative")
	}
	return nil
}
