package sim

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

func TestVehicle_HeartbeatAfterPolls(t *testing.T) {
	v, err := New(Config{HeartbeatAfter: 2})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	// No heartbeat before the link is established.
	if v.IsConnected() {
		t.Error("Expected no heartbeat before Connect()")
	}

	if err = v.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}

	// Two more polls without a heartbeat, then discovery.
	for i := 0; i < 2; i++ {
		if v.IsConnected() {
			t.Fatalf("Expected poll %d to miss the heartbeat", i+1)
		}
	}
	if !v.IsConnected() {
		t.Error("Expected heartbeat after the configured number of polls")
	}
}

func TestVehicle_ConnectTwice(t *testing.T) {
	v, err := New(Config{})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if err = v.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}
	if err = v.Connect(context.Background()); err == nil {
		t.Error("Expected second Connect() to fail")
	}
}

func TestVehicle_FailureInjection(t *testing.T) {
	v, err := New(Config{FailTakeoff: "motor check failed"})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if err = v.Arm(context.Background()); err != nil {
		t.Fatalf("Arm() returned error: %v", err)
	}

	err = v.Takeoff(context.Background())
	if err == nil || err.Error() != "motor check failed" {
		t.Errorf("Expected configured failure reason, got %v", err)
	}

	want := []string{"arm", "takeoff"}
	if got := v.Commands(); !slices.Equal(got, want) {
		t.Errorf("Expected commands %v, got %v", want, got)
	}
}

func TestVehicle_BusyEvery(t *testing.T) {
	v, err := New(Config{BusyEvery: 3})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	var busy int
	for i := 0; i < 6; i++ {
		loc := vehicle.TargetLocation{LatitudeDeg: float64(i)}
		if err = v.SetTargetLocation(loc); errors.Is(err, vehicle.ErrBusy) {
			busy++
		} else if err != nil {
			t.Fatalf("SetTargetLocation() returned error: %v", err)
		}
	}

	if busy != 2 {
		t.Errorf("Expected 2 busy rejections out of 6 calls, got %d", busy)
	}
	if got := len(v.Targets()); got != 4 {
		t.Errorf("Expected 4 accepted targets, got %d", got)
	}

	// The last accepted target is what the observer sees.
	if got := v.LastTargetLocation().LatitudeDeg; got != 4 {
		t.Errorf("Expected last accepted latitude 4, got %v", got)
	}
}

func TestVehicle_FlightModeSubscription(t *testing.T) {
	v, err := New(Config{})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	var modes []vehicle.FlightMode
	v.SubscribeFlightMode(func(mode vehicle.FlightMode) {
		modes = append(modes, mode)
	})

	ctx := context.Background()
	for _, cmd := range []func(context.Context) error{v.Arm, v.Takeoff, v.StartFollow, v.StopFollow, v.Land} {
		if err = cmd(ctx); err != nil {
			t.Fatalf("Command returned error: %v", err)
		}
	}

	want := []vehicle.FlightMode{
		vehicle.FlightModeReady,
		vehicle.FlightModeTakeoff,
		vehicle.FlightModeFollowMe,
		vehicle.FlightModeHold,
		vehicle.FlightModeLand,
	}
	if !slices.Equal(modes, want) {
		t.Errorf("Expected modes %v, got %v", want, modes)
	}
}

func TestVehicle_InvalidConfig(t *testing.T) {
	if _, err := New(Config{HeartbeatAfter: -1}); err == nil {
		t.Error("Expected negative poll count to be rejected")
	}
	if _, err := New(Config{BusyEvery: -2}); err == nil {
		t.Error("Expected negative busyEvery to be rejected")
	}
}
