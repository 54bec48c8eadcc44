package mission

import (
	"context"
	"strings"
	"testing"

	"github.com/roman-kulish/follow-mission/internal/vehicle"
	"github.com/roman-kulish/follow-mission/internal/vehicle/sim"
)

func TestStatusObserver_ReportsModeAndLastTarget(t *testing.T) {
	link := newTestVehicle(t, sim.Config{})
	observer := NewStatusObserver(link)
	observer.Start()

	if err := link.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}
	if err := link.Arm(context.Background()); err != nil {
		t.Fatalf("Arm() returned error: %v", err)
	}

	if err := link.SetTargetLocation(vehicle.TargetLocation{LatitudeDeg: 47.1, LongitudeDeg: 8.6}); err != nil {
		t.Fatalf("SetTargetLocation() returned error: %v", err)
	}
	if err := link.Takeoff(context.Background()); err != nil {
		t.Fatalf("Takeoff() returned error: %v", err)
	}

	recent := observer.Recent()
	if len(recent) != 2 {
		t.Fatalf("Expected 2 status lines, got %d: %v", len(recent), recent)
	}

	if !strings.Contains(recent[0], "[FlightMode: Ready]") {
		t.Errorf("Expected first line to report Ready mode, got %q", recent[0])
	}
	if !strings.Contains(recent[1], "[FlightMode: Takeoff]") {
		t.Errorf("Expected second line to report Takeoff mode, got %q", recent[1])
	}
	if !strings.Contains(recent[1], "47.100000, 8.600000") {
		t.Errorf("Expected second line to carry the last target location, got %q", recent[1])
	}
}

// panickyLink blows up when the observer asks for the last target location.
// The observer must swallow it.
type panickyLink struct {
	*sim.Vehicle
}

func (p *panickyLink) LastTargetLocation() vehicle.TargetLocation {
	panic("malformed notification")
}

func TestStatusObserver_SwallowsCallbackFailures(t *testing.T) {
	link := newTestVehicle(t, sim.Config{})
	observer := NewStatusObserver(&panickyLink{link})
	observer.Start()

	// The panic inside the callback must not escape into the caller.
	if err := link.Arm(context.Background()); err != nil {
		t.Fatalf("Arm() returned error: %v", err)
	}

	if got := observer.Recent(); len(got) != 0 {
		t.Errorf("Expected no status lines after a failing update, got %v", got)
	}
}
