package flightlog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/roman-kulish/follow-mission/internal/mission"
	"github.com/roman-kulish/follow-mission/internal/vehicle"
)

func TestRecorder_TransitionsWrittenImmediately(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	rec := NewRecorder(store, id)
	rec.RecordTransition(mission.Disconnected, mission.Connecting, "link established", nil)
	rec.RecordTransition(mission.Ready, mission.Terminated, "arm failed", &mission.CommandError{
		Phase:  mission.Ready,
		Op:     "arm",
		Reason: errors.New("arming denied"),
	})

	transitions, err := store.Transitions(ctx, id)
	if err != nil {
		t.Fatalf("Transitions() returned error: %v", err)
	}
	if len(transitions) != 2 {
		t.Fatalf("Expected 2 transitions, got %d", len(transitions))
	}
	if transitions[0].From != "disconnected" || transitions[0].To != "connecting" {
		t.Errorf("Unexpected first transition: %+v", transitions[0])
	}
	if transitions[1].Error == nil || !strings.Contains(*transitions[1].Error, "arming denied") {
		t.Errorf("Expected failure reason on second transition, got %v", transitions[1].Error)
	}
}

func TestRecorder_TargetsBatched(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	rec := NewRecorder(store, id, WithMaxBatchSize(3))

	for i := 0; i < 2; i++ {
		rec.RecordTarget(vehicle.TargetLocation{LatitudeDeg: 47.0 + float64(i)/1000, LongitudeDeg: 8.5})
	}

	track, err := store.Track(ctx, id)
	if err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != 0 {
		t.Fatalf("Expected no track points before the batch fills, got %d", len(track))
	}

	// Third target fills the batch and triggers a write.
	rec.RecordTarget(vehicle.TargetLocation{LatitudeDeg: 47.0 + 2.0/1000, LongitudeDeg: 8.5})

	if track, err = store.Track(ctx, id); err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != 3 {
		t.Fatalf("Expected 3 track points after the batch fills, got %d", len(track))
	}
	for i, p := range track {
		if want := 47.0 + float64(i)/1000; p.Latitude != want {
			t.Errorf("Point %d: expected latitude %v, got %v", i, want, p.Latitude)
		}
	}
}

func TestRecorder_FlushWritesPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	rec := NewRecorder(store, id)
	rec.RecordTarget(vehicle.TargetLocation{LatitudeDeg: 47.0, LongitudeDeg: 8.5})
	rec.RecordTarget(vehicle.TargetLocation{LatitudeDeg: 47.001, LongitudeDeg: 8.501})

	if err = rec.Flush(); err != nil {
		t.Fatalf("Flush() returned error: %v", err)
	}

	track, err := store.Track(ctx, id)
	if err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != 2 {
		t.Fatalf("Expected 2 track points after flush, got %d", len(track))
	}

	// Flushing again must not duplicate the points.
	if err = rec.Flush(); err != nil {
		t.Fatalf("Flush() returned error: %v", err)
	}
	if track, err = store.Track(ctx, id); err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != 2 {
		t.Errorf("Expected flush to be idempotent, got %d points", len(track))
	}
}
