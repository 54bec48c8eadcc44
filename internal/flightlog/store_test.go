package flightlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := New(filepath.Join(t.TempDir(), "mission.sqlite"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() returned error: %v", err)
		}
	})
	return store
}

func TestStore_SessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", map[string]any{"heartbeatAfter": 3})
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	sess, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session() returned error: %v", err)
	}

	if sess.ID != id {
		t.Errorf("Expected session ID %d, got %d", id, sess.ID)
	}
	if sess.Vehicle != "simulator" {
		t.Errorf("Expected vehicle 'simulator', got %q", sess.Vehicle)
	}
	if sess.Config == nil || *sess.Config != `{"heartbeatAfter":3}` {
		t.Errorf("Expected JSON config, got %v", sess.Config)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions() returned error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != id {
		t.Errorf("Expected a single session %d, got %v", id, sessions)
	}
}

func TestStore_Transitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	reason := "arming denied"
	recorded := []Transition{
		{Timestamp: time.Now().UTC(), From: "disconnected", To: "connecting", Event: "link established"},
		{Timestamp: time.Now().UTC(), From: "ready", To: "terminated", Event: "arm failed", Error: &reason},
	}
	for _, tr := range recorded {
		if err = store.StoreTransition(ctx, id, tr); err != nil {
			t.Fatalf("StoreTransition() returned error: %v", err)
		}
	}

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
	if transitions[0].Error != nil {
		t.Errorf("Expected no error on first transition, got %v", *transitions[0].Error)
	}
	if transitions[1].Error == nil || *transitions[1].Error != reason {
		t.Errorf("Expected error %q on second transition, got %v", reason, transitions[1].Error)
	}
}

func TestStore_TrackOrderPreserved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Second)
	var points []TrackPoint
	for i := 0; i < 7; i++ {
		points = append(points, TrackPoint{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Latitude:  47.0 + float64(i)/1000,
			Longitude: 8.5,
		})
	}

	// Two batches, as the recorder would write them.
	if err = store.StoreTrackPoints(ctx, id, points[:4]); err != nil {
		t.Fatalf("StoreTrackPoints() returned error: %v", err)
	}
	if err = store.StoreTrackPoints(ctx, id, points[4:]); err != nil {
		t.Fatalf("StoreTrackPoints() returned error: %v", err)
	}

	track, err := store.Track(ctx, id)
	if err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != len(points) {
		t.Fatalf("Expected %d track points, got %d", len(points), len(track))
	}
	for i, want := range points {
		if track[i].Latitude != want.Latitude {
			t.Errorf("Point %d: expected latitude %v, got %v", i, want.Latitude, track[i].Latitude)
		}
	}
}

func TestStore_TrackTimeRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var points []TrackPoint
	for i := 0; i < 10; i++ {
		points = append(points, TrackPoint{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Latitude:  47.0,
			Longitude: 8.5,
		})
	}
	if err = store.StoreTrackPoints(ctx, id, points); err != nil {
		t.Fatalf("StoreTrackPoints() returned error: %v", err)
	}

	track, err := store.Track(ctx, id, WithTimeRange(base.Add(2*time.Minute), base.Add(5*time.Minute)))
	if err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != 4 {
		t.Errorf("Expected 4 points within the range, got %d", len(track))
	}

	track, err = store.Track(ctx, id, WithStartTime(base.Add(8*time.Minute)))
	if err != nil {
		t.Fatalf("Track() returned error: %v", err)
	}
	if len(track) != 2 {
		t.Errorf("Expected 2 points from the start time, got %d", len(track))
	}
}

func TestStore_EmptyBatchIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "simulator", nil)
	if err != nil {
		t.Fatalf("CreateSession() returned error: %v", err)
	}

	if err = store.StoreTrackPoints(ctx, id, nil); err != nil {
		t.Errorf("Expected empty batch to be a no-op, got %v", err)
	}
}
