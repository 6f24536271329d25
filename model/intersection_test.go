package model

import "testing"

func TestCanProceedAcquiresButWaits(t *testing.T) {
	in := NewIntersection(1, Position{})

	if in.CanProceed(10) {
		t.Fatalf("first CanProceed must report wait even though it acquires")
	}
	if !in.IsHeldBy(10) {
		t.Fatalf("intersection should be held by car 10 after CanProceed")
	}
	if in.OccupationTimer != 0 {
		t.Fatalf("timer should reset on acquisition, got %v", in.OccupationTimer)
	}
}

func TestCanProceedHolderAfterCrossingTime(t *testing.T) {
	in := NewIntersection(1, Position{})

	in.CanProceed(10)
	in.UpdateTimer(in.CrossingTime / 2)
	if in.CanProceed(10) {
		t.Fatalf("holder must wait until crossing time elapses")
	}
	in.UpdateTimer(in.CrossingTime)
	if !in.CanProceed(10) {
		t.Fatalf("holder should proceed once crossing time has elapsed")
	}
}

func TestCanProceedMutualExclusion(t *testing.T) {
	in := NewIntersection(1, Position{})

	in.CanProceed(10)
	in.UpdateTimer(10 * in.CrossingTime)

	// No matter how long car 10 has held the crossing, car 20 never gets a
	// proceed and never steals the occupancy.
	if in.CanProceed(20) {
		t.Fatalf("non-holder must never proceed")
	}
	if !in.IsHeldBy(10) {
		t.Fatalf("occupant changed from 10 to %d", in.OccupiedBy)
	}
	if !in.CanProceed(10) {
		t.Fatalf("holder should still be able to proceed")
	}
}

func TestReleaseOnlyByHolder(t *testing.T) {
	in := NewIntersection(1, Position{})

	in.CanProceed(10)
	in.Release(20) // stale release from another car
	if !in.IsHeldBy(10) {
		t.Fatalf("release by non-holder must not clear the occupant")
	}

	in.Release(10)
	if in.OccupiedBy != 0 {
		t.Fatalf("release by holder should free the intersection")
	}
	if in.OccupationTimer != 0 {
		t.Fatalf("timer should reset on release, got %v", in.OccupationTimer)
	}
}

func TestUpdateTimerOnlyWhileOccupied(t *testing.T) {
	in := NewIntersection(1, Position{})

	in.UpdateTimer(1.0)
	if in.OccupationTimer != 0 {
		t.Fatalf("timer must not advance while free, got %v", in.OccupationTimer)
	}

	in.CanProceed(10)
	in.UpdateTimer(0.1)
	in.UpdateTimer(0.1)
	if got := in.OccupationTimer; got < 0.19 || got > 0.21 {
		t.Fatalf("timer = %v, want ~0.2", got)
	}
}
