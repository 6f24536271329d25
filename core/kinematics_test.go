package core

import (
	"testing"

	"github.com/signalsfoundry/traffic-simulator/model"
)

// placeCarAt teleports a car along its current road, keeping the occupancy
// index in sync, so tests can stage precise traffic situations.
func placeCarAt(t *testing.T, w *World, id model.CarID, dist float64) {
	t.Helper()
	car, ok := w.Car(id)
	if !ok {
		t.Fatalf("car %d not found", id)
	}
	car.DistanceAlongRoad = dist
	if err := w.Network().MoveCar(id, car.CurrentRoad, car.CurrentRoad, dist); err != nil {
		t.Fatalf("MoveCar(%d) error: %v", id, err)
	}
}

func mustSpawn(t *testing.T, w *World, from, to model.IntersectionID, kind model.VehicleKind) model.CarID {
	t.Helper()
	id, err := w.SpawnVehicle(from, to, kind, model.TripOutbound, 0, 0)
	if err != nil {
		t.Fatalf("SpawnVehicle error: %v", err)
	}
	return id
}

func TestFollowingDistanceClampsToZero(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 20})
	if _, _, err := w.AddTwoWayRoad(a, b); err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}

	leader := mustSpawn(t, w, a, b, model.KindCar)
	trailer := mustSpawn(t, w, a, b, model.KindCar)
	placeCarAt(t, w, leader, 5.0)
	placeCarAt(t, w, trailer, 4.6)

	leaderCar, _ := w.Car(leader)
	trailerCar, _ := w.Car(trailer)
	leaderCar.Speed = 2
	trailerCar.Speed = 5

	w.Tick(0.1)

	// Gap 0.4 is already below car_length x multiplier = 0.75: the trailer
	// must not move at all rather than partially close the gap.
	if trailerCar.DistanceAlongRoad != 4.6 {
		t.Fatalf("trailer moved to %v, want clamped at 4.6", trailerCar.DistanceAlongRoad)
	}
	if leaderCar.DistanceAlongRoad <= 5.0 {
		t.Fatalf("leader should keep moving, at %v", leaderCar.DistanceAlongRoad)
	}
}

func TestBlockedCarDoesNotAcquireLock(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 20})
	if _, _, err := w.AddTwoWayRoad(a, b); err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}

	// The follower has the lower id and therefore updates first, while the
	// intersection is still free. If blocking did not suppress acquisition,
	// the follower would grab the lock from behind the leader.
	follower := mustSpawn(t, w, a, b, model.KindCar)
	leader := mustSpawn(t, w, a, b, model.KindCar)
	placeCarAt(t, w, follower, 19.0)
	placeCarAt(t, w, leader, 19.5)
	followerCar, _ := w.Car(follower)
	leaderCar, _ := w.Car(leader)
	followerCar.Speed = 2
	leaderCar.Speed = 2

	w.Tick(0.1)

	inter, _ := w.Intersection(b)
	if !inter.IsHeldBy(leader) {
		t.Fatalf("intersection held by %d, want leader %d", inter.OccupiedBy, leader)
	}
	if followerCar.DistanceAlongRoad != 19.0 {
		t.Fatalf("blocked follower moved to %v", followerCar.DistanceAlongRoad)
	}
}

func TestHolderKeepsLockWhileBlocked(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 20})
	if _, _, err := w.AddTwoWayRoad(a, b); err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}

	holder := mustSpawn(t, w, a, b, model.KindCar)
	placeCarAt(t, w, holder, 19.5)
	holderCar, _ := w.Car(holder)
	holderCar.Speed = 2

	// First tick: the holder acquires the intersection (and waits).
	w.Tick(0.1)
	inter, _ := w.Intersection(b)
	if !inter.IsHeldBy(holder) {
		t.Fatalf("holder did not acquire the intersection")
	}

	// A car appears ahead of the holder on the same road. The blocked holder
	// must keep its reservation; the newcomer must not steal it.
	blockerCar := mustSpawn(t, w, a, b, model.KindCar)
	placeCarAt(t, w, blockerCar, 19.8)

	w.Tick(0.1)
	if !inter.IsHeldBy(holder) {
		t.Fatalf("blocked holder lost the lock to %d", inter.OccupiedBy)
	}
	if holderCar.DistanceAlongRoad != 19.5 {
		t.Fatalf("blocked holder moved to %v", holderCar.DistanceAlongRoad)
	}
}

func TestSameTickTransitionNoCarryOver(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 10})
	c := w.AddIntersection(model.Position{X: 30})
	if _, err := w.AddRoad(a, b); err != nil {
		t.Fatalf("AddRoad error: %v", err)
	}
	roadBC, err := w.AddRoad(b, c)
	if err != nil {
		t.Fatalf("AddRoad error: %v", err)
	}

	id := mustSpawn(t, w, a, c, model.KindCar)
	placeCarAt(t, w, id, 9.5)
	car, _ := w.Car(id)
	car.Speed = 4

	// Tick 1: the car enters the approach zone and acquires the lock.
	w.Tick(0.25)
	if car.DistanceAlongRoad != 9.5 {
		t.Fatalf("car should wait for the crossing, at %v", car.DistanceAlongRoad)
	}

	// Tick 2: dwell time is served; the car crosses and switches roads at
	// distance zero with no movement carried over.
	w.Tick(0.25)
	if car.CurrentRoad != roadBC {
		t.Fatalf("car on road %d, want %d", car.CurrentRoad, roadBC)
	}
	if car.DistanceAlongRoad != 0 {
		t.Fatalf("distance on new road = %v, want 0", car.DistanceAlongRoad)
	}
	if car.StartIntersection != b {
		t.Fatalf("start intersection = %d, want %d", car.StartIntersection, b)
	}

	// The lock was released on crossing.
	inter, _ := w.Intersection(b)
	if inter.OccupiedBy != 0 {
		t.Fatalf("intersection still held by %d after crossing", inter.OccupiedBy)
	}
}

func TestArrivalSnapsToDestination(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 20})
	roadAB, err := w.AddRoad(a, b)
	if err != nil {
		t.Fatalf("AddRoad error: %v", err)
	}

	id := mustSpawn(t, w, a, b, model.KindCar)
	placeCarAt(t, w, id, 19.5)
	car, _ := w.Car(id)
	car.Speed = 4

	for i := 0; i < 10 && w.CarCount() > 0; i++ {
		w.Tick(0.25)
	}

	if w.CarCount() != 0 {
		t.Fatalf("car never arrived")
	}
	if got := w.Network().CarsOnRoad(roadAB); len(got) != 0 {
		t.Fatalf("occupancy index still tracks %v after arrival", got)
	}
}
