package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/traffic-simulator/model"
)

func TestSpawnVehicleValidation(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 10})
	c := w.AddIntersection(model.Position{X: 50}) // isolated
	if _, _, err := w.AddTwoWayRoad(a, b); err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}

	// No outgoing roads at the start point.
	if _, err := w.SpawnVehicle(c, a, model.KindCar, model.TripOutbound, 0, 0); err == nil {
		t.Fatalf("spawn from an isolated intersection must fail")
	}

	// Unreachable destination is a no-path outcome, not a fault.
	_, err := w.SpawnVehicle(a, c, model.KindCar, model.TripOutbound, 0, 0)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("error = %v, want ErrNoPath", err)
	}

	// Spawning to the current intersection has no first road to stand on.
	if _, err := w.SpawnVehicle(a, a, model.KindCar, model.TripOutbound, 0, 0); err == nil {
		t.Fatalf("spawn to self must fail")
	}

	if w.CarCount() != 0 {
		t.Fatalf("failed spawns must not leave cars behind, have %d", w.CarCount())
	}
}

func TestTruckSpawnsFasterThanCars(t *testing.T) {
	w := New(Config{Seed: 3})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 10})
	if _, _, err := w.AddTwoWayRoad(a, b); err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}

	for i := 0; i < 20; i++ {
		carID := mustSpawn(t, w, a, b, model.KindCar)
		truckID := mustSpawn(t, w, a, b, model.KindTruck)
		car, _ := w.Car(carID)
		truck, _ := w.Car(truckID)
		if car.Speed < 2 || car.Speed >= 6 {
			t.Fatalf("car speed %v outside [2, 6)", car.Speed)
		}
		if truck.Speed < 4 || truck.Speed >= 8 {
			t.Fatalf("truck speed %v outside [4, 8)", truck.Speed)
		}
	}
}

func TestRemoveResidenceReturnsOutstandingCars(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 10})
	if _, _, err := w.AddTwoWayRoad(a, b); err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}
	resID, err := w.AddResidence(a)
	if err != nil {
		t.Fatalf("AddResidence error: %v", err)
	}
	carID, err := w.SpawnVehicle(a, b, model.KindCar, model.TripOutbound, resID, 0)
	if err != nil {
		t.Fatalf("SpawnVehicle error: %v", err)
	}
	res, _ := w.Residence(resID)
	res.SetSlot(0, carID)

	out := w.RemoveResidence(resID)
	if len(out) != 1 || out[0] != carID {
		t.Fatalf("outstanding cars = %v, want [%d]", out, carID)
	}
	// The car keeps driving; its origin reference simply dangles now.
	if _, ok := w.Car(carID); !ok {
		t.Fatalf("car was despawned with its residence")
	}
}

func TestSplitRoadAtPosition(t *testing.T) {
	w := New(Config{Seed: 1})
	a := w.AddIntersection(model.Position{X: 0})
	b := w.AddIntersection(model.Position{X: 20})
	forward, _, err := w.AddTwoWayRoad(a, b)
	if err != nil {
		t.Fatalf("AddTwoWayRoad error: %v", err)
	}

	mid, first, second, err := w.SplitRoadAtPosition(forward, model.Position{X: 10})
	if err != nil {
		t.Fatalf("SplitRoadAtPosition error: %v", err)
	}

	firstRoad, ok := w.Network().Road(first)
	if !ok || firstRoad.Start != a || firstRoad.End != mid {
		t.Fatalf("first half = %+v, want %d -> %d", firstRoad, a, mid)
	}
	secondRoad, ok := w.Network().Road(second)
	if !ok || secondRoad.Start != mid || secondRoad.End != b {
		t.Fatalf("second half = %+v, want %d -> %d", secondRoad, mid, b)
	}
	if _, ok := w.Network().Road(forward); ok {
		t.Fatalf("original road survived the split")
	}

	// The reverse direction was split too.
	if _, err := w.Network().FindRoadBetween(mid, a); err != nil {
		t.Fatalf("reverse first half missing: %v", err)
	}
	if _, err := w.Network().FindRoadBetween(b, mid); err != nil {
		t.Fatalf("reverse second half missing: %v", err)
	}
	if got := w.Network().RoadCount(); got != 4 {
		t.Fatalf("roads = %d, want 4", got)
	}
}

func TestAddRoadAtPositionsSnapsToExisting(t *testing.T) {
	w := New(Config{Seed: 1})

	from, to, _, _, err := w.AddRoadAtPositions(model.Position{X: 0}, model.Position{X: 20}, 5)
	if err != nil {
		t.Fatalf("AddRoadAtPositions error: %v", err)
	}
	if w.Network().IntersectionCount() != 2 {
		t.Fatalf("intersections = %d, want 2", w.Network().IntersectionCount())
	}

	// A nearby endpoint snaps to the existing intersection instead of
	// creating a twin next to it.
	from2, _, _, _, err := w.AddRoadAtPositions(model.Position{X: 19, Z: 1}, model.Position{X: 40}, 5)
	if err != nil {
		t.Fatalf("AddRoadAtPositions error: %v", err)
	}
	if from2 != to {
		t.Fatalf("snapped start = %d, want existing %d", from2, to)
	}
	if w.Network().IntersectionCount() != 3 {
		t.Fatalf("intersections = %d, want 3", w.Network().IntersectionCount())
	}

	// Duplicate connections are refused.
	if _, _, _, _, err := w.AddRoadAtPositions(model.Position{X: 1}, model.Position{X: 19}, 5); err == nil {
		t.Fatalf("duplicate road must be refused")
	}
	_ = from
}

func TestAddRoadAtPositionsSplitsNearbyRoad(t *testing.T) {
	w := New(Config{Seed: 1})
	if _, _, _, _, err := w.AddRoadAtPositions(model.Position{X: 0}, model.Position{X: 40}, 2); err != nil {
		t.Fatalf("AddRoadAtPositions error: %v", err)
	}

	// An endpoint in the middle of the existing road splits it.
	_, to, _, _, err := w.AddRoadAtPositions(model.Position{X: 20, Z: 30}, model.Position{X: 20, Z: 1}, 2)
	if err != nil {
		t.Fatalf("AddRoadAtPositions error: %v", err)
	}
	toPos, ok := w.Network().IntersectionPosition(to)
	if !ok {
		t.Fatalf("split intersection missing")
	}
	if toPos.X != 20 || toPos.Z != 0 {
		t.Fatalf("split point = %+v, want (20, 0) on the existing road", toPos)
	}
	// Both halves plus the new spur, all two-way.
	if got := w.Network().RoadCount(); got != 6 {
		t.Fatalf("roads = %d, want 6", got)
	}
}

func TestDemandAndSummary(t *testing.T) {
	w, resID, facID := commuteWorld(t)
	shopAt := w.AddIntersection(model.Position{X: 5, Z: 10})
	if _, err := w.AddShop(shopAt); err != nil {
		t.Fatalf("AddShop error: %v", err)
	}
	f, _ := w.Factory(facID)
	f.LaborDemand = model.LaborDemandThreshold
	res, _ := w.Residence(resID)
	res.SetSlot(0, 999)

	snap := w.Demand()
	if snap.TotalResidences != 1 || snap.BusyResidences != 1 {
		t.Fatalf("residence demand = %+v", snap)
	}
	if snap.TotalFactories != 1 || snap.FactoriesWantingWorkers != 1 || snap.TrucksOut != 0 {
		t.Fatalf("factory demand = %+v", snap)
	}
	if snap.TotalShops != 1 || snap.ShopsWantingDelivery != 1 {
		t.Fatalf("shop demand = %+v", snap)
	}

	sum := w.Summary()
	for _, want := range []string{"cars=0", "residences=1 (1 busy)", "factories=1", "shops=1"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary %q missing %q", sum, want)
		}
	}
}
