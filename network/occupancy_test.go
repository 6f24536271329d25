package network

import (
	"testing"

	"github.com/signalsfoundry/traffic-simulator/model"
)

func TestCarAheadStrictlyGreater(t *testing.T) {
	b := newBuilder()
	a := b.intersection(model.Position{X: 0})
	c := b.intersection(model.Position{X: 20})
	road := b.road(a, c)

	mustPlace(t, b.net, 100, road, 5)
	mustPlace(t, b.net, 101, road, 10)
	mustPlace(t, b.net, 102, road, 15)

	dist, car, ok := b.net.CarAhead(road, 5)
	if !ok || car != 101 || dist != 10 {
		t.Fatalf("ahead of 5 = (%v, %d, %v), want (10, 101, true)", dist, car, ok)
	}

	// A car at exactly the same distance is not ahead.
	if _, car, ok := b.net.CarAhead(road, 15); ok {
		t.Fatalf("nothing should be ahead of the lead car, got %d", car)
	}
}

func TestOccupancyEqualDistancesKeepArrivalOrder(t *testing.T) {
	b := newBuilder()
	a := b.intersection(model.Position{X: 0})
	c := b.intersection(model.Position{X: 20})
	road := b.road(a, c)

	// Two cars registered at the same distance; neither entry may be
	// dropped, and order follows arrival.
	mustPlace(t, b.net, 100, road, 0)
	mustPlace(t, b.net, 101, road, 0)

	cars := b.net.CarsOnRoad(road)
	if len(cars) != 2 {
		t.Fatalf("cars on road = %v, want both entries kept", cars)
	}
	if cars[0] != 100 || cars[1] != 101 {
		t.Fatalf("cars = %v, want arrival order [100 101]", cars)
	}
}

func TestMoveCarAcrossRoads(t *testing.T) {
	b := newBuilder()
	a := b.intersection(model.Position{X: 0})
	c := b.intersection(model.Position{X: 20})
	d := b.intersection(model.Position{X: 40})
	first := b.road(a, c)
	second := b.road(c, d)

	mustPlace(t, b.net, 100, first, 19)
	if err := b.net.MoveCar(100, first, second, 0); err != nil {
		t.Fatalf("MoveCar error: %v", err)
	}

	if got := b.net.CarsOnRoad(first); len(got) != 0 {
		t.Fatalf("old road still tracks %v", got)
	}
	if got := b.net.CarsOnRoad(second); len(got) != 1 || got[0] != 100 {
		t.Fatalf("new road tracks %v, want [100]", got)
	}
}

func TestRemoveCarTracking(t *testing.T) {
	b := newBuilder()
	a := b.intersection(model.Position{X: 0})
	c := b.intersection(model.Position{X: 20})
	road := b.road(a, c)

	mustPlace(t, b.net, 100, road, 3)
	mustPlace(t, b.net, 101, road, 7)

	b.net.RemoveCarTracking(100)
	if got := b.net.CarsOnRoad(road); len(got) != 1 || got[0] != 101 {
		t.Fatalf("cars = %v, want only [101]", got)
	}
}

func TestPlaceCarUnknownRoad(t *testing.T) {
	net := New()
	if err := net.PlaceCar(100, 999, 0); err == nil {
		t.Fatalf("expected error placing a car on an unknown road")
	}
}

func mustPlace(t *testing.T, net *RoadNetwork, car model.CarID, road model.RoadID, dist float64) {
	t.Helper()
	if err := net.PlaceCar(car, road, dist); err != nil {
		t.Fatalf("PlaceCar(%d) error: %v", car, err)
	}
}
