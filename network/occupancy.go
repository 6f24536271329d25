package network

import (
	"fmt"
	"sort"

	"github.com/signalsfoundry/traffic-simulator/model"
)

// occupant is one car's entry in a road's occupancy index. seq is the
// arrival order, used to keep equal distances stable instead of dropping
// them.
type occupant struct {
	distance float64
	car      model.CarID
	seq      uint64
}

// PlaceCar registers a car on a road at the given distance. The road's index
// stays sorted by (distance, arrival order).
func (n *RoadNetwork) PlaceCar(car model.CarID, road model.RoadID, distance float64) error {
	if _, ok := n.roads[road]; !ok {
		return fmt.Errorf("place car %d: road %d: %w", car, road, ErrRoadNotFound)
	}
	n.insertOccupant(road, car, distance)
	return nil
}

// MoveCar updates a car's occupancy entry, removing its old entry on
// prevRoad first. prevRoad may equal road for movement within one road.
func (n *RoadNetwork) MoveCar(car model.CarID, prevRoad, road model.RoadID, distance float64) error {
	n.RemoveCarEntry(car, prevRoad)
	if _, ok := n.roads[road]; !ok {
		return fmt.Errorf("move car %d: road %d: %w", car, road, ErrRoadNotFound)
	}
	n.insertOccupant(road, car, distance)
	return nil
}

// RemoveCarEntry drops a car's entry from one road's index, if present.
func (n *RoadNetwork) RemoveCarEntry(car model.CarID, road model.RoadID) {
	occs, ok := n.occupancy[road]
	if !ok {
		return
	}
	for i, occ := range occs {
		if occ.car == car {
			n.occupancy[road] = append(occs[:i], occs[i+1:]...)
			return
		}
	}
}

// RemoveCarTracking drops a car's entries from every road. Used when a car
// despawns without a known location.
func (n *RoadNetwork) RemoveCarTracking(car model.CarID) {
	for road, occs := range n.occupancy {
		for i, occ := range occs {
			if occ.car == car {
				n.occupancy[road] = append(occs[:i], occs[i+1:]...)
				break
			}
		}
	}
}

// CarAhead returns the nearest car on the road with a distance strictly
// greater than the given one. A car at exactly the same distance is not
// ahead.
func (n *RoadNetwork) CarAhead(road model.RoadID, distance float64) (float64, model.CarID, bool) {
	occs := n.occupancy[road]
	idx := sort.Search(len(occs), func(i int) bool { return occs[i].distance > distance })
	if idx == len(occs) {
		return 0, 0, false
	}
	return occs[idx].distance, occs[idx].car, true
}

// CarsOnRoad lists the cars registered on a road in along-road order.
func (n *RoadNetwork) CarsOnRoad(road model.RoadID) []model.CarID {
	occs := n.occupancy[road]
	cars := make([]model.CarID, 0, len(occs))
	for _, occ := range occs {
		cars = append(cars, occ.car)
	}
	return cars
}

func (n *RoadNetwork) insertOccupant(road model.RoadID, car model.CarID, distance float64) {
	occs := n.occupancy[road]
	// Insert after any entries with an equal distance so ties keep arrival
	// order.
	idx := sort.Search(len(occs), func(i int) bool { return occs[i].distance > distance })
	occs = append(occs, occupant{})
	copy(occs[idx+1:], occs[idx:])
	occs[idx] = occupant{distance: distance, car: car, seq: n.seq}
	n.seq++
	n.occupancy[road] = occs
}
