package core

import (
	"fmt"

	"github.com/signalsfoundry/traffic-simulator/model"
	"github.com/signalsfoundry/traffic-simulator/network"
)

// SplitRoadAtPosition cuts a road in two by inserting a new intersection at
// the given point. A two-way road has its paired reverse direction split too.
// Cars that were on the affected roads are despawned; their planned paths no
// longer exist.
func (w *World) SplitRoadAtPosition(roadID model.RoadID, at model.Position) (model.IntersectionID, model.RoadID, model.RoadID, error) {
	road, ok := w.net.Road(roadID)
	if !ok {
		return 0, 0, 0, fmt.Errorf("split road %d: %w", roadID, network.ErrRoadNotFound)
	}

	displaced := w.net.CarsOnRoad(roadID)
	if _, err := w.net.RemoveRoad(roadID); err != nil {
		return 0, 0, 0, fmt.Errorf("split road %d: %w", roadID, err)
	}

	mid := w.AddIntersection(at)
	first, err := w.addDirectedRoad(road.Start, mid, road.TwoWay)
	if err != nil {
		return 0, 0, 0, err
	}
	second, err := w.addDirectedRoad(mid, road.End, road.TwoWay)
	if err != nil {
		return 0, 0, 0, err
	}

	if road.TwoWay {
		if reverse, err := w.net.FindRoadBetween(road.End, road.Start); err == nil {
			displaced = append(displaced, w.net.CarsOnRoad(reverse)...)
			if _, err := w.net.RemoveRoad(reverse); err != nil {
				return 0, 0, 0, fmt.Errorf("split reverse road %d: %w", reverse, err)
			}
		}
		if _, err := w.addDirectedRoad(mid, road.Start, true); err != nil {
			return 0, 0, 0, err
		}
		if _, err := w.addDirectedRoad(road.End, mid, true); err != nil {
			return 0, 0, 0, err
		}
	}

	for _, car := range displaced {
		w.despawnCar(car, "road split")
	}
	w.RecalculatePaths()
	return mid, first, second, nil
}

// AddRoadAtPositions builds a two-way road between two free-form positions,
// snapping each end to a nearby intersection, splitting a nearby road, or
// creating a fresh intersection. This is the entry point a build tool calls
// with raw cursor positions.
func (w *World) AddRoadAtPositions(start, end model.Position, snapDistance float64) (model.IntersectionID, model.IntersectionID, model.RoadID, model.RoadID, error) {
	from, err := w.findOrCreateIntersection(start, snapDistance)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	to, err := w.findOrCreateIntersection(end, snapDistance)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	if _, err := w.net.FindRoadBetween(from, to); err == nil {
		return 0, 0, 0, 0, fmt.Errorf("road already exists between %d and %d", from, to)
	}

	forward, backward, err := w.AddTwoWayRoad(from, to)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return from, to, forward, backward, nil
}

// findOrCreateIntersection resolves a free-form position to an intersection:
// an existing one within snap distance, a new one splitting a road within
// snap distance, or a brand-new isolated one.
func (w *World) findOrCreateIntersection(pos model.Position, snapDistance float64) (model.IntersectionID, error) {
	if closest, ok := w.net.ClosestIntersection(pos); ok {
		if closestPos, ok := w.net.IntersectionPosition(closest); ok && pos.Distance(closestPos) <= snapDistance {
			return closest, nil
		}
	}

	if roadID, point, _, ok := w.net.ClosestPointOnRoad(pos); ok && pos.Distance(point) <= snapDistance {
		mid, _, _, err := w.SplitRoadAtPosition(roadID, point)
		if err != nil {
			return 0, err
		}
		return mid, nil
	}

	return w.AddIntersection(pos), nil
}
