package core

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/model"
)

// carOutcome is the result of one car's per-tick update.
type carOutcome int

const (
	// carContinue: the car is still en route.
	carContinue carOutcome = iota
	// carArrived: the car reached its final destination this tick.
	carArrived
	// carDespawn: terminal state with nothing left to do (empty path), or a
	// failed update converted to a despawn by the caller.
	carDespawn
)

// advanceCar moves one car by up to speed×delta along its current road,
// respecting the following distance and intersection arbitration, and handles
// the same-tick transition onto the next road. On arrival it returns the
// reached intersection. Any error means the car read invalid state (a road or
// intersection vanished under it) and the caller despawns it.
func (w *World) advanceCar(c *model.Car, delta float64) (carOutcome, model.IntersectionID, error) {
	if len(c.Path) == 0 {
		return carDespawn, 0, nil
	}

	road, ok := w.net.Road(c.CurrentRoad)
	if !ok {
		return carDespawn, 0, fmt.Errorf("car %d: road %d vanished", c.ID, c.CurrentRoad)
	}
	target := c.Path[0]
	startPos, ok := w.net.IntersectionPosition(c.StartIntersection)
	if !ok {
		return carDespawn, 0, fmt.Errorf("car %d: start intersection %d vanished", c.ID, c.StartIntersection)
	}
	endPos, ok := w.net.IntersectionPosition(target)
	if !ok {
		return carDespawn, 0, fmt.Errorf("car %d: target intersection %d vanished", c.ID, target)
	}

	prevRoad := c.CurrentRoad
	move := c.Speed * delta

	// Following distance: clamp to zero rather than partially closing the
	// gap, so the post-movement gap never drops below the safe distance.
	blockedByCarAhead := false
	if aheadDist, _, ok := w.net.CarAhead(c.CurrentRoad, c.DistanceAlongRoad); ok {
		gap := aheadDist - c.DistanceAlongRoad
		if gap <= move+model.CarLength*model.SafeFollowingMultiplier {
			move = 0
			blockedByCarAhead = true
		}
	}

	// Intersection arbitration. A car blocked behind another must not grab
	// new locks it cannot use, but a car that already holds the upcoming
	// intersection keeps checking so the hold is preserved.
	if road.Length-c.DistanceAlongRoad <= model.IntersectionApproachDistance {
		in, ok := w.intersections[target]
		if !ok {
			return carDespawn, 0, fmt.Errorf("car %d: intersection %d vanished", c.ID, target)
		}
		if (!blockedByCarAhead || in.IsHeldBy(c.ID)) && !in.CanProceed(c.ID) {
			move = 0
		}
	}

	c.DistanceAlongRoad += move

	if c.DistanceAlongRoad >= road.Length {
		reached := c.Path[0]
		c.Path = c.Path[1:]
		if in, ok := w.intersections[reached]; ok {
			in.Release(c.ID)
		}

		if len(c.Path) == 0 {
			c.DistanceAlongRoad = road.Length
			c.Position = endPos
			// An arrived car stops blocking the road immediately.
			w.net.RemoveCarEntry(c.ID, prevRoad)
			return carArrived, reached, nil
		}

		nextRoadID, err := w.net.FindRoadBetween(reached, c.Path[0])
		if err != nil {
			return carDespawn, 0, fmt.Errorf("car %d: transition at %d: %w", c.ID, reached, err)
		}
		nextRoad, ok := w.net.Road(nextRoadID)
		if !ok {
			return carDespawn, 0, fmt.Errorf("car %d: next road %d vanished", c.ID, nextRoadID)
		}
		if nextRoad.Start != reached {
			// Best-effort recovery: trust the road's own endpoints and keep
			// the simulation going.
			w.log.Warn(context.Background(), "road does not start at reached intersection",
				logging.Uint64("car", uint64(c.ID)),
				logging.Uint64("road", uint64(nextRoadID)),
				logging.Uint64("reached", uint64(reached)))
		}
		c.CurrentRoad = nextRoadID
		c.DistanceAlongRoad = 0
		c.StartIntersection = nextRoad.Start
		c.Angle = nextRoad.Angle
		// No movement carries over into the new road this tick.
	} else {
		pos := startPos.Lerp(endPos, c.DistanceAlongRoad/road.Length)
		if road.TwoWay {
			off := startPos.PerpendicularOffset(endPos, model.LaneOffset)
			pos.X += off.X
			pos.Z += off.Z
		}
		c.Position = pos
	}

	if err := w.net.MoveCar(c.ID, prevRoad, c.CurrentRoad, c.DistanceAlongRoad); err != nil {
		return carDespawn, 0, fmt.Errorf("car %d: occupancy update: %w", c.ID, err)
	}
	return carContinue, 0, nil
}
