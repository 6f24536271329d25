package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/model"
)

// Spawn speed ranges in world units per second; the actual speed is drawn
// uniformly from [min, max) by the seeded generator.
const (
	carSpeedMin   = 2.0
	carSpeedMax   = 6.0
	truckSpeedMin = 4.0
	truckSpeedMax = 8.0
)

// ErrNoPath reports that pathfinding found no route to the requested
// destination. It is a normal negative outcome, not a fault; callers roll
// back any economic state they committed before the spawn attempt.
var ErrNoPath = errors.New("no path to destination")

// SpawnVehicle creates a vehicle at an intersection headed to another and
// registers it on its first road. origin ids may be zero when the trip has no
// owning residence or factory.
func (w *World) SpawnVehicle(
	from, to model.IntersectionID,
	kind model.VehicleKind,
	trip model.TripKind,
	originResidence model.ResidenceID,
	originFactory model.FactoryID,
) (model.CarID, error) {
	conns, err := w.net.ConnectedRoads(from)
	if err != nil {
		return 0, fmt.Errorf("spawn from %d: %w", from, err)
	}
	if len(conns) == 0 {
		return 0, fmt.Errorf("spawn from %d: no outgoing roads", from)
	}

	path, ok := w.net.FindPath(from, to)
	if !ok {
		return 0, fmt.Errorf("spawn %d -> %d: %w", from, to, ErrNoPath)
	}
	if len(path) == 0 {
		// from == to: there is no first road to stand on.
		return 0, fmt.Errorf("spawn %d -> %d: already at destination", from, to)
	}

	roadID, err := w.net.FindRoadBetween(from, path[0])
	if err != nil {
		return 0, fmt.Errorf("spawn %d -> %d: first hop: %w", from, to, err)
	}
	road, _ := w.net.Road(roadID)
	startPos, ok := w.net.IntersectionPosition(from)
	if !ok {
		return 0, fmt.Errorf("spawn from %d: position unknown", from)
	}

	var speed float64
	switch kind {
	case model.KindTruck:
		speed = truckSpeedMin + w.rng.Float64()*(truckSpeedMax-truckSpeedMin)
	default:
		speed = carSpeedMin + w.rng.Float64()*(carSpeedMax-carSpeedMin)
	}

	id := model.CarID(w.allocID())
	car := &model.Car{
		ID:                id,
		Speed:             speed,
		CurrentRoad:       roadID,
		StartIntersection: from,
		Path:              path,
		Position:          startPos,
		Angle:             road.Angle,
		Kind:              kind,
		Trip:              trip,
		OriginResidence:   originResidence,
		OriginFactory:     originFactory,
	}
	if err := w.net.PlaceCar(id, roadID, 0); err != nil {
		return 0, fmt.Errorf("spawn car %d: %w", id, err)
	}
	w.cars[id] = car
	w.metrics.CarSpawned(kind.String())
	w.recordCounts()

	w.log.Debug(context.Background(), "vehicle spawned",
		logging.Uint64("car", uint64(id)),
		logging.String("kind", kind.String()),
		logging.String("trip", trip.String()),
		logging.Uint64("from", uint64(from)),
		logging.Uint64("to", uint64(to)))
	return id, nil
}

// despawnCar removes a car and clears its owning back-references: the
// residence slot holding it and the factory truck pointing at it.
func (w *World) despawnCar(id model.CarID, reason string) {
	car, ok := w.cars[id]
	if !ok {
		return
	}
	if car.OriginResidence != 0 {
		if res, ok := w.residences[car.OriginResidence]; ok {
			res.ClearCar(id)
		}
	}
	if car.OriginFactory != 0 {
		if f, ok := w.factories[car.OriginFactory]; ok && f.Truck == id {
			f.Truck = 0
		}
	}
	w.removeCarEntity(id)
	w.metrics.CarDespawned(reason)

	w.log.Debug(context.Background(), "vehicle despawned",
		logging.Uint64("car", uint64(id)),
		logging.String("reason", reason))
}

// removeCarEntity drops the car from the live map and the occupancy index
// without touching back-references. Arrival handling uses it directly when a
// slot must survive (the worker round trip keeps its residence slot claimed).
func (w *World) removeCarEntity(id model.CarID) {
	delete(w.cars, id)
	w.net.RemoveCarTracking(id)
	w.recordCounts()
}
