package core

import (
	"context"

	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/model"
)

// shiftEnd records a worker whose factory shift finished this tick and who
// now needs a ride home.
type shiftEnd struct {
	factory model.FactoryID
	worker  model.Worker
}

// truckDispatch records a delivery committed in the factory phase; readiness
// was already consumed, so a failed spawn must roll it back.
type truckDispatch struct {
	factory model.FactoryID
	shop    model.ShopID
}

// carResult is one car's outcome from the movement phase, reconciled after
// every car has moved.
type carResult struct {
	car     model.CarID
	outcome carOutcome
	reached model.IntersectionID
	err     error
}

// Tick advances the whole world by delta seconds. The phase order is a fixed,
// observable contract: timers, then the economy (which may commit spawns),
// then movement, then arrival reconciliation. Vehicles created during a tick
// start moving on the next one.
func (w *World) Tick(delta float64) {
	w.clock += delta

	for _, in := range w.intersections {
		in.UpdateTimer(delta)
	}
	for _, s := range w.shops {
		s.Update(delta)
	}

	// Snapshot before any spawning so this tick only moves pre-existing
	// cars.
	moving := w.CarIDs()

	shiftEnds, dispatches := w.updateFactories(delta)
	w.sendWorkersHome(shiftEnds)
	w.dispatchTrucks(dispatches)
	w.spawnWorkers()

	results := make([]carResult, 0, len(moving))
	for _, id := range moving {
		car, ok := w.cars[id]
		if !ok {
			continue
		}
		outcome, reached, err := w.advanceCar(car, delta)
		if outcome == carContinue && err == nil {
			continue
		}
		results = append(results, carResult{car: id, outcome: outcome, reached: reached, err: err})
	}

	for _, r := range results {
		if r.err != nil {
			// One malformed car must never stop the tick; it just leaves.
			w.log.Warn(context.Background(), "car update failed",
				logging.Uint64("car", uint64(r.car)),
				logging.Any("error", r.err))
			w.despawnCar(r.car, "update failed")
			continue
		}
		switch r.outcome {
		case carArrived:
			w.handleArrival(r.car, r.reached)
		case carDespawn:
			w.despawnCar(r.car, "path exhausted")
		}
	}
}

// updateFactories advances every factory and collects the tick's finished
// shifts and committed truck dispatches. Dispatch targets are shops whose
// demand is at threshold, picked uniformly at random by the seeded generator.
func (w *World) updateFactories(delta float64) ([]shiftEnd, []truckDispatch) {
	var ends []shiftEnd
	var dispatches []truckDispatch

	for _, id := range w.FactoryIDs() {
		f := w.factories[id]
		for _, worker := range f.Update(delta) {
			ends = append(ends, shiftEnd{factory: id, worker: worker})
		}

		if !f.TruckAvailable() || f.DeliveriesReady == 0 {
			continue
		}
		var wanting []model.ShopID
		for _, shopID := range w.ShopIDs() {
			if w.shops[shopID].WantsDelivery() {
				wanting = append(wanting, shopID)
			}
		}
		if len(wanting) == 0 {
			continue
		}
		if f.TakeDelivery() {
			target := wanting[w.rng.Intn(len(wanting))]
			dispatches = append(dispatches, truckDispatch{factory: id, shop: target})
		}
	}
	return ends, dispatches
}

// sendWorkersHome spawns the return leg for every finished shift. The
// residence slot is re-pointed from the outbound car to the fresh return car;
// if no ride home exists the slot is freed so the unit can try again.
func (w *World) sendWorkersHome(ends []shiftEnd) {
	for _, end := range ends {
		res, ok := w.residences[end.worker.Residence]
		if !ok {
			continue
		}
		f, ok := w.factories[end.factory]
		if !ok {
			res.ClearCar(end.worker.Car)
			continue
		}
		newID, err := w.SpawnVehicle(f.Intersection, res.Intersection,
			model.KindCar, model.TripReturn, end.worker.Residence, end.factory)
		if err != nil {
			res.ClearCar(end.worker.Car)
			w.log.Debug(context.Background(), "worker stranded, slot freed",
				logging.Uint64("residence", uint64(end.worker.Residence)),
				logging.Any("error", err))
			continue
		}
		res.ReplaceCar(end.worker.Car, newID)
	}
}

// dispatchTrucks spawns the trucks committed by updateFactories. A spawn
// failure returns the consumed delivery to the ready pool so no economic
// state leaks.
func (w *World) dispatchTrucks(dispatches []truckDispatch) {
	for _, d := range dispatches {
		f, ok := w.factories[d.factory]
		if !ok {
			continue
		}
		shop, ok := w.shops[d.shop]
		if !ok {
			f.ReturnDelivery()
			continue
		}
		truckID, err := w.SpawnVehicle(f.Intersection, shop.Intersection,
			model.KindTruck, model.TripOutbound, 0, d.factory)
		if err != nil {
			f.ReturnDelivery()
			w.log.Debug(context.Background(), "truck dispatch failed",
				logging.Uint64("factory", uint64(d.factory)),
				logging.Uint64("shop", uint64(d.shop)),
				logging.Any("error", err))
			continue
		}
		f.Truck = truckID
	}
}

// spawnWorkers runs the residence side of the labor market: every idle
// dwelling-unit slot picks a random factory that wants workers, reserves a
// slot there, and sends a car. Reservations spend demand immediately, so the
// candidate set shrinks as slots commit.
func (w *World) spawnWorkers() {
	for _, resID := range w.ResidenceIDs() {
		res := w.residences[resID]
		for _, slot := range res.FreeSlots() {
			var wanting []model.FactoryID
			for _, facID := range w.FactoryIDs() {
				if w.factories[facID].WantsWorkers() {
					wanting = append(wanting, facID)
				}
			}
			if len(wanting) == 0 {
				return
			}
			f := w.factories[wanting[w.rng.Intn(len(wanting))]]
			if !f.TryReserveWorker() {
				continue
			}
			carID, err := w.SpawnVehicle(res.Intersection, f.Intersection,
				model.KindCar, model.TripOutbound, resID, 0)
			if err != nil {
				f.CancelReservation()
				continue
			}
			res.SetSlot(slot, carID)
		}
	}
}

// handleArrival reconciles one car's arrival with the economy, then removes
// the car entity. Residence slots survive worker round trips: the slot is
// re-pointed at each fresh leg and only cleared when the worker is home (or
// permanently stranded).
func (w *World) handleArrival(id model.CarID, dest model.IntersectionID) {
	car, ok := w.cars[id]
	if !ok {
		return
	}
	w.metrics.CarArrived(car.Kind.String())

	switch {
	case car.Kind == model.KindCar && car.Trip == model.TripOutbound:
		w.workerArrived(car, dest)
	case car.Kind == model.KindCar && car.Trip == model.TripReturn:
		if res, ok := w.residences[car.OriginResidence]; ok {
			res.ClearCar(id)
		}
		w.metrics.WorkerTripCompleted()
		w.removeCarEntity(id)
	case car.Kind == model.KindTruck && car.Trip == model.TripOutbound:
		w.truckArrived(car, dest)
	default: // truck returning home
		if f, ok := w.factories[car.OriginFactory]; ok && f.Truck == id {
			f.Truck = 0
		}
		w.removeCarEntity(id)
	}
}

// workerArrived enrols an outbound worker at the destination factory, or
// turns the car straight around when the factory is closed or gone.
func (w *World) workerArrived(car *model.Car, dest model.IntersectionID) {
	var destFactory *model.Factory
	for _, facID := range w.FactoryIDs() {
		if w.factories[facID].Intersection == dest {
			destFactory = w.factories[facID]
			break
		}
	}

	if car.OriginResidence != 0 && destFactory != nil &&
		destFactory.ReceiveWorker(car.OriginResidence, car.ID) {
		// The worker is on-site; the slot keeps holding this car id until
		// the return leg replaces it.
		w.removeCarEntity(car.ID)
		return
	}

	if res, ok := w.residences[car.OriginResidence]; ok {
		var facID model.FactoryID
		if destFactory != nil {
			facID = destFactory.ID
		}
		newID, err := w.SpawnVehicle(dest, res.Intersection,
			model.KindCar, model.TripReturn, car.OriginResidence, facID)
		if err != nil {
			res.ClearCar(car.ID)
		} else {
			res.ReplaceCar(car.ID, newID)
		}
	}
	w.removeCarEntity(car.ID)
}

// truckArrived delivers to the shop at the destination (if it still exists)
// and spawns the truck's return leg.
func (w *World) truckArrived(car *model.Car, dest model.IntersectionID) {
	for _, shopID := range w.ShopIDs() {
		if s := w.shops[shopID]; s.Intersection == dest {
			s.ReceiveDelivery()
			w.metrics.DeliveryCompleted()
			break
		}
	}

	if f, ok := w.factories[car.OriginFactory]; ok {
		newID, err := w.SpawnVehicle(dest, f.Intersection,
			model.KindTruck, model.TripReturn, 0, car.OriginFactory)
		if err != nil {
			// No way home: the truck is written off so the factory reopens.
			f.Truck = 0
		} else {
			f.Truck = newID
		}
	}
	w.removeCarEntity(car.ID)
}
