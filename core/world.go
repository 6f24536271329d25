// Package core owns the simulation world: the road network, the arbitrated
// intersections, every vehicle in flight, and the economic actors, all
// advanced together by a single-threaded Tick. Cross-entity references are
// weak ids reconciled by the orchestrator; no entity holds a pointer into
// another.
package core

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/model"
	"github.com/signalsfoundry/traffic-simulator/network"
)

// MetricsRecorder receives simulation lifecycle events. The world calls it
// synchronously from inside the tick; implementations must not block.
type MetricsRecorder interface {
	SetWorldCounts(intersections, roads, cars, residences, factories, shops int)
	CarSpawned(kind string)
	CarArrived(kind string)
	CarDespawned(reason string)
	DeliveryCompleted()
	WorkerTripCompleted()
	CarsRerouted(count int)
}

type noopMetrics struct{}

func (noopMetrics) SetWorldCounts(int, int, int, int, int, int) {}
func (noopMetrics) CarSpawned(string)                           {}
func (noopMetrics) CarArrived(string)                           {}
func (noopMetrics) CarDespawned(string)                         {}
func (noopMetrics) DeliveryCompleted()                          {}
func (noopMetrics) WorkerTripCompleted()                        {}
func (noopMetrics) CarsRerouted(int)                            {}

// Config carries the world's construction parameters. Identical Seed plus an
// identical sequence of calls reproduces an identical run.
type Config struct {
	Seed    int64
	Logger  logging.Logger
	Metrics MetricsRecorder
}

// World is the simulation orchestrator. All state is exclusively owned and
// mutated synchronously; there is no internal locking and no goroutine may
// touch a World while another call is in flight.
type World struct {
	net *network.RoadNetwork

	intersections map[model.IntersectionID]*model.Intersection
	cars          map[model.CarID]*model.Car
	residences    map[model.ResidenceID]*model.Residence
	factories     map[model.FactoryID]*model.Factory
	shops         map[model.ShopID]*model.Shop

	// nextID is the single counter behind every entity id; the zero id is
	// never handed out.
	nextID model.SimID
	clock  float64

	rng     *rand.Rand
	log     logging.Logger
	metrics MetricsRecorder
}

// New constructs an empty world.
func New(cfg Config) *World {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &World{
		net:           network.New(),
		intersections: make(map[model.IntersectionID]*model.Intersection),
		cars:          make(map[model.CarID]*model.Car),
		residences:    make(map[model.ResidenceID]*model.Residence),
		factories:     make(map[model.FactoryID]*model.Factory),
		shops:         make(map[model.ShopID]*model.Shop),
		nextID:        1,
		rng:           rand.New(rand.NewSource(cfg.Seed)),
		log:           log,
		metrics:       metrics,
	}
}

func (w *World) allocID() model.SimID {
	id := w.nextID
	w.nextID++
	return id
}

// Clock returns elapsed simulated seconds.
func (w *World) Clock() float64 { return w.clock }

// Network exposes the road graph for read-only consumers such as a renderer
// or a test harness. Mutations must go through the World so despawns and
// reroutes stay consistent.
func (w *World) Network() *network.RoadNetwork { return w.net }

// AddIntersection creates a free intersection at the given position.
func (w *World) AddIntersection(pos model.Position) model.IntersectionID {
	id := model.IntersectionID(w.allocID())
	w.intersections[id] = model.NewIntersection(id, pos)
	w.net.AddIntersection(id, pos)
	w.recordCounts()
	return id
}

// AddRoad creates a one-way road between two existing intersections.
func (w *World) AddRoad(start, end model.IntersectionID) (model.RoadID, error) {
	return w.addDirectedRoad(start, end, false)
}

// AddTwoWayRoad creates the directed pair for a two-way road. The two
// directions are fully independent edges; TwoWay only marks them for lane
// offsetting.
func (w *World) AddTwoWayRoad(start, end model.IntersectionID) (model.RoadID, model.RoadID, error) {
	forward, err := w.addDirectedRoad(start, end, true)
	if err != nil {
		return 0, 0, err
	}
	backward, err := w.addDirectedRoad(end, start, true)
	if err != nil {
		return 0, 0, err
	}
	return forward, backward, nil
}

func (w *World) addDirectedRoad(start, end model.IntersectionID, twoWay bool) (model.RoadID, error) {
	startPos, ok := w.net.IntersectionPosition(start)
	if !ok {
		return 0, fmt.Errorf("road start %d: %w", start, network.ErrIntersectionNotFound)
	}
	endPos, ok := w.net.IntersectionPosition(end)
	if !ok {
		return 0, fmt.Errorf("road end %d: %w", end, network.ErrIntersectionNotFound)
	}
	id := model.RoadID(w.allocID())
	w.net.AddRoad(model.NewRoad(id, start, end, startPos, endPos, twoWay))
	w.recordCounts()
	return id, nil
}

// AddResidence places a residence at an existing intersection.
func (w *World) AddResidence(at model.IntersectionID) (model.ResidenceID, error) {
	if !w.net.HasIntersection(at) {
		return 0, fmt.Errorf("residence at %d: %w", at, network.ErrIntersectionNotFound)
	}
	id := model.ResidenceID(w.allocID())
	w.residences[id] = model.NewResidence(id, at)
	w.recordCounts()
	return id, nil
}

// AddFactory places a factory at an existing intersection.
func (w *World) AddFactory(at model.IntersectionID) (model.FactoryID, error) {
	if !w.net.HasIntersection(at) {
		return 0, fmt.Errorf("factory at %d: %w", at, network.ErrIntersectionNotFound)
	}
	id := model.FactoryID(w.allocID())
	w.factories[id] = model.NewFactory(id, at)
	w.recordCounts()
	return id, nil
}

// AddShop places a shop at an existing intersection.
func (w *World) AddShop(at model.IntersectionID) (model.ShopID, error) {
	if !w.net.HasIntersection(at) {
		return 0, fmt.Errorf("shop at %d: %w", at, network.ErrIntersectionNotFound)
	}
	id := model.ShopID(w.allocID())
	w.shops[id] = model.NewShop(id, at)
	w.recordCounts()
	return id, nil
}

// RemoveRoad deletes a directed road. Cars that were on it are despawned;
// surviving cars whose remaining path crossed it are rerouted or despawned.
func (w *World) RemoveRoad(id model.RoadID) error {
	displaced, err := w.net.RemoveRoad(id)
	if err != nil {
		return err
	}
	for _, car := range displaced {
		w.despawnCar(car, "road removed")
	}
	w.RecalculatePaths()
	return nil
}

// RemoveTwoWayRoad deletes both directions between two intersections.
// Missing directions are skipped, so it also cleans up a half-removed pair.
func (w *World) RemoveTwoWayRoad(a, b model.IntersectionID) error {
	if forward, err := w.net.FindRoadBetween(a, b); err == nil {
		if err := w.RemoveRoad(forward); err != nil {
			return err
		}
	}
	if backward, err := w.net.FindRoadBetween(b, a); err == nil {
		if err := w.RemoveRoad(backward); err != nil {
			return err
		}
	}
	return nil
}

// RemoveIntersection deletes an intersection, every incident road, and every
// building at it. Cars on removed roads are despawned; the rest are rerouted
// around the hole or despawned if no route remains.
func (w *World) RemoveIntersection(id model.IntersectionID) error {
	if _, ok := w.intersections[id]; !ok {
		return fmt.Errorf("intersection %d: %w", id, network.ErrIntersectionNotFound)
	}

	for _, resID := range w.ResidenceIDs() {
		if w.residences[resID].Intersection == id {
			w.RemoveResidence(resID)
		}
	}
	for _, facID := range w.FactoryIDs() {
		if w.factories[facID].Intersection == id {
			w.RemoveFactory(facID)
		}
	}
	for _, shopID := range w.ShopIDs() {
		if w.shops[shopID].Intersection == id {
			w.RemoveShop(shopID)
		}
	}

	delete(w.intersections, id)
	removedRoads, displaced, err := w.net.RemoveIntersection(id)
	if err != nil {
		return err
	}
	for _, car := range displaced {
		w.despawnCar(car, "intersection removed")
	}
	rerouted := w.RecalculatePaths()
	w.recordCounts()

	w.log.Info(context.Background(), "intersection removed",
		logging.Uint64("intersection", uint64(id)),
		logging.Int("roads_removed", len(removedRoads)),
		logging.Int("cars_despawned", len(displaced)),
		logging.Int("cars_rerouted", rerouted))
	return nil
}

// RemoveResidence deletes a residence and returns the cars that were out on
// its slots. The cars keep driving; their origin reference simply dangles and
// is ignored on arrival.
func (w *World) RemoveResidence(id model.ResidenceID) []model.CarID {
	res, ok := w.residences[id]
	if !ok {
		return nil
	}
	var out []model.CarID
	for _, car := range res.Slots {
		if car != 0 {
			out = append(out, car)
		}
	}
	delete(w.residences, id)
	w.recordCounts()
	return out
}

// RemoveFactory deletes a factory. A truck already out keeps driving and
// despawns on arrival when its origin no longer resolves.
func (w *World) RemoveFactory(id model.FactoryID) {
	delete(w.factories, id)
	w.recordCounts()
}

// RemoveShop deletes a shop.
func (w *World) RemoveShop(id model.ShopID) {
	delete(w.shops, id)
	w.recordCounts()
}

// RecalculatePaths re-plans every car's remaining path from its current
// target, despawning cars whose destination became unreachable. It returns
// the number of cars rerouted.
func (w *World) RecalculatePaths() int {
	rerouted := 0
	for _, carID := range w.CarIDs() {
		car, ok := w.cars[carID]
		if !ok {
			continue
		}
		dest, ok := car.Destination()
		if !ok {
			continue
		}
		target, _ := car.NextTarget()

		newPath, ok := w.net.FindPath(target, dest)
		if !ok {
			w.despawnCar(carID, "destination unreachable")
			continue
		}
		path := make([]model.IntersectionID, 0, len(newPath)+1)
		path = append(path, target)
		path = append(path, newPath...)
		car.Path = path
		rerouted++
	}
	w.metrics.CarsRerouted(rerouted)
	return rerouted
}

// Car returns a car by id. The pointer stays owned by the world.
func (w *World) Car(id model.CarID) (*model.Car, bool) {
	car, ok := w.cars[id]
	return car, ok
}

// Intersection returns an intersection by id.
func (w *World) Intersection(id model.IntersectionID) (*model.Intersection, bool) {
	in, ok := w.intersections[id]
	return in, ok
}

// Residence returns a residence by id.
func (w *World) Residence(id model.ResidenceID) (*model.Residence, bool) {
	res, ok := w.residences[id]
	return res, ok
}

// Factory returns a factory by id.
func (w *World) Factory(id model.FactoryID) (*model.Factory, bool) {
	f, ok := w.factories[id]
	return f, ok
}

// Shop returns a shop by id.
func (w *World) Shop(id model.ShopID) (*model.Shop, bool) {
	s, ok := w.shops[id]
	return s, ok
}

// CarIDs returns all car ids sorted ascending. Iteration over entities always
// goes through a sorted id list so runs are reproducible.
func (w *World) CarIDs() []model.CarID {
	ids := make([]model.CarID, 0, len(w.cars))
	for id := range w.cars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ResidenceIDs returns all residence ids sorted ascending.
func (w *World) ResidenceIDs() []model.ResidenceID {
	ids := make([]model.ResidenceID, 0, len(w.residences))
	for id := range w.residences {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FactoryIDs returns all factory ids sorted ascending.
func (w *World) FactoryIDs() []model.FactoryID {
	ids := make([]model.FactoryID, 0, len(w.factories))
	for id := range w.factories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ShopIDs returns all shop ids sorted ascending.
func (w *World) ShopIDs() []model.ShopID {
	ids := make([]model.ShopID, 0, len(w.shops))
	for id := range w.shops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CarCount returns the number of cars in flight.
func (w *World) CarCount() int { return len(w.cars) }

// ResidenceCount returns the number of residences.
func (w *World) ResidenceCount() int { return len(w.residences) }

// FactoryCount returns the number of factories.
func (w *World) FactoryCount() int { return len(w.factories) }

// ShopCount returns the number of shops.
func (w *World) ShopCount() int { return len(w.shops) }

// DemandSnapshot aggregates the economy's pressure for display and metrics.
type DemandSnapshot struct {
	BusyResidences  int
	TotalResidences int

	FactoriesWantingWorkers int
	TrucksOut               int
	TotalFactories          int

	ShopsWantingDelivery int
	TotalShops           int
}

// Demand summarises the current economic state.
func (w *World) Demand() DemandSnapshot {
	var snap DemandSnapshot
	snap.TotalResidences = len(w.residences)
	for _, res := range w.residences {
		if res.Busy() {
			snap.BusyResidences++
		}
	}
	snap.TotalFactories = len(w.factories)
	for _, f := range w.factories {
		if f.WantsWorkers() {
			snap.FactoriesWantingWorkers++
		}
		if !f.TruckAvailable() {
			snap.TrucksOut++
		}
	}
	snap.TotalShops = len(w.shops)
	for _, s := range w.shops {
		if s.WantsDelivery() {
			snap.ShopsWantingDelivery++
		}
	}
	return snap
}

// Summary renders a one-screen textual digest of the world.
func (w *World) Summary() string {
	demand := w.Demand()
	deliveries := 0
	for _, s := range w.shops {
		deliveries += s.Received
	}
	return fmt.Sprintf(
		"t=%.2fs intersections=%d roads=%d cars=%d residences=%d (%d busy) factories=%d (%d trucks out) shops=%d (%d deliveries received)",
		w.clock,
		w.net.IntersectionCount(), w.net.RoadCount(),
		len(w.cars),
		demand.TotalResidences, demand.BusyResidences,
		demand.TotalFactories, demand.TrucksOut,
		demand.TotalShops, deliveries,
	)
}

func (w *World) recordCounts() {
	w.metrics.SetWorldCounts(
		w.net.IntersectionCount(),
		w.net.RoadCount(),
		len(w.cars),
		len(w.residences),
		len(w.factories),
		len(w.shops),
	)
}
