package model

// Factory economy constants.
const (
	// WorkDuration is how long a worker dwells at a factory before heading
	// home, in seconds.
	WorkDuration = 5.0
	// DefaultMaxDeliveries caps how many finished deliveries a factory can
	// hold while waiting for its truck.
	DefaultMaxDeliveries = 2
	// LaborDemandThreshold is the demand level at which a factory starts
	// requesting workers.
	LaborDemandThreshold = 10.0
	// LaborDemandPerWorker is how much demand a single worker reservation
	// satisfies. Demand is spent at reservation time, not at completion.
	LaborDemandPerWorker = 10.0
	// DefaultLaborDemandRate is how fast labor demand grows per second.
	DefaultLaborDemandRate = 1.0
)

// Worker is a resident currently on-site at a factory, counting down the
// remainder of their shift. Car is the outbound car that brought the worker;
// the owning residence slot keeps holding that id for the whole round trip,
// so the orchestrator needs it back when it spawns the return leg.
type Worker struct {
	Residence ResidenceID
	Car       CarID
	Remaining float64
}

// Factory turns worker shifts into deliveries and dispatches them to shops
// with a single truck. While the truck is out, the factory is closed: it
// accepts no new workers and produces no new deliveries.
type Factory struct {
	ID           FactoryID
	Intersection IntersectionID

	Workers []Worker

	// LaborDemand grows by LaborDemandRate every second and is reduced by
	// LaborDemandPerWorker whenever a residence reserves a worker slot.
	LaborDemand     float64
	LaborDemandRate float64

	// DeliveriesReady counts finished deliveries waiting for the truck,
	// capped at MaxDeliveries.
	DeliveriesReady int
	MaxDeliveries   int

	// Truck is the dispatched delivery car, or zero when the truck is home.
	Truck CarID
}

// NewFactory constructs an idle factory with its truck at home.
func NewFactory(id FactoryID, intersection IntersectionID) *Factory {
	return &Factory{
		ID:              id,
		Intersection:    intersection,
		MaxDeliveries:   DefaultMaxDeliveries,
		LaborDemandRate: DefaultLaborDemandRate,
	}
}

// TruckAvailable reports whether the truck is home.
func (f *Factory) TruckAvailable() bool {
	return f.Truck == 0
}

// CanAcceptWorkers reports whether the factory is open for new workers.
// Workers are only accepted while the truck is home.
func (f *Factory) CanAcceptWorkers() bool {
	return f.TruckAvailable()
}

// WantsWorkers reports whether labor demand has reached the request
// threshold and the factory is open.
func (f *Factory) WantsWorkers() bool {
	return f.CanAcceptWorkers() && f.LaborDemand >= LaborDemandThreshold
}

// TryReserveWorker commits one worker slot to a residence. The reservation
// spends LaborDemandPerWorker of demand immediately; if the subsequent spawn
// fails the caller must roll it back with CancelReservation.
func (f *Factory) TryReserveWorker() bool {
	if !f.WantsWorkers() {
		return false
	}
	f.LaborDemand -= LaborDemandPerWorker
	return true
}

// CancelReservation returns the demand spent by a reservation whose car
// could not be spawned, so economic state does not leak on pathfinding
// failure.
func (f *Factory) CancelReservation() {
	f.LaborDemand += LaborDemandPerWorker
}

// ReceiveWorker enrols an arrived worker for a full shift. It reports false
// when the factory is closed (truck out); the caller then sends the worker
// back home.
func (f *Factory) ReceiveWorker(residence ResidenceID, car CarID) bool {
	if !f.CanAcceptWorkers() {
		return false
	}
	f.Workers = append(f.Workers, Worker{Residence: residence, Car: car, Remaining: WorkDuration})
	return true
}

// Update grows labor demand and counts down the on-site workers. Workers
// whose shift ends are removed and returned so the orchestrator can send
// them home; each finished shift adds a ready delivery while below the cap
// and while the truck is home.
func (f *Factory) Update(delta float64) []Worker {
	f.LaborDemand += f.LaborDemandRate * delta

	var done []Worker
	remaining := f.Workers[:0]
	for _, w := range f.Workers {
		w.Remaining -= delta
		if w.Remaining <= 0 {
			done = append(done, w)
			if f.TruckAvailable() && f.DeliveriesReady < f.MaxDeliveries {
				f.DeliveriesReady++
			}
			continue
		}
		remaining = append(remaining, w)
	}
	f.Workers = remaining
	return done
}

// TakeDelivery consumes one ready delivery for truck dispatch. It succeeds
// only while a delivery is ready and the truck is home; consumption and the
// truck spawn are one atomic decision, so a failed spawn must call
// ReturnDelivery.
func (f *Factory) TakeDelivery() bool {
	if f.DeliveriesReady == 0 || !f.TruckAvailable() {
		return false
	}
	f.DeliveriesReady--
	return true
}

// ReturnDelivery rolls back a TakeDelivery whose truck could not be spawned.
func (f *Factory) ReturnDelivery() {
	if f.DeliveriesReady < f.MaxDeliveries {
		f.DeliveriesReady++
	}
}
