package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimulationCollector bundles the Prometheus metrics for the simulation world
// and satisfies the world's MetricsRecorder interface, so entity mutators
// drive the gauges directly.
type SimulationCollector struct {
	gatherer prometheus.Gatherer

	Intersections prometheus.Gauge
	Roads         prometheus.Gauge
	Cars          prometheus.Gauge
	Residences    prometheus.Gauge
	Factories     prometheus.Gauge
	Shops         prometheus.Gauge

	CarsSpawned   *prometheus.CounterVec
	CarsArrived   *prometheus.CounterVec
	CarsDespawned *prometheus.CounterVec
	Deliveries    prometheus.Counter
	WorkerTrips   prometheus.Counter
	ReroutedCars  prometheus.Counter
}

// NewSimulationCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Re-registration against the same registry hands back the existing
// collectors.
func NewSimulationCollector(reg prometheus.Registerer) (*SimulationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimulationCollector{gatherer: gatherer}

	gauges := []struct {
		target *prometheus.Gauge
		name   string
		help   string
	}{
		{&c.Intersections, "sim_intersections", "Current number of intersections in the road network."},
		{&c.Roads, "sim_roads", "Current number of directed roads in the road network."},
		{&c.Cars, "sim_cars", "Current number of vehicles in flight."},
		{&c.Residences, "sim_residences", "Current number of residences."},
		{&c.Factories, "sim_factories", "Current number of factories."},
		{&c.Shops, "sim_shops", "Current number of shops."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: g.name,
			Help: g.help,
		}), g.name)
		if err != nil {
			return nil, err
		}
		*g.target = gauge
	}

	spawned, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_cars_spawned_total",
		Help: "Total vehicles spawned, labeled by vehicle kind.",
	}, []string{"kind"}), "sim_cars_spawned_total")
	if err != nil {
		return nil, err
	}
	c.CarsSpawned = spawned

	arrived, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_cars_arrived_total",
		Help: "Total vehicles that reached their destination, labeled by vehicle kind.",
	}, []string{"kind"}), "sim_cars_arrived_total")
	if err != nil {
		return nil, err
	}
	c.CarsArrived = arrived

	despawned, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_cars_despawned_total",
		Help: "Total vehicles removed before arrival, labeled by reason.",
	}, []string{"reason"}), "sim_cars_despawned_total")
	if err != nil {
		return nil, err
	}
	c.CarsDespawned = despawned

	deliveries, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_deliveries_completed_total",
		Help: "Total shop deliveries completed by trucks.",
	}), "sim_deliveries_completed_total")
	if err != nil {
		return nil, err
	}
	c.Deliveries = deliveries

	trips, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_worker_trips_completed_total",
		Help: "Total worker commute round trips completed.",
	}), "sim_worker_trips_completed_total")
	if err != nil {
		return nil, err
	}
	c.WorkerTrips = trips

	rerouted, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_cars_rerouted_total",
		Help: "Total cars re-planned after a road network edit.",
	}), "sim_cars_rerouted_total")
	if err != nil {
		return nil, err
	}
	c.ReroutedCars = rerouted

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimulationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetWorldCounts drives the entity gauges from the world's mutators.
func (c *SimulationCollector) SetWorldCounts(intersections, roads, cars, residences, factories, shops int) {
	if c == nil {
		return
	}
	c.Intersections.Set(float64(intersections))
	c.Roads.Set(float64(roads))
	c.Cars.Set(float64(cars))
	c.Residences.Set(float64(residences))
	c.Factories.Set(float64(factories))
	c.Shops.Set(float64(shops))
}

// CarSpawned counts one spawned vehicle of the given kind.
func (c *SimulationCollector) CarSpawned(kind string) {
	if c == nil || c.CarsSpawned == nil {
		return
	}
	c.CarsSpawned.WithLabelValues(kind).Inc()
}

// CarArrived counts one arrival of the given kind.
func (c *SimulationCollector) CarArrived(kind string) {
	if c == nil || c.CarsArrived == nil {
		return
	}
	c.CarsArrived.WithLabelValues(kind).Inc()
}

// CarDespawned counts one pre-arrival removal with its reason.
func (c *SimulationCollector) CarDespawned(reason string) {
	if c == nil || c.CarsDespawned == nil {
		return
	}
	c.CarsDespawned.WithLabelValues(reason).Inc()
}

// DeliveryCompleted counts one shop delivery.
func (c *SimulationCollector) DeliveryCompleted() {
	if c == nil || c.Deliveries == nil {
		return
	}
	c.Deliveries.Inc()
}

// WorkerTripCompleted counts one finished commute round trip.
func (c *SimulationCollector) WorkerTripCompleted() {
	if c == nil || c.WorkerTrips == nil {
		return
	}
	c.WorkerTrips.Inc()
}

// CarsRerouted counts cars re-planned by a network edit.
func (c *SimulationCollector) CarsRerouted(count int) {
	if c == nil || c.ReroutedCars == nil || count <= 0 {
		return
	}
	c.ReroutedCars.Add(float64(count))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
