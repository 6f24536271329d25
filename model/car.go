package model

// Kinematics constants, in world units and seconds.
const (
	// CarLength is the physical length of a vehicle.
	CarLength = 0.5
	// SafeFollowingMultiplier scales CarLength into the minimum gap a car
	// keeps behind the vehicle ahead of it on the same road.
	SafeFollowingMultiplier = 1.5
	// IntersectionApproachDistance is how far from a road's end a car starts
	// negotiating the upcoming intersection.
	IntersectionApproachDistance = 1.0
	// LaneOffset is the perpendicular offset applied to each direction of a
	// two-way road so the lanes render distinctly.
	LaneOffset = 0.15
)

// Car is a vehicle in flight between two intersections. The road and the
// path entries are weak references into the network: if the indicated road
// vanishes under the car, the per-tick update fails gracefully and the
// orchestrator despawns the car.
type Car struct {
	ID    CarID
	Speed float64

	// CurrentRoad and DistanceAlongRoad locate the car on the network.
	// 0 <= DistanceAlongRoad <= road length; reaching the length triggers a
	// same-tick transition onto the next road.
	CurrentRoad       RoadID
	DistanceAlongRoad float64
	// StartIntersection is the start node of the current road, kept so the
	// position can be interpolated without a graph lookup.
	StartIntersection IntersectionID

	// Path is the ordered sequence of intersections still to visit, the
	// current road's end point first. It excludes the car's current
	// position. An empty path means the destination was reached.
	Path []IntersectionID

	// Position and Angle are caches recomputed every tick for consumers such
	// as a rendering layer.
	Position Position
	Angle    float64

	Kind VehicleKind
	Trip TripKind

	// OriginResidence is set for passenger cars and points back at the
	// dwelling slot that owns this car. OriginFactory is set for trucks (and
	// for worker return trips, recording where the shift happened). Both are
	// weak references, validated against the live maps before use.
	OriginResidence ResidenceID
	OriginFactory   FactoryID
}

// Destination returns the final intersection of the car's path, or false if
// the path is already empty.
func (c *Car) Destination() (IntersectionID, bool) {
	if len(c.Path) == 0 {
		return 0, false
	}
	return c.Path[len(c.Path)-1], true
}

// NextTarget returns the intersection the car is currently driving toward,
// or false if the path is empty.
func (c *Car) NextTarget() (IntersectionID, bool) {
	if len(c.Path) == 0 {
		return 0, false
	}
	return c.Path[0], true
}
