package model

// DefaultCrossingTime is how long a car dwells in an intersection before it
// may proceed, in seconds.
const DefaultCrossingTime = 0.25

// Intersection is a graph node where roads meet. It doubles as a
// simulation-level mutual-exclusion resource: at most one car may cross at a
// time. This is not a thread-synchronization primitive; all access happens
// sequentially inside one tick.
type Intersection struct {
	ID       IntersectionID
	Position Position

	// OccupiedBy is the car currently holding the crossing, or zero.
	OccupiedBy CarID
	// OccupationTimer is how long the current holder has held the crossing.
	// It resets whenever the occupant changes and only advances while an
	// occupant is set.
	OccupationTimer float64
	// CrossingTime is how long a holder must dwell before it may proceed.
	CrossingTime float64
}

// NewIntersection constructs a free intersection at the given position.
func NewIntersection(id IntersectionID, pos Position) *Intersection {
	return &Intersection{
		ID:           id,
		Position:     pos,
		CrossingTime: DefaultCrossingTime,
	}
}

// IsHeldBy reports whether the given car currently holds the crossing.
func (in *Intersection) IsHeldBy(car CarID) bool {
	return in.OccupiedBy == car && car != 0
}

// CanProceed handles both acquiring the crossing and checking dwell time.
// A free intersection is acquired by the caller, but the call still reports
// false: crossing is never instantaneous. The holder may proceed once the
// timer reaches the crossing time. Any other car must wait.
func (in *Intersection) CanProceed(car CarID) bool {
	switch {
	case in.OccupiedBy == 0:
		in.OccupiedBy = car
		in.OccupationTimer = 0
		return false
	case in.OccupiedBy == car:
		return in.OccupationTimer >= in.CrossingTime
	default:
		return false
	}
}

// Release clears the occupant, but only if it is the given car. A stale
// release from a car that already lost the crossing must not clobber a newer
// holder.
func (in *Intersection) Release(car CarID) {
	if in.OccupiedBy == car {
		in.OccupiedBy = 0
		in.OccupationTimer = 0
	}
}

// UpdateTimer advances the occupation timer. It has no effect while the
// intersection is free.
func (in *Intersection) UpdateTimer(delta float64) {
	if in.OccupiedBy != 0 {
		in.OccupationTimer += delta
	}
}
