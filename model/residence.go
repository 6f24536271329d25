package model

// ResidenceSlots is the number of dwelling units per residence; each unit
// owns at most one outbound car at a time.
const ResidenceSlots = 10

// Residence is a building whose dwelling units send workers to factories.
// Each slot holds the id of the car currently out on that unit's round trip,
// or zero when the unit is idle.
type Residence struct {
	ID           ResidenceID
	Intersection IntersectionID
	Slots        []CarID
}

// NewResidence constructs a residence with all slots idle.
func NewResidence(id ResidenceID, intersection IntersectionID) *Residence {
	return &Residence{
		ID:           id,
		Intersection: intersection,
		Slots:        make([]CarID, ResidenceSlots),
	}
}

// FreeSlots returns the indices of slots with no car out.
func (r *Residence) FreeSlots() []int {
	var free []int
	for i, car := range r.Slots {
		if car == 0 {
			free = append(free, i)
		}
	}
	return free
}

// SetSlot records a car as owned by the given slot.
func (r *Residence) SetSlot(slot int, car CarID) {
	if slot >= 0 && slot < len(r.Slots) {
		r.Slots[slot] = car
	}
}

// ClearCar empties the slot holding the given car id. It reports whether a
// slot was cleared.
func (r *Residence) ClearCar(car CarID) bool {
	for i, held := range r.Slots {
		if held == car {
			r.Slots[i] = 0
			return true
		}
	}
	return false
}

// ReplaceCar re-points the slot holding old at the new car id, keeping the
// slot owned across the worker's round trip (the return leg is a fresh car).
// It reports whether a slot was updated.
func (r *Residence) ReplaceCar(old, replacement CarID) bool {
	for i, held := range r.Slots {
		if held == old {
			r.Slots[i] = replacement
			return true
		}
	}
	return false
}

// HasCar reports whether any slot holds the given car id.
func (r *Residence) HasCar(car CarID) bool {
	for _, held := range r.Slots {
		if held == car {
			return true
		}
	}
	return false
}

// Busy reports whether at least one slot has a car out.
func (r *Residence) Busy() bool {
	for _, held := range r.Slots {
		if held != 0 {
			return true
		}
	}
	return false
}
