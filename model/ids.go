package model

// SimID is an opaque handle for a simulation entity. IDs are allocated from a
// single monotonically increasing counter owned by the world, so a SimID is
// unique across all entity kinds in one run. The zero value is never
// allocated and means "none".
type SimID uint64

// None is the unallocated SimID.
const None SimID = 0

// Typed wrappers keep the different entity namespaces from being mixed up at
// compile time. All of them share the world's SimID counter.
type (
	IntersectionID SimID
	RoadID         SimID
	CarID          SimID
	ResidenceID    SimID
	FactoryID      SimID
	ShopID         SimID
)

// VehicleKind distinguishes passenger cars from delivery trucks. Kinematics
// are identical for both; only spawn parameters and arrival handling differ.
type VehicleKind int

const (
	KindCar VehicleKind = iota
	KindTruck
)

func (k VehicleKind) String() string {
	switch k {
	case KindCar:
		return "car"
	case KindTruck:
		return "truck"
	default:
		return "unknown"
	}
}

// TripKind marks whether a vehicle is heading to its destination or back to
// its origin.
type TripKind int

const (
	TripOutbound TripKind = iota
	TripReturn
)

func (t TripKind) String() string {
	switch t {
	case TripOutbound:
		return "outbound"
	case TripReturn:
		return "return"
	default:
		return "unknown"
	}
}
