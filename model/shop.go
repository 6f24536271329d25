package model

// Shop economy constants.
const (
	// ProductDemandThreshold is the demand level at which a shop becomes an
	// eligible delivery target.
	ProductDemandThreshold = 10.0
	// ProductDemandPerDelivery is how much demand one delivery satisfies.
	ProductDemandPerDelivery = 10.0
	// DefaultProductDemandRate is how fast product demand grows per second.
	DefaultProductDemandRate = 1.0
	// DefaultProductDemand is the demand a freshly built shop starts with,
	// so it attracts its first delivery without waiting for growth.
	DefaultProductDemand = 10.0
)

// Shop passively receives deliveries from factory trucks. Its product demand
// grows over time and drives when factories dispatch.
type Shop struct {
	ID           ShopID
	Intersection IntersectionID

	// Received counts deliveries accepted so far.
	Received int

	ProductDemand     float64
	ProductDemandRate float64
}

// NewShop constructs a shop that immediately wants its first delivery.
func NewShop(id ShopID, intersection IntersectionID) *Shop {
	return &Shop{
		ID:                id,
		Intersection:      intersection,
		ProductDemand:     DefaultProductDemand,
		ProductDemandRate: DefaultProductDemandRate,
	}
}

// WantsDelivery reports whether demand has reached the delivery threshold.
func (s *Shop) WantsDelivery() bool {
	return s.ProductDemand >= ProductDemandThreshold
}

// Update grows product demand.
func (s *Shop) Update(delta float64) {
	s.ProductDemand += s.ProductDemandRate * delta
}

// ReceiveDelivery accepts one delivery, reducing demand and floors it at
// zero.
func (s *Shop) ReceiveDelivery() {
	s.Received++
	s.ProductDemand -= ProductDemandPerDelivery
	if s.ProductDemand < 0 {
		s.ProductDemand = 0
	}
}
