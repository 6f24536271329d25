package model

// Road is a directed edge between two intersections. A "two-way" road is
// modelled as two directed Roads sharing a visual pairing but with fully
// independent logical state; TwoWay only tells the renderer to offset the
// lane.
type Road struct {
	ID    RoadID
	Start IntersectionID
	End   IntersectionID

	// Length and Angle are derived from the endpoint positions at creation
	// time and never change afterwards.
	Length float64
	Angle  float64

	TwoWay bool
}

// NewRoad builds a road between two intersections, deriving its length and
// bearing from the endpoint positions.
func NewRoad(id RoadID, start, end IntersectionID, startPos, endPos Position, twoWay bool) Road {
	return Road{
		ID:     id,
		Start:  start,
		End:    end,
		Length: startPos.Distance(endPos),
		Angle:  startPos.AngleTo(endPos),
		TwoWay: twoWay,
	}
}
