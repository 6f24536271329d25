package network

import "github.com/signalsfoundry/traffic-simulator/model"

// ClosestIntersection returns the intersection nearest to the given point.
// Ties resolve to the lowest id so placement is deterministic.
func (n *RoadNetwork) ClosestIntersection(pos model.Position) (model.IntersectionID, bool) {
	var (
		best     model.IntersectionID
		bestDist float64
		found    bool
	)
	for _, id := range n.IntersectionIDs() {
		d := pos.Distance(n.positions[id])
		if !found || d < bestDist {
			best, bestDist, found = id, d, true
		}
	}
	return best, found
}

// ClosestPointOnRoad projects the given point onto every road segment in the
// XZ plane and returns the owning road, the projected point, and the
// along-road distance of the nearest projection. Ties resolve to the lowest
// road id.
func (n *RoadNetwork) ClosestPointOnRoad(pos model.Position) (model.RoadID, model.Position, float64, bool) {
	var (
		bestRoad  model.RoadID
		bestPoint model.Position
		bestAlong float64
		bestDist  float64
		found     bool
	)

	for _, roadID := range n.RoadIDs() {
		road := n.roads[roadID]
		startPos, okStart := n.positions[road.Start]
		endPos, okEnd := n.positions[road.End]
		if !okStart || !okEnd {
			continue
		}

		vx := endPos.X - startPos.X
		vz := endPos.Z - startPos.Z
		lengthSq := vx*vx + vz*vz
		if lengthSq < 1e-9 {
			continue // degenerate segment
		}

		t := ((pos.X-startPos.X)*vx + (pos.Z-startPos.Z)*vz) / lengthSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}

		point := model.Position{
			X: startPos.X + t*vx,
			Y: startPos.Y,
			Z: startPos.Z + t*vz,
		}
		d := pos.Distance(point)
		if !found || d < bestDist {
			bestRoad = roadID
			bestPoint = point
			bestAlong = t * road.Length
			bestDist = d
			found = true
		}
	}

	return bestRoad, bestPoint, bestAlong, found
}
