// Package network holds the road network graph: an id-indexed directed graph
// of intersections and roads with cached shortest-path search, spatial
// placement queries, and the per-road occupancy index used for
// following-distance checks.
//
// Nodes and edges are plain maps keyed by opaque ids rather than a web of
// mutual references, so removal (and its cascades) is a matter of map
// deletions plus adjacency updates.
package network

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signalsfoundry/traffic-simulator/model"
)

var (
	// ErrIntersectionNotFound reports a stale or unknown intersection id.
	ErrIntersectionNotFound = errors.New("intersection not found")
	// ErrRoadNotFound reports a stale or unknown road id.
	ErrRoadNotFound = errors.New("road not found")
	// ErrNoRoadBetween reports that two intersections are not directly
	// connected.
	ErrNoRoadBetween = errors.New("no road between intersections")
)

// edge is one adjacency entry. Edges are kept in insertion order per node so
// path search tie-breaking is deterministic for a deterministic build order.
type edge struct {
	road   model.RoadID
	to     model.IntersectionID
	weight int64
}

// Connection pairs an outgoing road with the intersection it leads to.
type Connection struct {
	Road model.RoadID
	To   model.IntersectionID
}

// RoadNetwork is the mutable road graph. It is exclusively owned by the
// world orchestrator and mutated synchronously within a tick; there is no
// internal locking.
type RoadNetwork struct {
	roads     map[model.RoadID]model.Road
	positions map[model.IntersectionID]model.Position
	adjacency map[model.IntersectionID][]edge

	// pathCache memoises FindPath per source; any topology mutation clears
	// it wholesale. Edits are rare relative to path queries.
	pathCache map[model.IntersectionID]map[model.IntersectionID][]model.IntersectionID

	occupancy map[model.RoadID][]occupant
	seq       uint64
}

// New constructs an empty road network.
func New() *RoadNetwork {
	return &RoadNetwork{
		roads:     make(map[model.RoadID]model.Road),
		positions: make(map[model.IntersectionID]model.Position),
		adjacency: make(map[model.IntersectionID][]edge),
		pathCache: make(map[model.IntersectionID]map[model.IntersectionID][]model.IntersectionID),
		occupancy: make(map[model.RoadID][]occupant),
	}
}

// AddIntersection registers a node. Re-adding an existing id is a no-op.
func (n *RoadNetwork) AddIntersection(id model.IntersectionID, pos model.Position) {
	if _, exists := n.positions[id]; exists {
		return
	}
	n.positions[id] = pos
	n.adjacency[id] = nil
	n.invalidatePaths()
}

// HasIntersection reports whether the node exists.
func (n *RoadNetwork) HasIntersection(id model.IntersectionID) bool {
	_, ok := n.positions[id]
	return ok
}

// IntersectionPosition returns the node's position.
func (n *RoadNetwork) IntersectionPosition(id model.IntersectionID) (model.Position, bool) {
	pos, ok := n.positions[id]
	return pos, ok
}

// AddRoad registers a directed edge. Missing endpoints are created at the
// origin; the world normally adds intersections first.
func (n *RoadNetwork) AddRoad(road model.Road) {
	if !n.HasIntersection(road.Start) {
		n.AddIntersection(road.Start, model.Position{})
	}
	if !n.HasIntersection(road.End) {
		n.AddIntersection(road.End, model.Position{})
	}

	n.adjacency[road.Start] = append(n.adjacency[road.Start], edge{
		road:   road.ID,
		to:     road.End,
		weight: pathWeight(road.Length),
	})
	n.roads[road.ID] = road
	if _, ok := n.occupancy[road.ID]; !ok {
		n.occupancy[road.ID] = nil
	}
	n.invalidatePaths()
}

// Road returns the stored road data.
func (n *RoadNetwork) Road(id model.RoadID) (model.Road, bool) {
	road, ok := n.roads[id]
	return road, ok
}

// FindRoadBetween resolves the directed road from one intersection to
// another. Parallel edges resolve to the earliest-inserted road.
func (n *RoadNetwork) FindRoadBetween(from, to model.IntersectionID) (model.RoadID, error) {
	if !n.HasIntersection(from) {
		return 0, fmt.Errorf("from intersection %d: %w", from, ErrIntersectionNotFound)
	}
	if !n.HasIntersection(to) {
		return 0, fmt.Errorf("to intersection %d: %w", to, ErrIntersectionNotFound)
	}
	for _, e := range n.adjacency[from] {
		if e.to == to {
			return e.road, nil
		}
	}
	return 0, fmt.Errorf("%d -> %d: %w", from, to, ErrNoRoadBetween)
}

// ConnectedRoads lists the outgoing roads of an intersection in edge
// insertion order.
func (n *RoadNetwork) ConnectedRoads(id model.IntersectionID) ([]Connection, error) {
	if !n.HasIntersection(id) {
		return nil, fmt.Errorf("intersection %d: %w", id, ErrIntersectionNotFound)
	}
	edges := n.adjacency[id]
	conns := make([]Connection, 0, len(edges))
	for _, e := range edges {
		conns = append(conns, Connection{Road: e.road, To: e.to})
	}
	return conns, nil
}

// RoadsAt lists every road that starts or ends at the intersection, sorted
// by id.
func (n *RoadNetwork) RoadsAt(id model.IntersectionID) []model.RoadID {
	var ids []model.RoadID
	for roadID, road := range n.roads {
		if road.Start == id || road.End == id {
			ids = append(ids, roadID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RemoveRoad deletes a directed edge and returns the cars that were
// registered on it, in along-road order, so the caller can decide their
// fate.
func (n *RoadNetwork) RemoveRoad(id model.RoadID) ([]model.CarID, error) {
	road, ok := n.roads[id]
	if !ok {
		return nil, fmt.Errorf("road %d: %w", id, ErrRoadNotFound)
	}
	delete(n.roads, id)

	edges := n.adjacency[road.Start]
	for i, e := range edges {
		if e.road == id {
			n.adjacency[road.Start] = append(edges[:i], edges[i+1:]...)
			break
		}
	}

	var displaced []model.CarID
	for _, occ := range n.occupancy[id] {
		displaced = append(displaced, occ.car)
	}
	delete(n.occupancy, id)

	n.invalidatePaths()
	return displaced, nil
}

// RemoveIntersection deletes a node after removing all incident roads, so no
// half-removed edge survives. It returns the removed road ids and the union
// of their displaced cars.
func (n *RoadNetwork) RemoveIntersection(id model.IntersectionID) ([]model.RoadID, []model.CarID, error) {
	if !n.HasIntersection(id) {
		return nil, nil, fmt.Errorf("intersection %d: %w", id, ErrIntersectionNotFound)
	}

	removed := n.RoadsAt(id)
	var displaced []model.CarID
	for _, roadID := range removed {
		cars, err := n.RemoveRoad(roadID)
		if err != nil {
			return nil, nil, fmt.Errorf("cascade remove road %d: %w", roadID, err)
		}
		displaced = append(displaced, cars...)
	}

	delete(n.positions, id)
	delete(n.adjacency, id)
	n.invalidatePaths()
	return removed, displaced, nil
}

// RoadCount returns the number of directed roads.
func (n *RoadNetwork) RoadCount() int { return len(n.roads) }

// IntersectionCount returns the number of nodes.
func (n *RoadNetwork) IntersectionCount() int { return len(n.positions) }

// RoadIDs returns all road ids sorted ascending.
func (n *RoadNetwork) RoadIDs() []model.RoadID {
	ids := make([]model.RoadID, 0, len(n.roads))
	for id := range n.roads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IntersectionIDs returns all node ids sorted ascending.
func (n *RoadNetwork) IntersectionIDs() []model.IntersectionID {
	ids := make([]model.IntersectionID, 0, len(n.positions))
	for id := range n.positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (n *RoadNetwork) invalidatePaths() {
	if len(n.pathCache) > 0 {
		n.pathCache = make(map[model.IntersectionID]map[model.IntersectionID][]model.IntersectionID)
	}
}
