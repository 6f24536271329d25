package network

import (
	"container/heap"
	"math"

	"github.com/signalsfoundry/traffic-simulator/model"
)

// pathWeight scales a road length to an integer edge weight so the search
// stays exact. Zero-length roads still cost one unit.
func pathWeight(length float64) int64 {
	w := int64(math.Round(length * 100))
	if w < 1 {
		w = 1
	}
	return w
}

// FindPath returns the cheapest sequence of intersections from start to end,
// excluding the start itself, using uniform-cost search over the integer
// edge weights. Ties are broken by edge insertion order. FindPath(x, x)
// returns an empty path. Absence of a path is a normal outcome, reported as
// (nil, false).
//
// Results are memoised per source; every topology mutation clears the cache.
func (n *RoadNetwork) FindPath(start, end model.IntersectionID) ([]model.IntersectionID, bool) {
	if start == end {
		if !n.HasIntersection(start) {
			return nil, false
		}
		return []model.IntersectionID{}, true
	}
	if !n.HasIntersection(start) || !n.HasIntersection(end) {
		return nil, false
	}

	if byDest, ok := n.pathCache[start]; ok {
		if path, ok := byDest[end]; ok {
			return clonePath(path), true
		}
	}

	path, ok := n.search(start, end)
	if !ok {
		return nil, false
	}

	byDest, exists := n.pathCache[start]
	if !exists {
		byDest = make(map[model.IntersectionID][]model.IntersectionID)
		n.pathCache[start] = byDest
	}
	byDest[end] = path

	return clonePath(path), true
}

// search runs Dijkstra from start until end is settled. The priority queue
// breaks cost ties by push order, which combined with insertion-ordered
// adjacency lists makes the chosen path deterministic.
func (n *RoadNetwork) search(start, end model.IntersectionID) ([]model.IntersectionID, bool) {
	dist := map[model.IntersectionID]int64{start: 0}
	prev := make(map[model.IntersectionID]model.IntersectionID)
	settled := make(map[model.IntersectionID]bool)

	pq := &nodeQueue{}
	heap.Init(pq)
	pq.push(start, 0)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(nodeItem)
		if settled[item.node] {
			continue
		}
		settled[item.node] = true

		if item.node == end {
			return reconstruct(prev, start, end), true
		}

		for _, e := range n.adjacency[item.node] {
			if settled[e.to] {
				continue
			}
			candidate := item.cost + e.weight
			if best, seen := dist[e.to]; !seen || candidate < best {
				dist[e.to] = candidate
				prev[e.to] = item.node
				pq.push(e.to, candidate)
			}
		}
	}
	return nil, false
}

func reconstruct(prev map[model.IntersectionID]model.IntersectionID, start, end model.IntersectionID) []model.IntersectionID {
	var reversed []model.IntersectionID
	for node := end; node != start; node = prev[node] {
		reversed = append(reversed, node)
	}
	path := make([]model.IntersectionID, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// clonePath copies a cached path so callers can consume it destructively
// (cars pop visited intersections off their path).
func clonePath(path []model.IntersectionID) []model.IntersectionID {
	out := make([]model.IntersectionID, len(path))
	copy(out, path)
	return out
}

// nodeItem is a priority-queue entry. order records push sequence for
// deterministic tie-breaking on equal cost.
type nodeItem struct {
	node  model.IntersectionID
	cost  int64
	order uint64
}

type nodeQueue struct {
	items []nodeItem
	next  uint64
}

func (q *nodeQueue) push(node model.IntersectionID, cost int64) {
	heap.Push(q, nodeItem{node: node, cost: cost, order: q.next})
	q.next++
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	if q.items[i].cost != q.items[j].cost {
		return q.items[i].cost < q.items[j].cost
	}
	return q.items[i].order < q.items[j].order
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x any) { q.items = append(q.items, x.(nodeItem)) }

func (q *nodeQueue) Pop() any {
	old := q.items
	item := old[len(old)-1]
	q.items = old[:len(old)-1]
	return item
}
