package interchanges

import (
	"container/heap"

	"github.com/pkg/errors"
)

// RouteEntry is shortest path tree record for single node
type RouteEntry struct {
	// Distance from source (kilometers)
	Distance float64
	// Predecessor on shortest path. Empty for source.
	Predecessor string
}

// Route is result of single-source shortest path search. Nodes which were not reached are absent.
type Route struct {
	Source  string
	entries map[string]RouteEntry
}

// Entry returns record for given node
func (route Route) Entry(node string) (RouteEntry, bool) {
	entry, ok := route.entries[node]
	return entry, ok
}

// Len returns number of reached nodes (source included)
func (route Route) Len() int {
	return len(route.entries)
}

// WeightFunc returns non-negative weight of an edge
type WeightFunc func(edge EdgeKey) float64

// EdgeFunc enumerates edges incident to a node
type EdgeFunc func(node string) []EdgeKey

// Dijkstra runs single-source shortest path search parametrized by edge weight and neighbour enumeration functions.
func Dijkstra(source string, weightFn WeightFunc, edgeFn EdgeFunc) (Route, error) {
	route := Route{
		Source:  source,
		entries: map[string]RouteEntry{source: {Distance: 0}},
	}
	visited := make(map[string]struct{})

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: source, priority: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}
		currentDistance := route.entries[current].Distance

		for _, edge := range edgeFn(current) {
			weight := weightFn(edge)
			if weight < 0 {
				return Route{}, errors.Errorf("Edge %s-%s has negative weight %f", edge.V, edge.W, weight)
			}
			neighbour := edge.Other(current)
			if _, ok := visited[neighbour]; ok {
				continue
			}
			tentative := currentDistance + weight
			if old, ok := route.entries[neighbour]; !ok || tentative < old.Distance {
				route.entries[neighbour] = RouteEntry{Distance: tentative, Predecessor: current}
				heap.Push(pq, &pqItem{node: neighbour, priority: tentative})
			}
		}
	}
	return route, nil
}

// ShortestPath runs Dijkstra over the graph using edge weights
func ShortestPath(g *Graph, source string) (Route, error) {
	weightFn := func(edge EdgeKey) float64 {
		label, _ := g.Edge(edge.V, edge.W)
		return label.Weight
	}
	return Dijkstra(source, weightFn, g.NodeEdges)
}

type pqItem struct {
	node     string
	priority float64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].node < pq[j].node
	}
	return pq[i].priority < pq[j].priority
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
