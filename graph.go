package interchanges

import (
	"sort"
)

// GeoNode is a graph vertex: stringified OSM node ID and its position
type GeoNode struct {
	ID    string
	Point GeoPoint
}

// EdgeKey identifies undirected edge. V <= W always, so {v, w} and {w, v} produce same key
type EdgeKey struct {
	V string
	W string
}

func newEdgeKey(v, w string) EdgeKey {
	if w < v {
		v, w = w, v
	}
	return EdgeKey{V: v, W: w}
}

// Other returns opposite endpoint of the edge
func (key EdgeKey) Other(node string) string {
	if key.V == node {
		return key.W
	}
	return key.V
}

// EdgeLabel is payload of an edge
type EdgeLabel struct {
	// Great circle distance between endpoints (kilometers)
	Weight         float64
	IsElevator     bool
	ElevatorID     string
	ElevatorStatus ElevatorStatus
}

// Graph is undirected weighted graph. Edges are keyed by unordered endpoint pair, so there is at most one edge between two nodes.
type Graph struct {
	nodes     map[string]GeoPoint
	edges     map[EdgeKey]EdgeLabel
	adjacency map[string]map[string]struct{}
}

// NewGraph returns empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]GeoPoint),
		edges:     make(map[EdgeKey]EdgeLabel),
		adjacency: make(map[string]map[string]struct{}),
	}
}

// AddNode adds node if it has not been seen yet. Position of existing node is never changed.
func (g *Graph) AddNode(node GeoNode) bool {
	if _, ok := g.nodes[node.ID]; ok {
		return false
	}
	g.nodes[node.ID] = node.Point
	g.adjacency[node.ID] = make(map[string]struct{})
	return true
}

// Node returns position of the node
func (g *Graph) Node(id string) (GeoPoint, bool) {
	pt, ok := g.nodes[id]
	return pt, ok
}

// HasNode reports whether node is present
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// SetEdge creates or overwrites edge between v and w. Both nodes must be added before.
func (g *Graph) SetEdge(v, w string, label EdgeLabel) {
	key := newEdgeKey(v, w)
	g.edges[key] = label
	g.adjacency[v][w] = struct{}{}
	g.adjacency[w][v] = struct{}{}
}

// Edge returns label of edge between v and w (order does not matter)
func (g *Graph) Edge(v, w string) (EdgeLabel, bool) {
	label, ok := g.edges[newEdgeKey(v, w)]
	return label, ok
}

// RemoveEdge removes edge between v and w. Nodes stay in graph.
func (g *Graph) RemoveEdge(v, w string) {
	key := newEdgeKey(v, w)
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	delete(g.adjacency[v], w)
	delete(g.adjacency[w], v)
}

// NodeEdges returns edges incident to the node sorted by opposite endpoint. Returns nil for unknown node.
func (g *Graph) NodeEdges(node string) []EdgeKey {
	neighbours, ok := g.adjacency[node]
	if !ok {
		return nil
	}
	others := make([]string, 0, len(neighbours))
	for other := range neighbours {
		others = append(others, other)
	}
	sort.Strings(others)
	keys := make([]EdgeKey, len(others))
	for i, other := range others {
		keys[i] = newEdgeKey(node, other)
	}
	return keys
}

// Edges returns all edges in deterministic order
func (g *Graph) Edges() []EdgeKey {
	keys := make([]EdgeKey, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].V != keys[j].V {
			return keys[i].V < keys[j].V
		}
		return keys[i].W < keys[j].W
	})
	return keys
}

// NodesNum returns number of nodes
func (g *Graph) NodesNum() int {
	return len(g.nodes)
}

// EdgesNum returns number of edges
func (g *Graph) EdgesNum() int {
	return len(g.edges)
}

// Clone returns deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		nodes:     make(map[string]GeoPoint, len(g.nodes)),
		edges:     make(map[EdgeKey]EdgeLabel, len(g.edges)),
		adjacency: make(map[string]map[string]struct{}, len(g.adjacency)),
	}
	for id, pt := range g.nodes {
		clone.nodes[id] = pt
	}
	for key, label := range g.edges {
		clone.edges[key] = label
	}
	for id, neighbours := range g.adjacency {
		copied := make(map[string]struct{}, len(neighbours))
		for other := range neighbours {
			copied[other] = struct{}{}
		}
		clone.adjacency[id] = copied
	}
	return clone
}

// WithoutEdges returns copy of the graph with every edge matching the predicate removed. Source graph is untouched.
func (g *Graph) WithoutEdges(filter func(key EdgeKey, label EdgeLabel) bool) *Graph {
	clone := g.Clone()
	for _, key := range clone.Edges() {
		if filter(key, clone.edges[key]) {
			clone.RemoveEdge(key.V, key.W)
		}
	}
	return clone
}
