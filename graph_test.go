package interchanges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineGraph(ids ...string) *Graph {
	g := NewGraph()
	for i, id := range ids {
		g.AddNode(GeoNode{ID: id, Point: GeoPoint{Lat: 51.0, Lon: 12.0 + float64(i)*0.001}})
	}
	for i := 1; i < len(ids); i++ {
		g.SetEdge(ids[i-1], ids[i], EdgeLabel{Weight: 1})
	}
	return g
}

func TestGraphUndirectedEdges(t *testing.T) {
	g := lineGraph("a", "b", "c")
	label, ok := g.Edge("b", "a")
	require.True(t, ok)
	assert.Equal(t, 1.0, label.Weight)

	// Overwrite: last write wins regardless of direction
	g.SetEdge("b", "a", EdgeLabel{Weight: 2, IsElevator: true, ElevatorID: "1"})
	label, _ = g.Edge("a", "b")
	assert.Equal(t, 2.0, label.Weight)
	assert.Equal(t, 2, g.EdgesNum())

	assert.Equal(t, []EdgeKey{{V: "a", W: "b"}, {V: "b", W: "c"}}, g.NodeEdges("b"))
	assert.Nil(t, g.NodeEdges("z"))

	g.RemoveEdge("c", "b")
	_, ok = g.Edge("b", "c")
	assert.False(t, ok)
	assert.True(t, g.HasNode("c"))
	assert.Empty(t, g.NodeEdges("c"))
	// Removing missing edge is no-op
	g.RemoveEdge("a", "c")
	assert.Equal(t, 1, g.EdgesNum())
}

func TestGraphAddNodeKeepsPosition(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.AddNode(GeoNode{ID: "1", Point: GeoPoint{Lat: 1, Lon: 1}}))
	assert.False(t, g.AddNode(GeoNode{ID: "1", Point: GeoPoint{Lat: 2, Lon: 2}}))
	pt, ok := g.Node("1")
	require.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 1, Lon: 1}, pt)
	assert.Equal(t, 1, g.NodesNum())
}

func TestGraphWithoutEdges(t *testing.T) {
	g := lineGraph("a", "b", "c")
	g.SetEdge("b", "c", EdgeLabel{Weight: 1, IsElevator: true})
	filtered := g.WithoutEdges(func(_ EdgeKey, label EdgeLabel) bool {
		return label.IsElevator
	})
	assert.Equal(t, 1, filtered.EdgesNum())
	assert.Equal(t, 3, filtered.NodesNum())
	// Source graph is untouched
	assert.Equal(t, 2, g.EdgesNum())
	_, ok := g.Edge("b", "c")
	assert.True(t, ok)
}

func TestGraphCloneIsDeep(t *testing.T) {
	g := lineGraph("a", "b")
	clone := g.Clone()
	clone.RemoveEdge("a", "b")
	clone.AddNode(GeoNode{ID: "c"})
	assert.Equal(t, 1, g.EdgesNum())
	assert.False(t, g.HasNode("c"))
	assert.Equal(t, []EdgeKey{{V: "a", W: "b"}}, g.NodeEdges("a"))
}
