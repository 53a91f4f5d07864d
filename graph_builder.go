package interchanges

import (
	"context"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Graphs holds both routing graph variants of a single query.
// Edges of OnlyActive are always a subset of edges of ActiveAndUnknown.
type Graphs struct {
	// Elevator edges with confirmed active or unknown status
	ActiveAndUnknown *Graph
	// Elevator edges with confirmed active status only
	OnlyActive *Graph
}

// GraphBuilder builds accessibility graphs out of flattened map elements
type GraphBuilder struct {
	crosswalk ElevatorCrosswalk
	logger    zerolog.Logger
}

// NewGraphBuilder returns builder which resolves elevators through given crosswalk
func NewGraphBuilder(crosswalk ElevatorCrosswalk, logger zerolog.Logger) *GraphBuilder {
	return &GraphBuilder{
		crosswalk: crosswalk,
		logger:    logger,
	}
}

// Build constructs both graph variants. fetch is invoked exactly once.
func (builder *GraphBuilder) Build(ctx context.Context, elements []Element, fetch FetchStatusFunc) (Graphs, error) {
	base := builder.buildBase(elements)

	elevatorNodes := make([]Element, 0)
	for _, el := range elements {
		if el.IsElevator() {
			elevatorNodes = append(elevatorNodes, el)
		}
	}
	matched := ResolveFacilityIDs(elevatorNodes, builder.crosswalk)
	withStatus, err := AttachStatus(ctx, matched, fetch)
	if err != nil {
		return Graphs{}, errors.Wrap(err, "Can't attach elevators status")
	}
	statusByNode := make(map[osm.NodeID]Elevator, len(withStatus))
	for _, elevator := range withStatus {
		if _, ok := statusByNode[elevator.NodeID]; !ok {
			statusByNode[elevator.NodeID] = elevator
		}
	}

	annotated, removed := 0, 0
	for _, node := range elevatorNodes {
		elevator, ok := statusByNode[osm.NodeID(node.ID)]
		for _, key := range base.NodeEdges(nodeKey(node.ID)) {
			// Missing live data is treated the same way as confirmed broken elevator
			if !ok || elevator.Status.IsInactive() {
				base.RemoveEdge(key.V, key.W)
				removed++
				continue
			}
			label, _ := base.Edge(key.V, key.W)
			label.IsElevator = true
			label.ElevatorStatus = elevator.Status
			label.ElevatorID = elevator.FacilityID
			base.SetEdge(key.V, key.W, label)
			annotated++
		}
	}

	onlyActive := base.WithoutEdges(func(_ EdgeKey, label EdgeLabel) bool {
		return label.IsElevator && !label.ElevatorStatus.IsActive()
	})

	builder.logger.Debug().
		Int("nodes", base.NodesNum()).
		Int("edges", base.EdgesNum()).
		Int("edges_only_active", onlyActive.EdgesNum()).
		Int("elevators", len(elevatorNodes)).
		Int("elevators_matched", len(matched)).
		Int("elevators_with_status", len(withStatus)).
		Int("elevator_edges_annotated", annotated).
		Int("elevator_edges_removed", removed).
		Msg("Accessibility graphs built")

	return Graphs{
		ActiveAndUnknown: base,
		OnlyActive:       onlyActive,
	}, nil
}

// buildBase adds an edge for every accessible pair of consecutive way nodes. Later ways overwrite earlier edges between same nodes.
func (builder *GraphBuilder) buildBase(elements []Element) *Graph {
	graph := NewGraph()
	for _, way := range elements {
		if way.Type != osm.TypeWay {
			continue
		}
		segments, ok := waySegments(way)
		if !ok {
			builder.logger.Warn().
				Int64("way_id", way.ID).
				Int("nodes", len(way.Nodes)).
				Int("geometry", len(way.Geometry)).
				Msg("Way geometry does not match its nodes, skipping")
			continue
		}
		for _, segment := range segments {
			if !IsAllowed(segment, AccessOptions{AllowSteps: false}) {
				continue
			}
			graph.AddNode(segment.From)
			graph.AddNode(segment.To)
			graph.SetEdge(segment.From.ID, segment.To.ID, EdgeLabel{
				Weight: greatCircleDistance(segment.From.Point, segment.To.Point),
			})
		}
	}
	return graph
}

// waySegments splits way into pairs of consecutive nodes
func waySegments(way Element) ([]WaySegment, bool) {
	if len(way.Nodes) != len(way.Geometry) {
		return nil, false
	}
	if len(way.Nodes) < 2 {
		return nil, true
	}
	segments := make([]WaySegment, 0, len(way.Nodes)-1)
	for i := 1; i < len(way.Nodes); i++ {
		segments = append(segments, WaySegment{
			WayID: osm.WayID(way.ID),
			From:  GeoNode{ID: nodeKey(int64(way.Nodes[i-1])), Point: way.Geometry[i-1]},
			To:    GeoNode{ID: nodeKey(int64(way.Nodes[i])), Point: way.Geometry[i]},
			Tags:  way.Tags,
		})
	}
	return segments, true
}

// nodeKey returns graph node ID for OSM node ID
func nodeKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// BuildGraphs is a shorthand for NewGraphBuilder(crosswalk, zerolog.Nop()).Build(ctx, elements, fetch)
func BuildGraphs(ctx context.Context, elements []Element, crosswalk ElevatorCrosswalk, fetch FetchStatusFunc) (Graphs, error) {
	return NewGraphBuilder(crosswalk, zerolog.Nop()).Build(ctx, elements, fetch)
}
