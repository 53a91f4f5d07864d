package interchanges

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CHExporter writes accessibility graph as contraction hierarchies CSV files:
// 'name.csv' (edges), 'name_vertices.csv' and 'name_shortcuts.csv' (only when contraction is enabled)
type CHExporter struct {
	geomFormat string
	meters     bool
	contract   bool
	logger     zerolog.Logger
}

// NewCHExporter returns exporter writing WKT geometries, kilometers and doing contraction by default
func NewCHExporter(options ...func(*CHExporter)) *CHExporter {
	exporter := &CHExporter{
		geomFormat: "wkt",
		meters:     false,
		contract:   true,
		logger:     zerolog.Nop(),
	}
	for _, option := range options {
		option(exporter)
	}
	return exporter
}

// WithGeomFormat sets format of output geometry. Expected values: wkt / geojson
func WithGeomFormat(format string) func(*CHExporter) {
	return func(exporter *CHExporter) {
		exporter.geomFormat = strings.ToLower(format)
	}
}

// WithMeters switches output weights from kilometers to meters
func WithMeters(meters bool) func(*CHExporter) {
	return func(exporter *CHExporter) {
		exporter.meters = meters
	}
}

func WithContraction(contract bool) func(*CHExporter) {
	return func(exporter *CHExporter) {
		exporter.contract = contract
	}
}

func WithCHLogger(logger zerolog.Logger) func(*CHExporter) {
	return func(exporter *CHExporter) {
		exporter.logger = logger
	}
}

// ToContractionGraph converts accessibility graph to LdDl/ch graph. Every undirected edge becomes two directed ones.
func ToContractionGraph(g *Graph, meters bool) (*ch.Graph, error) {
	graph := ch.Graph{}
	for _, key := range g.Edges() {
		source, err := strconv.ParseInt(key.V, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't convert node '%s' to vertex", key.V)
		}
		target, err := strconv.ParseInt(key.W, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't convert node '%s' to vertex", key.W)
		}
		err = graph.CreateVertex(source)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create source vertex")
		}
		err = graph.CreateVertex(target)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create target vertex")
		}
		label, _ := g.Edge(key.V, key.W)
		cost := label.Weight
		if meters {
			cost *= 1000.0
		}
		err = graph.AddEdge(source, target, cost)
		if err != nil {
			return nil, errors.Wrap(err, "Can't wrap source and target vertices as edge")
		}
		err = graph.AddEdge(target, source, cost)
		if err != nil {
			return nil, errors.Wrap(err, "Can't wrap target and source vertices as edge")
		}
	}
	return &graph, nil
}

func (exporter *CHExporter) point(pt GeoPoint) (string, error) {
	if exporter.geomFormat == "geojson" {
		return PrepareGeoJSONPoint(pt)
	}
	return PrepareWKTPoint(pt), nil
}

func (exporter *CHExporter) linestring(pts []GeoPoint) (string, error) {
	if exporter.geomFormat == "geojson" {
		return PrepareGeoJSONLinestring(pts)
	}
	return PrepareWKTLinestring(pts), nil
}

// Export writes graph files. out is filename of edges file, other filenames are derived from it.
func (exporter *CHExporter) Export(g *Graph, out string) error {
	fnamePart := strings.Split(out, ".csv")
	fnameEdges := fnamePart[0] + ".csv"
	fnameVertices := fnamePart[0] + "_vertices.csv"
	fnameShortcuts := fnamePart[0] + "_shortcuts.csv"

	graph, err := ToContractionGraph(g, exporter.meters)
	if err != nil {
		return err
	}

	/* Edges file */
	fileEdges, err := os.Create(fnameEdges)
	if err != nil {
		return errors.Wrap(err, "Can't create edges file")
	}
	defer fileEdges.Close()
	writerEdges := csv.NewWriter(fileEdges)
	writerEdges.Comma = ';'
	// 		from_vertex_id - int64, OSM node ID of source vertex
	// 		to_vertex_id - int64, OSM node ID of target vertex
	// 		weight - float64, Weight of an edge (meters/kilometers)
	//      geom - geometry (WKT or GeoJSON representation)
	//      is_elevator - if edge is incident to matched elevator
	//      elevator_id - facility ID of the elevator
	//      elevator_status - status of the elevator
	err = writerEdges.Write([]string{"from_vertex_id", "to_vertex_id", "weight", "geom", "is_elevator", "elevator_id", "elevator_status"})
	if err != nil {
		return errors.Wrap(err, "Can't write edges header")
	}
	for _, key := range g.Edges() {
		label, _ := g.Edge(key.V, key.W)
		from, _ := g.Node(key.V)
		to, _ := g.Node(key.W)
		cost := label.Weight
		if exporter.meters {
			cost *= 1000.0
		}
		geomStr, err := exporter.linestring([]GeoPoint{from, to})
		if err != nil {
			return err
		}
		err = writerEdges.Write([]string{
			key.V,
			key.W,
			fmt.Sprintf("%f", cost),
			geomStr,
			fmt.Sprintf("%t", label.IsElevator),
			label.ElevatorID,
			string(label.ElevatorStatus),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	writerEdges.Flush()
	if err := writerEdges.Error(); err != nil {
		return errors.Wrap(err, "Can't flush edges")
	}

	if exporter.contract {
		exporter.logger.Info().Int("vertices", len(graph.Vertices)).Msg("Starting contraction process")
		graph.PrepareContractionHierarchies()
		exporter.logger.Info().Msg("Done contraction process")
	}

	/* Vertices file */
	fileVertices, err := os.Create(fnameVertices)
	if err != nil {
		return errors.Wrap(err, "Can't create vertices file")
	}
	defer fileVertices.Close()
	writerVertices := csv.NewWriter(fileVertices)
	writerVertices.Comma = ';'
	// 		vertex_id - int64, OSM node ID of vertex
	// 		order_pos - int, Position of vertex in hierarchies (evaluted by library)
	// 		importance - int, Importance of vertex in graph (evaluted by library)
	//      geom - geometry (WKT or GeoJSON representation)
	err = writerVertices.Write([]string{"vertex_id", "order_pos", "importance", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write vertices header")
	}
	for i := range graph.Vertices {
		label := graph.Vertices[i].Label
		pt, _ := g.Node(nodeKey(label))
		geomStr, err := exporter.point(pt)
		if err != nil {
			return err
		}
		err = writerVertices.Write([]string{
			fmt.Sprintf("%d", label),
			fmt.Sprintf("%d", graph.Vertices[i].OrderPos()),
			fmt.Sprintf("%d", graph.Vertices[i].Importance()),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write vertex")
		}
	}
	writerVertices.Flush()
	if err := writerVertices.Error(); err != nil {
		return errors.Wrap(err, "Can't flush vertices")
	}

	if exporter.contract {
		// 	from_vertex_id - int64, ID of source vertex
		// 	to_vertex_id - int64, ID of target vertex
		// 	weight - float64, Weight of an edge
		// 	via_vertex_id - int64, ID of vertex through which the shortcut exists
		err = graph.ExportShortcutsToFile(fnameShortcuts)
		if err != nil {
			return errors.Wrap(err, "Can't export shortcuts")
		}
	}
	return nil
}
