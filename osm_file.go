package interchanges

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// FileSource is MapDataSource backed by local OSM extract (*.osm, *.xml or *.osm.pbf).
// File is read on every query.
type FileSource struct {
	filename      string
	radius        float64
	withRelations bool
	logger        zerolog.Logger
}

// NewFileSource returns file backed map data source
func NewFileSource(filename string, options ...func(*FileSource)) *FileSource {
	source := &FileSource{
		filename:      filename,
		radius:        DEFAULT_QUERY_RADIUS,
		withRelations: true,
		logger:        zerolog.Nop(),
	}
	for _, option := range options {
		option(source)
	}
	return source
}

// WithFileRadius sets search radius around anchors (meters)
func WithFileRadius(radius float64) func(*FileSource) {
	return func(source *FileSource) {
		source.radius = radius
	}
}

// WithFileRelations enables or disables relations output. Without relations platforms can be matched directly by way only.
func WithFileRelations(withRelations bool) func(*FileSource) {
	return func(source *FileSource) {
		source.withRelations = withRelations
	}
}

func WithFileLogger(logger zerolog.Logger) func(*FileSource) {
	return func(source *FileSource) {
		source.logger = logger
	}
}

// ProvidesMembership reports whether relations are part of query output
func (source *FileSource) ProvidesMembership() bool {
	return source.withRelations
}

type osmFileData struct {
	nodes     map[osm.NodeID]*osm.Node
	ways      map[osm.WayID]*osm.Way
	relations map[osm.RelationID]*osm.Relation
}

func newScanner(ctx context.Context, file *os.File, filename string) (OSMScanner, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".pbf"):
		return osmpbf.New(ctx, file, 4), nil
	case strings.HasSuffix(name, ".osm"), strings.HasSuffix(name, ".xml"):
		return osmxml.New(ctx, file), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", filepath.Ext(filename), filename)
	}
}

func (source *FileSource) read(ctx context.Context) (*osmFileData, error) {
	file, err := os.Open(source.filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	scanner, err := newScanner(ctx, file, source.filename)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	data := &osmFileData{
		nodes:     make(map[osm.NodeID]*osm.Node),
		ways:      make(map[osm.WayID]*osm.Way),
		relations: make(map[osm.RelationID]*osm.Relation),
	}
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			data.nodes[obj.ID] = obj
		case *osm.Way:
			data.ways[obj.ID] = obj
		case *osm.Relation:
			data.relations[obj.ID] = obj
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Scanner error")
	}
	return data, nil
}

// Query selects highways, elevators, areas, platforms and their relations around both anchors
func (source *FileSource) Query(ctx context.Context, from, to OSMRef) ([]Element, error) {
	data, err := source.read(ctx)
	if err != nil {
		return nil, newError(KindUpstreamFetchFailed, "read osm file", err)
	}

	perrons := append(data.anchorPoints(from), data.anchorPoints(to)...)
	around := func(pt GeoPoint) bool {
		return withinRadius(perrons, pt, source.radius)
	}

	selectedWays := make(map[osm.WayID]struct{})
	selectedRelations := make(map[osm.RelationID]struct{})
	elements := []Element{}

	nodeIDs := make([]osm.NodeID, 0)
	for id, node := range data.nodes {
		if getHighwayType(node.Tags.Find(TAG_HIGHWAY)) == HIGHWAY_ELEVATOR && around(GeoPoint{Lat: node.Lat, Lon: node.Lon}) {
			nodeIDs = append(nodeIDs, id)
		}
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	for _, id := range nodeIDs {
		node := data.nodes[id]
		elements = append(elements, Element{
			Type: osm.TypeNode,
			ID:   int64(node.ID),
			Lat:  node.Lat,
			Lon:  node.Lon,
			Tags: node.Tags,
		})
	}

	for id, way := range data.ways {
		if !isRoutingRelevant(way.Tags) {
			continue
		}
		for _, pt := range data.wayGeometry(way) {
			if around(pt) {
				selectedWays[id] = struct{}{}
				break
			}
		}
	}

	for id, relation := range data.relations {
		relevant := isPlatform(relation.Tags) || (relation.Tags.Find(TAG_HIGHWAY) != "" && relation.Tags.Find("area") == "yes")
		isAnchor := (OSMRef{Type: osm.TypeRelation, ID: int64(id)}) == from || (OSMRef{Type: osm.TypeRelation, ID: int64(id)}) == to
		if !relevant && !isAnchor {
			continue
		}
		memberWays := make([]osm.WayID, 0, len(relation.Members))
		near := isAnchor
		for _, member := range relation.Members {
			if member.Type != osm.TypeWay {
				continue
			}
			wayID := osm.WayID(member.Ref)
			memberWays = append(memberWays, wayID)
			if way, ok := data.ways[wayID]; ok && !near {
				for _, pt := range data.wayGeometry(way) {
					if around(pt) {
						near = true
						break
					}
				}
			}
		}
		if !near {
			continue
		}
		selectedRelations[id] = struct{}{}
		for _, wayID := range memberWays {
			if _, ok := data.ways[wayID]; ok {
				selectedWays[wayID] = struct{}{}
			}
		}
	}
	for _, anchor := range []OSMRef{from, to} {
		if anchor.Type != osm.TypeWay {
			continue
		}
		if _, ok := data.ways[osm.WayID(anchor.ID)]; ok {
			selectedWays[osm.WayID(anchor.ID)] = struct{}{}
		}
	}

	wayIDs := make([]osm.WayID, 0, len(selectedWays))
	for id := range selectedWays {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })
	for _, id := range wayIDs {
		way := data.ways[id]
		geometry := data.wayGeometry(way)
		if len(geometry) != len(way.Nodes) {
			source.logger.Warn().Int64("way_id", int64(id)).Msg("Way references nodes missing in file, skipping")
			continue
		}
		nodes := make([]osm.NodeID, len(way.Nodes))
		for i, wayNode := range way.Nodes {
			nodes[i] = wayNode.ID
		}
		elements = append(elements, Element{
			Type:     osm.TypeWay,
			ID:       int64(id),
			Tags:     way.Tags,
			Nodes:    nodes,
			Geometry: geometry,
		})
	}

	if source.withRelations {
		relationIDs := make([]osm.RelationID, 0, len(selectedRelations))
		for id := range selectedRelations {
			relationIDs = append(relationIDs, id)
		}
		sort.Slice(relationIDs, func(i, j int) bool { return relationIDs[i] < relationIDs[j] })
		for _, id := range relationIDs {
			relation := data.relations[id]
			members := make([]Member, len(relation.Members))
			for i, member := range relation.Members {
				members[i] = Member{Type: member.Type, Ref: member.Ref, Role: member.Role}
			}
			elements = append(elements, Element{
				Type:    osm.TypeRelation,
				ID:      int64(id),
				Tags:    relation.Tags,
				Members: members,
			})
		}
	}

	source.logger.Debug().
		Int("ways", len(wayIDs)).
		Int("elevators", len(nodeIDs)).
		Int("relations", len(selectedRelations)).
		Msg("OSM file query done")
	return elements, nil
}

// wayGeometry returns positions of way nodes which are present in file
func (data *osmFileData) wayGeometry(way *osm.Way) []GeoPoint {
	geometry := make([]GeoPoint, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		if node, ok := data.nodes[wayNode.ID]; ok {
			geometry = append(geometry, GeoPoint{Lat: node.Lat, Lon: node.Lon})
		}
	}
	return geometry
}

// anchorPoints returns positions describing the anchor entity
func (data *osmFileData) anchorPoints(anchor OSMRef) []GeoPoint {
	switch anchor.Type {
	case osm.TypeNode:
		if node, ok := data.nodes[osm.NodeID(anchor.ID)]; ok {
			return []GeoPoint{{Lat: node.Lat, Lon: node.Lon}}
		}
	case osm.TypeWay:
		if way, ok := data.ways[osm.WayID(anchor.ID)]; ok {
			return data.wayGeometry(way)
		}
	case osm.TypeRelation:
		relation, ok := data.relations[osm.RelationID(anchor.ID)]
		if !ok {
			return nil
		}
		points := []GeoPoint{}
		for _, member := range relation.Members {
			switch member.Type {
			case osm.TypeWay:
				if way, ok := data.ways[osm.WayID(member.Ref)]; ok {
					points = append(points, data.wayGeometry(way)...)
				}
			case osm.TypeNode:
				if node, ok := data.nodes[osm.NodeID(member.Ref)]; ok {
					points = append(points, GeoPoint{Lat: node.Lat, Lon: node.Lon})
				}
			}
		}
		return points
	}
	return nil
}

// isRoutingRelevant reports whether way may take part in routing or platform lookup
func isRoutingRelevant(tags osm.Tags) bool {
	return tags.Find(TAG_HIGHWAY) != "" || tags.Find("area") == "yes" || isPlatform(tags)
}

// isPlatform reports whether entity is tagged as platform or platform edge
func isPlatform(tags osm.Tags) bool {
	for _, key := range []string{"railway", "public_transport"} {
		switch tags.Find(key) {
		case "platform", "platform_edge":
			return true
		}
	}
	return false
}
