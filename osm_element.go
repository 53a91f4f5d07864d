package interchanges

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paulmach/osm"
)

// OSMRef references map entity by type and ID
type OSMRef struct {
	Type osm.Type `json:"type"`
	ID   int64    `json:"id"`
}

func (ref OSMRef) String() string {
	return fmt.Sprintf("%s/%d", ref.Type, ref.ID)
}

// Member is member of relation
type Member struct {
	Type osm.Type `json:"type"`
	Ref  int64    `json:"ref"`
	Role string   `json:"role"`
}

// Parent is relation which contains given way
type Parent struct {
	Type osm.Type
	ID   int64
	Role string
}

// Element is node, way or relation as returned by map data source.
// Ways carry both node IDs and resolved geometry (same length and order).
type Element struct {
	Type     osm.Type
	ID       int64
	Lat      float64
	Lon      float64
	Tags     osm.Tags
	Nodes    []osm.NodeID
	Geometry []GeoPoint
	Members  []Member
	// Filled by flattening for ways only
	Parents []Parent
}

// Ref returns reference to the element
func (el Element) Ref() OSMRef {
	return OSMRef{Type: el.Type, ID: el.ID}
}

// IsElevator reports whether element is elevator node
func (el Element) IsElevator() bool {
	return el.Type == osm.TypeNode && getHighwayType(el.Tags.Find(TAG_HIGHWAY)) == HIGHWAY_ELEVATOR
}

// matches reports whether element is the referenced entity or is a member of it
func (el Element) matches(ref OSMRef) bool {
	if el.Ref() == ref {
		return true
	}
	for _, parent := range el.Parents {
		if parent.Type == ref.Type && parent.ID == ref.ID {
			return true
		}
	}
	return false
}

func (el Element) hasOuterParent() bool {
	for _, parent := range el.Parents {
		if parent.Role == "outer" {
			return true
		}
	}
	return false
}

// overpassElement is element in Overpass API JSON output (`out geom`)
type overpassElement struct {
	Type     osm.Type          `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat,omitempty"`
	Lon      float64           `json:"lon,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	Nodes    []int64           `json:"nodes,omitempty"`
	Geometry []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"geometry,omitempty"`
	Members []Member `json:"members,omitempty"`
}

// UnmarshalJSON decodes element from Overpass API JSON
func (el *Element) UnmarshalJSON(data []byte) error {
	raw := overpassElement{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*el = Element{
		Type:    raw.Type,
		ID:      raw.ID,
		Lat:     raw.Lat,
		Lon:     raw.Lon,
		Tags:    tagsFromMap(raw.Tags),
		Members: raw.Members,
	}
	if len(raw.Nodes) > 0 {
		el.Nodes = make([]osm.NodeID, len(raw.Nodes))
		for i, id := range raw.Nodes {
			el.Nodes[i] = osm.NodeID(id)
		}
	}
	if len(raw.Geometry) > 0 {
		el.Geometry = make([]GeoPoint, len(raw.Geometry))
		for i, pt := range raw.Geometry {
			el.Geometry[i] = GeoPoint{Lat: pt.Lat, Lon: pt.Lon}
		}
	}
	return nil
}

// tagsFromMap converts tag map to osm.Tags sorted by key
func tagsFromMap(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Key < tags[j].Key
	})
	return tags
}

// mergeTags merges tag sets. Later sets override earlier ones.
func mergeTags(sets ...osm.Tags) osm.Tags {
	merged := make(map[string]string)
	for _, tags := range sets {
		for _, tag := range tags {
			merged[tag.Key] = tag.Value
		}
	}
	return tagsFromMap(merged)
}

// FlattenElements drops relations, attaches parent relations (with member roles) to ways
// and merges parents' tags into ways' tags (own tags take precedence). Nodes are kept as is.
func FlattenElements(elements []Element) []Element {
	parentsOf := make(map[OSMRef][]Element)
	for _, el := range elements {
		if el.Type != osm.TypeRelation {
			continue
		}
		seen := make(map[OSMRef]struct{})
		for _, member := range el.Members {
			ref := OSMRef{Type: member.Type, ID: member.Ref}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			parentsOf[ref] = append(parentsOf[ref], el)
		}
	}

	flattened := make([]Element, 0, len(elements))
	for _, el := range elements {
		switch el.Type {
		case osm.TypeRelation:
			continue
		case osm.TypeNode:
			flattened = append(flattened, el)
		default:
			parents := parentsOf[el.Ref()]
			el.Parents = make([]Parent, 0, len(parents))
			tagSets := make([]osm.Tags, 0, len(parents)+1)
			for _, parent := range parents {
				el.Parents = append(el.Parents, Parent{
					Type: parent.Type,
					ID:   parent.ID,
					Role: memberRole(parent, el.Ref()),
				})
				tagSets = append(tagSets, parent.Tags)
			}
			tagSets = append(tagSets, el.Tags)
			el.Tags = mergeTags(tagSets...)
			flattened = append(flattened, el)
		}
	}
	return flattened
}

// memberRole returns role of first matching member
func memberRole(relation Element, ref OSMRef) string {
	for _, member := range relation.Members {
		if member.Type == ref.Type && member.Ref == ref.ID {
			return member.Role
		}
	}
	return ""
}
