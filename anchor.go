package interchanges

import (
	"sort"

	"github.com/paulmach/osm"
)

// AnchorStrategy finds the boundary way representing a platform among flattened map elements
type AnchorStrategy interface {
	BoundaryWay(elements []Element, anchor OSMRef) (Element, bool)
}

// MembershipProvider is implemented by map data sources which can tell whether their elements
// carry relation membership (so ways can be matched through parent relations)
type MembershipProvider interface {
	ProvidesMembership() bool
}

// ParentMembershipStrategy matches the anchor itself or any way which is member of the anchor relation.
// Ways playing `outer` role in some relation are preferred.
type ParentMembershipStrategy struct{}

func (ParentMembershipStrategy) BoundaryWay(elements []Element, anchor OSMRef) (Element, bool) {
	ways := make([]Element, 0, len(elements))
	for _, el := range elements {
		if el.Type != osm.TypeNode {
			ways = append(ways, el)
		}
	}
	sort.SliceStable(ways, func(i, j int) bool {
		return ways[i].hasOuterParent() && !ways[j].hasOuterParent()
	})
	for _, way := range ways {
		if way.matches(anchor) {
			return way, true
		}
	}
	return Element{}, false
}

// DirectWayStrategy matches the anchor way by identity only
type DirectWayStrategy struct{}

func (DirectWayStrategy) BoundaryWay(elements []Element, anchor OSMRef) (Element, bool) {
	for _, el := range elements {
		if el.Type != osm.TypeNode && el.Ref() == anchor {
			return el, true
		}
	}
	return Element{}, false
}

// StrategyFor picks anchor strategy according to capabilities of the map data source
func StrategyFor(source MapDataSource) AnchorStrategy {
	if provider, ok := source.(MembershipProvider); ok && provider.ProvidesMembership() {
		return ParentMembershipStrategy{}
	}
	return DirectWayStrategy{}
}

// ResolveAnchorNode returns routing node representing the platform: first node of its boundary way
func ResolveAnchorNode(strategy AnchorStrategy, elements []Element, anchor OSMRef) (string, bool) {
	way, ok := strategy.BoundaryWay(elements, anchor)
	if !ok || len(way.Nodes) == 0 {
		return "", false
	}
	return nodeKey(int64(way.Nodes[0])), true
}
