package interchanges

import (
	"context"
	"sync"

	"github.com/paulmach/osm"
)

const (
	elevatorNorth = "10068718"
	elevatorSouth = "10200698"
	elevatorSide  = "10500001"
)

// Node positions of the test station (Leipzig Messe surroundings)
var testCoords = map[int64]GeoPoint{
	1:  {Lat: 51.3960, Lon: 12.3900},
	2:  {Lat: 51.3960, Lon: 12.3910},
	5:  {Lat: 51.3961, Lon: 12.3900},
	6:  {Lat: 51.3961, Lon: 12.3905},
	7:  {Lat: 51.3962, Lon: 12.3905},
	8:  {Lat: 51.3962, Lon: 12.3900},
	10: {Lat: 51.3963, Lon: 12.3905},
	11: {Lat: 51.3963, Lon: 12.3915},
}

var (
	platformA = OSMRef{Type: osm.TypeWay, ID: 1000}
	platformB = OSMRef{Type: osm.TypeRelation, ID: 9000}
)

func testWay(id int64, tags map[string]string, nodes ...int64) Element {
	el := Element{Type: osm.TypeWay, ID: id, Tags: tagsFromMap(tags)}
	for _, node := range nodes {
		el.Nodes = append(el.Nodes, osm.NodeID(node))
		el.Geometry = append(el.Geometry, testCoords[node])
	}
	return el
}

func testElevator(id int64) Element {
	return Element{
		Type: osm.TypeNode,
		ID:   id,
		Lat:  testCoords[id].Lat,
		Lon:  testCoords[id].Lon,
		Tags: tagsFromMap(map[string]string{"highway": "elevator"}),
	}
}

func testRelation(id int64, tags map[string]string, members ...Member) Element {
	return Element{Type: osm.TypeRelation, ID: id, Tags: tagsFromMap(tags), Members: members}
}

var footway = map[string]string{"highway": "footway"}

// stationElements returns two platforms (way/1000 and relation/9000) connected by stairs
// and by a tunnel with elevator node 5 at platform A side and elevator node 7 at platform B side
func stationElements(extra ...Element) []Element {
	elements := []Element{
		testElevator(5),
		testElevator(7),
		testWay(1000, map[string]string{"railway": "platform"}, 1, 2),
		testWay(2000, map[string]string{"railway": "platform"}, 10, 11),
		testWay(3001, footway, 1, 5),
		testWay(3002, map[string]string{"highway": "footway", "tunnel": "yes"}, 5, 6),
		testWay(3003, footway, 6, 7),
		testWay(3004, footway, 7, 10),
		testWay(3005, map[string]string{"highway": "steps"}, 1, 10),
		testRelation(9000, map[string]string{"public_transport": "platform"}, Member{Type: osm.TypeWay, Ref: 2000, Role: "outer"}),
	}
	return append(elements, extra...)
}

// sideElevatorElements is shorter path from platform A to platform B over elevator node 8
func sideElevatorElements() []Element {
	return []Element{
		testElevator(8),
		testWay(5000, footway, 1, 8),
		testWay(5001, footway, 8, 10),
	}
}

type testCrosswalk map[osm.NodeID]string

func (crosswalk testCrosswalk) FacilityID(nodeID osm.NodeID) (string, bool) {
	id, ok := crosswalk[nodeID]
	return id, ok
}

var stationCrosswalk = testCrosswalk{5: elevatorNorth, 7: elevatorSouth, 8: elevatorSide}

// statusFetcher serves fixed facility states and counts calls
type statusFetcher struct {
	mu      sync.Mutex
	records []FacilityStatus
	err     error
	calls   int
}

func newStatusFetcher(states map[string]string) *statusFetcher {
	fetcher := &statusFetcher{}
	for id, state := range states {
		fetcher.records = append(fetcher.records, FacilityStatus{ExternalID: id, State: state})
	}
	return fetcher
}

func (fetcher *statusFetcher) Fetch(ctx context.Context) ([]FacilityStatus, error) {
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	fetcher.calls++
	return fetcher.records, fetcher.err
}

type testSource struct {
	elements   []Element
	err        error
	membership bool
	calls      int
}

func (source *testSource) Query(ctx context.Context, from, to OSMRef) ([]Element, error) {
	source.calls++
	return source.elements, source.err
}

func (source *testSource) ProvidesMembership() bool {
	return source.membership
}

type testPlatforms map[[2]string]Platform

func (platforms testPlatforms) Platform(stationID, name string) (Platform, bool) {
	platform, ok := platforms[[2]string{stationID, name}]
	return platform, ok
}
