// Package registry holds static crosswalks used by interchange queries:
// station platforms to map anchors and elevator map nodes to facility IDs.
package registry

import (
	"strings"
	"sync"

	interchanges "github.com/juliuste/db-interchanges"
	"github.com/paulmach/osm"
)

type platformKey struct {
	stationID string
	name      string
}

// Registry is in-memory platform and elevator crosswalk. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	platforms map[platformKey]interchanges.Platform
	elevators map[osm.NodeID]string
}

// New returns empty registry
func New() *Registry {
	return &Registry{
		platforms: make(map[platformKey]interchanges.Platform),
		elevators: make(map[osm.NodeID]string),
	}
}

// normalizeStationID strips leading zeros so '08010205' and '8010205' refer to the same station
func normalizeStationID(stationID string) string {
	return strings.TrimLeft(strings.TrimSpace(stationID), "0")
}

func newPlatformKey(stationID, name string) platformKey {
	return platformKey{
		stationID: normalizeStationID(stationID),
		name:      strings.TrimSpace(name),
	}
}

// AddPlatform adds or replaces platform record
func (reg *Registry) AddPlatform(platform interchanges.Platform) {
	key := newPlatformKey(platform.StationID, platform.Name)
	platform.StationID = key.stationID
	platform.Name = key.name
	reg.mu.Lock()
	reg.platforms[key] = platform
	reg.mu.Unlock()
}

// AddElevator adds or replaces elevator crosswalk entry
func (reg *Registry) AddElevator(nodeID osm.NodeID, facilityID string) {
	reg.mu.Lock()
	reg.elevators[nodeID] = facilityID
	reg.mu.Unlock()
}

// Platform implements interchanges.PlatformResolver
func (reg *Registry) Platform(stationID, name string) (interchanges.Platform, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	platform, ok := reg.platforms[newPlatformKey(stationID, name)]
	return platform, ok
}

// FacilityID implements interchanges.ElevatorCrosswalk
func (reg *Registry) FacilityID(nodeID osm.NodeID) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	facilityID, ok := reg.elevators[nodeID]
	return facilityID, ok
}

// Platforms returns all platform records
func (reg *Registry) Platforms() []interchanges.Platform {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	platforms := make([]interchanges.Platform, 0, len(reg.platforms))
	for _, platform := range reg.platforms {
		platforms = append(platforms, platform)
	}
	return platforms
}

// Elevators returns copy of elevator crosswalk
func (reg *Registry) Elevators() map[osm.NodeID]string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	elevators := make(map[osm.NodeID]string, len(reg.elevators))
	for nodeID, facilityID := range reg.elevators {
		elevators[nodeID] = facilityID
	}
	return elevators
}
