package interchanges

import (
	"context"
	"strings"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// ElevatorStatus is lowercased operational state reported by facility status source.
// Anything other than active or inactive is treated as unknown.
type ElevatorStatus string

const (
	StatusActive   = ElevatorStatus("active")
	StatusInactive = ElevatorStatus("inactive")
)

// IsActive reports whether elevator is confirmed working
func (status ElevatorStatus) IsActive() bool {
	return status == StatusActive
}

// IsInactive reports whether elevator is confirmed broken
func (status ElevatorStatus) IsInactive() bool {
	return status == StatusInactive
}

// Elevator is elevator map node matched against facility registry
type Elevator struct {
	NodeID     osm.NodeID
	FacilityID string
	// Empty until status is attached
	Status ElevatorStatus
}

// ElevatorCrosswalk maps elevator map nodes to facility registry IDs
type ElevatorCrosswalk interface {
	FacilityID(nodeID osm.NodeID) (string, bool)
}

// FacilityStatus is a single record of facility status source
type FacilityStatus struct {
	ExternalID string
	State      string
}

// FetchStatusFunc fetches operational status of all facilities. Callers wanting caching must memoize it themselves.
type FetchStatusFunc func(ctx context.Context) ([]FacilityStatus, error)

// ResolveFacilityIDs matches elevator nodes against the crosswalk. Nodes without match are dropped.
func ResolveFacilityIDs(elevatorNodes []Element, crosswalk ElevatorCrosswalk) []Elevator {
	elevators := make([]Elevator, 0, len(elevatorNodes))
	for _, node := range elevatorNodes {
		nodeID := osm.NodeID(node.ID)
		facilityID, ok := crosswalk.FacilityID(nodeID)
		if !ok || facilityID == "" {
			continue
		}
		elevators = append(elevators, Elevator{NodeID: nodeID, FacilityID: facilityID})
	}
	return elevators
}

// AttachStatus invokes fetch once and attaches lowercased status to each elevator.
// Elevators without status record are dropped.
func AttachStatus(ctx context.Context, elevators []Elevator, fetch FetchStatusFunc) ([]Elevator, error) {
	records, err := fetch(ctx)
	if err != nil {
		if _, ok := KindOf(err); ok {
			return nil, errors.Wrap(err, "Can't fetch facility status")
		}
		return nil, newError(KindUpstreamFetchFailed, "fetch facility status", err)
	}
	states := make(map[string]string, len(records))
	for _, record := range records {
		// First record wins for duplicated IDs
		if _, ok := states[record.ExternalID]; ok {
			continue
		}
		states[record.ExternalID] = record.State
	}
	withStatus := make([]Elevator, 0, len(elevators))
	for _, elevator := range elevators {
		state := strings.ToLower(states[elevator.FacilityID])
		if state == "" {
			continue
		}
		elevator.Status = ElevatorStatus(state)
		withStatus = append(withStatus, elevator)
	}
	return withStatus, nil
}
