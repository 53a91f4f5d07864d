package interchanges

import (
	"context"
	"testing"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFacilityIDs(t *testing.T) {
	nodes := []Element{testElevator(5), testElevator(7), testElevator(8)}
	elevators := ResolveFacilityIDs(nodes, testCrosswalk{5: elevatorNorth, 8: ""})
	assert.Equal(t, []Elevator{{NodeID: 5, FacilityID: elevatorNorth}}, elevators)
}

func TestAttachStatus(t *testing.T) {
	fetcher := &statusFetcher{records: []FacilityStatus{
		{ExternalID: elevatorNorth, State: "ACTIVE"},
		{ExternalID: elevatorNorth, State: "INACTIVE"},
		{ExternalID: elevatorSouth, State: "Unknown"},
		{ExternalID: elevatorSide, State: ""},
	}}
	elevators := []Elevator{
		{NodeID: 5, FacilityID: elevatorNorth},
		{NodeID: 7, FacilityID: elevatorSouth},
		{NodeID: 8, FacilityID: elevatorSide},
		{NodeID: 9, FacilityID: "404"},
	}
	got, err := AttachStatus(context.Background(), elevators, fetcher.Fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, []Elevator{
		{NodeID: osm.NodeID(5), FacilityID: elevatorNorth, Status: StatusActive},
		{NodeID: osm.NodeID(7), FacilityID: elevatorSouth, Status: ElevatorStatus("unknown")},
	}, got)
}

func TestAttachStatusErrors(t *testing.T) {
	fetcher := &statusFetcher{err: errors.New("timeout")}
	_, err := AttachStatus(context.Background(), nil, fetcher.Fetch)
	require.Error(t, err)
	assert.True(t, IsUpstreamFetchFailed(err))

	fetcher = &statusFetcher{err: newError(KindInvalidInput, "fetch facilities", errors.New("facility auth token is required"))}
	_, err = AttachStatus(context.Background(), nil, fetcher.Fetch)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestElevatorStatus(t *testing.T) {
	assert.True(t, StatusActive.IsActive())
	assert.False(t, StatusActive.IsInactive())
	assert.True(t, StatusInactive.IsInactive())
	unknown := ElevatorStatus("unknown")
	assert.False(t, unknown.IsActive())
	assert.False(t, unknown.IsInactive())
}
