package interchanges

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overpassServer(t *testing.T, failures int, failStatus int) (*httptest.Server, *int32) {
	t.Helper()
	body, err := os.ReadFile("testdata/overpass.json")
	require.NoError(t, err)
	calls := new(int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		if r.Method != http.MethodPost || !strings.Contains(r.PostFormValue("data"), "way(1000)") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if int(n) <= failures {
			w.WriteHeader(failStatus)
			w.Write([]byte("rate limited"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestOverpassSourceQuery(t *testing.T) {
	srv, calls := overpassServer(t, 2, http.StatusTooManyRequests)
	source := NewOverpassSource(WithOverpassEndpoint(srv.URL), WithOverpassRetries(3, time.Millisecond))
	elements, err := source.Query(context.Background(), platformA, platformB)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	require.Len(t, elements, 10)
	assert.True(t, elements[0].IsElevator())
	assert.Equal(t, osm.TypeRelation, elements[9].Type)
}

func TestOverpassSourceRetriesExhausted(t *testing.T) {
	srv, calls := overpassServer(t, 10, http.StatusGatewayTimeout)
	source := NewOverpassSource(WithOverpassEndpoint(srv.URL), WithOverpassRetries(2, time.Millisecond))
	_, err := source.Query(context.Background(), platformA, platformB)
	require.Error(t, err)
	assert.True(t, IsUpstreamFetchFailed(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestOverpassSourceNoRetryOnBadRequest(t *testing.T) {
	srv, calls := overpassServer(t, 0, 0)
	source := NewOverpassSource(WithOverpassEndpoint(srv.URL), WithOverpassRetries(3, time.Millisecond))
	// Query for other anchors is rejected by test server
	_, err := source.Query(context.Background(), OSMRef{Type: osm.TypeWay, ID: 1}, platformB)
	require.Error(t, err)
	assert.True(t, IsUpstreamFetchFailed(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestOverpassSourceCancelled(t *testing.T) {
	srv, _ := overpassServer(t, 10, http.StatusServiceUnavailable)
	source := NewOverpassSource(WithOverpassEndpoint(srv.URL), WithOverpassRetries(3, time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := source.Query(ctx, platformA, platformB)
	require.Error(t, err)
	assert.True(t, IsUpstreamFetchFailed(err))
}

func TestBuildOverpassQuery(t *testing.T) {
	query := BuildOverpassQuery(platformA, platformB, 200)
	assert.True(t, strings.HasPrefix(query, "[out:json];"))
	assert.Contains(t, query, "way(1000);")
	assert.Contains(t, query, "relation(9000);")
	assert.Contains(t, query, "node[highway=elevator](around.perrons:200);")
	assert.True(t, strings.HasSuffix(query, "out geom;"))
}

func TestInterchangeOverHTTPSources(t *testing.T) {
	overpass, _ := overpassServer(t, 0, 0)
	fasta := fastaServer(t, "secret")
	ic := NewInterchanger(
		testPlatforms{
			{"8012183", "1"}: {StationID: "8012183", Name: "1", Anchor: &platformA},
			{"8012183", "2"}: {StationID: "8012183", Name: "2", Anchor: &platformB},
		},
		NewOverpassSource(WithOverpassEndpoint(overpass.URL)),
		stationCrosswalk,
		FastaStatusSource(WithFastaEndpoint(fasta.URL)),
	)
	result, err := ic.ComputeInterchange(context.Background(),
		StationInput{StationID: "8012183", Platform: "1"},
		StationInput{StationID: "8012183", Platform: "2"},
		WithFacilityAuthToken("secret"),
	)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, VERDICT_BARRIER_FREE, result.BarrierFree)
	assert.Equal(t, []string{elevatorNorth, elevatorSouth}, result.Elevators)

	// Missing token fails fast
	_, err = ic.ComputeInterchange(context.Background(),
		StationInput{StationID: "8012183", Platform: "1"},
		StationInput{StationID: "8012183", Platform: "2"},
	)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}
