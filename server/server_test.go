package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interchanges "github.com/juliuste/db-interchanges"
)

type fakeComputer struct {
	result *interchanges.Result
	err    error

	gotFrom  interchanges.StationInput
	gotTo    interchanges.StationInput
	gotToken bool
}

func (fake *fakeComputer) ComputeInterchange(ctx context.Context, from, to interchanges.StationInput, options ...interchanges.QueryOption) (*interchanges.Result, error) {
	fake.gotFrom = from
	fake.gotTo = to
	fake.gotToken = len(options) > 0
	return fake.result, fake.err
}

func doRequest(t *testing.T, computer InterchangeComputer, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	rec := httptest.NewRecorder()
	New(computer).Handler().ServeHTTP(rec, req)
	return rec
}

const query = "/interchange?fromStation=8012183&fromPlatform=1&toStation=8012183&toPlatform=2"

func TestGetInterchange(t *testing.T) {
	fake := &fakeComputer{result: &interchanges.Result{
		BarrierFree: interchanges.VERDICT_BARRIER_FREE,
		Elevators:   []string{"10068718", "10200698"},
	}}
	rec := doRequest(t, fake, query, http.Header{FACILITY_TOKEN_HEADER: {"secret"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"barrierFree": true, "elevators": ["10068718", "10200698"]}`, rec.Body.String())
	assert.Equal(t, interchanges.StationInput{StationID: "8012183", Platform: "1"}, fake.gotFrom)
	assert.Equal(t, interchanges.StationInput{StationID: "8012183", Platform: "2"}, fake.gotTo)
	assert.True(t, fake.gotToken)
}

func TestGetInterchangeVerdicts(t *testing.T) {
	tests := []struct {
		name   string
		result *interchanges.Result
		want   string
	}{
		{"unknown", &interchanges.Result{BarrierFree: interchanges.VERDICT_UNKNOWN, Elevators: []string{"1"}}, `{"barrierFree": null, "elevators": ["1"]}`},
		{"not barrier free", &interchanges.Result{BarrierFree: interchanges.VERDICT_NOT_BARRIER_FREE}, `{"barrierFree": false}`},
		{"no elevators", &interchanges.Result{BarrierFree: interchanges.VERDICT_BARRIER_FREE}, `{"barrierFree": true, "elevators": []}`},
		{"unresolved", nil, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeComputer{result: tt.result}, query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestGetInterchangeErrors(t *testing.T) {
	invalid := &interchanges.Error{Kind: interchanges.KindInvalidInput, Op: "validate station", Err: errors.New("bad")}
	upstream := &interchanges.Error{Kind: interchanges.KindUpstreamFetchFailed, Op: "overpass query", Err: errors.New("timeout")}
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"invalid input", errors.Wrap(invalid, "Bad origin"), http.StatusBadRequest, "invalid_input"},
		{"upstream", errors.Wrap(upstream, "Can't fetch map data"), http.StatusBadGateway, "upstream_fetch_failed"},
		{"other", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeComputer{err: tt.err}, query, nil)
			require.Equal(t, tt.wantCode, rec.Code)
			response := ErrorResponse{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.wantKind, response.Kind)
			assert.NotEmpty(t, response.Error)
		})
	}
}

func TestGetInterchangeGeometry(t *testing.T) {
	fake := &fakeComputer{result: &interchanges.Result{
		BarrierFree: interchanges.VERDICT_BARRIER_FREE,
		Elevators:   []string{},
		Path:        interchanges.Path{"1", "2"},
		Geometry:    []interchanges.GeoPoint{{Lat: 51.3963, Lon: 12.3939}, {Lat: 51.3965, Lon: 12.3941}},
	}}
	rec := doRequest(t, fake, "/interchange/geometry?fromStation=8012183&fromPlatform=1&toStation=8012183&toPlatform=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc := struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.Type)
	assert.Equal(t, "Point", fc.Features[1].Geometry.Type)
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, &fakeComputer{}, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/interchange", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	New(&fakeComputer{}, WithCORSOrigins([]string{"http://example.com"})).Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
