package interchanges

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DEFAULT_FASTA_URL = "https://apis.deutschebahn.com/db-api-marketplace/apis/fasta/v2/facilities"
)

// Facility is a single record of DB FaSta (facility status) API
type Facility struct {
	EquipmentNumber  json.Number `json:"equipmentnumber"`
	Type             string      `json:"type"`
	Description      string      `json:"description,omitempty"`
	State            string      `json:"state"`
	StateExplanation string      `json:"stateExplanation,omitempty"`
	StationNumber    json.Number `json:"stationnumber,omitempty"`
	GeocoordX        float64     `json:"geocoordX,omitempty"`
	GeocoordY        float64     `json:"geocoordY,omitempty"`
}

// FacilityStatusSource fetches facility records
type FacilityStatusSource interface {
	FetchFacilities(ctx context.Context) ([]Facility, error)
}

// FastaClient is HTTP client of FaSta API. Token is always supplied by caller.
type FastaClient struct {
	endpoint string
	token    string
	client   *http.Client
	logger   zerolog.Logger
}

// NewFastaClient returns FaSta client authorized by given bearer token
func NewFastaClient(token string, options ...func(*FastaClient)) *FastaClient {
	client := &FastaClient{
		endpoint: DEFAULT_FASTA_URL,
		token:    token,
		client: &http.Client{
			Timeout: DEFAULT_HTTP_TIMEOUT,
		},
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func WithFastaEndpoint(endpoint string) func(*FastaClient) {
	return func(client *FastaClient) {
		client.endpoint = endpoint
	}
}

func WithFastaHTTPClient(httpClient *http.Client) func(*FastaClient) {
	return func(client *FastaClient) {
		client.client = httpClient
	}
}

func WithFastaLogger(logger zerolog.Logger) func(*FastaClient) {
	return func(client *FastaClient) {
		client.logger = logger
	}
}

// FetchFacilities returns all facilities known to FaSta
func (client *FastaClient) FetchFacilities(ctx context.Context) ([]Facility, error) {
	if strings.TrimSpace(client.token) == "" {
		return nil, newError(KindInvalidInput, "fetch facilities", errors.New("facility auth token is required"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.endpoint, nil)
	if err != nil {
		return nil, newError(KindUpstreamFetchFailed, "fetch facilities", errors.Wrap(err, "Can't create request"))
	}
	req.Header.Set("Authorization", "Bearer "+client.token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.client.Do(req)
	if err != nil {
		return nil, newError(KindUpstreamFetchFailed, "fetch facilities", errors.Wrapf(err, "Can't execute request to %s", client.endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		client.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(body)).Msg("FaSta returned error status")
		return nil, newError(KindUpstreamFetchFailed, "fetch facilities", errors.Errorf("FaSta returned status %d", resp.StatusCode))
	}

	facilities := []Facility{}
	if err := json.NewDecoder(resp.Body).Decode(&facilities); err != nil {
		return nil, newError(KindUpstreamFetchFailed, "fetch facilities", errors.Wrap(err, "Can't decode FaSta response"))
	}
	client.logger.Debug().Int("facilities", len(facilities)).Msg("Facilities fetched")
	return facilities, nil
}

// FetchStatusFrom adapts facility status source to FetchStatusFunc
func FetchStatusFrom(source FacilityStatusSource) FetchStatusFunc {
	return func(ctx context.Context) ([]FacilityStatus, error) {
		facilities, err := source.FetchFacilities(ctx)
		if err != nil {
			return nil, err
		}
		return FacilityStatuses(facilities), nil
	}
}

// FacilityStatuses converts facility records to status records
func FacilityStatuses(facilities []Facility) []FacilityStatus {
	statuses := make([]FacilityStatus, 0, len(facilities))
	for _, facility := range facilities {
		statuses = append(statuses, FacilityStatus{
			ExternalID: facility.EquipmentNumber.String(),
			State:      facility.State,
		})
	}
	return statuses
}

// FastaStatusSource returns StatusSourceFactory creating FaSta clients for given token
func FastaStatusSource(options ...func(*FastaClient)) StatusSourceFactory {
	return func(token string) FetchStatusFunc {
		return FetchStatusFrom(NewFastaClient(token, options...))
	}
}
