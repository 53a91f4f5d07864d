package interchanges

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DEFAULT_OVERPASS_URL     = "https://overpass-api.de/api/interpreter"
	DEFAULT_QUERY_RADIUS     = 200.0
	DEFAULT_OVERPASS_RETRIES = 3
	DEFAULT_OVERPASS_WAIT    = 2500 * time.Millisecond
	DEFAULT_HTTP_TIMEOUT     = 60 * time.Second
)

// OverpassSource is MapDataSource backed by Overpass API
type OverpassSource struct {
	endpoint  string
	radius    float64
	retries   int
	retryWait time.Duration
	client    *http.Client
	logger    zerolog.Logger
}

// NewOverpassSource returns Overpass client with defaults
func NewOverpassSource(options ...func(*OverpassSource)) *OverpassSource {
	source := &OverpassSource{
		endpoint:  DEFAULT_OVERPASS_URL,
		radius:    DEFAULT_QUERY_RADIUS,
		retries:   DEFAULT_OVERPASS_RETRIES,
		retryWait: DEFAULT_OVERPASS_WAIT,
		client: &http.Client{
			Timeout: DEFAULT_HTTP_TIMEOUT,
		},
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(source)
	}
	return source
}

func WithOverpassEndpoint(endpoint string) func(*OverpassSource) {
	return func(source *OverpassSource) {
		source.endpoint = endpoint
	}
}

// WithOverpassRadius sets search radius around anchors (meters)
func WithOverpassRadius(radius float64) func(*OverpassSource) {
	return func(source *OverpassSource) {
		source.radius = radius
	}
}

// WithOverpassRetries sets number of retries after first failed attempt and minimal wait between attempts
func WithOverpassRetries(retries int, wait time.Duration) func(*OverpassSource) {
	return func(source *OverpassSource) {
		source.retries = retries
		source.retryWait = wait
	}
}

func WithOverpassHTTPClient(client *http.Client) func(*OverpassSource) {
	return func(source *OverpassSource) {
		source.client = client
	}
}

func WithOverpassLogger(logger zerolog.Logger) func(*OverpassSource) {
	return func(source *OverpassSource) {
		source.logger = logger
	}
}

// ProvidesMembership is always true: query output contains platform and area relations
func (source *OverpassSource) ProvidesMembership() bool {
	return true
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// Query fetches highways, elevators, platforms and their relations around both anchors
func (source *OverpassSource) Query(ctx context.Context, from, to OSMRef) ([]Element, error) {
	query := BuildOverpassQuery(from, to, source.radius)
	var lastErr error
	for attempt := 0; attempt <= source.retries; attempt++ {
		if attempt > 0 {
			wait := source.retryWait * time.Duration(attempt)
			source.logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("wait", wait).Msg("Overpass query failed, retrying")
			select {
			case <-ctx.Done():
				return nil, newError(KindUpstreamFetchFailed, "overpass query", ctx.Err())
			case <-time.After(wait):
			}
		}
		elements, retryable, err := source.do(ctx, query)
		if err == nil {
			source.logger.Debug().Int("elements", len(elements)).Msg("Overpass query done")
			return elements, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, newError(KindUpstreamFetchFailed, "overpass query", lastErr)
}

// do executes single request. Returns whether failure is worth retrying.
func (source *OverpassSource) do(ctx context.Context, query string) ([]Element, bool, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, source.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false, errors.Wrap(err, "Can't create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := source.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, errors.Wrapf(err, "Can't execute request to %s", source.endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, errors.Errorf("Overpass returned status %d: %s", resp.StatusCode, string(body))
	}

	data := overpassResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, false, errors.Wrap(err, "Can't decode Overpass response")
	}
	return data.Elements, false, nil
}

// BuildOverpassQuery returns Overpass QL query collecting everything needed for routing between two anchors:
// highways and elevators within radius, platform ways and relations, area relations and their member ways
func BuildOverpassQuery(from, to OSMRef, radius float64) string {
	around := fmt.Sprintf("around.perrons:%g", radius)
	return fmt.Sprintf(`[out:json];
(
	%s(%d);
	%s(%d);
)->.perrons;
rel[~"^(railway|public_transport)$"~"^(platform|platform_edge)$"](%[5]s)->.platformRels;
rel[highway][area="yes"](%[5]s)->.areaRels;
(
	way[highway](%[5]s);
	node[highway=elevator](%[5]s);

	way[area="yes"](%[5]s);
	way(r.areaRels);
	.areaRels;

	way[~"^(railway|public_transport)$"~"^(platform|platform_edge)$"](%[5]s);
	way(r.platformRels);
	way(r.perrons);
	.platformRels;
	.perrons;
);
out geom;`, from.Type, from.ID, to.Type, to.ID, around)
}
