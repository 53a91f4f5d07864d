package interchanges

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Platform is registry record of a station platform
type Platform struct {
	StationID string
	Name      string
	// Map entity representing the platform. Nil if platform is not mapped.
	Anchor *OSMRef
}

// PlatformResolver maps station and platform label to a platform record
type PlatformResolver interface {
	Platform(stationID, name string) (Platform, bool)
}

// MapDataSource returns raw map elements (nodes, ways with geometry, relations) around two anchors
type MapDataSource interface {
	Query(ctx context.Context, from, to OSMRef) ([]Element, error)
}

// StatusSourceFactory creates facility status fetch function for given auth token
type StatusSourceFactory func(token string) FetchStatusFunc

// Interchanger answers whether two platforms are connected by barrier-free path
type Interchanger struct {
	platforms     PlatformResolver
	source        MapDataSource
	crosswalk     ElevatorCrosswalk
	statusSource  StatusSourceFactory
	facilityToken string
	requireToken  bool
	logger        zerolog.Logger
}

// NewInterchanger returns Interchanger wired to given collaborators
func NewInterchanger(platforms PlatformResolver, source MapDataSource, crosswalk ElevatorCrosswalk, statusSource StatusSourceFactory, options ...func(*Interchanger)) *Interchanger {
	ic := &Interchanger{
		platforms:    platforms,
		source:       source,
		crosswalk:    crosswalk,
		statusSource: statusSource,
		logger:       zerolog.Nop(),
	}
	for _, option := range options {
		option(ic)
	}
	return ic
}

func WithLogger(logger zerolog.Logger) func(*Interchanger) {
	return func(ic *Interchanger) {
		ic.logger = logger
	}
}

// WithDefaultFacilityToken sets token used when query does not provide one
func WithDefaultFacilityToken(token string) func(*Interchanger) {
	return func(ic *Interchanger) {
		ic.facilityToken = token
	}
}

// WithRequireFacilityToken makes queries without facility token fail before any map data is fetched
func WithRequireFacilityToken() func(*Interchanger) {
	return func(ic *Interchanger) {
		ic.requireToken = true
	}
}

type queryOptions struct {
	facilityAuthToken string
}

// QueryOption customizes single query
type QueryOption func(*queryOptions)

// WithFacilityAuthToken passes credential through to facility status source
func WithFacilityAuthToken(token string) QueryOption {
	return func(opts *queryOptions) {
		opts.facilityAuthToken = token
	}
}

// ComputeInterchange validates both inputs and the facility token (when required), resolves them to map anchors and classifies path between them.
// Returns nil result (and nil error) when any of platforms can't be resolved to a routing node.
func (ic *Interchanger) ComputeInterchange(ctx context.Context, from, to StationInput, options ...QueryOption) (*Result, error) {
	opts := queryOptions{facilityAuthToken: ic.facilityToken}
	for _, option := range options {
		option(&opts)
	}

	from, err := ValidateStation(from)
	if err != nil {
		return nil, errors.Wrap(err, "Bad origin")
	}
	to, err = ValidateStation(to)
	if err != nil {
		return nil, errors.Wrap(err, "Bad destination")
	}
	if ic.requireToken && strings.TrimSpace(opts.facilityAuthToken) == "" {
		return nil, newError(KindInvalidInput, "compute interchange", errors.New("facility auth token is required"))
	}

	fromPlatform, ok := ic.platforms.Platform(from.StationID, from.Platform)
	if !ok || fromPlatform.Anchor == nil {
		ic.logger.Debug().Str("station", from.StationID).Str("platform", from.Platform).Msg("Origin platform is not mapped")
		return nil, nil
	}
	toPlatform, ok := ic.platforms.Platform(to.StationID, to.Platform)
	if !ok || toPlatform.Anchor == nil {
		ic.logger.Debug().Str("station", to.StationID).Str("platform", to.Platform).Msg("Destination platform is not mapped")
		return nil, nil
	}

	return ic.ComputeAnchorInterchange(ctx, *fromPlatform.Anchor, *toPlatform.Anchor, ic.statusSource(opts.facilityAuthToken))
}

// ComputeAnchorInterchange classifies path between two map anchors.
// Verdict preference is strict: barrier-free > unknown > not barrier-free.
func (ic *Interchanger) ComputeAnchorInterchange(ctx context.Context, from, to OSMRef, fetch FetchStatusFunc) (*Result, error) {
	logger := ic.logger.With().
		Str("query_id", uuid.NewString()).
		Stringer("from", from).
		Stringer("to", to).
		Logger()

	elements, err := ic.fetchElements(ctx, from, to)
	if err != nil {
		return nil, err
	}

	strategy := StrategyFor(ic.source)
	fromNode, ok := ResolveAnchorNode(strategy, elements, from)
	if !ok {
		logger.Debug().Msg("Origin anchor is not found in map data")
		return nil, nil
	}
	toNode, ok := ResolveAnchorNode(strategy, elements, to)
	if !ok {
		logger.Debug().Msg("Destination anchor is not found in map data")
		return nil, nil
	}

	graphs, err := NewGraphBuilder(ic.crosswalk, logger).Build(ctx, elements, fetch)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build graphs")
	}

	result, err := classify(graphs, fromNode, toNode)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("from_node", fromNode).
		Str("to_node", toNode).
		Stringer("verdict", result.BarrierFree).
		Strs("elevators", result.Elevators).
		Msg("Interchange computed")
	return result, nil
}

// BuildAnchorGraphs fetches map data around two anchors and builds both graph variants without classifying
func (ic *Interchanger) BuildAnchorGraphs(ctx context.Context, from, to OSMRef, fetch FetchStatusFunc) (Graphs, error) {
	elements, err := ic.fetchElements(ctx, from, to)
	if err != nil {
		return Graphs{}, err
	}
	graphs, err := NewGraphBuilder(ic.crosswalk, ic.logger).Build(ctx, elements, fetch)
	if err != nil {
		return Graphs{}, errors.Wrap(err, "Can't build graphs")
	}
	return graphs, nil
}

// StatusSource returns facility status fetch function for given token (default token if empty)
func (ic *Interchanger) StatusSource(token string) FetchStatusFunc {
	if token == "" {
		token = ic.facilityToken
	}
	return ic.statusSource(token)
}

// fetchElements queries map data source once and flattens the output
func (ic *Interchanger) fetchElements(ctx context.Context, from, to OSMRef) ([]Element, error) {
	raw, err := ic.source.Query(ctx, from, to)
	if err != nil {
		if _, ok := KindOf(err); !ok {
			err = newError(KindUpstreamFetchFailed, "query map data", err)
		}
		return nil, errors.Wrap(err, "Can't fetch map data")
	}
	return FlattenElements(raw), nil
}

// classify runs shortest path on onlyActive graph first and falls back to activeAndUnknown one
func classify(graphs Graphs, fromNode, toNode string) (*Result, error) {
	variants := []struct {
		graph   *Graph
		verdict Verdict
	}{
		{graphs.OnlyActive, VERDICT_BARRIER_FREE},
		{graphs.ActiveAndUnknown, VERDICT_UNKNOWN},
	}
	for _, variant := range variants {
		route, err := ShortestPath(variant.graph, fromNode)
		if err != nil {
			return nil, errors.Wrap(err, "Can't find shortest path")
		}
		path, ok := ReconstructPath(route, toNode)
		if !ok {
			continue
		}
		return &Result{
			BarrierFree: variant.verdict,
			Elevators:   ExtractElevatorIDs(variant.graph, path),
			Path:        path,
			Geometry:    pathGeometry(variant.graph, path),
		}, nil
	}
	return &Result{BarrierFree: VERDICT_NOT_BARRIER_FREE}, nil
}

// pathGeometry returns positions of path nodes. Nodes absent in graph (trivial path out of graph) are skipped.
func pathGeometry(g *Graph, path Path) []GeoPoint {
	geom := make([]GeoPoint, 0, len(path))
	for _, node := range path {
		if pt, ok := g.Node(node); ok {
			geom = append(geom, pt)
		}
	}
	return geom
}
