// Package app wires configuration into interchange collaborators shared by binaries
package app

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	interchanges "github.com/juliuste/db-interchanges"
	"github.com/juliuste/db-interchanges/internal/config"
	"github.com/juliuste/db-interchanges/registry"
)

// LoadRegistry reads registry from JSON file or SQL database, whichever is configured
func LoadRegistry(ctx context.Context, cfg config.RegistryConfig) (*registry.Registry, error) {
	if cfg.File != "" {
		return registry.LoadJSONFile(cfg.File)
	}
	store, err := registry.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store.Load(ctx)
}

// NewMapDataSource returns local OSM file source if configured, Overpass API source otherwise
func NewMapDataSource(cfg *config.Config, logger zerolog.Logger) interchanges.MapDataSource {
	if cfg.Overpass.OSMFile != "" {
		return interchanges.NewFileSource(
			cfg.Overpass.OSMFile,
			interchanges.WithFileRadius(cfg.Overpass.Radius),
			interchanges.WithFileLogger(logger),
		)
	}
	return interchanges.NewOverpassSource(
		interchanges.WithOverpassEndpoint(cfg.Overpass.URL),
		interchanges.WithOverpassRadius(cfg.Overpass.Radius),
		interchanges.WithOverpassRetries(cfg.Overpass.Retries, cfg.Overpass.RetryWait),
		interchanges.WithOverpassHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		interchanges.WithOverpassLogger(logger),
	)
}

// NewInterchanger wires registry, map data source and FaSta client
func NewInterchanger(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*interchanges.Interchanger, *registry.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "Bad configuration")
	}
	reg, err := LoadRegistry(ctx, cfg.Registry)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't load registry")
	}
	logger.Info().Int("platforms", len(reg.Platforms())).Int("elevators", len(reg.Elevators())).Msg("Registry loaded")

	statusSource := interchanges.FastaStatusSource(
		interchanges.WithFastaEndpoint(cfg.Facility.URL),
		interchanges.WithFastaHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		interchanges.WithFastaLogger(logger),
	)
	ic := interchanges.NewInterchanger(
		reg,
		NewMapDataSource(cfg, logger),
		reg,
		statusSource,
		interchanges.WithLogger(logger),
		interchanges.WithDefaultFacilityToken(cfg.Facility.Token),
		interchanges.WithRequireFacilityToken(),
	)
	return ic, reg, nil
}
