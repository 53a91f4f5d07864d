package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	interchanges "github.com/juliuste/db-interchanges"
	"github.com/juliuste/db-interchanges/internal/app"
	"github.com/juliuste/db-interchanges/internal/config"
	"github.com/juliuste/db-interchanges/internal/logger"
)

var (
	fromStation   = flag.String("from-station", "", "UIC code of origin station (leading zeros are allowed)")
	fromPlatform  = flag.String("from-platform", "", "Origin platform label, e.g. '1'")
	toStation     = flag.String("to-station", "", "UIC code of destination station. Defaults to origin station")
	toPlatform    = flag.String("to-platform", "", "Destination platform label")
	envFile       = flag.String("env", ".env", "Optional .env file with configuration")
	registryFile  = flag.String("registry", "", "Registry JSON file. Overrides REGISTRY_FILE")
	osmFileName   = flag.String("file", "", "Local *.osm / *.osm.pbf file used instead of Overpass API. Overrides OSM_FILE")
	token         = flag.String("token", "", "FaSta API token. Overrides FASTA_TOKEN")
	geomFormat    = flag.String("geomf", "", "Print route geometry too. Expected values: wkt / geojson")
	out           = flag.String("out", "", "Filename of 'Comma-Separated Values' (CSV) formatted file for graph export. E.g.: if file name is 'map.csv' then 3 files will be produced: 'map.csv' (edges), 'map_vertices.csv', 'map_shortcuts.csv'")
	units         = flag.String("units", "km", "Units of exported weights. Expected values: km for kilometers / m for meters")
	doContraction = flag.Bool("contract", true, "Prepare contraction hierarchies for graph export?")
	timeout       = flag.Duration("timeout", 2*time.Minute, "Query timeout")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *registryFile != "" {
		cfg.Registry = config.RegistryConfig{File: *registryFile}
	}
	if *osmFileName != "" {
		cfg.Overpass.OSMFile = *osmFileName
	}
	if *token != "" {
		cfg.Facility.Token = *token
	}
	if *toStation == "" {
		*toStation = *fromStation
	}
	log := logger.New(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ic, reg, err := app.NewInterchanger(ctx, cfg, log)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	from := interchanges.StationInput{StationID: *fromStation, Platform: *fromPlatform}
	to := interchanges.StationInput{StationID: *toStation, Platform: *toPlatform}
	result, err := ic.ComputeInterchange(ctx, from, to)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	b, err := json.Marshal(result)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println(string(b))

	if result != nil && *geomFormat != "" {
		geomStr := ""
		if strings.ToLower(*geomFormat) == "geojson" {
			fc, err := interchanges.ResultFeatureCollection(result).MarshalJSON()
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			geomStr = string(fc)
		} else {
			geomStr = interchanges.PrepareWKTLinestring(result.Geometry)
		}
		fmt.Println(geomStr)
		fmt.Printf("Path length: %.1f m\n", interchanges.PathLengthMeters(result.Geometry))
	}

	if *out == "" {
		return
	}
	if result == nil {
		fmt.Println("Platforms can't be resolved, nothing to export")
		os.Exit(1)
	}
	// Platforms were resolved by ComputeInterchange already
	fromRecord, _ := reg.Platform(*fromStation, *fromPlatform)
	toRecord, _ := reg.Platform(*toStation, *toPlatform)
	graphs, err := ic.BuildAnchorGraphs(ctx, *fromRecord.Anchor, *toRecord.Anchor, ic.StatusSource(cfg.Facility.Token))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	exportFormat := *geomFormat
	if exportFormat == "" {
		exportFormat = "wkt"
	}
	exporter := interchanges.NewCHExporter(
		interchanges.WithGeomFormat(exportFormat),
		interchanges.WithMeters(strings.ToLower(*units) == "m"),
		interchanges.WithContraction(*doContraction),
		interchanges.WithCHLogger(log),
	)
	st := time.Now()
	if err := exporter.Export(graphs.ActiveAndUnknown, *out); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("Done graph export in %v\n", time.Since(st))
}
