package interchanges

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, fname string) [][]string {
	t.Helper()
	file, err := os.Open(fname)
	require.NoError(t, err)
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

func stationGraphs(t *testing.T) Graphs {
	t.Helper()
	fetcher := newStatusFetcher(map[string]string{elevatorNorth: "ACTIVE", elevatorSouth: "UNKNOWN"})
	graphs, err := BuildGraphs(context.Background(), FlattenElements(stationElements()), stationCrosswalk, fetcher.Fetch)
	require.NoError(t, err)
	return graphs
}

func TestCHExporterExport(t *testing.T) {
	graphs := stationGraphs(t)
	out := filepath.Join(t.TempDir(), "station.csv")
	err := NewCHExporter(WithMeters(true)).Export(graphs.ActiveAndUnknown, out)
	require.NoError(t, err)

	edges := readCSV(t, out)
	require.Len(t, edges, graphs.ActiveAndUnknown.EdgesNum()+1)
	assert.Equal(t, []string{"from_vertex_id", "to_vertex_id", "weight", "geom", "is_elevator", "elevator_id", "elevator_status"}, edges[0])
	elevatorRows := 0
	for _, row := range edges[1:] {
		assert.True(t, strings.HasPrefix(row[3], "LINESTRING("), row[3])
		if row[4] == "true" {
			elevatorRows++
			assert.Contains(t, []string{elevatorNorth, elevatorSouth}, row[5])
		}
	}
	assert.Equal(t, 4, elevatorRows)

	vertices := readCSV(t, strings.TrimSuffix(out, ".csv")+"_vertices.csv")
	assert.Len(t, vertices, graphs.ActiveAndUnknown.NodesNum()+1)
	assert.Equal(t, "POINT(12.39 51.396)", findRow(vertices, "1")[3])

	_, err = os.Stat(strings.TrimSuffix(out, ".csv") + "_shortcuts.csv")
	assert.NoError(t, err)
}

func findRow(records [][]string, id string) []string {
	for _, row := range records {
		if row[0] == id {
			return row
		}
	}
	return nil
}

func TestCHExporterWithoutContraction(t *testing.T) {
	graphs := stationGraphs(t)
	out := filepath.Join(t.TempDir(), "station.csv")
	err := NewCHExporter(WithContraction(false), WithGeomFormat("GeoJSON")).Export(graphs.OnlyActive, out)
	require.NoError(t, err)

	edges := readCSV(t, out)
	assert.True(t, strings.HasPrefix(edges[1][3], `{"type":"LineString"`), edges[1][3])
	_, err = os.Stat(strings.TrimSuffix(out, ".csv") + "_shortcuts.csv")
	assert.True(t, os.IsNotExist(err))
}

func TestToContractionGraphBadNode(t *testing.T) {
	g := lineGraph("a", "b")
	_, err := ToContractionGraph(g, false)
	assert.Error(t, err)
}
