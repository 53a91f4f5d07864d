package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, DRIVER_SQLITE, filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Migrate(ctx))
	// Migration is idempotent
	require.NoError(t, store.Migrate(ctx))

	reg, err := LoadJSONFile("testdata/registry.json")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, reg))
	// Saving twice upserts
	require.NoError(t, store.Save(ctx, reg))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(reg.Elevators(), loaded.Elevators()); diff != "" {
		t.Errorf("Elevators mismatch (-want +got):\n%s", diff)
	}
	assert.ElementsMatch(t, reg.Platforms(), loaded.Platforms())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := NewStore(nil, DRIVER_POSTGRES)
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))
	lite := NewStore(nil, DRIVER_SQLITE)
	assert.Equal(t, "VALUES (?, ?)", lite.rebind("VALUES (?, ?)"))
}
