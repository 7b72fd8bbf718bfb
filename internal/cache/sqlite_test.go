package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmap/shelter-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleFacilities() []model.Facility {
	return []model.Facility{
		{ID: "osm_node_1", Category: model.CategoryHospital, Lat: 44.81, Lon: 20.46, Name: "KBC"},
		{ID: "osm_way_2", Category: model.CategoryPharmacy, Lat: 44.82, Lon: 20.47, Name: "Pharmacy #2"},
	}
}

func TestSQLiteStore_LoadAbsent(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	saveTime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return saveTime }

	require.NoError(t, s.Save(context.Background(), sampleFacilities()))

	snap, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleFacilities(), snap.Facilities)
	assert.Equal(t, saveTime.UnixMilli(), snap.FetchedAt)
}

func TestSQLiteStore_SaveEmptyIsNoOp(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), sampleFacilities()))

	// An empty save must leave the previous snapshot untouched.
	require.NoError(t, s.Save(context.Background(), nil))

	snap, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, snap.Facilities, 2)
}

func TestSQLiteStore_SaveOverwritesInFull(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), sampleFacilities()))

	replacement := []model.Facility{
		{ID: "osm_node_9", Category: model.CategoryPolice, Lat: 44.83, Lon: 20.48, Name: "Station 9"},
	}
	require.NoError(t, s.Save(context.Background(), replacement))

	snap, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, snap.Facilities, 1)
	assert.Equal(t, "osm_node_9", snap.Facilities[0].ID)
}

func TestSQLiteStore_CorruptedPayloadTreatedAsAbsent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), sampleFacilities()))

	_, err := s.db.Exec(`UPDATE cache_entries SET value = 'not json' WHERE key = ?`, keyData)
	require.NoError(t, err)

	_, ok, loadErr := s.Load(context.Background())
	require.NoError(t, loadErr)
	assert.False(t, ok)
}

func TestSQLiteStore_CorruptedTimestampTreatedAsAbsent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), sampleFacilities()))

	_, err := s.db.Exec(`UPDATE cache_entries SET value = 'yesterday' WHERE key = ?`, keyTimestamp)
	require.NoError(t, err)

	_, ok, loadErr := s.Load(context.Background())
	require.NoError(t, loadErr)
	assert.False(t, ok)
}

func TestSQLiteStore_Clear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), sampleFacilities()))
	require.NoError(t, s.Clear(context.Background()))

	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
