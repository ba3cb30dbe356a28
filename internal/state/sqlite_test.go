package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/coverdash/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "state.db")))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func sampleFiles() []FileRecord {
	return []FileRecord{
		{
			Hash: "h-b", Path: "pkg/b.go", Package: "pkg", Changed: true,
			CoveredLines: 3, MissedLines: 1, CoveredStatements: 4, MissedStatements: 1,
			HasSource: true, Source: "package pkg\n",
			Lines:         map[int]LineCoverage{1: {Covered: 1}, 2: {Missed: 1}},
			ModifiedLines: []int{2},
		},
		{
			Hash: "h-a", Path: "pkg/a.go", Package: "pkg",
			CoveredLines: 1, MissedLines: 0, CoveredStatements: 1,
		},
	}
}

func TestSQLiteStore_OpenMemory(t *testing.T) {
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	defer store.Close()

	require.NoError(t, store.Migrate(context.Background()))
	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	for _, table := range []string{"builds", "metrics", "files", "client_state"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		rows.Close()
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, store.Migrate(ctx), errNotOpened)
	_, err := store.LatestBuild(ctx)
	assert.ErrorIs(t, err, errNotOpened)
	_, _, err = store.ClientValue(ctx, "c", "k")
	assert.ErrorIs(t, err, errNotOpened)
	assert.NoError(t, store.Close())
}

// =============================================================================
// Builds
// =============================================================================

func TestSQLiteStore_SaveBuild(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := &Build{DisplayName: "nightly"}
	require.NoError(t, store.SaveBuild(ctx, first, []MetricValue{
		{Metric: "Line", Covered: 80, Missed: 20},
		{Metric: "Branch", Covered: 40, Missed: 60},
	}, sampleFiles()))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 1, first.Number)
	assert.False(t, first.CreatedAt.IsZero())

	second := &Build{URL: "https://ci.example.com/42/"}
	require.NoError(t, store.SaveBuild(ctx, second, nil, nil))
	assert.Equal(t, 2, second.Number)

	latest, err := store.LatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "https://ci.example.com/42/", latest.URL)
	assert.Equal(t, "#2", latest.Label())

	got, err := store.BuildByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "nightly", got.Label())
	assert.Equal(t, first.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	metrics, err := store.BuildMetrics(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "Line", metrics[0].Metric)
	assert.Equal(t, "Branch", metrics[1].Metric)
	assert.InDelta(t, 40.0, metrics[1].CoveredPercentage(), 0.001)
}

func TestSQLiteStore_DuplicateNumber(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBuild(ctx, &Build{Number: 7}, nil, nil))
	err := store.SaveBuild(ctx, &Build{Number: 7}, []MetricValue{{Metric: "Line"}}, nil)
	require.Error(t, err)

	builds, err := store.ListBuilds(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, builds, 1, "failed save is rolled back")
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.LatestBuild(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.BuildByNumber(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.File(ctx, "missing", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteBuild(ctx, 3), ErrNotFound)
}

func TestSQLiteStore_ListAndDeleteBuilds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, store.SaveBuild(ctx, &Build{CreatedAt: base.AddDate(0, 0, i)},
			[]MetricValue{{Metric: "Line", Covered: 10 * i, Missed: 50 - 10*i}}, sampleFiles()))
	}

	builds, err := store.ListBuilds(ctx, 3)
	require.NoError(t, err)
	require.Len(t, builds, 3)
	assert.Equal(t, []int{5, 4, 3}, []int{builds[0].Number, builds[1].Number, builds[2].Number})

	require.NoError(t, store.DeleteBuild(ctx, 5))
	latest, err := store.LatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, latest.Number)

	files, err := store.ListFiles(ctx, builds[0].ID, false)
	require.NoError(t, err)
	assert.Empty(t, files, "files are deleted with their build")
}

func TestSQLiteStore_MetricHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.SaveBuild(ctx, &Build{}, []MetricValue{
			{Metric: "Line", Covered: i, Missed: 1},
			{Metric: "Branch", Covered: i, Missed: 2},
		}, nil))
	}

	history, err := store.MetricHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].Build.Number)
	assert.Equal(t, 2, history[1].Build.Number)
	assert.Equal(t, []MetricValue{{Metric: "Line", Covered: 3, Missed: 1}, {Metric: "Branch", Covered: 3, Missed: 2}},
		history[0].Metrics)

	all, err := store.MetricHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =============================================================================
// Files
// =============================================================================

func TestSQLiteStore_Files(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := &Build{}
	require.NoError(t, store.SaveBuild(ctx, b, nil, sampleFiles()))

	files, err := store.ListFiles(ctx, b.ID, false)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "pkg/a.go", files[0].Path)
	assert.False(t, files[0].HasSource)
	assert.True(t, files[1].HasSource)
	assert.Empty(t, files[1].Source, "listing does not load sources")

	changed, err := store.ListFiles(ctx, b.ID, true)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "h-b", changed[0].Hash)

	f, err := store.File(ctx, b.ID, "h-b")
	require.NoError(t, err)
	assert.True(t, f.Changed)
	assert.Equal(t, "package pkg\n", f.Source)
	assert.Equal(t, map[int]LineCoverage{1: {Covered: 1}, 2: {Missed: 1}}, f.Lines)
	assert.Equal(t, []int{2}, f.ModifiedLines)
	assert.Equal(t, MetricValue{Metric: "Line", Covered: 3, Missed: 1}, f.LineMetric())

	noSource, err := store.File(ctx, b.ID, "h-a")
	require.NoError(t, err)
	assert.False(t, noSource.HasSource)
}

// =============================================================================
// Client state
// =============================================================================

func TestClientStore(t *testing.T) {
	store := setupTestStore(t)

	alice := store.ClientStore("client-a")
	bob := store.ClientStore("client-b")

	_, ok, err := alice.Get("tab")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, alice.Set("tab", "#overview"))
	require.NoError(t, alice.Set("tab", "#files"))
	require.NoError(t, bob.Set("tab", "#branches"))

	v, ok, err := alice.Get("tab")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "#files", v)

	v, _, err = bob.Get("tab")
	require.NoError(t, err)
	assert.Equal(t, "#branches", v)
}

func TestMetricValue_CoveredPercentage(t *testing.T) {
	tests := []struct {
		name string
		m    MetricValue
		want float64
	}{
		{"empty", MetricValue{}, 100},
		{"half", MetricValue{Covered: 1, Missed: 1}, 50},
		{"none", MetricValue{Missed: 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.m.CoveredPercentage(), 0.0001)
		})
	}
}
