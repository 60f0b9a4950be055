package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:         id,
		Objective:  "pollution",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Iterations: 4000,
		Workers:    4,
		Metric:     123.5,
		ModuleCost: 10101,
		Buildings:  7.25,
		Pollution:  123.5,
		Assignment: Assignment{
			"iron-plate": {Modules: []string{"E1", "__"}, Beacons: []string{"S3"}},
		},
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	t.Cleanup(func() { _ = CloseIfSupported(sqlite) })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Init(ctx))

			run := sampleRun("run-1", base)
			require.NoError(t, store.SaveRun(ctx, run))

			got, ok, err := store.GetRun(ctx, "run-1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, run.Assignment, got.Assignment)
			assert.Equal(t, run.Metric, got.Metric)
			assert.True(t, run.StartedAt.Equal(got.StartedAt))

			run.Metric = 99
			require.NoError(t, store.SaveRun(ctx, run), "saving again replaces the run")
			got, _, err = store.GetRun(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, 99.0, got.Metric)

			_, ok, err = store.GetRun(ctx, "nope")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.ErrorContains(t, store.SaveRun(ctx, Run{}), "run id is required")
		})
	}
}

func TestStoreListRuns(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Init(ctx))
			for i, id := range []string{"old", "newest", "middle"} {
				offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
				require.NoError(t, store.SaveRun(ctx, sampleRun(id, base.Add(offset))))
			}

			runs, err := store.ListRuns(ctx, 0)
			require.NoError(t, err)
			require.Len(t, runs, 3)
			assert.Equal(t, []string{"newest", "middle", "old"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

			runs, err = store.ListRuns(ctx, 2)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "newest", runs[0].ID)
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewMemoryStore().SaveRun(ctx, sampleRun("a", time.Now())))
	assert.Error(t, NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")).SaveRun(ctx, sampleRun("a", time.Now())))
	assert.ErrorContains(t, NewSQLiteStore("").Init(ctx), "sqlite path is required")
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, CloseIfSupported(s))

	s, err = NewStore("sqlite", "runs.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore("badger", "")
	assert.ErrorContains(t, err, "unsupported store backend: badger")
}

func TestDecodeRunVersionMismatch(t *testing.T) {
	data, err := encodeRun(sampleRun("a", time.Now()))
	require.NoError(t, err)
	run, err := decodeRun(data)
	require.NoError(t, err)
	assert.Equal(t, "a", run.ID)

	_, err = decodeRun([]byte(`{"version": 7, "id": "a"}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)
}
