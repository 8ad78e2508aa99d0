package syncruns

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sync_runs (
    id          TEXT PRIMARY KEY,
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    success     INTEGER NOT NULL,
    message     TEXT NOT NULL,
    errors      INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func run(id string, finished time.Time, ok bool) Run {
	return Run{
		ID:         id,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
		Success:    ok,
		Message:    "Sync completed successfully",
	}
}

func TestLast_EmptyReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Last(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordAndLast_NewestWins(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, r.Record(ctx, run("a", base, true)))
	require.NoError(t, r.Record(ctx, run("b", base.Add(time.Minute), false)))

	got, err := r.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
	assert.False(t, got.Success)
	assert.True(t, got.FinishedAt.Equal(base.Add(time.Minute)))
}

func TestRecord_OverwritesSameID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first := run("a", now, false)
	first.Errors = 2
	require.NoError(t, r.Record(ctx, first))

	second := run("a", now, true)
	require.NoError(t, r.Record(ctx, second))

	runs, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Success)
	assert.Equal(t, 0, runs[0].Errors)
}

func TestPrune_KeepsNewest(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, r.Record(ctx, run(id, base.Add(time.Duration(i)*time.Minute), true)))
	}
	require.NoError(t, r.Prune(ctx, 2))

	runs, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "d", runs[0].ID)
	assert.Equal(t, "c", runs[1].ID)
}

func TestList_DBErrorWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.List(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select sync runs")
}
