package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkarras/chess-analysis/pkg/core"
)

func sampleReport(gameID string) *core.AnalysisReport {
	return &core.AnalysisReport{
		GameID: gameID,
		Moves: []core.MoveRecord{
			{
				Ply:          0,
				SAN:          "e4",
				UCI:          "e2e4",
				Side:         core.White,
				PointsBefore: 0.5,
				PointsAfter:  0.52,
				Gain:         0.02,
				Label:        core.LabelBest,
			},
		},
		Settings:  core.EngineConfig{Depth: 18, Threads: 2, HashMB: 128},
		CreatedAt: time.Now().UTC(),
	}
}

// storeUnderTest exercises the full Store contract against one backend.
func storeUnderTest(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	has, err := store.Has(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, has)

	report := sampleReport("game-1")
	require.NoError(t, store.Set(ctx, report.GameID, report))

	got, err := store.Get(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, "game-1", got.GameID)
	require.Len(t, got.Moves, 1)
	assert.Equal(t, "e4", got.Moves[0].SAN)
	assert.Equal(t, core.LabelBest, got.Moves[0].Label)
	assert.Equal(t, 18, got.Settings.Depth)

	has, err = store.Has(ctx, "game-1")
	require.NoError(t, err)
	assert.True(t, has)

	// Overwrite replaces, it does not duplicate.
	report.Moves[0].Label = core.LabelGood
	require.NoError(t, store.Set(ctx, report.GameID, report))
	got, err = store.Get(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, core.LabelGood, got.Moves[0].Label)

	for i := 2; i <= 4; i++ {
		id := fmt.Sprintf("game-%d", i)
		require.NoError(t, store.Set(ctx, id, sampleReport(id)))
	}
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"game-1", "game-2", "game-3", "game-4"}, ids)

	require.NoError(t, store.Delete(ctx, "game-1"))
	_, err = store.Get(ctx, "game-1")
	assert.ErrorIs(t, err, ErrNotFound)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	// Deleting an absent id is not an error.
	assert.NoError(t, store.Delete(ctx, "game-1"))
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemory())
}

func TestGormStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))

	storeUnderTest(t, store)
}

func TestGormStore_RowColumnsMirrorReport(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := NewGormStore(db)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Set(ctx, "game-1", sampleReport("game-1")))

	var rec ReportRecord
	require.NoError(t, db.First(&rec, "game_id = ?", "game-1").Error)
	assert.Equal(t, 1, rec.MoveCount)
	assert.Equal(t, 18, rec.Depth)
	assert.NotEmpty(t, rec.Document)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	storeUnderTest(t, store)
}

func TestBadgerStore_ReopenSeesData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "game-1", sampleReport("game-1")))
	require.NoError(t, store.Close())

	store, err = OpenBadgerStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	got, err := store.Get(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, "game-1", got.GameID)
}
