package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}
	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager.(*Manager)
}

func TestGenerationStorage_SaveAndList(t *testing.T) {
	storage := newTestManager(t).GenerationStorage()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		count := (i + 1) * 10
		require.NoError(t, storage.SaveRecord(ctx, &models.GenerationRecord{
			ID:             id,
			CompletedAt:    base.Add(time.Duration(i) * time.Hour),
			DocumentsCount: &count,
			Ready:          true,
		}))
	}

	records, err := storage.ListRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "a", records[2].ID)

	limited, err := storage.ListRecords(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	latest, err := storage.LatestRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)
	require.NotNil(t, latest.DocumentsCount)
	assert.Equal(t, 30, *latest.DocumentsCount)

	count, err := storage.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGenerationStorage_LatestOnEmpty(t *testing.T) {
	storage := newTestManager(t).GenerationStorage()

	_, err := storage.LatestRecord(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestGenerationStorage_SaveValidates(t *testing.T) {
	storage := newTestManager(t).GenerationStorage()
	ctx := context.Background()

	assert.Error(t, storage.SaveRecord(ctx, &models.GenerationRecord{CompletedAt: time.Now()}))
	assert.Error(t, storage.SaveRecord(ctx, &models.GenerationRecord{ID: "x"}))
}

func TestGenerationStorage_UpsertReplaces(t *testing.T) {
	storage := newTestManager(t).GenerationStorage()
	ctx := context.Background()

	record := &models.GenerationRecord{ID: "same", CompletedAt: time.Now()}
	require.NoError(t, storage.SaveRecord(ctx, record))
	record.Ready = true
	require.NoError(t, storage.SaveRecord(ctx, record))

	count, err := storage.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
