package interfaces

import (
	"context"

	"github.com/Kira-Projects/teleton/internal/models"
)

// GenerationStorage persists the history of completed knowledge-base generation runs
type GenerationStorage interface {
	SaveRecord(ctx context.Context, record *models.GenerationRecord) error
	ListRecords(ctx context.Context, limit int) ([]models.GenerationRecord, error)
	LatestRecord(ctx context.Context) (*models.GenerationRecord, error)
	CountRecords(ctx context.Context) (int, error)
}

// StorageManager owns the storage backends
type StorageManager interface {
	GenerationStorage() GenerationStorage
	Close() error
}
