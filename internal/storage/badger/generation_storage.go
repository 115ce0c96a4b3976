package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

// ErrNoRecords is returned by LatestRecord when nothing has been recorded yet
var ErrNoRecords = errors.New("no generation records")

// GenerationStorage implements interfaces.GenerationStorage for Badger
type GenerationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewGenerationStorage creates a new GenerationStorage instance
func NewGenerationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.GenerationStorage {
	return &GenerationStorage{
		db:     db,
		logger: logger,
	}
}

func (s *GenerationStorage) SaveRecord(ctx context.Context, record *models.GenerationRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record ID is required")
	}
	if record.CompletedAt.IsZero() {
		return fmt.Errorf("record completion time is required")
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save generation record: %w", err)
	}

	s.logger.Debug().
		Str("record_id", record.ID).
		Msg("Generation record saved")

	return nil
}

// ListRecords returns the most recent records first. limit <= 0 returns all.
func (s *GenerationStorage) ListRecords(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CompletedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.GenerationRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list generation records: %w", err)
	}
	return records, nil
}

func (s *GenerationStorage) LatestRecord(ctx context.Context) (*models.GenerationRecord, error) {
	records, err := s.ListRecords(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return &records[0], nil
}

func (s *GenerationStorage) CountRecords(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.GenerationRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation records: %w", err)
	}
	return int(count), nil
}
