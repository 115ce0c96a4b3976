// Package admin serves the knowledge-base administration data: support
// contact configuration, unanswered chat queries and uploaded files.
package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/backend"
	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

// Service caches backend admin data and keeps it fresh on generation completion
type Service struct {
	backend      interfaces.BackendClient
	eventService interfaces.EventService
	logger       arbor.ILogger
	validate     *validator.Validate

	mu              sync.RWMutex
	files           []models.UploadedFile
	filesLoadedAt   time.Time
	queries         []models.UnansweredQuery
	queriesLoadedAt time.Time
}

// NewService creates the admin service
func NewService(backend interfaces.BackendClient, eventService interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		backend:      backend,
		eventService: eventService,
		logger:       logger,
		validate:     validator.New(),
	}
}

// SubscribeToGenerationEvents reloads the uploaded file list whenever a
// knowledge-base generation run completes, since processing changes file statuses
func (s *Service) SubscribeToGenerationEvents() error {
	if s.eventService == nil {
		return nil
	}
	err := s.eventService.Subscribe(interfaces.EventKBGenerationCompleted, func(ctx context.Context, event interfaces.Event) error {
		_, err := s.ReloadUploadedFiles(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to generation events: %w", err)
	}

	s.logger.Debug().Msg("Admin service subscribed to generation events")
	return nil
}

// GetSupportConfig loads the support configuration from the backend
func (s *Service) GetSupportConfig(ctx context.Context) (*models.SupportConfig, error) {
	config, err := s.backend.GetSupportConfig(ctx)
	if backend.IsNotFound(err) {
		// Nothing saved yet
		s.logger.Debug().Msg("Support configuration not found, using empty configuration")
		return &models.SupportConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load support config: %w", err)
	}
	return config, nil
}

// SaveSupportConfig validates and stores the support configuration
func (s *Service) SaveSupportConfig(ctx context.Context, config *models.SupportConfig) error {
	config.SupportEmail = strings.TrimSpace(config.SupportEmail)
	config.SupportPhone = strings.TrimSpace(config.SupportPhone)

	if err := s.validate.Struct(config); err != nil {
		return common.NewValidationError(err)
	}

	if err := s.backend.SaveSupportConfig(ctx, config); err != nil {
		return fmt.Errorf("failed to save support config: %w", err)
	}

	s.logger.Info().
		Str("support_email", config.SupportEmail).
		Msg("Support configuration saved")
	return nil
}

// UnansweredQueries returns the cached queries, loading them when the cache
// is empty or refresh is set
func (s *Service) UnansweredQueries(ctx context.Context, refresh bool) ([]models.UnansweredQuery, error) {
	s.mu.RLock()
	cached := s.queries
	loaded := !s.queriesLoadedAt.IsZero()
	s.mu.RUnlock()

	if loaded && !refresh {
		return copyQueries(cached), nil
	}
	return s.RefreshUnansweredQueries(ctx)
}

// RefreshUnansweredQueries reloads the unanswered queries from the backend
func (s *Service) RefreshUnansweredQueries(ctx context.Context) ([]models.UnansweredQuery, error) {
	queries, err := s.backend.ListUnansweredQueries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load unanswered queries: %w", err)
	}
	if queries == nil {
		queries = []models.UnansweredQuery{}
	}

	s.mu.Lock()
	s.queries = queries
	s.queriesLoadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(queries)).Msg("Unanswered queries refreshed")
	s.publish(ctx, interfaces.EventUnansweredQueriesRefreshed, copyQueries(queries))

	return copyQueries(queries), nil
}

// MarkProcessed marks queries as handled and reloads the list
func (s *Service) MarkProcessed(ctx context.Context, queries ...string) ([]models.UnansweredQuery, error) {
	cleaned := make([]string, 0, len(queries))
	for _, q := range queries {
		if strings.TrimSpace(q) != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return nil, &common.ValidationError{Fields: []string{"queries (required)"}}
	}

	if err := s.backend.MarkProcessed(ctx, cleaned...); err != nil {
		return nil, fmt.Errorf("failed to mark queries processed: %w", err)
	}

	s.logger.Info().Int("count", len(cleaned)).Msg("Queries marked as processed")

	return s.RefreshUnansweredQueries(ctx)
}

// UploadedFiles returns the cached uploaded files, loading them when the
// cache is empty or refresh is set
func (s *Service) UploadedFiles(ctx context.Context, refresh bool) ([]models.UploadedFile, error) {
	s.mu.RLock()
	cached := s.files
	loaded := !s.filesLoadedAt.IsZero()
	s.mu.RUnlock()

	if loaded && !refresh {
		return copyFiles(cached), nil
	}
	return s.ReloadUploadedFiles(ctx)
}

// ReloadUploadedFiles reloads the uploaded file list from the backend
func (s *Service) ReloadUploadedFiles(ctx context.Context) ([]models.UploadedFile, error) {
	files, err := s.backend.ListUploadedFiles(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reload uploaded files")
		return nil, fmt.Errorf("failed to load uploaded files: %w", err)
	}
	if files == nil {
		files = []models.UploadedFile{}
	}

	s.mu.Lock()
	s.files = files
	s.filesLoadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info().Int("count", len(files)).Msg("Uploaded files reloaded")
	s.publish(ctx, interfaces.EventUploadedFilesRefreshed, copyFiles(files))

	return copyFiles(files), nil
}

// FileStatusCounts tallies cached uploaded files by status
func (s *Service) FileStatusCounts() map[models.UploadedFileStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.UploadedFileStatus]int)
	for _, f := range s.files {
		counts[f.Status]++
	}
	return counts
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish event")
	}
}

func copyFiles(files []models.UploadedFile) []models.UploadedFile {
	out := make([]models.UploadedFile, len(files))
	copy(out, files)
	return out
}

func copyQueries(queries []models.UnansweredQuery) []models.UnansweredQuery {
	out := make([]models.UnansweredQuery, len(queries))
	copy(out, queries)
	return out
}
