package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/jobs/monitor"
	"github.com/Kira-Projects/teleton/internal/models"
)

// Snapshot is the knowledge-base status as served to dashboards
type Snapshot struct {
	Status       models.KBStatusView `json:"status"`
	Monitoring   bool                `json:"monitoring"`
	Stale        bool                `json:"stale"`
	Failures     int                 `json:"consecutive_failures,omitempty"`
	LastError    string              `json:"last_error,omitempty"`
	LastPolledAt *time.Time          `json:"last_polled_at,omitempty"`
	Endpoint     string              `json:"endpoint"`
}

// Options configures the status service
type Options struct {
	Endpoint         string
	Interval         time.Duration
	FailureThreshold int
}

// Service owns the knowledge-base job monitor and fans its notifications out
// as events and generation history records
type Service struct {
	fetcher      monitor.Fetcher
	monitor      *monitor.Monitor
	eventService interfaces.EventService
	history      interfaces.GenerationStorage
	logger       arbor.ILogger
	opts         Options

	mu           sync.RWMutex
	ctx          context.Context
	latest       models.JobStatus
	lastPolledAt *time.Time
	stale        bool
	failures     int
	lastError    string
}

// NewService creates a status service. history may be nil, in which case
// completions are only published, not recorded.
func NewService(fetcher monitor.Fetcher, eventService interfaces.EventService, history interfaces.GenerationStorage, opts Options, logger arbor.ILogger) *Service {
	return &Service{
		fetcher:      fetcher,
		monitor:      monitor.New(fetcher, logger),
		eventService: eventService,
		history:      history,
		logger:       logger,
		opts:         opts,
		ctx:          context.Background(),
	}
}

// Start begins monitoring. The dashboard starts from the not-generating,
// not-loaded state until the first poll answers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.latest = models.JobStatus{}
	s.stale = false
	s.failures = 0
	s.lastError = ""
	s.lastPolledAt = nil
	s.mu.Unlock()

	err := s.monitor.Start(ctx, monitor.Options{
		Endpoint:         s.opts.Endpoint,
		Interval:         s.opts.Interval,
		InitialStatus:    models.JobStatus{},
		FailureThreshold: s.opts.FailureThreshold,
		OnStatusChange:   s.handleStatusChange,
		OnCompletion:     s.handleCompletion,
		OnStale:          s.handleStale,
	})
	if err != nil {
		return fmt.Errorf("failed to start status monitor: %w", err)
	}

	s.logger.Info().
		Str("endpoint", s.opts.Endpoint).
		Dur("interval", s.opts.Interval).
		Msg("Knowledge-base status monitoring started")

	return nil
}

// Stop ends monitoring; safe to call when not started
func (s *Service) Stop() {
	s.monitor.Stop()
}

// GetStatus returns the latest known status
func (s *Service) GetStatus() Snapshot {
	current, monitoring := s.monitor.Current()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !monitoring {
		current = s.latest
	}

	snapshot := Snapshot{
		Status:     models.NewKBStatusView(current),
		Monitoring: monitoring,
		Stale:      s.stale,
		Failures:   s.failures,
		LastError:  s.lastError,
		Endpoint:   s.opts.Endpoint,
	}
	if s.lastPolledAt != nil {
		t := *s.lastPolledAt
		snapshot.LastPolledAt = &t
	}
	return snapshot
}

// Check performs a single poll outside the monitor loop
func (s *Service) Check(ctx context.Context) (models.JobStatus, error) {
	return s.fetcher.Poll(ctx, s.opts.Endpoint)
}

// History returns recorded generation completions, most recent first
func (s *Service) History(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	if s.history == nil {
		return []models.GenerationRecord{}, nil
	}
	return s.history.ListRecords(ctx, limit)
}

func (s *Service) handleStatusChange(status models.JobStatus) {
	now := time.Now().UTC()

	s.mu.Lock()
	s.latest = status
	s.lastPolledAt = &now
	wasStale := s.stale
	s.stale = false
	s.failures = 0
	s.lastError = ""
	ctx := s.ctx
	s.mu.Unlock()

	if wasStale {
		s.logger.Info().Msg("Knowledge-base status endpoint reachable again")
	}

	s.publish(ctx, interfaces.Event{
		Type:    interfaces.EventKBStatusChanged,
		Payload: models.NewKBStatusView(status),
	})
}

func (s *Service) handleCompletion() {
	s.mu.RLock()
	status := s.latest.Clone()
	ctx := s.ctx
	s.mu.RUnlock()

	record := &models.GenerationRecord{
		ID:             uuid.New().String(),
		CompletedAt:    time.Now().UTC(),
		DocumentsCount: status.ItemCount,
		Ready:          status.IsReady,
		ReportedAt:     status.LastCompletedAt,
	}

	logEvent := s.logger.Info().Str("record_id", record.ID).Bool("ready", record.Ready)
	if n, ok := status.Items(); ok {
		logEvent = logEvent.Int("documents_count", n)
	}
	logEvent.Msg("Knowledge base generation completed")

	if s.history != nil {
		if err := s.history.SaveRecord(ctx, record); err != nil {
			s.logger.Warn().Err(err).Str("record_id", record.ID).Msg("Failed to record generation completion")
		}
	}

	s.publish(ctx, interfaces.Event{
		Type:    interfaces.EventKBGenerationCompleted,
		Payload: record,
	})
}

func (s *Service) handleStale(err error, failures int) {
	s.mu.Lock()
	s.stale = true
	s.failures = failures
	s.lastError = err.Error()
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Warn().
		Err(err).
		Int("failures", failures).
		Msg("Knowledge-base status is stale")

	s.publish(ctx, interfaces.Event{
		Type: interfaces.EventKBStatusStale,
		Payload: map[string]interface{}{
			"failures": failures,
			"error":    err.Error(),
		},
	})
}

func (s *Service) publish(ctx context.Context, event interfaces.Event) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(event.Type)).Msg("Failed to publish event")
	}
}
