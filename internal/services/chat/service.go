// Package chat relays the public chat and appointment booking to the backend.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

const dateLayout = "2006-01-02"

// Service sends chat messages, tracks replies and books appointments
type Service struct {
	backend  interfaces.BackendClient
	watcher  *ReplyWatcher
	logger   arbor.ILogger
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates the chat service
func NewService(backend interfaces.BackendClient, replyInterval, replyTimeout time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		backend:  backend,
		watcher:  NewReplyWatcher(backend, replyInterval, replyTimeout, logger),
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Send forwards a message and starts waiting for the reply. The watch runs on
// watchCtx so it outlives the request that sent the message.
func (s *Service) Send(ctx, watchCtx context.Context, message string) error {
	msg := models.ChatMessage{Message: strings.TrimSpace(message)}
	if err := s.validate.Struct(msg); err != nil {
		return common.NewValidationError(err)
	}

	if err := s.backend.SendChatMessage(ctx, msg.Message); err != nil {
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	s.watcher.Watch(watchCtx)
	return nil
}

// Reply returns the state of the reply to the last message sent
func (s *Service) Reply() ReplyState {
	return s.watcher.State()
}

// Close abandons any pending reply watch
func (s *Service) Close() {
	s.watcher.Stop()
}

// Slots returns the free appointment times for a YYYY-MM-DD date
func (s *Service) Slots(ctx context.Context, date string) ([]string, error) {
	if err := s.checkBookableDate(date); err != nil {
		return nil, err
	}

	slots, err := s.backend.AppointmentSlots(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment slots: %w", err)
	}
	return slots, nil
}

// Schedule validates and books an appointment
func (s *Service) Schedule(ctx context.Context, appointment *models.Appointment) error {
	appointment.Email = strings.TrimSpace(appointment.Email)
	appointment.RUT = strings.TrimSpace(appointment.RUT)

	if err := s.validate.Struct(appointment); err != nil {
		return common.NewValidationError(err)
	}
	if err := s.checkBookableDate(appointment.Date); err != nil {
		return err
	}

	if err := s.backend.ScheduleAppointment(ctx, appointment); err != nil {
		return fmt.Errorf("failed to schedule appointment: %w", err)
	}

	s.logger.Info().
		Str("date", appointment.Date).
		Str("time", appointment.Time).
		Str("specialty", appointment.Specialty).
		Msg("Appointment scheduled")
	return nil
}

// checkBookableDate rejects malformed dates, past days and weekends
func (s *Service) checkBookableDate(date string) error {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return &common.ValidationError{Fields: []string{"date (format YYYY-MM-DD)"}, Err: err}
	}

	today, _ := time.Parse(dateLayout, s.now().Format(dateLayout))
	if day.Before(today) {
		return &common.ValidationError{Fields: []string{"date (in the past)"}}
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return &common.ValidationError{Fields: []string{"date (weekend)"}}
	}
	return nil
}
