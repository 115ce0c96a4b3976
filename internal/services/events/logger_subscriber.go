package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		switch payload := event.Payload.(type) {
		case models.KBStatusView:
			logEvent = logEvent.
				Bool("is_generating", payload.IsGenerating).
				Bool("rag_system_loaded", payload.RAGSystemLoaded)
		case *models.GenerationRecord:
			logEvent = logEvent.Str("record_id", payload.ID)
		case []models.UploadedFile:
			logEvent = logEvent.Int("files", len(payload))
		case []models.UnansweredQuery:
			logEvent = logEvent.Int("queries", len(payload))
		case map[string]interface{}:
			if failures, ok := payload["failures"].(int); ok {
				logEvent = logEvent.Int("failures", failures)
			}
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	for _, eventType := range interfaces.AllEventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Debug().
		Int("event_type_count", len(interfaces.AllEventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
