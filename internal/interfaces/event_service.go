package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventKBStatusChanged is published on every successful knowledge-base status poll.
	// Payload: models.KBStatusView
	EventKBStatusChanged EventType = "kb_status_changed"

	// EventKBGenerationCompleted is published once per observed generation run completion.
	// Payload: *models.GenerationRecord
	EventKBGenerationCompleted EventType = "kb_generation_completed"

	// EventKBStatusStale is published when status polling keeps failing.
	// Payload: map[string]interface{} with "failures" and "error"
	EventKBStatusStale EventType = "kb_status_stale"

	// EventUploadedFilesRefreshed is published after the uploaded file list is reloaded.
	// Payload: []models.UploadedFile
	EventUploadedFilesRefreshed EventType = "uploaded_files_refreshed"

	// EventUnansweredQueriesRefreshed is published after the unanswered queries are reloaded.
	// Payload: []models.UnansweredQuery
	EventUnansweredQueriesRefreshed EventType = "unanswered_queries_refreshed"
)

// AllEventTypes lists every event type the service publishes
var AllEventTypes = []EventType{
	EventKBStatusChanged,
	EventKBGenerationCompleted,
	EventKBStatusStale,
	EventUploadedFilesRefreshed,
	EventUnansweredQueriesRefreshed,
}

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
