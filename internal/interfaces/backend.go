package interfaces

import (
	"context"

	"github.com/Kira-Projects/teleton/internal/models"
)

// BackendClient is the REST surface of the RAG backend used by the admin and chat services
type BackendClient interface {
	// Support configuration
	GetSupportConfig(ctx context.Context) (*models.SupportConfig, error)
	SaveSupportConfig(ctx context.Context, config *models.SupportConfig) error

	// Unanswered queries
	ListUnansweredQueries(ctx context.Context) ([]models.UnansweredQuery, error)
	MarkProcessed(ctx context.Context, queries ...string) error

	// Knowledge-base files
	ListUploadedFiles(ctx context.Context) ([]models.UploadedFile, error)

	// Public chat
	SendChatMessage(ctx context.Context, message string) error
	CheckReply(ctx context.Context) (*models.ChatReply, error)

	// Appointments
	AppointmentSlots(ctx context.Context, date string) ([]string, error)
	ScheduleAppointment(ctx context.Context, appointment *models.Appointment) error
}
