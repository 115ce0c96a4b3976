// Package backendtest provides a testify mock of the backend client
package backendtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

// MockClient is a mock implementation of interfaces.BackendClient
type MockClient struct {
	mock.Mock
}

var _ interfaces.BackendClient = (*MockClient)(nil)

func (m *MockClient) GetSupportConfig(ctx context.Context) (*models.SupportConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportConfig), args.Error(1)
}

func (m *MockClient) SaveSupportConfig(ctx context.Context, config *models.SupportConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockClient) ListUnansweredQueries(ctx context.Context) ([]models.UnansweredQuery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UnansweredQuery), args.Error(1)
}

func (m *MockClient) MarkProcessed(ctx context.Context, queries ...string) error {
	args := m.Called(ctx, queries)
	return args.Error(0)
}

func (m *MockClient) ListUploadedFiles(ctx context.Context) ([]models.UploadedFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UploadedFile), args.Error(1)
}

func (m *MockClient) SendChatMessage(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockClient) CheckReply(ctx context.Context) (*models.ChatReply, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatReply), args.Error(1)
}

func (m *MockClient) AppointmentSlots(ctx context.Context, date string) ([]string, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) ScheduleAppointment(ctx context.Context, appointment *models.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}
