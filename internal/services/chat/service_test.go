package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/backend/backendtest"
	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/models"
)

// Wednesday
var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(backend *backendtest.MockClient) *Service {
	s := NewService(backend, 5*time.Millisecond, time.Second, arbor.NewLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func validAppointment() *models.Appointment {
	return &models.Appointment{
		Date:      "2024-05-02",
		Time:      "09:30",
		Name:      "Ana Pérez",
		RUT:       "12.345.678-5",
		Institute: "Teletón Santiago",
		Specialty: "Fisiatría",
		Email:     "ana@example.cl",
	}
}

func TestSend_WatchesUntilReply(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("SendChatMessage", mock.Anything, "hola").Return(nil)
	backend.On("CheckReply", mock.Anything).Return(&models.ChatReply{HasReply: false}, nil).Twice()
	backend.On("CheckReply", mock.Anything).Return(&models.ChatReply{HasReply: true, Message: "¡Hola!"}, nil)

	service := newTestService(backend)
	defer service.Close()

	require.NoError(t, service.Send(context.Background(), context.Background(), "  hola "))
	assert.True(t, service.Reply().Pending)

	require.Eventually(t, func() bool { return !service.Reply().Pending }, 2*time.Second, 5*time.Millisecond)

	state := service.Reply()
	require.NotNil(t, state.Reply)
	assert.Equal(t, "¡Hola!", state.Reply.Message)
	assert.False(t, state.TimedOut)
}

func TestSend_TimesOut(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("SendChatMessage", mock.Anything, "hola").Return(nil)
	backend.On("CheckReply", mock.Anything).Return(nil, errors.New("unavailable"))

	service := NewService(backend, 5*time.Millisecond, 30*time.Millisecond, arbor.NewLogger())
	defer service.Close()

	require.NoError(t, service.Send(context.Background(), context.Background(), "hola"))

	require.Eventually(t, func() bool { return !service.Reply().Pending }, 2*time.Second, 5*time.Millisecond)
	state := service.Reply()
	assert.True(t, state.TimedOut)
	assert.Nil(t, state.Reply)
}

func TestSend_RejectsEmptyMessage(t *testing.T) {
	backend := &backendtest.MockClient{}
	service := newTestService(backend)

	err := service.Send(context.Background(), context.Background(), "   ")

	assert.True(t, common.IsValidationError(err))
	backend.AssertNotCalled(t, "SendChatMessage", mock.Anything, mock.Anything)
}

func TestReplyWatcher_NewWatchSupersedesOld(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("CheckReply", mock.Anything).Return(&models.ChatReply{HasReply: false}, nil)

	watcher := NewReplyWatcher(backend, 5*time.Millisecond, time.Second, arbor.NewLogger())
	watcher.Watch(context.Background())
	watcher.Watch(context.Background())

	assert.True(t, watcher.State().Pending)
	watcher.Stop()
	assert.False(t, watcher.State().Pending)
}

func TestSchedule(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("ScheduleAppointment", mock.Anything, mock.Anything).Return(nil)
	service := newTestService(backend)

	require.NoError(t, service.Schedule(context.Background(), validAppointment()))
	backend.AssertExpectations(t)
}

func TestSchedule_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *models.Appointment)
	}{
		{"bad email", func(a *models.Appointment) { a.Email = "ana" }},
		{"missing name", func(a *models.Appointment) { a.Name = "" }},
		{"bad time", func(a *models.Appointment) { a.Time = "9am" }},
		{"past date", func(a *models.Appointment) { a.Date = "2024-04-30" }},
		{"weekend", func(a *models.Appointment) { a.Date = "2024-05-04" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &backendtest.MockClient{}
			service := newTestService(backend)

			appointment := validAppointment()
			tt.mutate(appointment)

			err := service.Schedule(context.Background(), appointment)
			assert.True(t, common.IsValidationError(err), "got %v", err)
			backend.AssertNotCalled(t, "ScheduleAppointment", mock.Anything, mock.Anything)
		})
	}
}

func TestSlots(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("AppointmentSlots", mock.Anything, "2024-05-01").Return([]string{"15:00"}, nil)
	service := newTestService(backend)

	slots, err := service.Slots(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"15:00"}, slots)

	_, err = service.Slots(context.Background(), "01-05-2024")
	assert.True(t, common.IsValidationError(err))
}
