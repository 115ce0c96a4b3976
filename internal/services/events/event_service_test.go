package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

func TestPublishSync_DeliversToAllSubscribers(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	var calls int32
	handler := func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}
	require.NoError(t, service.Subscribe(interfaces.EventKBGenerationCompleted, handler))
	require.NoError(t, service.Subscribe(interfaces.EventKBGenerationCompleted, handler))

	err := service.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventKBGenerationCompleted,
		Payload: &models.GenerationRecord{ID: "rec-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPublishSync_ReturnsHandlerError(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	boom := errors.New("boom")
	require.NoError(t, service.Subscribe(interfaces.EventKBStatusStale, func(ctx context.Context, event interfaces.Event) error {
		return boom
	}))

	err := service.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventKBStatusStale,
		Payload: map[string]interface{}{"failures": 3},
	})
	assert.ErrorIs(t, err, boom)
}

func TestPublish_Async(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	received := make(chan models.KBStatusView, 1)
	require.NoError(t, service.Subscribe(interfaces.EventKBStatusChanged, func(ctx context.Context, event interfaces.Event) error {
		received <- event.Payload.(models.KBStatusView)
		return nil
	}))

	require.NoError(t, service.Publish(context.Background(), interfaces.Event{
		Type:    interfaces.EventKBStatusChanged,
		Payload: models.KBStatusView{IsGenerating: true},
	}))

	select {
	case view := <-received:
		assert.True(t, view.IsGenerating)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublish_HandlerPanicIsRecovered(t *testing.T) {
	service := NewService(arbor.NewLogger())
	defer service.Close()

	require.NoError(t, service.Subscribe(interfaces.EventUploadedFilesRefreshed, func(ctx context.Context, event interfaces.Event) error {
		panic("handler bug")
	}))

	assert.NotPanics(t, func() {
		_ = service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventUploadedFilesRefreshed})
	})
}

func TestSubscribe_RejectsNilAndClosed(t *testing.T) {
	service := NewService(arbor.NewLogger())

	assert.Error(t, service.Subscribe(interfaces.EventKBStatusChanged, nil))

	require.NoError(t, service.Close())
	assert.Error(t, service.Subscribe(interfaces.EventKBStatusChanged, func(ctx context.Context, event interfaces.Event) error {
		return nil
	}))
}

func TestLoggerSubscriber_HandlesAllPayloads(t *testing.T) {
	subscriber := NewLoggerSubscriber(arbor.NewLogger())
	ctx := context.Background()

	payloads := []interface{}{
		models.KBStatusView{RAGSystemLoaded: true},
		&models.GenerationRecord{ID: "rec-1"},
		[]models.UploadedFile{{ID: "f1"}},
		[]models.UnansweredQuery{{Query: "q"}},
		map[string]interface{}{"failures": 5},
		nil,
	}
	for _, payload := range payloads {
		assert.NoError(t, subscriber(ctx, interfaces.Event{Type: interfaces.EventKBStatusChanged, Payload: payload}))
	}
}
