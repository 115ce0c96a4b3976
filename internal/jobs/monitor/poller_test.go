package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newStatusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPoller_Poll_FullBody(t *testing.T) {
	server := newStatusServer(t, http.StatusOK,
		`{"is_generating":false,"rag_system_loaded":true,"documents_count":42,"last_generation_time":"2024-05-01T10:00:00Z"}`)

	poller := NewPoller(server.Client(), arbor.NewLogger())
	status, err := poller.Poll(context.Background(), server.URL)
	require.NoError(t, err)

	assert.False(t, status.IsRunning)
	assert.True(t, status.IsReady)
	require.NotNil(t, status.ItemCount)
	assert.Equal(t, 42, *status.ItemCount)
	require.NotNil(t, status.LastCompletedAt)
	assert.True(t, status.LastCompletedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestPoller_Poll_OptionalFieldsAbsent(t *testing.T) {
	server := newStatusServer(t, http.StatusOK, `{"is_generating":true,"rag_system_loaded":false}`)

	status, err := NewPoller(server.Client(), arbor.NewLogger()).Poll(context.Background(), server.URL)
	require.NoError(t, err)

	assert.True(t, status.IsRunning)
	assert.False(t, status.IsReady)
	assert.Nil(t, status.ItemCount)
	assert.Nil(t, status.LastCompletedAt)
}

func TestPoller_Poll_Non2xx(t *testing.T) {
	server := newStatusServer(t, http.StatusServiceUnavailable, `{"detail":"down"}`)

	_, err := NewPoller(server.Client(), arbor.NewLogger()).Poll(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, server.URL, fetchErr.Endpoint)
}

func TestPoller_Poll_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewPoller(http.DefaultClient, arbor.NewLogger()).Poll(context.Background(), url)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

func TestPoller_Poll_MalformedBody(t *testing.T) {
	server := newStatusServer(t, http.StatusOK, `not json`)

	_, err := NewPoller(server.Client(), arbor.NewLogger()).Poll(context.Background(), server.URL)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"missing is_generating", `{"rag_system_loaded":true}`, true},
		{"missing rag_system_loaded", `{"is_generating":false}`, true},
		{"wrong type", `{"is_generating":"yes","rag_system_loaded":true}`, true},
		{"negative count", `{"is_generating":false,"rag_system_loaded":true,"documents_count":-1}`, true},
		{"null count", `{"is_generating":false,"rag_system_loaded":true,"documents_count":null}`, false},
		{"unparseable time", `{"is_generating":false,"rag_system_loaded":true,"last_generation_time":"yesterday"}`, false},
		{"extra fields", `{"is_generating":false,"rag_system_loaded":true,"queue":[1,2]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStatus([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeStatus_UnparseableTimeIsUnknown(t *testing.T) {
	status, err := DecodeStatus([]byte(`{"is_generating":false,"rag_system_loaded":true,"last_generation_time":"yesterday"}`))
	require.NoError(t, err)
	assert.Nil(t, status.LastCompletedAt)
}

func TestDecodeStatus_NaiveTimestamp(t *testing.T) {
	status, err := DecodeStatus([]byte(`{"is_generating":false,"rag_system_loaded":true,"last_generation_time":"2024-05-01T10:00:00.123456"}`))
	require.NoError(t, err)
	require.NotNil(t, status.LastCompletedAt)
	assert.Equal(t, 2024, status.LastCompletedAt.Year())
	assert.Equal(t, time.UTC, status.LastCompletedAt.Location())
}
