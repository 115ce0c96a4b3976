package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", WithHTTPClient(server.Client()), WithLogger(arbor.NewLogger()), WithRateLimit(100))
}

func TestClient_GetSupportConfig(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/support-config", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"support_email":"help@example.org","support_phone":"+56912345678","fallback_message":"Call us"}`))
	})

	config, err := client.GetSupportConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "help@example.org", config.SupportEmail)
	assert.Equal(t, "Call us", config.FallbackMessage)
}

func TestClient_SaveSupportConfig(t *testing.T) {
	var got models.SupportConfig
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := client.SaveSupportConfig(context.Background(), &models.SupportConfig{SupportEmail: "a@b.cl"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.cl", got.SupportEmail)
}

func TestClient_MarkProcessedSendsArray(t *testing.T) {
	var body []string
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/mark-processed", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
	})

	require.NoError(t, client.MarkProcessed(context.Background(), "¿horario?"))
	assert.Equal(t, []string{"¿horario?"}, body)

	// Nothing to mark means no request
	require.NoError(t, client.MarkProcessed(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestClient_ListUploadedFiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"files":[{"id":"1","name":"guia.pdf","type":"application/pdf","size":2048,"uploadDate":"2024-05-01","status":"processed"}]}`))
	})

	files, err := client.ListUploadedFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, models.UploadedFileStatusProcessed, files[0].Status)
	assert.Equal(t, int64(2048), files[0].Size)
}

func TestClient_ListUnansweredQueries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"queries":[{"query":"q1","session_id":"s1","timestamp":"t","processed":false,"source":"chat"}]}`))
	})

	queries, err := client.ListUnansweredQueries(context.Background())
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "s1", queries[0].SessionID)
}

func TestClient_ChatRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat/send":
			var msg models.ChatMessage
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
			assert.Equal(t, "hola", msg.Message)
		case "/api/chat/check-reply":
			w.Write([]byte(`{"hasReply":true,"message":"Bienvenido"}`))
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, client.SendChatMessage(context.Background(), "hola"))
	reply, err := client.CheckReply(context.Background())
	require.NoError(t, err)
	assert.True(t, reply.HasReply)
	assert.Equal(t, "Bienvenido", reply.Message)
}

func TestClient_AppointmentSlots(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments/slots/2024-05-02", r.URL.Path)
		w.Write([]byte(`["09:00","10:30"]`))
	})

	slots, err := client.AppointmentSlots(context.Background(), "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:30"}, slots)
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})

	_, err := client.ListUploadedFiles(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not here", apiErr.Body)
	assert.Equal(t, "/uploaded-files", apiErr.Endpoint)
	assert.True(t, IsNotFound(err))
}

func TestClient_BaseURLTrimmed(t *testing.T) {
	assert.Equal(t, "https://api.example.com", NewClient("https://api.example.com///").BaseURL())
}
