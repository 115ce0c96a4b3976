package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/app"
	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/support-config":
			json.NewEncoder(w).Encode(models.SupportConfig{SupportEmail: "ayuda@teleton.cl"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(backend.Close)

	cfg := common.NewDefaultConfig()
	cfg.Backend.RESTAPI = backend.URL
	cfg.Backend.MailsAPIURL = backend.URL
	cfg.Monitor.Enabled = false
	cfg.Scheduler.QueriesRefresh = ""
	cfg.Storage.Badger.Path = filepath.Join(t.TempDir(), "db")

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	return New(application)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/kb-status", http.StatusOK},
		{http.MethodGet, "/api/kb-history", http.StatusOK},
		{http.MethodGet, "/api/support-config", http.StatusOK},
		{http.MethodPut, "/api/support-config", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/uploaded-files", http.StatusBadGateway},
		{http.MethodGet, "/api/scheduler/jobs", http.StatusOK},
		{http.MethodPost, "/api/scheduler/trigger?job=missing", http.StatusConflict},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/does-not-exist", http.StatusNotFound},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/favicon.ico", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/support-config", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"Internal server error"}`, rec.Body.String())
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "dashboard-7")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "dashboard-7", rec.Header().Get(requestIDHeader))
}
