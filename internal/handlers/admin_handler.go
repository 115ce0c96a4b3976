package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/models"
	"github.com/Kira-Projects/teleton/internal/services/admin"
)

// AdminHandler serves the admin dashboard operations
type AdminHandler struct {
	adminService *admin.Service
	logger       arbor.ILogger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *admin.Service, logger arbor.ILogger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// GetSupportConfigHandler handles GET /api/support-config
func (h *AdminHandler) GetSupportConfigHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	config, err := h.adminService.GetSupportConfig(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to load support configuration")
		return
	}
	WriteJSON(w, http.StatusOK, config)
}

// SaveSupportConfigHandler handles POST /api/support-config
func (h *AdminHandler) SaveSupportConfigHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var config models.SupportConfig
	if !DecodeJSON(w, r, &config) {
		return
	}
	if err := h.adminService.SaveSupportConfig(r.Context(), &config); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to save support configuration")
		return
	}
	WriteSuccess(w, "Support configuration saved")
}

// UnansweredQueriesHandler handles GET /api/unanswered-queries?refresh=true
func (h *AdminHandler) UnansweredQueriesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	queries, err := h.adminService.UnansweredQueries(r.Context(), GetBoolParam(r, "refresh"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to load unanswered queries")
		return
	}

	WriteJSON(w, http.StatusOK, models.UnansweredQueriesResponse{Queries: queries})
}

// MarkProcessedHandler handles POST /api/mark-processed with a JSON array of
// query texts, answering with the reloaded unanswered queries
func (h *AdminHandler) MarkProcessedHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var queries []string
	if !DecodeJSON(w, r, &queries) {
		return
	}

	remaining, err := h.adminService.MarkProcessed(r.Context(), queries...)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to mark queries as processed")
		return
	}

	WriteJSON(w, http.StatusOK, models.UnansweredQueriesResponse{Queries: remaining})
}

// UploadedFilesHandler handles GET /api/uploaded-files?refresh=true
func (h *AdminHandler) UploadedFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	files, err := h.adminService.UploadedFiles(r.Context(), GetBoolParam(r, "refresh"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to load uploaded files")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"files":  files,
		"counts": h.adminService.FileStatusCounts(),
	})
}
