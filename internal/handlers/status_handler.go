package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/services/status"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// StatusHandler serves the knowledge-base generation status
type StatusHandler struct {
	statusService *status.Service
	logger        arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(statusService *status.Service, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		logger:        logger,
	}
}

// GetStatusHandler handles GET /api/kb-status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.statusService.GetStatus())
}

// GetHistoryHandler handles GET /api/kb-history?limit=N
func (h *StatusHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := GetLimitParam(r, defaultHistoryLimit, maxHistoryLimit)
	records, err := h.statusService.History(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load generation history")
		WriteError(w, http.StatusInternalServerError, "Failed to load generation history")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}
