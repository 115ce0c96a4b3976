package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/interfaces"
)

// SchedulerHandler exposes the background refresh jobs
type SchedulerHandler struct {
	schedulerService interfaces.SchedulerService
	logger           arbor.ILogger
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(schedulerService interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		schedulerService: schedulerService,
		logger:           logger,
	}
}

// ListJobsHandler handles GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.schedulerService.GetAllJobStatuses())
}

// TriggerJobHandler handles POST /api/scheduler/trigger?job=<name>
func (h *SchedulerHandler) TriggerJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	name := r.URL.Query().Get("job")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Job name is required")
		return
	}

	if err := h.schedulerService.TriggerJob(name); err != nil {
		h.logger.Warn().Err(err).Str("job_name", name).Msg("Failed to trigger job")
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":  "started",
		"message": "Job triggered",
	})
}
