package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Dashboard page (also the catch-all; unknown non-API paths 404 there)
	mux.HandleFunc("/", s.app.PageHandler.ServeDashboard)

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Knowledge-base status
	mux.HandleFunc("/api/kb-status", s.app.StatusHandler.GetStatusHandler)   // GET - current snapshot
	mux.HandleFunc("/api/kb-history", s.app.StatusHandler.GetHistoryHandler) // GET - completed generations

	// API routes - Admin
	mux.HandleFunc("/api/support-config", s.handleSupportConfigRoute)                    // GET, POST
	mux.HandleFunc("/api/unanswered-queries", s.app.AdminHandler.UnansweredQueriesHandler) // GET
	mux.HandleFunc("/api/mark-processed", s.app.AdminHandler.MarkProcessedHandler)         // POST
	mux.HandleFunc("/api/uploaded-files", s.app.AdminHandler.UploadedFilesHandler)         // GET

	// API routes - Public chat and appointments
	mux.HandleFunc("/api/chat/send", s.app.ChatHandler.SendHandler)
	mux.HandleFunc("/api/chat/reply", s.app.ChatHandler.ReplyHandler)
	mux.HandleFunc("/api/appointments/slots/", s.app.ChatHandler.SlotsHandler) // GET /{date}
	mux.HandleFunc("/api/appointments", s.app.ChatHandler.ScheduleHandler)     // POST

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/jobs", s.app.SchedulerHandler.ListJobsHandler)
	mux.HandleFunc("/api/scheduler/trigger", s.app.SchedulerHandler.TriggerJobHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

func (s *Server) handleSupportConfigRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":  s.app.AdminHandler.GetSupportConfigHandler,
		"POST": s.app.AdminHandler.SaveSupportConfigHandler,
	})
}
