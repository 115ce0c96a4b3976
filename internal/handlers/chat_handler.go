package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/models"
	"github.com/Kira-Projects/teleton/internal/services/chat"
)

const slotsPathPrefix = "/api/appointments/slots/"

// ChatHandler relays the public chat and appointment booking
type ChatHandler struct {
	chatService *chat.Service
	// watchCtx bounds reply watches; they outlive the request that sent the message
	watchCtx context.Context
	logger   arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service, watchCtx context.Context, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		watchCtx:    watchCtx,
		logger:      logger,
	}
}

// SendHandler handles POST /api/chat/send
func (h *ChatHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.ChatMessage
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.chatService.Send(r.Context(), h.watchCtx, req.Message); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to send message")
		return
	}

	h.logger.Debug().
		Int("message_length", len(req.Message)).
		Msg("Chat message relayed")

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":  "sent",
		"message": "Waiting for reply",
	})
}

// ReplyHandler handles GET /api/chat/reply
func (h *ChatHandler) ReplyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.chatService.Reply())
}

// SlotsHandler handles GET /api/appointments/slots/{date}
func (h *ChatHandler) SlotsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	date := strings.Trim(strings.TrimPrefix(r.URL.Path, slotsPathPrefix), "/")
	if date == "" {
		WriteError(w, http.StatusBadRequest, "Date is required")
		return
	}

	slots, err := h.chatService.Slots(r.Context(), date)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to load appointment slots")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"slots": slots,
	})
}

// ScheduleHandler handles POST /api/appointments
func (h *ChatHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var appointment models.Appointment
	if !DecodeJSON(w, r, &appointment) {
		return
	}

	if err := h.chatService.Schedule(r.Context(), &appointment); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to schedule appointment")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":      "success",
		"appointment": appointment,
	})
}
