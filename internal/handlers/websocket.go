package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/services/status"
)

const (
	// Message types not backed by an event
	MessageTypeHello    = "hello"
	MessageTypeKBStatus = "kb_status"

	writeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboard may be served from another origin during development
	},
}

// StatusProvider supplies the snapshot sent to newly connected dashboards
type StatusProvider interface {
	GetStatus() status.Snapshot
}

// WSMessage is the envelope of every message pushed to dashboards
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// HelloPayload is sent once per connection
type HelloPayload struct {
	ServerInstanceID string `json:"server_instance_id"`
	Version          string `json:"version"`
}

// WebSocketHandler pushes knowledge-base status and admin events to dashboards
type WebSocketHandler struct {
	logger         arbor.ILogger
	clients        map[*websocket.Conn]bool
	clientMutex    map[*websocket.Conn]*sync.Mutex
	mu             sync.RWMutex
	eventService   interfaces.EventService
	statusProvider StatusProvider
	throttlers     map[interfaces.EventType]*rate.Limiter // nil entry = no throttling
	allowedEvents  map[string]bool                        // Whitelist of events to broadcast (empty = allow all)
	// Unique ID generated on startup - clients use to detect server restart
	serverInstanceID string
}

func NewWebSocketHandler(eventService interfaces.EventService, statusProvider StatusProvider, logger arbor.ILogger, config *common.WebSocketConfig) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		eventService:     eventService,
		statusProvider:   statusProvider,
		throttlers:       make(map[interfaces.EventType]*rate.Limiter),
		allowedEvents:    make(map[string]bool),
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized with server instance ID")

	if config != nil && len(config.AllowedEvents) > 0 {
		for _, eventType := range config.AllowedEvents {
			h.allowedEvents[eventType] = true
		}
		logger.Debug().
			Int("allowed_events", len(h.allowedEvents)).
			Msg("Initialized event whitelist for WebSocketHandler")
	}

	// Throttlers only for explicitly configured event types
	if config != nil {
		for eventType, intervalStr := range config.ThrottleIntervals {
			duration, err := time.ParseDuration(intervalStr)
			if err != nil || duration <= 0 {
				logger.Warn().
					Err(err).
					Str("event_type", eventType).
					Str("interval", intervalStr).
					Msg("Invalid throttle interval - throttler disabled")
				continue
			}
			h.throttlers[interfaces.EventType(eventType)] = rate.NewLimiter(rate.Every(duration), 1)
			logger.Debug().
				Str("event_type", eventType).
				Str("interval", intervalStr).
				Msg("Throttler initialized")
		}
	}

	return h
}

// SubscribeToEvents forwards every published event type to connected clients
func (h *WebSocketHandler) SubscribeToEvents() error {
	if h.eventService == nil {
		return nil
	}
	for _, eventType := range interfaces.AllEventTypes {
		if err := h.eventService.Subscribe(eventType, h.handleEvent); err != nil {
			return err
		}
	}
	return nil
}

func (h *WebSocketHandler) handleEvent(ctx context.Context, event interfaces.Event) error {
	if len(h.allowedEvents) > 0 && !h.allowedEvents[string(event.Type)] {
		return nil
	}
	if throttler := h.throttlers[event.Type]; throttler != nil && !throttler.Allow() {
		h.logger.Debug().Str("event_type", string(event.Type)).Msg("Event throttled")
		return nil
	}

	h.Broadcast(string(event.Type), event.Payload)
	return nil
}

// HandleWebSocket upgrades the connection and keeps it registered until the
// client goes away
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	mutex := &sync.Mutex{}

	// Initial messages go out before the client is visible to broadcasts
	mutex.Lock()
	h.send(conn, WSMessage{
		Type: MessageTypeHello,
		Payload: HelloPayload{
			ServerInstanceID: h.serverInstanceID,
			Version:          common.GetVersion(),
		},
	})
	if h.statusProvider != nil {
		h.send(conn, WSMessage{Type: MessageTypeKBStatus, Payload: h.statusProvider.GetStatus()})
	}
	mutex.Unlock()

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = mutex
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		clientCount := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", clientCount)
	}()

	// Read messages from client (keep connection alive)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// Broadcast sends a message to every connected client
func (h *WebSocketHandler) Broadcast(msgType string, payload interface{}) {
	data, err := json.Marshal(WSMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("type", msgType).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Str("type", msgType).Msg("Failed to send message to client")
		}
	}
}

// send writes one message; the caller holds the connection mutex
func (h *WebSocketHandler) send(conn *websocket.Conn, msg WSMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to send message to client")
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServerInstanceID identifies this process to reconnecting clients
func (h *WebSocketHandler) ServerInstanceID() string {
	return h.serverInstanceID
}

// Close disconnects every client
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		mutex := h.clientMutex[conn]
		mutex.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		mutex.Unlock()
	}
}
