// Package backend is a client for the RAG backend REST API: support
// configuration, unanswered queries, uploaded files, public chat and
// appointments.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/models"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	maxErrorBody = 4 << 10
)

// Client is a backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

var _ interfaces.BackendClient = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a backend client for the API rooted at baseURL
// (the REST_API setting, e.g. https://api.example.com).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs a request. body is JSON-encoded when non-nil; result is decoded
// when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("url", c.baseURL+path).
			Msg("Backend API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
			Endpoint:   path,
		}
	}

	if result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetSupportConfig loads the support contact configuration
func (c *Client) GetSupportConfig(ctx context.Context) (*models.SupportConfig, error) {
	var result models.SupportConfig
	if err := c.do(ctx, http.MethodGet, "/support-config", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveSupportConfig replaces the support contact configuration
func (c *Client) SaveSupportConfig(ctx context.Context, config *models.SupportConfig) error {
	return c.do(ctx, http.MethodPost, "/support-config", config, nil)
}

// ListUnansweredQueries returns queries the chat could not answer
func (c *Client) ListUnansweredQueries(ctx context.Context) ([]models.UnansweredQuery, error) {
	var result models.UnansweredQueriesResponse
	if err := c.do(ctx, http.MethodGet, "/unanswered-queries", nil, &result); err != nil {
		return nil, err
	}
	return result.Queries, nil
}

// MarkProcessed flags the given query texts as handled
func (c *Client) MarkProcessed(ctx context.Context, queries ...string) error {
	if len(queries) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/mark-processed", queries, nil)
}

// ListUploadedFiles returns the files uploaded for knowledge-base generation
func (c *Client) ListUploadedFiles(ctx context.Context) ([]models.UploadedFile, error) {
	var result models.UploadedFilesResponse
	if err := c.do(ctx, http.MethodGet, "/uploaded-files", nil, &result); err != nil {
		return nil, err
	}
	return result.Files, nil
}

// SendChatMessage forwards a visitor message to the chat backend
func (c *Client) SendChatMessage(ctx context.Context, message string) error {
	return c.do(ctx, http.MethodPost, "/api/chat/send", models.ChatMessage{Message: message}, nil)
}

// CheckReply asks whether the chat backend has a reply ready
func (c *Client) CheckReply(ctx context.Context) (*models.ChatReply, error) {
	var result models.ChatReply
	if err := c.do(ctx, http.MethodGet, "/api/chat/check-reply", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AppointmentSlots returns the free HH:MM slots for a YYYY-MM-DD date
func (c *Client) AppointmentSlots(ctx context.Context, date string) ([]string, error) {
	var slots []string
	if err := c.do(ctx, http.MethodGet, "/api/appointments/slots/"+url.PathEscape(date), nil, &slots); err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

// ScheduleAppointment books an appointment
func (c *Client) ScheduleAppointment(ctx context.Context, appointment *models.Appointment) error {
	return c.do(ctx, http.MethodPost, "/api/appointments", appointment, nil)
}
