package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/models"
)

// maxStatusBody caps how much of a status response is read
const maxStatusBody = 1 << 20

// Fetcher performs one status request. Poller is the HTTP implementation.
type Fetcher interface {
	Poll(ctx context.Context, endpoint string) (models.JobStatus, error)
}

// Poller fetches a job status snapshot from a remote endpoint. It never retries;
// the monitor's interval is the retry cadence.
type Poller struct {
	client *http.Client
	logger arbor.ILogger
}

// NewPoller creates a Poller using the given HTTP client
func NewPoller(client *http.Client, logger arbor.ILogger) *Poller {
	return &Poller{
		client: client,
		logger: logger,
	}
}

// Poll performs one GET against endpoint and decodes the body
func (p *Poller) Poll(ctx context.Context, endpoint string) (models.JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.JobStatus{}, &FetchError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.JobStatus{}, &FetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatusBody))
		return models.JobStatus{}, &FetchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
	if err != nil {
		return models.JobStatus{}, &FetchError{Endpoint: endpoint, Err: err}
	}

	status, err := DecodeStatus(body)
	if err != nil {
		return models.JobStatus{}, &DecodeError{Endpoint: endpoint, Err: err}
	}

	p.logger.Debug().
		Str("endpoint", endpoint).
		Bool("is_running", status.IsRunning).
		Bool("is_ready", status.IsReady).
		Msg("Job status polled")

	return status, nil
}

// DecodeStatus decodes a kb-status body. is_generating and rag_system_loaded are
// required; documents_count and last_generation_time stay nil when absent.
func DecodeStatus(body []byte) (models.JobStatus, error) {
	var raw models.KBStatusResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.JobStatus{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if raw.IsGenerating == nil {
		return models.JobStatus{}, errors.New("missing is_generating")
	}
	if raw.RAGSystemLoaded == nil {
		return models.JobStatus{}, errors.New("missing rag_system_loaded")
	}

	status := models.JobStatus{
		IsRunning: *raw.IsGenerating,
		IsReady:   *raw.RAGSystemLoaded,
	}

	if raw.DocumentsCount != nil {
		if *raw.DocumentsCount < 0 {
			return models.JobStatus{}, fmt.Errorf("negative documents_count %d", *raw.DocumentsCount)
		}
		n := *raw.DocumentsCount
		status.ItemCount = &n
	}

	// An unparseable timestamp is treated as unknown rather than failing the poll
	if t, ok := models.ParseGenerationTime(raw.LastGenerationTime); ok {
		status.LastCompletedAt = &t
	}

	return status, nil
}
