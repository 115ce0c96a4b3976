package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/httpclient"
	"github.com/Kira-Projects/teleton/internal/jobs/monitor"
	"github.com/Kira-Projects/teleton/internal/models"
)

// statusReport is the YAML printed by -status
type statusReport struct {
	Endpoint           string `yaml:"endpoint"`
	CheckedAt          string `yaml:"checked_at"`
	IsGenerating       bool   `yaml:"is_generating"`
	RAGSystemLoaded    bool   `yaml:"rag_system_loaded"`
	DocumentsCount     *int   `yaml:"documents_count,omitempty"`
	LastGenerationTime string `yaml:"last_generation_time,omitempty"`
}

func newStatusReport(endpoint string, checkedAt time.Time, status models.JobStatus) statusReport {
	view := models.NewKBStatusView(status)
	return statusReport{
		Endpoint:           endpoint,
		CheckedAt:          checkedAt.UTC().Format(time.RFC3339),
		IsGenerating:       view.IsGenerating,
		RAGSystemLoaded:    view.RAGSystemLoaded,
		DocumentsCount:     view.DocumentsCount,
		LastGenerationTime: view.LastGenerationTime,
	}
}

func writeStatusReport(w io.Writer, report statusReport) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}

// runStatusCheck polls once and returns the process exit code
func runStatusCheck(config *common.Config) int {
	logger := arbor.NewLogger().WithLevelFromString("warn")
	timeout := config.BackendTimeout()
	poller := monitor.NewPoller(httpclient.NewDefaultHTTPClient(timeout), logger)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	endpoint := config.StatusEndpoint()
	status, err := poller.Poll(ctx, endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status check failed: %v\n", err)
		return 1
	}

	if err := writeStatusReport(os.Stdout, newStatusReport(endpoint, time.Now(), status)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write status: %v\n", err)
		return 1
	}
	return 0
}
