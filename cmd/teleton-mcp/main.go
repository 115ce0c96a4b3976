package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/Kira-Projects/teleton/internal/backend"
	"github.com/Kira-Projects/teleton/internal/common"
	"github.com/Kira-Projects/teleton/internal/httpclient"
	"github.com/Kira-Projects/teleton/internal/jobs/monitor"
)

func main() {
	configPath := os.Getenv("TELETON_CONFIG")
	if configPath == "" {
		configPath = "teleton.toml"
	}
	if _, err := os.Stat(configPath); err != nil {
		// Defaults and env only
		configPath = ""
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	httpClient := httpclient.NewDefaultHTTPClient(config.BackendTimeout())
	poller := monitor.NewPoller(httpClient, logger)
	backendClient := backend.NewClient(
		config.Backend.RESTAPI,
		backend.WithHTTPClient(httpClient),
		backend.WithLogger(logger),
	)

	mcpServer := server.NewMCPServer(
		"teleton",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetKBStatusTool(), handleGetKBStatus(poller, config.StatusEndpoint(), logger))
	mcpServer.AddTool(createListUploadedFilesTool(), handleListUploadedFiles(backendClient, logger))
	mcpServer.AddTool(createListUnansweredQueriesTool(), handleListUnansweredQueries(backendClient, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
