package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/interfaces"
	"github.com/Kira-Projects/teleton/internal/jobs/monitor"
	"github.com/Kira-Projects/teleton/internal/models"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleGetKBStatus implements the get_kb_status tool
func handleGetKBStatus(fetcher monitor.Fetcher, endpoint string, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, err := fetcher.Poll(ctx, endpoint)
		if err != nil {
			logger.Error().Err(err).Str("endpoint", endpoint).Msg("Status poll failed")
			return textResult(fmt.Sprintf("Status error: %v", err)), nil
		}
		return textResult(formatKBStatus(status)), nil
	}
}

// handleListUploadedFiles implements the list_uploaded_files tool
func handleListUploadedFiles(backend interfaces.BackendClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		statusFilter := models.UploadedFileStatus(request.GetString("status", ""))

		files, err := backend.ListUploadedFiles(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list uploaded files")
			return textResult(fmt.Sprintf("Uploaded files error: %v", err)), nil
		}

		if statusFilter != "" {
			filtered := make([]models.UploadedFile, 0, len(files))
			for _, f := range files {
				if f.Status == statusFilter {
					filtered = append(filtered, f)
				}
			}
			files = filtered
		}

		return textResult(formatUploadedFiles(files)), nil
	}
}

// handleListUnansweredQueries implements the list_unanswered_queries tool
func handleListUnansweredQueries(backend interfaces.BackendClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}
		includeProcessed := request.GetBool("include_processed", false)

		queries, err := backend.ListUnansweredQueries(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list unanswered queries")
			return textResult(fmt.Sprintf("Unanswered queries error: %v", err)), nil
		}

		selected := make([]models.UnansweredQuery, 0, len(queries))
		for _, q := range queries {
			if q.Processed && !includeProcessed {
				continue
			}
			selected = append(selected, q)
			if len(selected) == limit {
				break
			}
		}

		return textResult(formatUnansweredQueries(selected)), nil
	}
}
