package main

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Kira-Projects/teleton/internal/backend/backendtest"
	"github.com/Kira-Projects/teleton/internal/models"
)

type stubFetcher struct {
	status models.JobStatus
	err    error
}

func (f stubFetcher) Poll(ctx context.Context, endpoint string) (models.JobStatus, error) {
	return f.status, f.err
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	var request mcp.CallToolRequest
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleGetKBStatus(t *testing.T) {
	logger := arbor.NewLogger()

	out := callTool(t, handleGetKBStatus(stubFetcher{status: models.JobStatus{IsRunning: true}}, "http://backend/kb-status", logger), nil)
	assert.Contains(t, out, "**Generating:** yes")

	out = callTool(t, handleGetKBStatus(stubFetcher{err: errors.New("connection refused")}, "http://backend/kb-status", logger), nil)
	assert.Contains(t, out, "Status error: connection refused")
}

func TestHandleListUploadedFiles_FiltersByStatus(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("ListUploadedFiles", mock.Anything).Return([]models.UploadedFile{
		{Name: "ok.pdf", Status: models.UploadedFileStatusProcessed},
		{Name: "bad.pdf", Status: models.UploadedFileStatusError},
	}, nil)

	out := callTool(t, handleListUploadedFiles(backend, arbor.NewLogger()), map[string]any{"status": "error"})

	assert.Contains(t, out, "## Uploaded Files (1)")
	assert.Contains(t, out, "bad.pdf")
	assert.NotContains(t, out, "ok.pdf")
}

func TestHandleListUnansweredQueries(t *testing.T) {
	backend := &backendtest.MockClient{}
	backend.On("ListUnansweredQueries", mock.Anything).Return([]models.UnansweredQuery{
		{Query: "uno", Processed: true},
		{Query: "dos"},
		{Query: "tres"},
	}, nil)
	handler := handleListUnansweredQueries(backend, arbor.NewLogger())

	out := callTool(t, handler, map[string]any{"limit": 1})
	assert.Contains(t, out, "## Unanswered Queries (1)")
	assert.Contains(t, out, "1. dos")

	out = callTool(t, handler, map[string]any{"include_processed": true})
	assert.Contains(t, out, "## Unanswered Queries (3)")
}
