package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetKBStatusTool returns the get_kb_status tool definition
func createGetKBStatusTool() mcp.Tool {
	return mcp.NewTool("get_kb_status",
		mcp.WithDescription("Poll the knowledge-base generation status once: whether a generation run is in progress, whether the RAG system is loaded, document count and last generation time"),
	)
}

// createListUploadedFilesTool returns the list_uploaded_files tool definition
func createListUploadedFilesTool() mcp.Tool {
	return mcp.NewTool("list_uploaded_files",
		mcp.WithDescription("List files uploaded for knowledge-base generation with their processing status"),
		mcp.WithString("status",
			mcp.Description("Filter: uploaded, processing, processed, error, moved"),
		),
	)
}

// createListUnansweredQueriesTool returns the list_unanswered_queries tool definition
func createListUnansweredQueriesTool() mcp.Tool {
	return mcp.NewTool("list_unanswered_queries",
		mcp.WithDescription("List chat queries the RAG system could not answer"),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 50)"),
		),
		mcp.WithBoolean("include_processed",
			mcp.Description("Include queries already marked as processed (default: false)"),
		),
	)
}
