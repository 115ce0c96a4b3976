package main

import (
	"fmt"
	"strings"

	"github.com/Kira-Projects/teleton/internal/models"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// formatKBStatus formats a status snapshot as markdown
func formatKBStatus(status models.JobStatus) string {
	view := models.NewKBStatusView(status)

	var sb strings.Builder
	sb.WriteString("## Knowledge Base Status\n\n")
	sb.WriteString(fmt.Sprintf("**Generating:** %s\n", yesNo(view.IsGenerating)))
	sb.WriteString(fmt.Sprintf("**RAG system loaded:** %s\n", yesNo(view.RAGSystemLoaded)))
	if view.DocumentsCount != nil {
		sb.WriteString(fmt.Sprintf("**Documents:** %d\n", *view.DocumentsCount))
	} else {
		sb.WriteString("**Documents:** unknown\n")
	}
	if view.LastGenerationTime != "" {
		sb.WriteString(fmt.Sprintf("**Last generation:** %s\n", view.LastGenerationTime))
	}
	return sb.String()
}

// formatUploadedFiles formats uploaded files as a markdown table
func formatUploadedFiles(files []models.UploadedFile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Uploaded Files (%d)\n\n", len(files)))

	if len(files) == 0 {
		sb.WriteString("No files found.\n")
		return sb.String()
	}

	sb.WriteString("| Name | Type | Size | Uploaded | Status |\n")
	sb.WriteString("|------|------|------|----------|--------|\n")
	for _, f := range files {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
			escapeCell(f.Name), escapeCell(f.Type), f.Size, f.UploadDate, f.Status))
	}
	return sb.String()
}

// formatUnansweredQueries formats unanswered queries as a markdown list
func formatUnansweredQueries(queries []models.UnansweredQuery) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Unanswered Queries (%d)\n\n", len(queries)))

	if len(queries) == 0 {
		sb.WriteString("No unanswered queries.\n")
		return sb.String()
	}

	for i, q := range queries {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Query))
		sb.WriteString(fmt.Sprintf("   - **Session:** %s\n", q.SessionID))
		if q.Timestamp != "" {
			sb.WriteString(fmt.Sprintf("   - **When:** %s\n", q.Timestamp))
		}
		if q.Source != "" {
			sb.WriteString(fmt.Sprintf("   - **Source:** %s\n", q.Source))
		}
		if q.Processed {
			sb.WriteString("   - **Processed:** yes\n")
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
