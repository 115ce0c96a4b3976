package models

// SupportConfig is the support contact configuration served by the backend
type SupportConfig struct {
	SupportEmail    string `json:"support_email" validate:"omitempty,email"`
	SupportPhone    string `json:"support_phone" validate:"omitempty,e164"`
	FallbackMessage string `json:"fallback_message" validate:"max=2000"`
}

// UnansweredQuery is a chat query the RAG system could not answer
type UnansweredQuery struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
	Processed bool   `json:"processed"`
	Source    string `json:"source"`
}

// UploadedFileStatus is the processing state of an uploaded knowledge-base file
type UploadedFileStatus string

const (
	UploadedFileStatusUploaded   UploadedFileStatus = "uploaded"
	UploadedFileStatusProcessing UploadedFileStatus = "processing"
	UploadedFileStatusProcessed  UploadedFileStatus = "processed"
	UploadedFileStatusError      UploadedFileStatus = "error"
	UploadedFileStatusMoved      UploadedFileStatus = "moved"
)

// UploadedFile is a file uploaded for knowledge-base generation
type UploadedFile struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Size       int64              `json:"size"`
	UploadDate string             `json:"uploadDate"`
	Status     UploadedFileStatus `json:"status"`
}

// UnansweredQueriesResponse is the wire shape of GET /unanswered-queries
type UnansweredQueriesResponse struct {
	Queries []UnansweredQuery `json:"queries"`
}

// UploadedFilesResponse is the wire shape of GET /uploaded-files
type UploadedFilesResponse struct {
	Files []UploadedFile `json:"files"`
}
