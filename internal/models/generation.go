package models

import "time"

// GenerationRecord is an audit entry written each time a knowledge-base
// generation run is observed to complete.
type GenerationRecord struct {
	ID             string    `json:"id"`
	CompletedAt    time.Time `json:"completed_at" badgerhold:"index"`
	DocumentsCount *int      `json:"documents_count,omitempty"`
	Ready          bool      `json:"ready"`
	// ReportedAt is the backend's last_generation_time when it was known
	ReportedAt *time.Time `json:"reported_at,omitempty"`
}
