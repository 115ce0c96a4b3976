package models

import (
	"strings"
	"time"
)

// JobStatus is a snapshot of a long-running backend job at one point in time.
// A snapshot is never mutated after it is produced; use Clone before handing
// one to code that may hold on to it.
type JobStatus struct {
	// IsRunning is true while the job is actively executing
	IsRunning bool `json:"is_running"`
	// IsReady is true once the job output is usable. A previous run can leave
	// the output ready while a new run is in progress.
	IsReady bool `json:"is_ready"`
	// ItemCount is the size of the last output; nil means unknown
	ItemCount *int `json:"item_count,omitempty"`
	// LastCompletedAt is when the job last finished; nil means unknown
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (s JobStatus) Clone() JobStatus {
	out := JobStatus{
		IsRunning: s.IsRunning,
		IsReady:   s.IsReady,
	}
	if s.ItemCount != nil {
		n := *s.ItemCount
		out.ItemCount = &n
	}
	if s.LastCompletedAt != nil {
		t := *s.LastCompletedAt
		out.LastCompletedAt = &t
	}
	return out
}

// Items returns the item count and whether it is known
func (s JobStatus) Items() (int, bool) {
	if s.ItemCount == nil {
		return 0, false
	}
	return *s.ItemCount, true
}

// KBStatusResponse is the wire shape of GET <rest_api>/kb-status.
// The booleans are pointers so a missing field can be told apart from false.
type KBStatusResponse struct {
	IsGenerating       *bool  `json:"is_generating"`
	RAGSystemLoaded    *bool  `json:"rag_system_loaded"`
	DocumentsCount     *int   `json:"documents_count,omitempty"`
	LastGenerationTime string `json:"last_generation_time,omitempty"`
}

// KBStatusView is the dashboard-facing representation of a snapshot, using the
// same field names the backend uses.
type KBStatusView struct {
	IsGenerating       bool   `json:"is_generating"`
	RAGSystemLoaded    bool   `json:"rag_system_loaded"`
	DocumentsCount     *int   `json:"documents_count,omitempty"`
	LastGenerationTime string `json:"last_generation_time,omitempty"`
}

// NewKBStatusView converts a snapshot for the dashboard
func NewKBStatusView(s JobStatus) KBStatusView {
	view := KBStatusView{
		IsGenerating:    s.IsRunning,
		RAGSystemLoaded: s.IsReady,
	}
	if s.ItemCount != nil {
		n := *s.ItemCount
		view.DocumentsCount = &n
	}
	if s.LastCompletedAt != nil {
		view.LastGenerationTime = s.LastCompletedAt.Format(time.RFC3339)
	}
	return view
}

// generationTimeLayouts are tried in order; the backend emits naive ISO timestamps
var generationTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseGenerationTime parses a last_generation_time value. Naive timestamps are
// read as UTC.
func ParseGenerationTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range generationTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
