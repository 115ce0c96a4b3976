package interfaces

import (
	"context"
	"time"
)

// ScheduledJobStatus represents the current status of a scheduled job
type ScheduledJobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	IsRunning   bool       `json:"is_running"`
	LastError   string     `json:"last_error,omitempty"`
}

// SchedulerService manages cron-based background refreshes
type SchedulerService interface {
	// RegisterJob registers a job; must be called before Start
	RegisterJob(name, schedule, description string, handler func(ctx context.Context) error) error

	// Start runs registered jobs on their schedules until ctx ends or Stop is called
	Start(ctx context.Context) error

	// Stop the scheduler and wait for running jobs
	Stop() error

	// TriggerJob runs a job immediately in the background
	TriggerJob(name string) error

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*ScheduledJobStatus, error)

	// GetAllJobStatuses returns all job statuses
	GetAllJobStatuses() map[string]*ScheduledJobStatus
}
