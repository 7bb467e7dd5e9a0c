package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by a JobStore for an unknown id.
var ErrJobNotFound = errors.New("job not found")

// DefaultMaxRetries applies when a job is published without a retry budget.
const DefaultMaxRetries = 3

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// IngestJob asks a worker to ingest one message export from GCS.
type IngestJob struct {
	JobID string `json:"job_id"`

	// GCSURI is the gs:// location of the export.
	GCSURI string `json:"gcs_uri"`

	// ParsingRunID is set by the handler once a run has been started.
	ParsingRunID string `json:"parsing_run_id,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	// Filled in on success.
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Stored   int `json:"stored"`
}

// Publisher enqueues jobs.
type Publisher interface {
	PublishIngest(ctx context.Context, job *IngestJob) error
	Close() error
}

// Consumer runs a handler over queued jobs.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	// Stop waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error makes the job eligible
// for retry.
type JobHandler func(ctx context.Context, job *IngestJob) error

// JobStore tracks job state for the status endpoints.
type JobStore interface {
	SaveJob(ctx context.Context, job *IngestJob) error
	GetJob(ctx context.Context, jobID string) (*IngestJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*IngestJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	GCSURI string
	Status JobStatus
	Limit  int
	Offset int
}
