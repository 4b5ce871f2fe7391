package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the state of an embedding job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// DefaultMaxRetries bounds how many times a failed job is re-attempted
// before it is marked permanently failed.
const DefaultMaxRetries = 3

// EmbeddingJob tracks one template-build attempt for a (pet, session) pair.
// Counters are monotonic; they are never decremented.
type EmbeddingJob struct {
	ID                   uuid.UUID  `json:"id"`
	PetID                uuid.UUID  `json:"pet_id"`
	SessionID            uuid.UUID  `json:"session_id"`
	Status               JobStatus  `json:"status"`
	TotalImages          int        `json:"total_images"`
	ProcessedImages      int        `json:"processed_images"`
	SuccessfulEmbeddings int        `json:"successful_embeddings"`
	FailedEmbeddings     int        `json:"failed_embeddings"`
	RetryCount           int        `json:"retry_count"`
	MaxRetries           int        `json:"max_retries"`
	ErrorMessage         *string    `json:"error_message,omitempty"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// CanRetry reports whether the job still has retry budget.
func (j *EmbeddingJob) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// Progress is the processed fraction in [0,1].
func (j *EmbeddingJob) Progress() float64 {
	if j.TotalImages == 0 {
		return 0
	}
	return float64(j.ProcessedImages) / float64(j.TotalImages)
}

// IsTerminal reports whether the job reached a final state.
func (j *EmbeddingJob) IsTerminal() bool {
	switch j.Status {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}
