package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type JobRepository struct {
	pool PgxPool
}

func NewJobRepository(pool PgxPool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, pet_id, session_id, status, total_images, processed_images, successful_embeddings, failed_embeddings, retry_count, max_retries, error_message, started_at, completed_at, created_at`

func (r *JobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	query := `
		INSERT INTO embedding_jobs (id, pet_id, session_id, status, total_images, max_retries, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = domain.JobPending
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = domain.DefaultMaxRetries
	}

	err := r.pool.QueryRow(ctx, query,
		job.ID,
		job.PetID,
		job.SessionID,
		job.Status,
		job.TotalImages,
		job.MaxRetries,
	).Scan(&job.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job already exists for session: %w", err)
		}
		return fmt.Errorf("create embedding job: %w", err)
	}

	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmbeddingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM embedding_jobs WHERE id = $1`

	var job domain.EmbeddingJob
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.PetID,
		&job.SessionID,
		&job.Status,
		&job.TotalImages,
		&job.ProcessedImages,
		&job.SuccessfulEmbeddings,
		&job.FailedEmbeddings,
		&job.RetryCount,
		&job.MaxRetries,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get embedding job: %w", err)
	}

	return &job, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, id uuid.UUID, totalImages int) error {
	query := `
		UPDATE embedding_jobs
		SET status = 'running', total_images = $2, started_at = COALESCE(started_at, NOW())
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, totalImages)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordProgress adds to the monotonic counters; values are deltas from the
// current attempt, never absolute overwrites.
func (r *JobRepository) RecordProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int) error {
	query := `
		UPDATE embedding_jobs
		SET processed_images = processed_images + $2,
		    successful_embeddings = successful_embeddings + $3,
		    failed_embeddings = failed_embeddings + $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, processed, successful, failed)
	if err != nil {
		return fmt.Errorf("record job progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepository) IncrementRetry(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE embedding_jobs
		SET retry_count = retry_count + 1, error_message = $2, status = 'pending'
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, errMsg)
	if err != nil {
		return fmt.Errorf("increment job retry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkCompleted is the only transition that stamps completed_at.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE embedding_jobs
		SET status = 'completed', error_message = NULL, completed_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed records a permanent failure; completed_at stays NULL.
func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE embedding_jobs
		SET status = 'failed', error_message = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, errMsg)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
