package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/observability"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/service"
)

// JobRepository is the job tracking surface the worker needs.
type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmbeddingJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID, totalImages int) error
	RecordProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int) error
	IncrementRetry(ctx context.Context, id uuid.UUID, errMsg string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type PetRepository interface {
	UpdateRegistrationStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) error
}

// TemplateBuilder builds one face template from a finished session.
type TemplateBuilder interface {
	Build(ctx context.Context, petID, sessionID uuid.UUID) (*service.BuildStats, error)
}

// Worker processes template build tasks from the queue, driving the
// embedding job through its retry budget.
type Worker struct {
	jobs    JobRepository
	pets    PetRepository
	builder TemplateBuilder
	logger  *slog.Logger
}

func NewWorker(jobs JobRepository, pets PetRepository, builder TemplateBuilder, logger *slog.Logger) *Worker {
	return &Worker{
		jobs:    jobs,
		pets:    pets,
		builder: builder,
		logger:  logger,
	}
}

// HandleMessage adapts the queue message to the job handler. A returned
// error naks the message for redelivery.
func (w *Worker) HandleMessage(ctx context.Context, msg jetstream.Msg) error {
	var task queue.TemplateJobTask
	if err := json.Unmarshal(msg.Data(), &task); err != nil {
		// Unparseable payload; redelivering it would loop forever.
		w.logger.Error("drop malformed template task",
			slog.String("subject", msg.Subject()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return w.HandleTemplateJob(ctx, task)
}

// HandleTemplateJob runs one build attempt. Retryable failures return an
// error so the message is redelivered; permanent outcomes return nil.
func (w *Worker) HandleTemplateJob(ctx context.Context, task queue.TemplateJobTask) error {
	job, err := w.jobs.GetByID(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.logger.Warn("template task references unknown job",
				slog.String("job_id", task.JobID.String()),
			)
			return nil
		}
		return err
	}

	// Redelivery of an already settled job.
	if job.IsTerminal() {
		return nil
	}

	if err := w.jobs.MarkRunning(ctx, job.ID, job.TotalImages); err != nil {
		return err
	}

	stats, buildErr := w.builder.Build(ctx, task.PetID, task.SessionID)
	if stats != nil {
		if err := w.jobs.RecordProgress(ctx, job.ID, stats.Processed, stats.Successful, stats.Failed); err != nil {
			return err
		}
	}

	if buildErr != nil {
		return w.settleFailure(ctx, job, task, buildErr)
	}

	if err := w.jobs.MarkCompleted(ctx, job.ID); err != nil {
		return err
	}
	observability.TemplateJobs.WithLabelValues("completed").Inc()

	w.logger.Info("template job completed",
		slog.String("job_id", job.ID.String()),
		slog.String("pet_id", task.PetID.String()),
		slog.Int("successful", stats.Successful),
		slog.Int("failed", stats.Failed),
	)

	return nil
}

func (w *Worker) settleFailure(ctx context.Context, job *domain.EmbeddingJob, task queue.TemplateJobTask, buildErr error) error {
	if job.CanRetry() {
		if err := w.jobs.IncrementRetry(ctx, job.ID, buildErr.Error()); err != nil {
			return err
		}
		observability.TemplateJobs.WithLabelValues("retried").Inc()
		w.logger.Warn("template job will retry",
			slog.String("job_id", job.ID.String()),
			slog.Int("retry", job.RetryCount+1),
			slog.Int("max_retries", job.MaxRetries),
			slog.String("error", buildErr.Error()),
		)
		return fmt.Errorf("build template for pet %s: %w", task.PetID, buildErr)
	}

	if err := w.jobs.MarkFailed(ctx, job.ID, buildErr.Error()); err != nil {
		return err
	}
	if err := w.pets.UpdateRegistrationStatus(ctx, task.PetID, domain.RegistrationFailed); err != nil {
		return err
	}
	observability.TemplateJobs.WithLabelValues("failed").Inc()

	w.logger.Error("template job failed permanently",
		slog.String("job_id", job.ID.String()),
		slog.String("pet_id", task.PetID.String()),
		slog.Int("retries", job.RetryCount),
		slog.String("error", buildErr.Error()),
	)

	return nil
}
