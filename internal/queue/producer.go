package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/petnologia/petface/internal/domain"
)

const (
	TemplatesStreamName  = "TEMPLATES"
	TemplatesSubjectBase = "templates"
)

// TemplateJobTask is the message driving one template build.
type TemplateJobTask struct {
	JobID     uuid.UUID `json:"job_id"`
	PetID     uuid.UUID `json:"pet_id"`
	SessionID uuid.UUID `json:"session_id"`
}

type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStream creates the TEMPLATES stream if it doesn't exist.
// Retries up to 30 times (1s apart) to handle NATS startup delay.
func (p *Producer) EnsureStream(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:        TemplatesStreamName,
		Subjects:    []string{TemplatesSubjectBase + ".>"},
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		Duplicates:  30 * time.Second,
		Description: "Template build jobs for embedding workers",
	}

	const maxAttempts = 30
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := p.js.CreateOrUpdateStream(opCtx, cfg)
		cancel()
		if err == nil {
			slog.Info("ensured NATS stream", "name", cfg.Name)
			return nil
		}
		if attempt == maxAttempts {
			return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
		}
		slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return nil
}

// PublishTemplateJob enqueues a template build task.
func (p *Producer) PublishTemplateJob(ctx context.Context, task TemplateJobTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal template task: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", TemplatesSubjectBase, task.PetID)
	_, err = p.js.Publish(ctx, subject, payload,
		jetstream.WithMsgID(task.JobID.String()))
	if err != nil {
		return fmt.Errorf("publish template task: %w", err)
	}
	return nil
}

// QueueDepth returns the number of pending messages in the TEMPLATES stream.
func (p *Producer) QueueDepth(ctx context.Context) (uint64, error) {
	stream, err := p.js.Stream(ctx, TemplatesStreamName)
	if err != nil {
		return 0, err
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.State.Msgs, nil
}

func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}

// MaxDeliveries mirrors the job retry budget: the first delivery plus one
// redelivery per allowed retry.
const MaxDeliveries = domain.DefaultMaxRetries + 1
