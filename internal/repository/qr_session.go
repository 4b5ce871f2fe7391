package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type QRSessionRepository struct {
	pool PgxPool
}

func NewQRSessionRepository(pool PgxPool) *QRSessionRepository {
	return &QRSessionRepository{pool: pool}
}

const qrSessionColumns = `id, qr_code_id, session_token, status, searcher_ip, user_agent, result_id, failure_reason, created_at, expires_at, completed_at`

func (r *QRSessionRepository) Create(ctx context.Context, session *domain.QRSearchSession) error {
	query := `
		INSERT INTO qr_search_sessions (id, qr_code_id, session_token, status, searcher_ip, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7)
		RETURNING created_at
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = domain.QRSessionInitiated
	}

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.QRCodeID,
		session.Token,
		session.Status,
		session.SearcherIP,
		session.UserAgent,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("create qr search session: %w", err)
	}

	return nil
}

func (r *QRSessionRepository) GetByToken(ctx context.Context, token string) (*domain.QRSearchSession, error) {
	query := `SELECT ` + qrSessionColumns + ` FROM qr_search_sessions WHERE session_token = $1`

	var session domain.QRSearchSession
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.ID,
		&session.QRCodeID,
		&session.Token,
		&session.Status,
		&session.SearcherIP,
		&session.UserAgent,
		&session.ResultID,
		&session.FailureReason,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.CompletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQRSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get qr search session: %w", err)
	}

	return &session, nil
}

// UpdateStatus advances a non-terminal session. Transitions are forward-only,
// so terminal rows are left untouched.
func (r *QRSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QRSessionStatus) error {
	query := `
		UPDATE qr_search_sessions
		SET status = $2
		WHERE id = $1 AND status NOT IN ('completed', 'failed', 'expired')
	`

	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update qr session status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrQRSessionClosed
	}
	return nil
}

func (r *QRSessionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE qr_search_sessions
		SET status = 'failed', failure_reason = $2, completed_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed', 'expired')
	`

	result, err := r.pool.Exec(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("fail qr session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrQRSessionClosed
	}
	return nil
}

func (r *QRSessionRepository) Complete(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error {
	query := `
		UPDATE qr_search_sessions
		SET status = 'completed', result_id = $2, completed_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed', 'expired')
	`

	result, err := r.pool.Exec(ctx, query, id, resultID)
	if err != nil {
		return fmt.Errorf("complete qr session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrQRSessionClosed
	}
	return nil
}
