package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type SessionRepository struct {
	pool PgxPool
}

func NewSessionRepository(pool PgxPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, pet_id, session_token, status, start_time, end_time, expected_images_count, actual_images_count, notes`

// Create inserts a new active session. The partial unique index on
// (pet_id) WHERE status = 'active' makes the single-active invariant hold
// under concurrent starts; losers get ErrSessionAlreadyActive.
func (r *SessionRepository) Create(ctx context.Context, session *domain.RegistrationSession) error {
	query := `
		INSERT INTO registration_sessions (id, pet_id, session_token, status, start_time, expected_images_count, actual_images_count)
		VALUES ($1, $2, $3, $4, NOW(), $5, 0)
		RETURNING start_time
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = domain.SessionActive
	}
	if session.ExpectedImages == 0 {
		session.ExpectedImages = domain.DefaultExpectedImages
	}

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.PetID,
		session.Token,
		session.Status,
		session.ExpectedImages,
	).Scan(&session.StartTime)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionAlreadyActive
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*domain.RegistrationSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM registration_sessions WHERE session_token = $1`

	session, err := r.scanOne(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) GetActiveByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM registration_sessions WHERE pet_id = $1 AND status = 'active'`

	session, err := r.scanOne(r.pool.QueryRow(ctx, query, petID))
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// GetLatestCompletedByPet returns the newest completed session of the pet,
// the one a template regeneration rebuilds from.
func (r *SessionRepository) GetLatestCompletedByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM registration_sessions
		WHERE pet_id = $1 AND status = 'completed'
		ORDER BY end_time DESC NULLS LAST, start_time DESC
		LIMIT 1
	`

	session, err := r.scanOne(r.pool.QueryRow(ctx, query, petID))
	if err != nil {
		return nil, fmt.Errorf("get latest completed session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) scanOne(row pgx.Row) (*domain.RegistrationSession, error) {
	var session domain.RegistrationSession
	err := row.Scan(
		&session.ID,
		&session.PetID,
		&session.Token,
		&session.Status,
		&session.StartTime,
		&session.EndTime,
		&session.ExpectedImages,
		&session.ActualImages,
		&session.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkExpired flips an active session to expired. The status guard keeps
// the transition forward-only.
func (r *SessionRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE registration_sessions
		SET status = 'expired', end_time = NOW()
		WHERE id = $1 AND status = 'active'
	`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}

func (r *SessionRepository) AddImages(ctx context.Context, id uuid.UUID, count int) error {
	query := `
		UPDATE registration_sessions
		SET actual_images_count = actual_images_count + $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("add session images: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Finish closes an active session as completed or failed.
func (r *SessionRepository) Finish(ctx context.Context, id uuid.UUID, status domain.SessionStatus, notes *string) error {
	query := `
		UPDATE registration_sessions
		SET status = $2, end_time = NOW(), notes = COALESCE($3, notes)
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.pool.Exec(ctx, query, id, status, notes)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotActive
	}
	return nil
}
