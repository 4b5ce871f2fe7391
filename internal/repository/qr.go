package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type QRRepository struct {
	pool PgxPool
}

func NewQRRepository(pool PgxPool) *QRRepository {
	return &QRRepository{pool: pool}
}

const qrColumns = `id, code, qr_type, status, created_by, clinic_name, location, usage_count, max_usage, created_at, expires_at, used_at`

func (r *QRRepository) Create(ctx context.Context, qr *domain.QRCode) error {
	query := `
		INSERT INTO qr_codes (id, code, qr_type, status, created_by, clinic_name, location, usage_count, max_usage, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, NOW(), $9)
		RETURNING created_at
	`

	if qr.ID == uuid.Nil {
		qr.ID = uuid.New()
	}
	if qr.Status == "" {
		qr.Status = domain.QRActive
	}
	if qr.MaxUsage == 0 {
		qr.MaxUsage = domain.DefaultMaxUsage
	}

	err := r.pool.QueryRow(ctx, query,
		qr.ID,
		qr.Code,
		qr.Type,
		qr.Status,
		qr.CreatedBy,
		qr.ClinicName,
		qr.Location,
		qr.MaxUsage,
		qr.ExpiresAt,
	).Scan(&qr.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("qr code collision: %w", err)
		}
		return fmt.Errorf("create qr code: %w", err)
	}

	return nil
}

func (r *QRRepository) GetByCode(ctx context.Context, code string) (*domain.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE code = $1`

	qr, err := scanQR(r.pool.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQRNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	return qr, nil
}

func (r *QRRepository) ListByCreator(ctx context.Context, createdBy uuid.UUID) ([]domain.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes WHERE created_by = $1 ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, createdBy)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.QRCode
	for rows.Next() {
		qr, err := scanQR(rows)
		if err != nil {
			return nil, fmt.Errorf("scan qr code: %w", err)
		}
		codes = append(codes, *qr)
	}

	return codes, rows.Err()
}

// MarkUsed atomically increments the usage counter, stamps used_at and
// flips the status to used once the cap is reached. Returns the updated row.
func (r *QRRepository) MarkUsed(ctx context.Context, id uuid.UUID) (*domain.QRCode, error) {
	query := `
		UPDATE qr_codes
		SET usage_count = usage_count + 1,
		    used_at = NOW(),
		    status = CASE WHEN usage_count + 1 >= max_usage THEN 'used' ELSE status END
		WHERE id = $1 AND status = 'active' AND usage_count < max_usage
		RETURNING ` + qrColumns + `
	`

	qr, err := scanQR(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQRNotUsable
	}
	if err != nil {
		return nil, fmt.Errorf("mark qr used: %w", err)
	}
	return qr, nil
}

func (r *QRRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE qr_codes SET status = 'expired' WHERE id = $1 AND status = 'active'`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("expire qr code: %w", err)
	}
	return nil
}

func (r *QRRepository) Disable(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE qr_codes SET status = 'disabled' WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("disable qr code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrQRNotFound
	}
	return nil
}

func scanQR(row pgx.Row) (*domain.QRCode, error) {
	var qr domain.QRCode
	err := row.Scan(
		&qr.ID,
		&qr.Code,
		&qr.Type,
		&qr.Status,
		&qr.CreatedBy,
		&qr.ClinicName,
		&qr.Location,
		&qr.UsageCount,
		&qr.MaxUsage,
		&qr.CreatedAt,
		&qr.ExpiresAt,
		&qr.UsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &qr, nil
}
