package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
)

// OTPStore persists per-user one-time codes. A user has at most one active
// (unconsumed) record; generating a new code replaces the old one.
type OTPStore interface {
	Replace(ctx context.Context, rec *models.OTPRecord) error
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (models.OTPRecord, error)
	Consume(ctx context.Context, id uuid.UUID) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
	// ListActive returns every unconsumed, unexpired record with its user.
	ListActive(ctx context.Context) ([]models.OTPRecord, error)
}

type otpStore struct {
	db *sql.DB
}

// NewOTPStore creates the Postgres-backed OTPStore.
func NewOTPStore(db *sql.DB) OTPStore {
	return &otpStore{db: db}
}

// Replace atomically consumes any existing active record for the user and
// inserts the new one. The partial unique index on (user_id) WHERE
// consumed_at IS NULL makes the invariant hold under races.
func (s *otpStore) Replace(ctx context.Context, rec *models.OTPRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE otp_records SET consumed_at = NOW()
		WHERE user_id = $1 AND consumed_at IS NULL
	`, rec.UserID)
	if err != nil {
		return fmt.Errorf("consume existing records: %w", err)
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO otp_records (id, user_id, code, generated_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.UserID, rec.Code, nullUUID(rec.GeneratedBy), rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return tx.Commit()
}

func (s *otpStore) GetActiveByUser(ctx context.Context, userID uuid.UUID) (models.OTPRecord, error) {
	var rec models.OTPRecord
	var generatedBy uuid.NullUUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, code, generated_by, created_at, expires_at
		FROM otp_records
		WHERE user_id = $1 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&rec.ID, &rec.UserID, &rec.Code, &generatedBy, &rec.CreatedAt, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return models.OTPRecord{}, ErrNotFound
	}
	if err != nil {
		return models.OTPRecord{}, fmt.Errorf("query record: %w", err)
	}
	if generatedBy.Valid {
		rec.GeneratedBy = &generatedBy.UUID
	}
	return rec, nil
}

func (s *otpStore) Consume(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE otp_records SET consumed_at = NOW() WHERE id = $1 AND consumed_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("consume record: %w", err)
	}
	return requireRow(res)
}

func (s *otpStore) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE otp_records SET consumed_at = NOW() WHERE user_id = $1 AND consumed_at IS NULL", userID)
	if err != nil {
		return fmt.Errorf("invalidate records: %w", err)
	}
	return nil
}

func (s *otpStore) ListActive(ctx context.Context) ([]models.OTPRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, code, generated_by, created_at, expires_at
		FROM otp_records
		WHERE consumed_at IS NULL AND expires_at > $1
		ORDER BY created_at DESC
	`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []models.OTPRecord
	for rows.Next() {
		var rec models.OTPRecord
		var generatedBy uuid.NullUUID
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Code, &generatedBy, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if generatedBy.Valid {
			rec.GeneratedBy = &generatedBy.UUID
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
