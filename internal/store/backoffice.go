package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
)

// BackOfficeStore persists the published contact numbers. The active cap of
// 4 is enforced in the write paths so concurrent toggles can't exceed it.
type BackOfficeStore interface {
	List(ctx context.Context) ([]models.BackOfficeNumber, error)
	ListActive(ctx context.Context) ([]models.BackOfficeNumber, error)
	CountActive(ctx context.Context) (int, error)
	Create(ctx context.Context, n *models.BackOfficeNumber) error
	Update(ctx context.Context, n *models.BackOfficeNumber) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type backOfficeStore struct {
	db *sql.DB
}

// NewBackOfficeStore creates the Postgres-backed BackOfficeStore.
func NewBackOfficeStore(db *sql.DB) BackOfficeStore {
	return &backOfficeStore{db: db}
}

const backOfficeColumns = `id, created_at, updated_at, name, mobile_number, is_active, position`

func scanBackOffice(row interface{ Scan(...interface{}) error }) (models.BackOfficeNumber, error) {
	var n models.BackOfficeNumber
	err := row.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt, &n.Name, &n.MobileNumber, &n.IsActive, &n.Position)
	return n, err
}

func (s *backOfficeStore) List(ctx context.Context) ([]models.BackOfficeNumber, error) {
	return s.query(ctx, "SELECT "+backOfficeColumns+" FROM back_office_numbers ORDER BY position, created_at")
}

func (s *backOfficeStore) ListActive(ctx context.Context) ([]models.BackOfficeNumber, error) {
	return s.query(ctx, "SELECT "+backOfficeColumns+" FROM back_office_numbers WHERE is_active ORDER BY position, created_at")
}

func (s *backOfficeStore) query(ctx context.Context, query string) ([]models.BackOfficeNumber, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list back-office numbers: %w", err)
	}
	defer rows.Close()

	var numbers []models.BackOfficeNumber
	for rows.Next() {
		n, err := scanBackOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (s *backOfficeStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM back_office_numbers WHERE is_active").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}
	return count, nil
}

// Create inserts the number; when the number is created active, the cap is
// rechecked inside the insert so a racing create can't make five.
func (s *backOfficeStore) Create(ctx context.Context, n *models.BackOfficeNumber) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	if !n.IsActive {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO back_office_numbers (id, created_at, updated_at, name, mobile_number, is_active, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, n.ID, n.CreatedAt, n.UpdatedAt, n.Name, n.MobileNumber, n.IsActive, n.Position)
		if err != nil {
			return fmt.Errorf("insert number: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO back_office_numbers (id, created_at, updated_at, name, mobile_number, is_active, position)
		SELECT $1, $2, $3, $4, $5, TRUE, $6
		WHERE (SELECT COUNT(*) FROM back_office_numbers WHERE is_active) < $7
	`, n.ID, n.CreatedAt, n.UpdatedAt, n.Name, n.MobileNumber, n.Position, models.MaxActiveBackOfficeNumbers)
	if err != nil {
		return fmt.Errorf("insert number: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return ErrConflict
	}
	return nil
}

func (s *backOfficeStore) Update(ctx context.Context, n *models.BackOfficeNumber) error {
	n.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE back_office_numbers SET updated_at = $2, name = $3, mobile_number = $4, position = $5
		WHERE id = $1
	`, n.ID, n.UpdatedAt, n.Name, n.MobileNumber, n.Position)
	if err != nil {
		return fmt.Errorf("update number: %w", err)
	}
	return requireRow(res)
}

// SetActive toggles activation. Activating rechecks the cap in the same
// statement; deactivating always succeeds.
func (s *backOfficeStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if !active {
		res, err := s.db.ExecContext(ctx,
			"UPDATE back_office_numbers SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("deactivate number: %w", err)
		}
		return requireRow(res)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE back_office_numbers SET is_active = TRUE, updated_at = NOW()
		WHERE id = $1
		  AND (SELECT COUNT(*) FROM back_office_numbers WHERE is_active AND id <> $1) < $2
	`, id, models.MaxActiveBackOfficeNumbers)
	if err != nil {
		return fmt.Errorf("activate number: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or the cap blocked it; disambiguate for the caller.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM back_office_numbers WHERE id = $1)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (s *backOfficeStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM back_office_numbers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete number: %w", err)
	}
	return requireRow(res)
}
