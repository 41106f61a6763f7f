package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
)

// UserFilter is the filter tuple for the user list: search text, enum
// filters, page number. Empty values mean "no filter".
type UserFilter struct {
	Search   string
	Role     roles.Role
	IsActive *bool
	Page     int
	Limit    int
}

// UserStats is the dashboard stats payload for accounts.
type UserStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Inactive int            `json:"inactive"`
	ByRole   map[string]int `json:"by_role"`
}

// UserStore is the persistence interface for console accounts.
type UserStore interface {
	List(ctx context.Context, f UserFilter) ([]models.User, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (UserStats, error)
}

type userStore struct {
	db *sql.DB
}

// NewUserStore creates the Postgres-backed UserStore.
func NewUserStore(db *sql.DB) UserStore {
	return &userStore{db: db}
}

const userColumns = `id, created_at, updated_at, name, email, phone, password_hash, role, is_active, city, state, created_by`

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var u models.User
	var phone, city, state sql.NullString
	var createdBy uuid.NullUUID
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Email, &phone,
		&u.PasswordHash, &u.Role, &u.IsActive, &city, &state, &createdBy)
	if err != nil {
		return models.User{}, err
	}
	u.Phone = phone.String
	u.City = city.String
	u.State = state.String
	if createdBy.Valid {
		u.CreatedBy = &createdBy.UUID
	}
	return u, nil
}

func (s *userStore) List(ctx context.Context, f UserFilter) ([]models.User, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Page < 1 {
		f.Page = 1
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, cond, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, name, email, phone, password_hash, role, is_active, city, state, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.CreatedAt, u.UpdatedAt, u.Name, u.Email, nullStr(u.Phone), u.PasswordHash,
		string(u.Role), u.IsActive, nullStr(u.City), nullStr(u.State), nullUUID(u.CreatedBy))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *userStore) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET updated_at = $2, name = $3, email = $4, phone = $5, role = $6, city = $7, state = $8
		WHERE id = $1
	`, u.ID, u.UpdatedAt, u.Name, u.Email, nullStr(u.Phone), string(u.Role), nullStr(u.City), nullStr(u.State))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

func (s *userStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1", id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

func (s *userStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1", id, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(res)
}

func (s *userStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func (s *userStore) Stats(ctx context.Context) (UserStats, error) {
	stats := UserStats{ByRole: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, "SELECT role, is_active, COUNT(*) FROM users GROUP BY role, is_active")
	if err != nil {
		return stats, fmt.Errorf("user stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var active bool
		var count int
		if err := rows.Scan(&role, &active, &count); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		if active {
			stats.Active += count
		} else {
			stats.Inactive += count
		}
		stats.ByRole[role] += count
	}
	return stats, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
