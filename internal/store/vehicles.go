package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
)

// VehicleFilter is the filter tuple for the vehicle list.
type VehicleFilter struct {
	Search     string
	Status     models.VehicleStatus
	Priority   models.VehiclePriority
	AssignedTo *uuid.UUID
	Page       int
	Limit      int
}

// VehicleStore is the persistence interface for repossession targets.
type VehicleStore interface {
	List(ctx context.Context, f VehicleFilter) ([]models.Vehicle, int, error)
	// ListAll returns the full filtered set with no page cap, for CSV export.
	ListAll(ctx context.Context, f VehicleFilter) ([]models.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Vehicle, error)
	Create(ctx context.Context, v *models.Vehicle) error
	Update(ctx context.Context, v *models.Vehicle) error
	Assign(ctx context.Context, id, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.VehicleStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (models.VehicleStats, error)
}

type vehicleStore struct {
	db *sql.DB
}

// NewVehicleStore creates the Postgres-backed VehicleStore.
func NewVehicleStore(db *sql.DB) VehicleStore {
	return &vehicleStore{db: db}
}

const vehicleColumns = `id, created_at, updated_at, registration_number, owner_name, owner_phone, make, model, year, status, priority, assigned_to, outstanding_amount`

func scanVehicle(row interface{ Scan(...interface{}) error }) (models.Vehicle, error) {
	var v models.Vehicle
	var ownerPhone, make, model sql.NullString
	var year sql.NullInt64
	var assignedTo uuid.NullUUID
	err := row.Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt, &v.RegistrationNumber, &v.OwnerName,
		&ownerPhone, &make, &model, &year, &v.Status, &v.Priority, &assignedTo, &v.OutstandingAmount)
	if err != nil {
		return models.Vehicle{}, err
	}
	v.OwnerPhone = ownerPhone.String
	v.Make = make.String
	v.Model = model.String
	v.Year = int(year.Int64)
	if assignedTo.Valid {
		v.AssignedTo = &assignedTo.UUID
	}
	return v, nil
}

func (s *vehicleStore) buildWhere(f VehicleFilter) (string, []interface{}) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(registration_number ILIKE $%d OR owner_name ILIKE $%d OR make ILIKE $%d OR model ILIKE $%d)", n, n, n, n))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.AssignedTo != nil {
		args = append(args, *f.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	return strings.Join(where, " AND "), args
}

func (s *vehicleStore) List(ctx context.Context, f VehicleFilter) ([]models.Vehicle, int, error) {
	cond, args := s.buildWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vehicles: %w", err)
	}

	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Page < 1 {
		f.Page = 1
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf("SELECT %s FROM vehicles WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		vehicleColumns, cond, len(args)-1, len(args))

	vehicles, err := s.queryVehicles(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (s *vehicleStore) ListAll(ctx context.Context, f VehicleFilter) ([]models.Vehicle, error) {
	cond, args := s.buildWhere(f)
	query := fmt.Sprintf("SELECT %s FROM vehicles WHERE %s ORDER BY created_at DESC", vehicleColumns, cond)
	return s.queryVehicles(ctx, query, args...)
}

func (s *vehicleStore) queryVehicles(ctx context.Context, query string, args ...interface{}) ([]models.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *vehicleStore) GetByID(ctx context.Context, id uuid.UUID) (models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+vehicleColumns+" FROM vehicles WHERE id = $1", id)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return models.Vehicle{}, ErrNotFound
	}
	return v, err
}

func (s *vehicleStore) Create(ctx context.Context, v *models.Vehicle) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Status == "" {
		v.Status = models.VehicleStatusPending
	}
	if v.Priority == "" {
		v.Priority = models.VehiclePriorityMedium
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vehicles (id, created_at, updated_at, registration_number, owner_name, owner_phone, make, model, year, status, priority, assigned_to, outstanding_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, v.ID, v.CreatedAt, v.UpdatedAt, v.RegistrationNumber, v.OwnerName, nullStr(v.OwnerPhone),
		nullStr(v.Make), nullStr(v.Model), nullInt(v.Year), string(v.Status), string(v.Priority),
		nullUUID(v.AssignedTo), v.OutstandingAmount)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (s *vehicleStore) Update(ctx context.Context, v *models.Vehicle) error {
	v.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE vehicles SET updated_at = $2, registration_number = $3, owner_name = $4, owner_phone = $5,
			make = $6, model = $7, year = $8, priority = $9, outstanding_amount = $10
		WHERE id = $1
	`, v.ID, v.UpdatedAt, v.RegistrationNumber, v.OwnerName, nullStr(v.OwnerPhone),
		nullStr(v.Make), nullStr(v.Model), nullInt(v.Year), string(v.Priority), v.OutstandingAmount)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	return requireRow(res)
}

func (s *vehicleStore) Assign(ctx context.Context, id, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE vehicles SET assigned_to = $2, status = $3, updated_at = NOW() WHERE id = $1
	`, id, userID, string(models.VehicleStatusAssigned))
	if err != nil {
		return fmt.Errorf("assign vehicle: %w", err)
	}
	return requireRow(res)
}

func (s *vehicleStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.VehicleStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE vehicles SET status = $2, updated_at = NOW() WHERE id = $1", id, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireRow(res)
}

func (s *vehicleStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM vehicles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return requireRow(res)
}

func (s *vehicleStore) Stats(ctx context.Context) (models.VehicleStats, error) {
	var stats models.VehicleStats

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM vehicles GROUP BY status")
	if err != nil {
		return stats, fmt.Errorf("vehicle stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch models.VehicleStatus(status) {
		case models.VehicleStatusPending:
			stats.Pending = count
		case models.VehicleStatusAssigned:
			stats.Assigned = count
		case models.VehicleStatusInProgress:
			stats.InProgress = count
		case models.VehicleStatusRecovered:
			stats.Recovered = count
		case models.VehicleStatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
