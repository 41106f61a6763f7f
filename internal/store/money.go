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

// MoneyFilter is the filter tuple for the money-record list.
type MoneyFilter struct {
	Kind      models.MoneyKind
	VehicleID *uuid.UUID
	Page      int
	Limit     int
}

// MoneyStore persists financial entries and serves the payment summary.
type MoneyStore interface {
	List(ctx context.Context, f MoneyFilter) ([]models.MoneyRecord, int, error)
	Create(ctx context.Context, rec *models.MoneyRecord) error
	Summary(ctx context.Context) (models.PaymentSummary, error)
}

type moneyStore struct {
	db *sql.DB
}

// NewMoneyStore creates the Postgres-backed MoneyStore.
func NewMoneyStore(db *sql.DB) MoneyStore {
	return &moneyStore{db: db}
}

func (s *moneyStore) List(ctx context.Context, f MoneyFilter) ([]models.MoneyRecord, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.VehicleID != nil {
		args = append(args, *f.VehicleID)
		where = append(where, fmt.Sprintf("vehicle_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM money_records WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count money records: %w", err)
	}

	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Page < 1 {
		f.Page = 1
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(`
		SELECT id, created_at, vehicle_id, amount, kind, recorded_by, note
		FROM money_records WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, cond, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list money records: %w", err)
	}
	defer rows.Close()

	var records []models.MoneyRecord
	for rows.Next() {
		var rec models.MoneyRecord
		var vehicleID, recordedBy uuid.NullUUID
		var note sql.NullString
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &vehicleID, &rec.Amount, &rec.Kind, &recordedBy, &note); err != nil {
			return nil, 0, fmt.Errorf("scan money record: %w", err)
		}
		if vehicleID.Valid {
			rec.VehicleID = &vehicleID.UUID
		}
		if recordedBy.Valid {
			rec.RecordedBy = &recordedBy.UUID
		}
		rec.Note = note.String
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *moneyStore) Create(ctx context.Context, rec *models.MoneyRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO money_records (id, created_at, vehicle_id, amount, kind, recorded_by, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.CreatedAt, nullUUID(rec.VehicleID), rec.Amount, string(rec.Kind),
		nullUUID(rec.RecordedBy), nullStr(rec.Note))
	if err != nil {
		return fmt.Errorf("insert money record: %w", err)
	}
	return nil
}

func (s *moneyStore) Summary(ctx context.Context) (models.PaymentSummary, error) {
	var summary models.PaymentSummary

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COALESCE(SUM(amount), 0) FROM money_records GROUP BY kind")
	if err != nil {
		return summary, fmt.Errorf("payment summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var total float64
		if err := rows.Scan(&kind, &total); err != nil {
			return summary, fmt.Errorf("scan summary: %w", err)
		}
		switch models.MoneyKind(kind) {
		case models.MoneyKindRecoveryFee:
			summary.TotalRecoveryFees = total
		case models.MoneyKindCommission:
			summary.TotalCommissions = total
		case models.MoneyKindExpense:
			summary.TotalExpenses = total
		}
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}
	summary.Net = summary.TotalRecoveryFees - summary.TotalCommissions - summary.TotalExpenses

	monthRows, err := s.db.QueryContext(ctx, `
		SELECT TO_CHAR(created_at, 'YYYY-MM') AS month, COALESCE(SUM(amount), 0)
		FROM money_records
		GROUP BY month ORDER BY month DESC LIMIT 12
	`)
	if err != nil {
		return summary, fmt.Errorf("monthly totals: %w", err)
	}
	defer monthRows.Close()

	for monthRows.Next() {
		var mt models.MonthlyTotal
		if err := monthRows.Scan(&mt.Month, &mt.Total); err != nil {
			return summary, fmt.Errorf("scan monthly total: %w", err)
		}
		summary.ByMonth = append(summary.ByMonth, mt)
	}
	return summary, monthRows.Err()
}
