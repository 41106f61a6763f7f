package models

import (
	"time"

	"github.com/google/uuid"
)

type MoneyKind string

const (
	MoneyKindRecoveryFee MoneyKind = "recovery_fee"
	MoneyKindCommission  MoneyKind = "commission"
	MoneyKindExpense     MoneyKind = "expense"
)

// ValidMoneyKind reports whether k belongs to the closed kind set.
func ValidMoneyKind(k MoneyKind) bool {
	switch k {
	case MoneyKindRecoveryFee, MoneyKindCommission, MoneyKindExpense:
		return true
	}
	return false
}

// MoneyRecord is one financial entry against a vehicle.
type MoneyRecord struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VehicleID  *uuid.UUID `json:"vehicle_id,omitempty"`
	Amount     float64    `json:"amount"`
	Kind       MoneyKind  `json:"kind"`
	RecordedBy *uuid.UUID `json:"recorded_by,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// PaymentSummary aggregates money records by kind plus monthly totals.
type PaymentSummary struct {
	TotalRecoveryFees float64        `json:"total_recovery_fees"`
	TotalCommissions  float64        `json:"total_commissions"`
	TotalExpenses     float64        `json:"total_expenses"`
	Net               float64        `json:"net"`
	ByMonth           []MonthlyTotal `json:"by_month"`
}

// MonthlyTotal is one month's aggregate ("2026-08" style key).
type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}
