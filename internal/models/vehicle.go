package models

import (
	"time"

	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusPending    VehicleStatus = "pending"
	VehicleStatusAssigned   VehicleStatus = "assigned"
	VehicleStatusInProgress VehicleStatus = "in_progress"
	VehicleStatusRecovered  VehicleStatus = "recovered"
	VehicleStatusFailed     VehicleStatus = "failed"
)

// ValidVehicleStatus reports whether s belongs to the closed status set.
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleStatusPending, VehicleStatusAssigned, VehicleStatusInProgress,
		VehicleStatusRecovered, VehicleStatusFailed:
		return true
	}
	return false
}

type VehiclePriority string

const (
	VehiclePriorityUrgent VehiclePriority = "urgent"
	VehiclePriorityHigh   VehiclePriority = "high"
	VehiclePriorityMedium VehiclePriority = "medium"
	VehiclePriorityLow    VehiclePriority = "low"
)

// ValidVehiclePriority reports whether p belongs to the closed priority set.
func ValidVehiclePriority(p VehiclePriority) bool {
	switch p {
	case VehiclePriorityUrgent, VehiclePriorityHigh, VehiclePriorityMedium, VehiclePriorityLow:
		return true
	}
	return false
}

type Vehicle struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RegistrationNumber string `json:"registration_number"`
	OwnerName          string `json:"owner_name"`
	OwnerPhone         string `json:"owner_phone,omitempty"`
	Make               string `json:"make,omitempty"`
	Model              string `json:"model,omitempty"`
	Year               int    `json:"year,omitempty"`

	Status   VehicleStatus   `json:"status"`
	Priority VehiclePriority `json:"priority"`

	// Weak reference to a User; display-only
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`

	OutstandingAmount float64 `json:"outstanding_amount"`
}

// VehicleStats is the dashboard stats payload: counts by status.
type VehicleStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Recovered  int `json:"recovered"`
	Failed     int `json:"failed"`
}
