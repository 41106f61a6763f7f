package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxActiveBackOfficeNumbers caps how many numbers may be active at once.
// The cap is authoritative here; the console only mirrors it as a disabled
// control.
const MaxActiveBackOfficeNumbers = 4

// BackOfficeNumber is a published contact phone number shown to field agents.
type BackOfficeNumber struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	IsActive     bool   `json:"is_active"`
	Position     int    `json:"order"`
}
