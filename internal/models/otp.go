package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPLifetime is how long a generated code stays valid.
const OTPLifetime = 300 * time.Second

// OTPRecord is a one-time login code generated by an admin for a field agent
// or auditor. The plaintext code is shown only to the admin who generated it.
type OTPRecord struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Code        string     `json:"otp,omitempty"`
	GeneratedBy *uuid.UUID `json:"generated_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConsumedAt  *time.Time `json:"-"`
}

// RemainingSeconds returns the whole seconds until expiry at the given
// instant, clamped at zero.
func (o *OTPRecord) RemainingSeconds(now time.Time) int {
	remaining := o.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// IsExpired reports whether the record can no longer verify.
func (o *OTPRecord) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// HasValid reports whether the record is still usable: not consumed, not
// expired.
func (o *OTPRecord) HasValid(now time.Time) bool {
	return o.ConsumedAt == nil && !o.IsExpired(now)
}
