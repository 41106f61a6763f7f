package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/store"
)

// ErrInvalidOTP is returned for a wrong, expired, or missing code. One
// message for all three so the response leaks nothing about which it was.
var ErrInvalidOTP = fmt.Errorf("invalid or expired OTP")

// OTPService issues and verifies the one-time login codes admins hand to
// field agents and auditors.
type OTPService struct {
	otps store.OTPStore
	now  func() time.Time
}

func NewOTPService(otps store.OTPStore) *OTPService {
	return &OTPService{otps: otps, now: time.Now}
}

// Generate creates a fresh 4-digit code for the user, replacing any active
// one. The returned record carries the plaintext code; it is shown once to
// the generating admin and never logged.
func (s *OTPService) Generate(ctx context.Context, userID, generatedBy uuid.UUID) (models.OTPRecord, error) {
	code, err := generateCode()
	if err != nil {
		return models.OTPRecord{}, fmt.Errorf("generate code: %w", err)
	}

	now := s.now()
	rec := models.OTPRecord{
		UserID:      userID,
		Code:        code,
		GeneratedBy: &generatedBy,
		CreatedAt:   now,
		ExpiresAt:   now.Add(models.OTPLifetime),
	}
	if err := s.otps.Replace(ctx, &rec); err != nil {
		return models.OTPRecord{}, fmt.Errorf("store code: %w", err)
	}
	return rec, nil
}

// Verify checks the code against the user's active record and consumes it on
// success. A wrong code leaves the record intact so the user may retry until
// expiry.
func (s *OTPService) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	rec, err := s.otps.GetActiveByUser(ctx, userID)
	if err != nil {
		return ErrInvalidOTP
	}
	if rec.IsExpired(s.now()) {
		return ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return ErrInvalidOTP
	}
	if err := s.otps.Consume(ctx, rec.ID); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

// Invalidate consumes the user's active record, if any.
func (s *OTPService) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return s.otps.InvalidateUser(ctx, userID)
}

// ListActive returns every live record annotated for the console's OTP
// table. The plaintext code survives only on records the requesting admin
// generated.
func (s *OTPService) ListActive(ctx context.Context, requester uuid.UUID) ([]OTPListEntry, error) {
	records, err := s.otps.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]OTPListEntry, 0, len(records))
	for _, rec := range records {
		entry := OTPListEntry{
			UserID:           rec.UserID,
			HasValidOTP:      rec.HasValid(now),
			ExpiresAt:        rec.ExpiresAt,
			CreatedAt:        rec.CreatedAt,
			RemainingSeconds: rec.RemainingSeconds(now),
			IsExpired:        rec.IsExpired(now),
		}
		if rec.GeneratedBy != nil && *rec.GeneratedBy == requester {
			entry.OTP = rec.Code
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// OTPListEntry is one row of the console's OTP table.
type OTPListEntry struct {
	UserID           uuid.UUID `json:"user_id"`
	HasValidOTP      bool      `json:"hasValidOTP"`
	OTP              string    `json:"otp,omitempty"`
	ExpiresAt        time.Time `json:"expiresAt"`
	CreatedAt        time.Time `json:"createdAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
	IsExpired        bool      `json:"isExpired"`
}

// generateCode returns 4 crypto-random digits, leading zeros included.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
