package utils

import "errors"

// MinPasswordLength is the shortest password accepted for any account.
const MinPasswordLength = 6

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidatePassword checks length and confirmation before anything reaches
// storage. The console runs the same checks; this is the authoritative copy.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// IsOTPFormat reports whether code is exactly 4 ASCII digits. Format is the
// only thing validated before hitting the OTP store.
func IsOTPFormat(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
