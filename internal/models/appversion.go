package models

import (
	"time"

	"github.com/google/uuid"
)

// AppVersion is one published mobile-app build. The listing is public; the
// console builds download links from FileURL.
type AppVersion struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Version      string `json:"version"`
	Platform     string `json:"platform"` // "android" or "ios"
	FileURL      string `json:"file_url"`
	ReleaseNotes string `json:"release_notes,omitempty"`
	IsLatest     bool   `json:"is_latest"`
}
