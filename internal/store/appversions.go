package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
)

// AppVersionStore persists published mobile-app builds.
type AppVersionStore interface {
	// List returns builds newest-first, optionally for one platform.
	List(ctx context.Context, platform string) ([]models.AppVersion, error)
	// Publish inserts a build and marks prior builds of the platform
	// non-latest.
	Publish(ctx context.Context, v *models.AppVersion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type appVersionStore struct {
	db *sql.DB
}

// NewAppVersionStore creates the Postgres-backed AppVersionStore.
func NewAppVersionStore(db *sql.DB) AppVersionStore {
	return &appVersionStore{db: db}
}

func (s *appVersionStore) List(ctx context.Context, platform string) ([]models.AppVersion, error) {
	query := "SELECT id, created_at, version, platform, file_url, release_notes, is_latest FROM app_versions"
	args := []interface{}{}
	if platform != "" {
		query += " WHERE platform = $1"
		args = append(args, platform)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list app versions: %w", err)
	}
	defer rows.Close()

	var versions []models.AppVersion
	for rows.Next() {
		var v models.AppVersion
		var notes sql.NullString
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.Version, &v.Platform, &v.FileURL, &notes, &v.IsLatest); err != nil {
			return nil, fmt.Errorf("scan app version: %w", err)
		}
		v.ReleaseNotes = notes.String
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *appVersionStore) Publish(ctx context.Context, v *models.AppVersion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE app_versions SET is_latest = FALSE WHERE platform = $1", v.Platform); err != nil {
		return fmt.Errorf("demote prior builds: %w", err)
	}

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	v.IsLatest = true

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO app_versions (id, created_at, version, platform, file_url, release_notes, is_latest)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	`, v.ID, v.CreatedAt, v.Version, v.Platform, v.FileURL, nullStr(v.ReleaseNotes)); err != nil {
		return fmt.Errorf("insert app version: %w", err)
	}

	return tx.Commit()
}

func (s *appVersionStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM app_versions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete app version: %w", err)
	}
	return requireRow(res)
}
