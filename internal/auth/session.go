package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionKeyPrefix is the Redis key prefix for the token mirror
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->token mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionStore mirrors issued token ids in Redis so logout (and forced
// invalidation on password change) revokes a JWT before it expires. One
// session per user: a new login replaces the old one.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Create registers a token id for a user, invalidating any prior session so
// the expiry timer resets from the current login.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, tokenID string) error {
	_ = s.InvalidateUser(ctx, userID)

	sessionKey := SessionKeyPrefix + tokenID
	userKey := UserSessionKeyPrefix + userID.String()

	if err := s.rdb.Set(ctx, sessionKey, userID.String(), accessTokenExpiry).Err(); err != nil {
		return err
	}
	return s.rdb.Set(ctx, userKey, tokenID, accessTokenExpiry).Err()
}

// Valid reports whether the token id is still registered.
func (s *SessionStore) Valid(ctx context.Context, tokenID string) bool {
	if tokenID == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, SessionKeyPrefix+tokenID).Result()
	return err == nil && n > 0
}

// Invalidate revokes a single token id.
func (s *SessionStore) Invalidate(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	sessionKey := SessionKeyPrefix + tokenID

	// Drop the user mapping too so a stale pointer can't linger
	userIDStr, err := s.rdb.Get(ctx, sessionKey).Result()
	if err == nil && userIDStr != "" {
		s.rdb.Del(ctx, UserSessionKeyPrefix+userIDStr)
	}
	return s.rdb.Del(ctx, sessionKey).Err()
}

// InvalidateUser revokes whatever session the user currently holds.
func (s *SessionStore) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	userKey := UserSessionKeyPrefix + userID.String()

	tokenID, err := s.rdb.Get(ctx, userKey).Result()
	if err == nil && tokenID != "" {
		s.rdb.Del(ctx, SessionKeyPrefix+tokenID)
	}
	return s.rdb.Del(ctx, userKey).Err()
}

// Refresh extends both mirror keys from now. Called on every authenticated
// request so an active console never has its session lapse under it.
func (s *SessionStore) Refresh(ctx context.Context, userID uuid.UUID, tokenID string) {
	s.rdb.Expire(ctx, SessionKeyPrefix+tokenID, accessTokenExpiry)
	s.rdb.Expire(ctx, UserSessionKeyPrefix+userID.String(), accessTokenExpiry)
}
