package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/repotrack/backend/internal/database"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/store"
)

const (
	// StatsCacheKeyPrefix is the Redis key prefix for cached dashboard stats
	StatsCacheKeyPrefix = "stats:"
	// StatsCacheTTL keeps dashboard counters fresh enough without hitting
	// Postgres on every console poll
	StatsCacheTTL = 30 * time.Second
)

// StatsService serves the dashboard counters, caching them briefly in Redis.
type StatsService struct {
	users    store.UserStore
	vehicles store.VehicleStore
}

func NewStatsService(users store.UserStore, vehicles store.VehicleStore) *StatsService {
	return &StatsService{users: users, vehicles: vehicles}
}

// UserStats returns user counts, from cache when fresh.
func (s *StatsService) UserStats(ctx context.Context) (store.UserStats, error) {
	var stats store.UserStats
	if statsCacheGet(ctx, "users", &stats) {
		return stats, nil
	}

	stats, err := s.users.Stats(ctx)
	if err != nil {
		return store.UserStats{}, err
	}
	statsCacheSet(ctx, "users", stats)
	return stats, nil
}

// VehicleStats returns vehicle counts by status, from cache when fresh.
func (s *StatsService) VehicleStats(ctx context.Context) (models.VehicleStats, error) {
	var stats models.VehicleStats
	if statsCacheGet(ctx, "vehicles", &stats) {
		return stats, nil
	}

	stats, err := s.vehicles.Stats(ctx)
	if err != nil {
		return models.VehicleStats{}, err
	}
	statsCacheSet(ctx, "vehicles", stats)
	return stats, nil
}

// InvalidateUserStats drops the cached user counters after a mutation.
func (s *StatsService) InvalidateUserStats(ctx context.Context) {
	statsCacheDel(ctx, "users")
}

// InvalidateVehicleStats drops the cached vehicle counters after a mutation.
func (s *StatsService) InvalidateVehicleStats(ctx context.Context) {
	statsCacheDel(ctx, "vehicles")
}

func statsCacheGet(ctx context.Context, key string, dest interface{}) bool {
	if database.RedisClient == nil {
		return false
	}
	val, err := database.RedisClient.Get(ctx, StatsCacheKeyPrefix+key).Result()
	if err != nil {
		return false // cache miss, not an error
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func statsCacheSet(ctx context.Context, key string, value interface{}) {
	if database.RedisClient == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	database.RedisClient.Set(ctx, StatsCacheKeyPrefix+key, data, StatsCacheTTL)
}

func statsCacheDel(ctx context.Context, key string) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, StatsCacheKeyPrefix+key)
}
