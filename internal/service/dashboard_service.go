package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"elretiro/console/internal/events"
	"elretiro/console/internal/models"
)

const dashboardCacheKey = "dashboard:stats"

type StatsSource interface {
	CountReservations(ctx context.Context, day time.Time) (int64, error)
	CountVisitors(ctx context.Context, day time.Time) (int64, error)
}

type DashboardService struct {
	source StatsSource
	cache  *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewDashboardService accepts a nil source (no database configured) and a nil
// cache.
func NewDashboardService(source StatsSource, cache *redis.Client, ttl time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		source: source,
		cache:  cache,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var stats models.DashboardStats
			if jerr := json.Unmarshal(raw, &stats); jerr == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("dashboard cache read failed")
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the stats and stores them in the cache.
func (s *DashboardService) Refresh(ctx context.Context) (models.DashboardStats, error) {
	stats, err := s.compute(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	if s.cache != nil {
		raw, err := json.Marshal(stats)
		if err == nil {
			err = s.cache.Set(ctx, dashboardCacheKey, raw, s.ttl).Err()
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context) (models.DashboardStats, error) {
	// "today" is the UTC day everywhere, matching the worker's counter keys
	now := s.now().UTC()
	stats := models.DashboardStats{ComputedAt: now}

	if s.source != nil {
		reservations, err := s.source.CountReservations(ctx, now)
		if err != nil {
			return models.DashboardStats{}, fmt.Errorf("count reservations: %w", err)
		}
		visitors, err := s.source.CountVisitors(ctx, now)
		if err != nil {
			return models.DashboardStats{}, fmt.Errorf("count visitors: %w", err)
		}
		stats.Available = true
		stats.Reservations = reservations
		stats.Visitors = visitors
	}

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, events.CounterKey(models.AuthEventSignedIn, now)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("read sign-in counter failed")
		}
		if n, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			stats.SignIns = n
		}
	}

	return stats, nil
}
