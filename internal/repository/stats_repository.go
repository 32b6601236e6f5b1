package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository reads the dashboard counters straight from the backend's
// Postgres database.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) CountReservations(ctx context.Context, day time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*) FROM reservations
		WHERE reserved_on = $1::date
		  AND status <> 'cancelled'
	`
	var count int64
	if err := r.pool.QueryRow(ctx, query, day.UTC().Format("2006-01-02")).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StatsRepository) CountVisitors(ctx context.Context, day time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*) FROM visits
		WHERE visited_at >= $1::date
		  AND visited_at < $1::date + INTERVAL '1 day'
	`
	var count int64
	if err := r.pool.QueryRow(ctx, query, day.UTC().Format("2006-01-02")).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
