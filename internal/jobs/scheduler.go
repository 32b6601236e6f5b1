package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"elretiro/console/internal/models"
)

type statsRefresher interface {
	Refresh(ctx context.Context) (models.DashboardStats, error)
}

// Scheduler keeps the dashboard cache warm.
type Scheduler struct {
	cron      *cron.Cron
	dashboard statsRefresher
	spec      string
	log       zerolog.Logger
}

func NewScheduler(dashboard statsRefresher, spec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		dashboard: dashboard,
		spec:      spec,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.dashboard == nil || s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.refreshDashboard); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for a running job for at most five seconds.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) refreshDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := s.dashboard.Refresh(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("dashboard refresh failed")
		return
	}
	s.log.Debug().
		Int64("reservations", stats.Reservations).
		Int64("visitors", stats.Visitors).
		Int64("sign_ins", stats.SignIns).
		Msg("dashboard refreshed")
}
