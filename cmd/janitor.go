package cmd

import (
	"context"
	"time"

	"arc-web/internal/data/repository"
	"arc-web/pkg/metrics"

	"go.uber.org/zap"
)

// Janitor periodically removes expired sessions and expired unconsumed tokens.
// Expiry is enforced on read, so a missed sweep only costs storage.
type Janitor struct {
	repo     *repository.Repository
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewJanitor(repo *repository.Repository, interval time.Duration, log *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		log:      log.With(zap.String("worker", "janitor")),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	j.log.Info("Janitor started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.Sweep(ctx)

		select {
		case <-ctx.Done():
			j.log.Info("Janitor stopped")
			return
		case <-ticker.C:
		}
	}
}

func (j *Janitor) Sweep(ctx context.Context) {
	now := j.now()

	sessions, err := j.repo.Session.CleanExpiredSessions(ctx, now)
	if err != nil {
		j.log.Error("Failed to clean sessions", zap.Error(err))
	} else {
		metrics.JanitorDeletedTotal.WithLabelValues("sessions").Add(float64(sessions))
	}

	tokens, err := j.repo.Token.DeleteExpired(ctx, now)
	if err != nil {
		j.log.Error("Failed to clean tokens", zap.Error(err))
	} else {
		metrics.JanitorDeletedTotal.WithLabelValues("auth_tokens").Add(float64(tokens))
	}

	if sessions > 0 || tokens > 0 {
		j.log.Info("Janitor sweep", zap.Int64("sessions", sessions), zap.Int64("tokens", tokens))
	}
}
