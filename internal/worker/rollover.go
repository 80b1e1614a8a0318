package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flappyjet-backend/internal/config"
	"github.com/flappyjet-backend/internal/domain"
	"github.com/flappyjet-backend/internal/postgres"
	"github.com/flappyjet-backend/internal/redis"
)

// RolloverWorker is the scheduled maintenance capability behind the
// daily and weekly leaderboards: the request path only ever adds
// entries, this worker removes the ones whose period has passed and
// keeps the Redis sorted sets aligned with the database.
type RolloverWorker struct {
	redis    *redis.LeaderboardStore
	postgres *postgres.Repository
	config   *config.RolloverConfig
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewRolloverWorker creates a new rollover worker
func NewRolloverWorker(
	redis *redis.LeaderboardStore,
	postgres *postgres.Repository,
	cfg *config.RolloverConfig,
	logger *slog.Logger,
) *RolloverWorker {
	return &RolloverWorker{
		redis:    redis,
		postgres: postgres,
		config:   cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background rollover process
func (w *RolloverWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("rollover worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background rollover process
func (w *RolloverWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("rollover worker stopped")
	return nil
}

// run is the main worker loop
func (w *RolloverWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce prunes every expiring period once
func (w *RolloverWorker) RunOnce(ctx context.Context) {
	now := time.Now().UTC()
	for _, period := range []domain.Period{domain.PeriodDaily, domain.PeriodWeekly} {
		if err := w.pruneExpired(ctx, period, period.Cutoff(now)); err != nil {
			w.logger.Error("failed to prune period",
				"period", period,
				"error", err,
			)
		}
	}
}

// pruneExpired removes a period's entries last updated before the
// cutoff, from the database first and then from the sorted set.
func (w *RolloverWorker) pruneExpired(ctx context.Context, period domain.Period, cutoff time.Time) error {
	removed, err := w.postgres.PruneEntriesBefore(ctx, period, cutoff)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}

	if err := w.redis.RemovePlayers(ctx, period, removed); err != nil {
		return err
	}

	w.logger.Info("pruned expired leaderboard entries",
		"period", period,
		"cutoff", cutoff,
		"removed", len(removed),
	)
	return nil
}

// SeedFromDatabase rebuilds every period's sorted set and nickname
// cache from the durable store. Used at startup for recovery after a
// Redis flush.
func (w *RolloverWorker) SeedFromDatabase(ctx context.Context) error {
	for _, period := range domain.Periods {
		scores, err := w.postgres.GetPeriodScores(ctx, period)
		if err != nil {
			return err
		}

		if err := w.redis.ResetPeriod(ctx, period); err != nil {
			return err
		}
		if err := w.redis.BatchSetScores(ctx, period, scores); err != nil {
			return err
		}

		nicknames, err := w.postgres.GetPeriodNicknames(ctx, period)
		if err != nil {
			return err
		}
		for playerID, nickname := range nicknames {
			if err := w.redis.SetNickname(ctx, playerID, nickname); err != nil {
				w.logger.Warn("failed to seed nickname",
					"player_id", playerID,
					"error", err,
				)
			}
		}

		w.logger.Debug("seeded period from database",
			"period", period,
			"entries", len(scores),
		)
	}

	w.logger.Info("leaderboards seeded from database")
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *RolloverWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
