package service

import (
	"context"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/logger"

	"github.com/go-co-op/gocron/v2"
)

// SnapshotPublisher receives leaderboard snapshots for live clients.
type SnapshotPublisher interface {
	Publish(entries []domain.LeaderboardEntry) (bool, error)
}

type SchedulerConfig struct {
	ReconcileInterval   time.Duration
	LeaderboardInterval time.Duration
	LeaderboardSize     int
	JobTimeout          time.Duration
}

// StartScheduler registers the background jobs and starts them. The caller
// owns the returned scheduler and must Shutdown it.
func StartScheduler(reconciler *Reconciler, board *LeaderboardService, pub SnapshotPublisher, cfg SchedulerConfig) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}

	if cfg.ReconcileInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.ReconcileInterval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
				defer cancel()
				if _, err := reconciler.Run(ctx); err != nil {
					logger.Error("ledger reconciliation failed", "error", err)
				}
			}),
			gocron.WithName("ledger-reconcile"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
	}

	if cfg.LeaderboardInterval > 0 && pub != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.LeaderboardInterval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
				defer cancel()
				PushLeaderboard(ctx, board, pub, cfg.LeaderboardSize)
			}),
			gocron.WithName("leaderboard-push"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
	}

	sched.Start()
	logger.Info("scheduler started",
		"reconcile_interval", cfg.ReconcileInterval.String(),
		"leaderboard_interval", cfg.LeaderboardInterval.String(),
	)
	return sched, nil
}

// PushLeaderboard publishes the current top n; errors are logged.
func PushLeaderboard(ctx context.Context, board *LeaderboardService, pub SnapshotPublisher, n int) {
	entries, err := board.Top(ctx, n)
	if err != nil {
		logger.Error("leaderboard snapshot failed", "error", err)
		return
	}
	if _, err := pub.Publish(entries); err != nil {
		logger.Error("leaderboard publish failed", "error", err)
	}
}
