package workers

import (
	"context"
	"fmt"
	"time"

	"esports-arena/logger"

	"github.com/go-co-op/gocron/v2"
)

// StartScheduler runs the reconciler every interval until the returned scheduler is shut down.
func StartScheduler(ctx context.Context, rec *Reconciler, interval time.Duration, log *logger.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(ctx, interval)
			defer cancel()
			if err := rec.Run(runCtx); err != nil {
				log.Error("❌ [SCHEDULER] reconcile failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("reconcile-occupancy"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reconciler: %w", err)
	}

	sched.Start()
	log.Info("⏱️ [SCHEDULER] started", "interval", interval.String())
	return sched, nil
}
