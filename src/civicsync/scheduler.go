package civicsync

import (
	"context"
	"errors"
	"log"
	"time"
)

// StartScheduler runs unbounded syncs on a fixed interval until ctx is
// cancelled. The first run fires immediately.
func StartScheduler(ctx context.Context, orch *Orchestrator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runScheduled(ctx, orch)

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: stopping")
			return
		case <-ticker.C:
			runScheduled(ctx, orch)
		}
	}
}

func runScheduled(ctx context.Context, orch *Orchestrator) {
	sum, err := orch.Run(ctx, RunOptions{Trigger: TriggerTimer})
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			log.Println("scheduler: previous run still in progress, skipping")
			return
		}
		log.Printf("scheduler: sync failed: %v", err)
		return
	}
	log.Printf("scheduler: sync completed: discovered=%d processed=%d synced=%d errors=%d",
		sum.Discovered, sum.Processed, sum.Synced, sum.Errors)
}
