// Package background holds tasks that run independently of the HTTP
// request cycle.
package background

import (
	"context"
	"sync"
	"time"

	"github.com/user/kaliweb-go/config"
	"github.com/user/kaliweb-go/logging"
)

// Purger deletes stale records older than the TTL and reports how many
// rows it removed.
type Purger interface {
	PurgeResolved(ctx context.Context, ttl time.Duration) (int64, error)
}

// StartRetentionSweeper periodically purges resolved contact submissions
// past their retention window. It runs until stopChan closes; Wait on the
// returned WaitGroup for a clean shutdown.
func StartRetentionSweeper(purger Purger, cfg config.RetentionConfig, log logging.Logger, stopChan <-chan struct{}) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()

		log.Info(context.Background(), "retention sweeper started",
			"interval", cfg.SweepInterval, "ttl", cfg.ResolvedTTL)

		for {
			select {
			case <-stopChan:
				log.Info(context.Background(), "retention sweeper stopping")
				return
			case <-ticker.C:
				sweep(purger, cfg.ResolvedTTL, log)
			}
		}
	}()

	return &wg
}

func sweep(purger Purger, ttl time.Duration, log logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := purger.PurgeResolved(ctx, ttl)
	if err != nil {
		log.Error(ctx, "retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		log.Info(ctx, "retention sweep purged submissions", "removed", removed)
	}
}
