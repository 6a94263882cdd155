// Package jobs holds the background loops that run alongside the HTTP
// server.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/config"
)

type Reconciler interface {
	DeleteOrphanRequests(ctx context.Context) (int64, error)
}

// StartReconcileJob periodically removes requests whose teacher or
// speaker no longer exists. A request created concurrently against an
// account mid-deletion can slip past the cascade; this sweep closes
// that window.
func StartReconcileJob(ctx context.Context, cfg config.Config, store Reconciler) {
	if !cfg.ReconcileEnabled {
		return
	}
	interval := cfg.ReconcileInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				removed, err := store.DeleteOrphanRequests(tickCtx)
				cancel()
				if err != nil {
					log.Printf("orphan request sweep error: %v", err)
					continue
				}
				if removed > 0 {
					log.Printf("orphan request sweep removed %d requests", removed)
				}
			}
		}
	}()
}
