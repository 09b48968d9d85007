package jobs

import (
	"context"
	"time"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/services"
)

// NudgeWorker runs the inactivity scan on an in-process interval, for
// deployments without an external scheduler hitting /tasks/nudge-check.
// Overlap with an externally triggered run is safe: every pass is
// idempotent against the store's forward-only status checks.
type NudgeWorker struct {
	log      *logger.Logger
	nudge    services.NudgeService
	interval time.Duration
}

func NewNudgeWorker(log *logger.Logger, nudge services.NudgeService, interval time.Duration) *NudgeWorker {
	return &NudgeWorker{
		log:      log.With("component", "NudgeWorker"),
		nudge:    nudge,
		interval: interval,
	}
}

func (w *NudgeWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("Nudge worker disabled (no interval configured)")
		return
	}
	w.log.Info("Nudge worker starting", "interval", w.interval.String())
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.log.Info("Nudge worker stopping")
				return
			case <-ticker.C:
				if _, err := w.nudge.RunOnce(ctx); err != nil {
					w.log.Warn("Scheduled nudge run failed", "error", err)
				}
			}
		}
	}()
}
