package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// reloadTimeout bounds one scheduled change check.
const reloadTimeout = time.Minute

type refresher interface {
	RefreshIfChanged(ctx context.Context) (bool, error)
}

// newReloadScheduler runs RefreshIfChanged on the given cron schedule.
func newReloadScheduler(spec string, r refresher, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()

		reloaded, err := r.RefreshIfChanged(ctx)
		if err != nil {
			logger.Error("scheduled reload failed", "error", err)
			return
		}
		if reloaded {
			logger.Info("incident table reloaded after source change")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse RELOAD_SCHEDULE %q: %w", spec, err)
	}
	return c, nil
}
