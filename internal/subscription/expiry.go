package subscription

import (
	"context"
	"time"

	"wildenergy/internal/logger"
)

// StartExpiryWorker periodically flips subscriptions past their end date to
// expired, so eligibility queries never see a stale active row. Runs until
// the context is cancelled.
func StartExpiryWorker(ctx context.Context, repo Repository, interval time.Duration) {
	logger.Info("subscription expiry worker started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription expiry worker stopped")
			return
		case <-ticker.C:
			n, err := repo.ExpireOverdue(ctx, time.Now())
			if err != nil {
				logger.Error("failed to expire overdue subscriptions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired overdue subscriptions", "count", n)
			}
		}
	}
}
