// Package scheduler runs periodic maintenance next to the API server.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// CodePurger deletes expired one-time codes.
type CodePurger interface {
	PurgeExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// Janitor purges expired registration codes on a fixed interval.
type Janitor struct {
	store    CodePurger
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
}

// NewJanitor creates a Janitor. A non-positive interval defaults to 15m.
func NewJanitor(store CodePurger, logger *slog.Logger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Janitor{
		store:    store,
		logger:   logger,
		interval: interval,
		timeout:  time.Minute,
		now:      time.Now,
	}
}

// Start runs the sweep loop in a goroutine until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	if j.logger != nil {
		j.logger.Info("janitor started", slog.String("interval", j.interval.String()))
	}

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = j.Sweep(ctx)
			}
		}
	}()
}

// Sweep purges codes that have expired and returns how many were removed.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	sweepCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	n, err := j.store.PurgeExpiredCodes(sweepCtx, j.now())
	if err != nil {
		if j.logger != nil {
			j.logger.Error("janitor failed to purge codes", slog.String("error", err.Error()))
		}
		return 0, err
	}
	if n > 0 && j.logger != nil {
		j.logger.Info("janitor purged expired codes", slog.Int64("count", n))
	}
	return n, nil
}
