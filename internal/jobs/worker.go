package jobs

import (
	"context"
	"log/slog"
	"math"
	"time"

	"unsent/internal/message"
	"unsent/internal/metrics"
)

const maxBackoff = 600 * time.Second

// Lister is the part of message.Repo the worker reads.
type Lister interface {
	List(ctx context.Context) ([]message.Message, error)
}

// StatsWorker samples the archive on a fixed interval and publishes its
// size on the archive gauges.
type StatsWorker struct {
	Repo     Lister
	Interval time.Duration
	Log      *slog.Logger

	failures int
}

type Stats struct {
	Messages int
	Reported int
}

func (w *StatsWorker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			next := interval
			if _, err := w.Sample(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				next = w.retryAfter()
				w.log().WarnContext(ctx, "stats_sample_failed",
					"err", err, "attempt", w.failures, "retry_in", next)
			} else {
				w.failures = 0
			}
			timer.Reset(next)
		}
	}
}

// Sample reads the archive once and updates the gauges.
func (w *StatsWorker) Sample(ctx context.Context) (Stats, error) {
	msgs, err := w.Repo.List(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("stats").Inc()
		return Stats{}, err
	}

	s := Stats{Messages: len(msgs)}
	for _, m := range msgs {
		if m.Reports > 0 {
			s.Reported++
		}
	}
	metrics.ArchiveMessages.Set(float64(s.Messages))
	metrics.ArchiveReported.Set(float64(s.Reported))
	return s, nil
}

func (w *StatsWorker) retryAfter() time.Duration {
	w.failures++
	return backoff(w.failures)
}

// backoff is 2^attempt seconds, capped at ten minutes.
func backoff(attempt int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempt)), maxBackoff.Seconds())
	return time.Duration(sec) * time.Second
}

func (w *StatsWorker) log() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}
