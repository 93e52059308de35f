package monitor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/juststeveking/lookout/internal/config"
)

// Prober executes a single check
type Prober interface {
	Execute(ctx context.Context, check config.ResolvedCheck) Result
}

// Runner fans a Prober out over every check with bounded concurrency
type Runner struct {
	prober Prober
	limit  int
	logger *slog.Logger
}

// NewRunner creates a runner that probes at most limit checks at a time
func NewRunner(prober Prober, limit int, logger *slog.Logger) *Runner {
	if limit < 1 {
		limit = config.DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		prober: prober,
		limit:  limit,
		logger: logger,
	}
}

// Run probes every check and returns the results in input order.
// One check going down never stops the others.
func (r *Runner) Run(ctx context.Context, checks []config.ResolvedCheck) Snapshot {
	snapshot := make(Snapshot, len(checks))

	var g errgroup.Group
	g.SetLimit(r.limit)

	for i, check := range checks {
		g.Go(func() error {
			snapshot[i] = r.prober.Execute(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("checks finished",
		"total", len(snapshot),
		"down", len(snapshot.Failed()),
	)

	return snapshot
}
