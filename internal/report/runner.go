package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/BartekS5/ods14/internal/load"
	"github.com/BartekS5/ods14/pkg/logger"
)

// Archiver stores report results outside the relational store.
type Archiver interface {
	Archive(ctx context.Context, runID string, results []*Result) error
}

// Runner executes catalog reports against a loaded star schema. The
// reports are read-only and run concurrently.
type Runner struct {
	DB          Querier
	Dialect     load.Dialect
	Concurrency int
}

// NewRunner returns a Runner with at most concurrency queries in flight.
func NewRunner(db Querier, d load.Dialect, concurrency int) *Runner {
	return &Runner{DB: db, Dialect: d, Concurrency: concurrency}
}

// Run executes the named reports (all when empty) and returns their results
// in catalog order. The first failure cancels the rest.
func (r *Runner) Run(ctx context.Context, names []string, rng Range) ([]*Result, error) {
	reports, err := Lookup(names...)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(reports))
	g, ctx := errgroup.WithContext(ctx)
	limit := r.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)
	for i, rep := range reports {
		g.Go(func() error {
			res, err := rep.Run(ctx, r.DB, r.Dialect, rng)
			if err != nil {
				return err
			}
			logger.Infof("Report %s: %d rows", rep.Name, len(res.Rows))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Publish writes results as CSV under dir and hands them to archive when
// one is configured.
func Publish(ctx context.Context, dir, runID string, results []*Result, archive Archiver) error {
	if dir != "" {
		for _, res := range results {
			path, err := WriteCSV(dir, res)
			if err != nil {
				return err
			}
			logger.Debugf("Wrote %s", path)
		}
	}
	if archive != nil {
		if err := archive.Archive(ctx, runID, results); err != nil {
			return fmt.Errorf("archive reports: %w", err)
		}
	}
	return nil
}
