// Package du sizes a set of buckets in parallel and aggregates the results.
package du

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietdv277/s3du/pkg/provider"
	"github.com/vietdv277/s3du/pkg/types"
)

// DefaultConcurrency is the worker pool size when Options.Concurrency is unset
const DefaultConcurrency = 4

// Options configures a Run
type Options struct {
	// Concurrency bounds the number of BucketSize calls in flight
	Concurrency int

	// Backend and Region label the report
	Backend types.Backend
	Region  string

	Logger *slog.Logger
}

// Result is the outcome of sizing one bucket
type Result struct {
	Bucket types.Bucket
	Size   uint64
	Err    error
}

// OK reports whether the bucket was sized successfully
func (r Result) OK() bool {
	return r.Err == nil
}

// Report is the outcome of a whole run
type Report struct {
	Backend types.Backend
	Region  string

	// Results are in the order the buckets were given
	Results []Result

	// Total is the sum of the successfully sized buckets
	Total uint64

	// Failed counts the buckets whose size could not be computed
	Failed int

	Started  time.Time
	Duration time.Duration
}

// Succeeded returns the results of the buckets that were sized
func (r *Report) Succeeded() []Result {
	ok := make([]Result, 0, len(r.Results)-r.Failed)
	for _, res := range r.Results {
		if res.OK() {
			ok = append(ok, res)
		}
	}
	return ok
}

// SortByName orders the results by bucket name
func (r *Report) SortByName() {
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Bucket.Name < r.Results[j].Bucket.Name
	})
}

// Run calls sizer.BucketSize for every bucket through a bounded worker pool.
//
// A bucket that fails is logged, counted in Report.Failed and left out of
// Report.Total, and the other buckets carry on. Run only returns an error
// when ctx is cancelled or its deadline passes; outstanding work is abandoned.
func Run(ctx context.Context, sizer provider.BucketSizer, buckets types.Buckets, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	report := &Report{
		Backend: opts.Backend,
		Region:  opts.Region,
		Results: make([]Result, len(buckets)),
		Started: time.Now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, bucket := range buckets {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			size, err := sizer.BucketSize(gctx, bucket)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			report.Results[i] = Result{Bucket: bucket, Size: size, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sizing interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sizing interrupted: %w", err)
	}

	for _, res := range report.Results {
		if res.Err != nil {
			logger.Warn("failed to size bucket, skipping",
				"bucket", res.Bucket.Name,
				"error", res.Err)
			report.Failed++
			continue
		}
		report.Total += res.Size
	}

	report.Duration = time.Since(report.Started)

	logger.Debug("sized buckets",
		"buckets", len(buckets),
		"failed", report.Failed,
		"total", report.Total,
		"duration", report.Duration)

	return report, nil
}
