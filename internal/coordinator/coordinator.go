package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"hargaemas/internal/source"
)

// ErrNoAdapter is reported for a source that has no adapter registered
var ErrNoAdapter = errors.New("no adapter registered")

// Recorder observes the outcome of each source run
type Recorder interface {
	ObserveSource(id source.ID, ok bool, duration time.Duration)
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithRecorder reports every source outcome to r
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// Coordinator runs the source adapters concurrently and aggregates their results
type Coordinator struct {
	adapters []source.Adapter
	recorder Recorder
}

// New creates a new Coordinator with the given adapters
func New(adapters []source.Adapter, opts ...Option) *Coordinator {
	c := &Coordinator{
		adapters: adapters,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// outcome is sent from worker goroutines to the collector
type outcome struct {
	id       source.ID
	result   source.SourceResult
	duration time.Duration
}

// Run executes every adapter in its own goroutine and returns once all of
// them have settled. A failing adapter only affects its own slot; the result
// always holds an entry for every known source.
func (c *Coordinator) Run(ctx context.Context) source.AggregateResult {
	// Create a channel for collecting outcomes
	outcomes := make(chan outcome, len(c.adapters))

	// WaitGroup to track all worker goroutines
	var wg sync.WaitGroup

	for _, a := range c.adapters {
		wg.Add(1)
		go func(ad source.Adapter) {
			defer wg.Done()

			start := time.Now()
			res := source.Run(ctx, ad)

			outcomes <- outcome{
				id:       ad.ID(),
				result:   res,
				duration: time.Since(start),
			}
		}(a)
	}

	// Close the outcome channel when all workers are done
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	agg := make(source.AggregateResult, len(source.AllIDs))
	for o := range outcomes {
		c.report(o)
		agg[o.id] = o.result
	}

	for _, id := range source.AllIDs {
		if _, ok := agg[id]; !ok {
			agg[id] = source.Failed(ErrNoAdapter)
		}
	}

	succeeded, failed := agg.Counts()
	slog.Info("aggregation completed",
		"succeeded", succeeded,
		"failed", failed,
		"total", len(agg))

	return agg
}

func (c *Coordinator) report(o outcome) {
	if c.recorder != nil {
		c.recorder.ObserveSource(o.id, o.result.OK(), o.duration)
	}

	if !o.result.OK() {
		slog.Warn("source failed",
			"source", o.id,
			"duration", o.duration,
			"error", o.result.Err())
		return
	}

	slog.Info("source succeeded",
		"source", o.id,
		"duration", o.duration,
		"jewelry", len(o.result.Jewelry),
		"bullion", len(o.result.Bullion))
}
