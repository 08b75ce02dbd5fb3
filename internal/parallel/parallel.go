// Package parallel provides bounded fan-out helpers for CPU kernels and
// circuit evaluation.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of concurrently running tasks.
	MinChunkSize int  // Minimum items per task to avoid goroutine overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Workers returns a config running at most n tasks at once with no chunking
// threshold. Values of n below 1 select runtime.NumCPU().
func Workers(n int) Config {
	if n < 1 {
		n = runtime.NumCPU()
	}
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	_ = ForContext(context.Background(), n, func(_ context.Context, i int) error {
		f(i)
		return nil
	}, cfg)
}

// ForContext executes f(ctx, i) for i in [0, n), splitting the range into
// contiguous chunks run by at most cfg.NumWorkers goroutines.
//
// The first error cancels the context passed to the remaining chunks and
// is returned once every started chunk has finished. Chunks that have not
// started when ctx is cancelled are skipped.
func ForContext(ctx context.Context, n int, f func(ctx context.Context, i int) error, cfg Config) error {
	if !cfg.Enabled || n < max(cfg.MinChunkSize, 2) || cfg.NumWorkers < 2 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := f(gctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// ForBatch iterates the batch*channels grid used by convolution kernels.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	n := batch * channels
	For(n, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
