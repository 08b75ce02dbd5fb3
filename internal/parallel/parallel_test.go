package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForBatch(t *testing.T) {
	cfg := Workers(4)

	batch, channels := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, channels)
	}

	ForBatch(batch, channels, func(b, c int) {
		results[b][c] = true
	}, cfg)

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			if !results[b][c] {
				t.Errorf("Missing result at [%d][%d]", b, c)
			}
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_Zero(t *testing.T) {
	called := false
	For(0, func(_ int) { called = true }, Workers(8))
	if called {
		t.Error("For(0) must not call f")
	}
}

func TestForContext_VisitsEveryIndexOnce(t *testing.T) {
	n := 37
	seen := make([]int32, n)

	err := ForContext(context.Background(), n, func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	}, Workers(5))
	if err != nil {
		t.Fatalf("ForContext() error = %v", err)
	}

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestForContext_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")

	for _, cfg := range []Config{Workers(1), Workers(4)} {
		err := ForContext(context.Background(), 20, func(_ context.Context, i int) error {
			if i == 7 {
				return boom
			}
			return nil
		}, cfg)
		if !errors.Is(err, boom) {
			t.Errorf("ForContext() with %d workers error = %v, want %v", cfg.NumWorkers, err, boom)
		}
	}
}

func TestForContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	err := ForContext(ctx, 10, func(_ context.Context, _ int) error {
		atomic.AddInt64(&calls, 1)
		return nil
	}, Workers(1))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("ForContext() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls after cancellation, got %d", calls)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		seq := Config{Enabled: false}
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, seq)
		}
	})
}
