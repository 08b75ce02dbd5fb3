package quantum

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/quanv/internal/parallel"
)

// Sampler executes a parameterized circuit for many rows of parameter values
// and returns one measurement distribution per row.
type Sampler interface {
	// Run binds values[r][i] to order[i] for every row r. Each distribution
	// has 2^NumQubits entries indexed by little-endian basis state.
	Run(ctx context.Context, c *Circuit, order []*Parameter, values [][]float64) (*Result, error)
}

// Result is the output of one sampler job.
type Result struct {
	JobID         uuid.UUID
	Distributions [][]float64
	Shots         int // 0 for exact probabilities
}

// Options configures a StatevectorSampler.
type Options struct {
	// Shots is the number of measurements per row. Zero returns exact probabilities.
	Shots int
	// Seed seeds shot sampling. Row r uses Seed+r so results do not depend on scheduling.
	Seed uint64
	// Workers bounds concurrent row evaluations. Values < 1 use every CPU.
	Workers int
}

// StatevectorSampler simulates circuits exactly on a dense statevector.
type StatevectorSampler struct {
	opts Options
}

// NewStatevectorSampler creates a sampler with the given options.
func NewStatevectorSampler(opts Options) *StatevectorSampler {
	return &StatevectorSampler{opts: opts}
}

// Options returns the sampler configuration.
func (s *StatevectorSampler) Options() Options {
	return s.opts
}

// Run implements Sampler.
func (s *StatevectorSampler) Run(ctx context.Context, c *Circuit, order []*Parameter, values [][]float64) (*Result, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	if s.opts.Shots < 0 {
		return nil, fmt.Errorf("sampler: negative shot count %d", s.opts.Shots)
	}
	index, err := c.parameterIndex(order)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	for r, row := range values {
		if len(row) != len(order) {
			return nil, fmt.Errorf("sampler: row %d has %d values for %d parameters: %w",
				r, len(row), len(order), ErrParameterCount)
		}
	}

	start := time.Now()
	result := &Result{
		JobID:         uuid.New(),
		Distributions: make([][]float64, len(values)),
		Shots:         s.opts.Shots,
	}

	err = parallel.ForContext(ctx, len(values), func(_ context.Context, r int) error {
		sv := NewStatevector(c.numQubits)
		sv.Evolve(c, c.bind(index, values[r]))
		probs := sv.Probabilities()
		if s.opts.Shots > 0 {
			probs = sampleShots(probs, s.opts.Shots, s.opts.Seed+uint64(r))
		}
		result.Distributions[r] = probs
		return nil
	}, parallel.Workers(s.opts.Workers))
	if err != nil {
		return nil, fmt.Errorf("sampler job %s: %w", result.JobID, err)
	}

	slog.Debug("sampler job finished",
		"job", result.JobID,
		"circuits", len(values),
		"qubits", c.numQubits,
		"shots", s.opts.Shots,
		"duration", time.Since(start))

	return result, nil
}

// sampleShots draws shots outcomes from probs and returns their frequencies.
func sampleShots(probs []float64, shots int, seed uint64) []float64 {
	dist := distuv.NewCategorical(probs, exprand.NewSource(seed))
	freq := make([]float64, len(probs))
	inc := 1 / float64(shots)
	for range shots {
		freq[int(dist.Rand())] += inc
	}
	return freq
}
