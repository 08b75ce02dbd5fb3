// Package hybrid trains a small hybrid quantum-classical classifier:
// Quanv2d -> Flatten -> Linear, fitted with MSE loss and Adam on
// synthetic stripe images. It backs the `quanv train` command and the
// examples/hybrid program.
package hybrid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/born-ml/quanv/internal/autodiff"
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/optim"
	"github.com/born-ml/quanv/internal/quantum"
	"github.com/born-ml/quanv/internal/tensor"
)

// Config configures a training run. Zero fields take the defaults listed.
type Config struct {
	Samples    int     // synthetic images (default: 32)
	ImageSize  int     // image side length (default: 4)
	Noise      float64 // background noise amplitude (default: 0.2)
	Epochs     int     // default: 10
	BatchSize  int     // default: 8
	LR         float32 // Adam learning rate (default: 0.05)
	Qubits     int     // default: 2
	Weights    int     // circuit weights (default: 4)
	Channels   int     // Quanv2d output channels (default: 2)
	KernelSize int     // default: 2
	Stride     int     // default: 2
	Shots      int     // 0 for exact probabilities
	Seed       uint64  // data, weight and shot seed
	Workers    int     // concurrent circuits, 0 for one per CPU
}

func (c Config) withDefaults() Config {
	def := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	def(&c.Samples, 32)
	def(&c.ImageSize, 4)
	def(&c.Epochs, 10)
	def(&c.BatchSize, 8)
	def(&c.Qubits, 2)
	def(&c.Weights, 4)
	def(&c.Channels, 2)
	def(&c.KernelSize, 2)
	def(&c.Stride, 2)
	if c.Noise == 0 {
		c.Noise = 0.2
	}
	if c.LR == 0 {
		c.LR = 0.05
	}
	return c
}

// Model is the hybrid classifier.
type Model[B tensor.Backend] struct {
	Quanv   *nn.Quanv2d[B]
	Flatten *nn.Flatten[B]
	Head    *nn.Linear[B]
}

// NewModel builds a model for cfg.ImageSize×cfg.ImageSize single-channel images.
func NewModel[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	cfg = cfg.withDefaults()

	sampler := quantum.NewStatevectorSampler(quantum.Options{
		Shots:   cfg.Shots,
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
	})
	quanv, err := nn.NewQuanv2d(1, cfg.Channels, cfg.Qubits, cfg.Weights, backend,
		nn.WithKernelSize(cfg.KernelSize),
		nn.WithStride(cfg.Stride),
		nn.WithSampler(sampler),
		nn.WithWeightSeed(cfg.Seed),
	)
	if err != nil {
		return nil, err
	}

	side := tensor.SlidingWindows(cfg.ImageSize, cfg.KernelSize, cfg.Stride)
	if side == 0 {
		return nil, fmt.Errorf("hybrid: kernel %d does not fit %dx%d images: %w",
			cfg.KernelSize, cfg.ImageSize, cfg.ImageSize, nn.ErrInvalidConfig)
	}

	return &Model[B]{
		Quanv:   quanv,
		Flatten: nn.NewFlatten[B](),
		Head:    nn.NewLinear(cfg.Channels*side*side, 1, backend),
	}, nil
}

// ForwardContext maps images [N, 1, H, W] to scores [N, 1].
func (m *Model[B]) ForwardContext(ctx context.Context, images *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	features, err := m.Quanv.ForwardContext(ctx, images)
	if err != nil {
		return nil, err
	}
	return m.Head.Forward(m.Flatten.Forward(features)), nil
}

// Parameters returns the circuit weights followed by the head parameters.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	return append(m.Quanv.Parameters(), m.Head.Parameters()...)
}

func (m *Model[B]) String() string {
	var sb strings.Builder
	sb.WriteString("Hybrid(\n")
	fmt.Fprintf(&sb, "  (0): %v\n", m.Quanv)
	fmt.Fprintf(&sb, "  (1): %v\n", m.Flatten)
	fmt.Fprintf(&sb, "  (2): %v\n", m.Head)
	sb.WriteString(")")
	return sb.String()
}

// EpochStats summarises one training epoch.
type EpochStats struct {
	Epoch    int
	Loss     float32
	Accuracy float32
	Duration time.Duration
}

// Train fits a new model on a synthetic dataset. report, if non-nil, is
// called after every epoch.
func Train[B tensor.Backend](
	ctx context.Context,
	cfg Config,
	backend *autodiff.AutodiffBackend[B],
	report func(EpochStats),
) (*Model[*autodiff.AutodiffBackend[B]], []EpochStats, error) {
	cfg = cfg.withDefaults()

	model, err := NewModel(cfg, backend)
	if err != nil {
		return nil, nil, err
	}

	data := Synthetic(cfg.Samples, cfg.ImageSize, cfg.Noise, cfg.Seed)
	batches, err := Batches(data, cfg.BatchSize, backend)
	if err != nil {
		return nil, nil, fmt.Errorf("hybrid: %w", err)
	}

	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LR}, backend)
	criterion := nn.NewMSELoss(backend)

	history := make([]EpochStats, 0, cfg.Epochs)
	for epoch := range cfg.Epochs {
		start := time.Now()
		var totalLoss float32
		correct := 0

		for _, batch := range batches {
			if err := ctx.Err(); err != nil {
				return nil, history, err
			}

			backend.Tape().Clear()
			backend.Tape().StartRecording()

			scores, err := model.ForwardContext(ctx, batch.Images)
			if err != nil {
				backend.Tape().StopRecording()
				return nil, history, err
			}
			loss := criterion.Forward(scores, batch.Labels)
			grads := autodiff.Backward(loss, backend)
			backend.Tape().StopRecording()

			optimizer.Step(grads)
			optimizer.ZeroGrad()

			totalLoss += loss.Item() * float32(batch.Size)
			correct += countCorrect(scores, batch.Labels)
		}
		backend.Tape().Clear()

		stats := EpochStats{
			Epoch:    epoch + 1,
			Loss:     totalLoss / float32(data.Len()),
			Accuracy: float32(correct) / float32(data.Len()),
			Duration: time.Since(start),
		}
		history = append(history, stats)
		if report != nil {
			report(stats)
		}
	}

	return model, history, nil
}

// Evaluate returns the mean loss and accuracy of model on d without
// recording gradients.
func Evaluate[B tensor.Backend](
	ctx context.Context,
	model *Model[*autodiff.AutodiffBackend[B]],
	d *Dataset,
	backend *autodiff.AutodiffBackend[B],
) (loss, accuracy float32, err error) {
	batches, err := Batches(d, d.Len(), backend)
	if err != nil || len(batches) == 0 {
		return 0, 0, err
	}
	batch := batches[0]

	backend.NoGrad(func() {
		var scores *tensor.Tensor[float32, *autodiff.AutodiffBackend[B]]
		scores, err = model.ForwardContext(ctx, batch.Images)
		if err != nil {
			return
		}
		loss = nn.NewMSELoss(backend).Forward(scores, batch.Labels).Item()
		accuracy = float32(countCorrect(scores, batch.Labels)) / float32(batch.Size)
	})
	return loss, accuracy, err
}

// countCorrect thresholds scores at 0.5 against 0/1 labels.
func countCorrect[B tensor.Backend](scores, labels *tensor.Tensor[float32, B]) int {
	correct := 0
	want := labels.Data()
	for i, s := range scores.Data() {
		if (s >= 0.5) == (want[i] >= 0.5) {
			correct++
		}
	}
	return correct
}
