package hybrid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/quanv/internal/autodiff"
	"github.com/born-ml/quanv/internal/backend/cpu"
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/tensor"
)

// TestSynthetic_Balanced tests label alternation and stripe placement.
func TestSynthetic_Balanced(t *testing.T) {
	d := Synthetic(6, 4, 0, 1)

	require.Equal(t, 6, d.Len())
	require.Len(t, d.Images, 6*16)
	assert.Equal(t, []float32{0, 1, 0, 1, 0, 1}, d.Labels)

	for i := range d.Len() {
		img := d.Images[i*16 : (i+1)*16]
		var bright int
		for _, v := range img {
			if v == 1 {
				bright++
			}
		}
		assert.Equal(t, 4, bright, "sample %d should have one full stripe", i)
	}
}

// TestSynthetic_Deterministic tests that the same seed reproduces the dataset.
func TestSynthetic_Deterministic(t *testing.T) {
	a := Synthetic(8, 5, 0.3, 99)
	b := Synthetic(8, 5, 0.3, 99)
	c := Synthetic(8, 5, 0.3, 100)

	assert.Equal(t, a.Images, b.Images)
	assert.NotEqual(t, a.Images, c.Images)
}

// TestBatches_Shapes tests batch splitting with a short final batch.
func TestBatches_Shapes(t *testing.T) {
	backend := cpu.New()
	d := Synthetic(10, 4, 0.1, 3)

	batches, err := Batches(d, 4, backend)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	assert.Equal(t, tensor.Shape{4, 1, 4, 4}, batches[0].Images.Shape())
	assert.Equal(t, tensor.Shape{4, 1}, batches[0].Labels.Shape())
	assert.Equal(t, 2, batches[2].Size)
	assert.Equal(t, tensor.Shape{2, 1, 4, 4}, batches[2].Images.Shape())
}

// TestNewModel_KernelTooLarge tests that a kernel larger than the image is rejected.
func TestNewModel_KernelTooLarge(t *testing.T) {
	_, err := NewModel(Config{ImageSize: 2, KernelSize: 3}, cpu.New())
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
}

// TestNewModel_Capacity tests that qubit capacity errors propagate.
func TestNewModel_Capacity(t *testing.T) {
	_, err := NewModel(Config{Qubits: 1, Channels: 3}, cpu.New())
	assert.ErrorIs(t, err, nn.ErrQubitCapacity)
}

// TestModel_Forward tests the output shape and the parameter list.
func TestModel_Forward(t *testing.T) {
	backend := cpu.New()
	model, err := NewModel(Config{Seed: 5}, backend)
	require.NoError(t, err)

	batches, err := Batches(Synthetic(3, 4, 0.2, 5), 3, backend)
	require.NoError(t, err)

	scores, err := model.ForwardContext(context.Background(), batches[0].Images)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 1}, scores.Shape())

	params := model.Parameters()
	require.Len(t, params, 3)
	assert.Equal(t, tensor.Shape{4}, params[0].Tensor().Shape())
	assert.Equal(t, tensor.Shape{1, 8}, params[1].Tensor().Shape())

	assert.Contains(t, model.String(), "Quanv2d(in=1, out=2, qubits=2, weights=4, kernel_size=2, stride=2)")
	assert.Contains(t, model.String(), "Flatten()")
}

// TestTrain_LossDecreases tests that training reduces the loss and reports every epoch.
func TestTrain_LossDecreases(t *testing.T) {
	backend := autodiff.New(cpu.New())

	var reported []EpochStats
	model, history, err := Train(context.Background(), Config{Epochs: 15, Seed: 7}, backend,
		func(s EpochStats) { reported = append(reported, s) })
	require.NoError(t, err)
	require.NotNil(t, model)

	require.Len(t, history, 15)
	assert.Equal(t, history, reported)
	assert.Equal(t, 1, history[0].Epoch)
	assert.Less(t, history[len(history)-1].Loss, history[0].Loss)

	loss, acc, err := Evaluate(context.Background(), model, Synthetic(16, 4, 0.2, 7), backend)
	require.NoError(t, err)
	assert.Greater(t, loss, float32(0))
	assert.GreaterOrEqual(t, acc, float32(0))
	assert.LessOrEqual(t, acc, float32(1))
	assert.Equal(t, 0, backend.Tape().NumOps(), "evaluation must not record")
}

// TestTrain_WeightsMove tests that the circuit weights receive updates.
func TestTrain_WeightsMove(t *testing.T) {
	backend := autodiff.New(cpu.New())

	before, err := NewModel(Config{Seed: 11}, backend)
	require.NoError(t, err)
	initial := append([]float32(nil), before.Quanv.Parameters()[0].Tensor().Data()...)

	model, _, err := Train(context.Background(), Config{Epochs: 2, Seed: 11}, backend, nil)
	require.NoError(t, err)

	assert.NotEqual(t, initial, model.Quanv.Parameters()[0].Tensor().Data())
}

// TestTrain_Cancelled tests that a cancelled context stops training.
func TestTrain_Cancelled(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, history, err := Train(ctx, Config{}, backend, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, history)
}
