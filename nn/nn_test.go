// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exprand "golang.org/x/exp/rand"

	"github.com/born-ml/quanv/autodiff"
	"github.com/born-ml/quanv/backend/cpu"
	"github.com/born-ml/quanv/nn"
	"github.com/born-ml/quanv/quantum"
	"github.com/born-ml/quanv/tensor"
)

// TestQuanv2d_PublicAPI runs the layer through the public packages.
func TestQuanv2d_PublicAPI(t *testing.T) {
	backend := cpu.New()
	sampler := quantum.NewStatevectorSampler(quantum.Options{Workers: 2})

	layer, err := nn.NewQuanv2d(3, 2, 3, 5, backend,
		nn.WithStride(1),
		nn.WithSampler(sampler),
		nn.WithWeightSeed(1),
	)
	require.NoError(t, err)
	assert.Equal(t, "Quanv2d(in=3, out=2, qubits=3, weights=5, kernel_size=3, stride=1)", layer.String())

	input := tensor.Uniform[float32](tensor.Shape{5, 3, 8, 8}, 0, 1, exprand.NewSource(2), backend)
	out, err := layer.ForwardContext(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 2, 6, 6}, out.Shape())
}

// TestQuanv2d_PublicErrors tests the exported sentinels.
func TestQuanv2d_PublicErrors(t *testing.T) {
	_, err := nn.NewQuanv2d(1, 5, 2, 1, cpu.New())
	assert.ErrorIs(t, err, nn.ErrQubitCapacity)

	layer, err := nn.NewQuanv2d(2, 2, 2, 1, cpu.New())
	require.NoError(t, err)
	_, err = layer.ForwardContext(context.Background(), tensor.Zeros[float32](tensor.Shape{1, 3, 4, 4}, cpu.New()))
	assert.ErrorIs(t, err, nn.ErrShapeMismatch)
}

// TestSequential_Hybrid tests a hybrid model built from public modules.
func TestSequential_Hybrid(t *testing.T) {
	backend := autodiff.New(cpu.New())

	quanv, err := nn.NewQuanv2d(1, 2, 2, 2, backend, nn.WithKernelSize(2), nn.WithStride(2), nn.WithWeightSeed(3))
	require.NoError(t, err)
	model := nn.NewSequential[*autodiff.Backend[*cpu.Backend]](quanv, nn.NewFlatten[*autodiff.Backend[*cpu.Backend]](), nn.NewLinear(8, 1, backend))
	assert.Len(t, model.Parameters(), 3)

	images := tensor.Uniform[float32](tensor.Shape{2, 1, 4, 4}, 0, 1, exprand.NewSource(4), backend)
	targets := tensor.Ones[float32](tensor.Shape{2, 1}, backend)

	backend.Tape().StartRecording()
	loss := nn.NewMSELoss(backend).Forward(model.Forward(images), targets)
	grads := autodiff.Backward(loss, backend)

	assert.Contains(t, grads, quanv.Parameters()[0].Tensor().Raw())
}
