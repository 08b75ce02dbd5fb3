// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// New wraps any backend; operations executed while the tape records are
// replayed backwards by Backward. Quantum layers record a single
// vector-Jacobian product per forward call, so their circuit weights
// train alongside classical parameters:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	out, _ := layer.ForwardContext(ctx, images)
//	loss := nn.NewMSELoss(backend).Forward(out, targets)
//	grads := autodiff.Backward(loss, backend)
package autodiff

import (
	"github.com/born-ml/quanv/internal/autodiff"
	"github.com/born-ml/quanv/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t with respect to every recorded input.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
