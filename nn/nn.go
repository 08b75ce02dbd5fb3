// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network modules, including the quantum
// convolution layer Quanv2d.
//
// Quanv2d slides a kernel over [N, C, H, W] images and evaluates every
// patch with a parameterized quantum circuit; each output channel is a
// probability of the measured register folded modulo the channel count:
//
//	backend := autodiff.New(cpu.New())
//	layer, err := nn.NewQuanv2d(3, 2, 3, 5, backend, nn.WithStride(1))
//	if err != nil {
//	    return err
//	}
//	out, err := layer.ForwardContext(ctx, images) // [N, 2, H-2, W-2]
package nn

import (
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/qnn"
	"github.com/born-ml/quanv/internal/quantum"
	"github.com/born-ml/quanv/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Errors returned by layer construction and evaluation.
var (
	ErrQubitCapacity = nn.ErrQubitCapacity
	ErrInvalidConfig = nn.ErrInvalidConfig
	ErrShapeMismatch = qnn.ErrShapeMismatch
)

// Quanv2d is the quantum convolution layer.
type Quanv2d[B tensor.Backend] = nn.Quanv2d[B]

// Quanv2dOption configures NewQuanv2d.
type Quanv2dOption = nn.Quanv2dOption

// NewQuanv2d creates a quantum convolution layer. It fails with
// ErrQubitCapacity when 2^numQubits < outChannels.
func NewQuanv2d[B tensor.Backend](inChannels, outChannels, numQubits, numWeights int, backend B, opts ...Quanv2dOption) (*Quanv2d[B], error) {
	return nn.NewQuanv2d(inChannels, outChannels, numQubits, numWeights, backend, opts...)
}

// WithKernelSize sets the square kernel size (default 3).
func WithKernelSize(k int) Quanv2dOption { return nn.WithKernelSize(k) }

// WithStride sets the stride (default 1).
func WithStride(s int) Quanv2dOption { return nn.WithStride(s) }

// WithSampler replaces the exact statevector sampler.
func WithSampler(s quantum.Sampler) Quanv2dOption { return nn.WithSampler(s) }

// WithGradient replaces the parameter-shift gradient.
func WithGradient(g quantum.Gradient) Quanv2dOption { return nn.WithGradient(g) }

// WithInputGradients enables gradients with respect to the input images.
func WithInputGradients() Quanv2dOption { return nn.WithInputGradients() }

// WithWeightSeed makes the initial circuit weights reproducible.
func WithWeightSeed(seed uint64) Quanv2dOption { return nn.WithWeightSeed(seed) }

// QuanvCircuit builds the circuit used by Quanv2d.
func QuanvCircuit(numWeights, numInputs, numQubits int) (*quantum.Circuit, []*quantum.Parameter, []*quantum.Parameter) {
	return nn.QuanvCircuit(numWeights, numInputs, numQubits)
}

// Connector adapts a quantum neural network to the tensor world.
type Connector[B tensor.Backend] = nn.Connector[B]

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Flatten reshapes [N, ...] to [N, features].
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// MSELoss is the mean squared error loss.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates an MSE loss.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return nn.NewMSELoss(backend)
}
