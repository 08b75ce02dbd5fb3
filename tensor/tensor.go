// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API of quanv.
//
// Tensors are generic over their element type and the backend that
// computes them:
//
//	backend := cpu.New()
//	images := tensor.Uniform[float32](tensor.Shape{5, 3, 8, 8}, 0, 1, rand.NewSource(42), backend)
//	zeros := tensor.Zeros[float32](tensor.Shape{5, 2, 6, 6}, backend)
//
// Zero-length dimensions are valid and describe empty tensors, which is
// how a convolution whose kernel exceeds the image reports its output.
package tensor

import (
	exprand "golang.org/x/exp/rand"

	"github.com/born-ml/quanv/internal/tensor"
)

// DType is a constraint for tensor element types (float32, float64).
type DType = tensor.DType

// DataType identifies the element type of a RawTensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the host device.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// RawTensor is the untyped storage behind a Tensor.
type RawTensor = tensor.RawTensor

// Backend computes tensor operations. See backend/cpu and autodiff.
type Backend = tensor.Backend

// Tensor is a generic type-safe tensor.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Rand creates a tensor with values from U(0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Rand[T, B](shape, b)
}

// Uniform creates a tensor with values from U(low, high) drawn from src.
func Uniform[T DType, B Backend](shape Shape, low, high float64, src exprand.Source, b B) *Tensor[T, B] {
	return tensor.Uniform[T, B](shape, low, high, src, b)
}

// FromSlice creates a tensor from a copy of data.
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a raw tensor.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw allocates a zeroed raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// SlidingWindows returns how many kernel positions fit along a dimension
// of the given size, 0 if the kernel is larger than the dimension.
func SlidingWindows(size, kernel, stride int) int {
	return tensor.SlidingWindows(size, kernel, stride)
}
