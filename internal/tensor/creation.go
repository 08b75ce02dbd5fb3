package tensor

import (
	"math/rand"

	exprand "golang.org/x/exp/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T](shape, T(1), b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Rand creates a tensor with random values uniformly distributed in [0, 1).
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
//
// Example:
//
//	x := tensor.Rand[float32](Shape{5, 3, 8, 8}, backend)
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(rand.Float64()) //nolint:gosec // G404: ML uses math/rand intentionally
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [low, high)
// using src. A fixed source makes the values reproducible.
//
// Example:
//
//	w := tensor.Uniform[float32](Shape{5}, -1, 1, rand.NewSource(42), backend)
func Uniform[T DType, B Backend](shape Shape, low, high float64, src exprand.Source, b B) *Tensor[T, B] {
	rng := exprand.New(src)
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(low + (high-low)*rng.Float64())
	}
	return t
}
