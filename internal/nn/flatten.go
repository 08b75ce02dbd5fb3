package nn

import (
	"fmt"

	"github.com/born-ml/quanv/internal/tensor"
)

// Flatten collapses every dimension after the batch dimension:
// [batch, d1, d2, ...] -> [batch, d1*d2*...].
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a Flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward reshapes the input to [batch, features].
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 1 {
		panic(fmt.Sprintf("Flatten.Forward: expected at least 1D input, got shape %v", shape))
	}
	features := 1
	for _, d := range shape[1:] {
		features *= d
	}
	return input.Reshape(shape[0], features)
}

// Parameters returns nil (Flatten has no trainable parameters).
func (f *Flatten[B]) Parameters() []*Parameter[B] {
	return nil
}

// String implements fmt.Stringer.
func (f *Flatten[B]) String() string {
	return "Flatten()"
}
