// Package nn implements neural network modules for hybrid quantum-classical models.
//
// This package provides building blocks for constructing networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Quanv2d: Quantum convolution evaluated per image patch
//   - Connector: Differentiable binding of a quantum neural network
//   - Linear, Flatten: Classical layers
//   - Loss functions: MSE
//   - Sequential: Container for stacking layers
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/born-ml/quanv/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Modules can be composed to build hybrid architectures:
//
//	quanv, _ := nn.NewQuanv2d(1, 2, 2, 4, backend)
//	model := nn.NewSequential[Backend](
//	    quanv,
//	    nn.NewFlatten[Backend](),
//	    nn.NewLinear(2*6*6, 1, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., Flatten).
	Parameters() []*Parameter[B]
}
