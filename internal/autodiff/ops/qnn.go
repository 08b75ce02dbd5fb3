package ops

import (
	"fmt"

	"github.com/born-ml/quanv/internal/tensor"
)

// VJPFunc computes vector-Jacobian products for one recorded network evaluation.
//
// outputGrad holds dL/d(output) in row-major order. The function returns
// dL/d(input) with one value per input element (nil when input gradients
// are not tracked) and dL/d(weights) with one value per weight.
type VJPFunc func(outputGrad []float64) (inputGrad, weightGrad []float64, err error)

// QNNOp records the evaluation of a quantum neural network:
// output[..., O] = QNN(input[..., I], weights[W]).
//
// Circuit simulation has no closed-form tensor backward, so the Jacobian
// contraction is delegated to the VJPFunc captured at forward time.
type QNNOp struct {
	input   *tensor.RawTensor
	weights *tensor.RawTensor
	output  *tensor.RawTensor
	vjp     VJPFunc
}

// NewQNNOp creates a new QNNOp.
func NewQNNOp(input, weights, output *tensor.RawTensor, vjp VJPFunc) *QNNOp {
	return &QNNOp{
		input:   input,
		weights: weights,
		output:  output,
		vjp:     vjp,
	}
}

// Backward returns [d_input, d_weights]. d_input is nil when the network
// does not track input gradients.
//
// Panics if the network evaluation fails during the backward pass.
func (op *QNNOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inputGrad, weightGrad, err := op.vjp(outputGrad.Float64s())
	if err != nil {
		panic(fmt.Sprintf("qnn backward: %v", err))
	}

	grads := make([]*tensor.RawTensor, 2)
	if inputGrad != nil {
		grads[0] = rawFromFloat64s(inputGrad, op.input.Shape(), op.input.DType(), backend.Device())
	}
	grads[1] = rawFromFloat64s(weightGrad, op.weights.Shape(), op.weights.DType(), backend.Device())
	return grads
}

// Inputs returns [input, weights].
func (op *QNNOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input, op.weights}
}

// Output returns the output tensor.
func (op *QNNOp) Output() *tensor.RawTensor {
	return op.output
}
