package ops

import "github.com/born-ml/quanv/internal/tensor"

// SumOp represents a full reduction: output = sum(x).
//
// Backward pass:
//   - every element of x receives the (scalar) output gradient
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{
		input:  input,
		output: output,
	}
}

// Backward broadcasts the scalar output gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	ones := filledLike(op.input, 1)
	return []*tensor.RawTensor{backend.Mul(ones, outputGrad)}
}

// Inputs returns the input tensors.
func (op *SumOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *SumOp) Output() *tensor.RawTensor {
	return op.output
}
