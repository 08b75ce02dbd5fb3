package ops

import "github.com/born-ml/quanv/internal/tensor"

// UnfoldOp records sliding-window patch extraction.
//
// Forward: output[N, C*K*K, L] = Unfold(input[N, C, H, W], K, stride)
//
// Backward:
//   - d_input = Fold(d_output): every input element receives the sum of
//     the gradients of all patches that contain it.
type UnfoldOp struct {
	input      *tensor.RawTensor
	output     *tensor.RawTensor
	kernelSize int
	stride     int
}

// NewUnfoldOp creates a new UnfoldOp.
func NewUnfoldOp(input, output *tensor.RawTensor, kernelSize, stride int) *UnfoldOp {
	return &UnfoldOp{
		input:      input,
		output:     output,
		kernelSize: kernelSize,
		stride:     stride,
	}
}

// Backward delegates the col2im scatter to the backend.
func (op *UnfoldOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Fold(outputGrad, op.input.Shape(), op.kernelSize, op.stride)}
}

// Inputs returns the input tensors.
func (op *UnfoldOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *UnfoldOp) Output() *tensor.RawTensor {
	return op.output
}
