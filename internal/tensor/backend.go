package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: pure Go kernels (internal/backend/cpu)
//   - Autodiff: decorator recording operations on a gradient tape (internal/autodiff)
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by scalar.
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Sum reduces all elements to a 0-D tensor.
	Sum(x *RawTensor) *RawTensor

	// Unfold extracts sliding kernel x kernel patches from a [N, C, H, W]
	// tensor, returning [N, C*kernel*kernel, L] where L is the number of
	// window positions. Rows are ordered (channel, kernel row, kernel column)
	// and columns follow output positions in row-major order.
	Unfold(x *RawTensor, kernelSize, stride int) *RawTensor

	// Fold is the adjoint of Unfold: it scatter-adds [N, C*k*k, L] patches
	// back into a tensor of inputShape.
	Fold(cols *RawTensor, inputShape Shape, kernelSize, stride int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
