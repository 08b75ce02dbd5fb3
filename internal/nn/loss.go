package nn

import (
	"fmt"

	"github.com/born-ml/quanv/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Every step is a backend operation, so on an autodiff backend the loss is
// recorded on the tape and can be differentiated.
//
// Example:
//
//	mse := nn.NewMSELoss(backend)
//	predictions := model.Forward(input)
//	loss := mse.Forward(predictions, targets)
//	grads := autodiff.Backward(loss, backend)
type MSELoss[B tensor.Backend] struct {
	backend B
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{
		backend: backend,
	}
}

// Forward computes the MSE loss.
//
// Parameters:
//   - predictions: Model predictions with shape [batch_size, ...]
//   - targets: Ground truth targets with same shape as predictions
//
// Returns a 0-D scalar loss.
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("MSELoss: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}
	n := predictions.NumElements()
	if n == 0 {
		panic("MSELoss: empty predictions")
	}

	diff := predictions.Sub(targets)
	return diff.Mul(diff).Sum().MulScalar(1 / float64(n))
}

// Parameters returns an empty slice (loss functions have no trainable parameters).
func (m *MSELoss[B]) Parameters() []*Parameter[B] {
	return nil
}
