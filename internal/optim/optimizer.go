// Package optim updates nn parameters from the gradients produced by a
// backward pass.
//
// Optimizers write straight into parameter storage, so an update is never
// recorded on the gradient tape and the raw pointer that keys the gradient
// map stays valid across steps:
//
//	layer, _ := nn.NewQuanv2d(3, 2, 3, 5, backend)
//	optimizer := optim.NewAdam(layer.Parameters(), optim.AdamConfig{LR: 0.01}, backend)
//
//	for range epochs {
//	    backend.Tape().Clear()
//	    backend.Tape().StartRecording()
//	    out, _ := layer.ForwardContext(ctx, images)
//	    loss := nn.NewMSELoss(backend).Forward(out, targets)
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/born-ml/quanv/internal/nn"
	"github.com/born-ml/quanv/internal/tensor"
)

// Optimizer is implemented by SGD and Adam.
type Optimizer interface {
	// Step applies one update using the gradient map returned by
	// autodiff.Backward. Parameters absent from the map are left alone.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradient stored on every parameter.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// gradientFor looks up the gradient of param and stores it on the
// parameter so Grad() reflects the last step. Returns nil when param did
// not take part in the recorded computation.
func gradientFor[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) []float32 {
	if param == nil || !param.CollectGrad(grads) {
		return nil
	}
	grad := grads[param.Tensor().Raw()]
	if grad.DType() != tensor.Float32 {
		return nil
	}
	return grad.AsFloat32()
}

// moments returns the zero-initialised per-parameter buffer stored in m.
func moments[B tensor.Backend](m map[*nn.Parameter[B]][]float32, param *nn.Parameter[B]) []float32 {
	buf, ok := m[param]
	if !ok {
		buf = make([]float32, param.Tensor().NumElements())
		m[param] = buf
	}
	return buf
}
