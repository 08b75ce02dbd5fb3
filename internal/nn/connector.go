package nn

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/quanv/internal/autodiff"
	"github.com/born-ml/quanv/internal/autodiff/ops"
	"github.com/born-ml/quanv/internal/qnn"
	"github.com/born-ml/quanv/internal/tensor"
)

// Connector exposes a SamplerQNN as a differentiable layer.
//
// It owns the network's trainable weight vector as a Parameter and maps an
// input of shape [..., NumInputs] to an output of shape [..., OutputShape]
// by evaluating every row in one sampler job.
//
// On a recording autodiff backend the evaluation is recorded as a QNNOp, so
// gradients flow to the weights (and to the inputs when the network tracks
// input gradients).
type Connector[B tensor.Backend] struct {
	qnn     *qnn.SamplerQNN
	weight  *Parameter[B] // [num_weights]
	backend B
}

// NewConnector binds q with initial weights drawn from U(-1, 1) using seed.
func NewConnector[B tensor.Backend](q *qnn.SamplerQNN, seed uint64, backend B) *Connector[B] {
	w := Uniform(tensor.Shape{q.NumWeights()}, -1, 1, seed, backend)
	return &Connector[B]{
		qnn:     q,
		weight:  NewParameter("weight", w),
		backend: backend,
	}
}

// QNN returns the wrapped network.
func (c *Connector[B]) QNN() *qnn.SamplerQNN {
	return c.qnn
}

// Weight returns the trainable weight parameter.
func (c *Connector[B]) Weight() *Parameter[B] {
	return c.weight
}

// Parameters returns [weight].
func (c *Connector[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight}
}

// Forward evaluates the network. Panics on error; use ForwardContext to
// handle errors.
func (c *Connector[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out, err := c.ForwardContext(context.Background(), input)
	if err != nil {
		panic(fmt.Sprintf("Connector.Forward: %v", err))
	}
	return out
}

// ForwardContext evaluates the network on every row of input.
func (c *Connector[B]) ForwardContext(ctx context.Context, input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	nIn, nOut := c.qnn.NumInputs(), c.qnn.OutputShape()
	if len(shape) == 0 || shape[len(shape)-1] != nIn {
		return nil, fmt.Errorf("connector: input shape %v, want [..., %d]: %w", shape, nIn, qnn.ErrShapeMismatch)
	}

	outShape := append(shape[:len(shape)-1:len(shape)-1], nOut)
	rows := input.NumElements() / max(nIn, 1)
	if rows == 0 {
		return tensor.Zeros[float32](outShape, c.backend), nil
	}

	flat := input.Raw().Float64s()
	inputs := make([][]float64, rows)
	for r := range inputs {
		inputs[r] = flat[r*nIn : (r+1)*nIn]
	}
	weights := c.weight.Tensor().Raw().Float64s()

	dists, err := c.qnn.Forward(ctx, inputs, weights)
	if err != nil {
		return nil, err
	}

	outRaw, err := tensor.NewRaw(outShape, tensor.Float32, c.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}
	values := make([]float64, 0, rows*nOut)
	for _, d := range dists {
		values = append(values, d...)
	}
	outRaw.SetFloat64s(values)

	if ad, ok := any(c.backend).(autodiff.BackwardCapable); ok && ad.GetTape().IsRecording() {
		ad.GetTape().Record(ops.NewQNNOp(input.Raw(), c.weight.Tensor().Raw(), outRaw,
			c.vjp(context.WithoutCancel(ctx), inputs, weights)))
	}

	return tensor.New[float32, B](outRaw, c.backend), nil
}

// vjp returns the vector-Jacobian product of one evaluation, contracting
// the network Jacobians with the flattened output gradient.
func (c *Connector[B]) vjp(ctx context.Context, inputs [][]float64, weights []float64) ops.VJPFunc {
	return func(outputGrad []float64) ([]float64, []float64, error) {
		jacIn, jacW, err := c.qnn.Backward(ctx, inputs, weights)
		if err != nil {
			return nil, nil, err
		}

		nIn, nOut := c.qnn.NumInputs(), c.qnn.OutputShape()
		weightGrad := make([]float64, len(weights))
		var inputGrad []float64
		if jacIn != nil {
			inputGrad = make([]float64, len(inputs)*nIn)
		}

		for r := range inputs {
			g := outputGrad[r*nOut : (r+1)*nOut]
			for o, gv := range g {
				if gv == 0 {
					continue
				}
				floats.AddScaled(weightGrad, gv, jacW[r][o])
				if jacIn != nil {
					floats.AddScaled(inputGrad[r*nIn:(r+1)*nIn], gv, jacIn[r][o])
				}
			}
		}
		return inputGrad, weightGrad, nil
	}
}
