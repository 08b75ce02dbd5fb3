// Package qnn turns a parameterized circuit into a quantum neural network:
// a function of (inputs, weights) whose outputs are interpreted measurement
// distributions, together with its Jacobians.
package qnn

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/quanv/internal/quantum"
)

var (
	// ErrShapeMismatch is returned when inputs or weights have the wrong length.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrParameterOverlap is returned when a parameter is both an input and a weight.
	ErrParameterOverlap = errors.New("input and weight parameters overlap")

	// ErrInterpretRange is returned when the interpreter maps an outcome outside the output shape.
	ErrInterpretRange = errors.New("interpreted outcome out of range")
)

// Config describes a SamplerQNN.
type Config struct {
	Circuit      *quantum.Circuit
	InputParams  []*quantum.Parameter
	WeightParams []*quantum.Parameter

	// Interpret folds basis-state indices onto [0, OutputShape).
	// Nil keeps the raw outcome and OutputShape defaults to 2^NumQubits.
	Interpret   InterpretFunc
	OutputShape int

	// Sampler executes the circuit. Nil uses an exact statevector sampler.
	Sampler quantum.Sampler
	// Gradient differentiates the sampler. Nil uses the parameter-shift rule.
	Gradient quantum.Gradient

	// InputGradients enables Jacobians with respect to the inputs.
	InputGradients bool
}

// SamplerQNN evaluates a circuit on rows of inputs with shared weights and
// returns interpreted output distributions.
type SamplerQNN struct {
	circuit        *quantum.Circuit
	inputParams    []*quantum.Parameter
	weightParams   []*quantum.Parameter
	order          []*quantum.Parameter
	fold           []int // outcome -> output index
	outputShape    int
	sampler        quantum.Sampler
	gradient       quantum.Gradient
	inputGradients bool
}

// New validates cfg and creates the network.
func New(cfg Config) (*SamplerQNN, error) {
	if cfg.Circuit == nil {
		return nil, errors.New("qnn: nil circuit")
	}
	if err := cfg.Circuit.Err(); err != nil {
		return nil, fmt.Errorf("qnn: %w", err)
	}

	seen := make(map[*quantum.Parameter]struct{}, len(cfg.InputParams))
	for _, p := range cfg.InputParams {
		seen[p] = struct{}{}
	}
	for _, p := range cfg.WeightParams {
		if _, ok := seen[p]; ok {
			return nil, fmt.Errorf("qnn: parameter %s: %w", p, ErrParameterOverlap)
		}
	}

	order := make([]*quantum.Parameter, 0, len(cfg.InputParams)+len(cfg.WeightParams))
	order = append(order, cfg.InputParams...)
	order = append(order, cfg.WeightParams...)
	bound := make(map[*quantum.Parameter]struct{}, len(order))
	for _, p := range order {
		bound[p] = struct{}{}
	}
	for _, p := range cfg.Circuit.Parameters() {
		if _, ok := bound[p]; !ok {
			return nil, fmt.Errorf("qnn: parameter %s: %w", p, quantum.ErrUnboundParameter)
		}
	}

	dim := 1 << cfg.Circuit.NumQubits()
	interpret, outputShape := cfg.Interpret, cfg.OutputShape
	if interpret == nil {
		interpret = Identity
		if outputShape == 0 {
			outputShape = dim
		}
	}
	if outputShape < 1 {
		return nil, fmt.Errorf("qnn: output shape %d: %w", outputShape, ErrShapeMismatch)
	}

	fold := make([]int, dim)
	for outcome := range fold {
		idx := interpret(outcome)
		if idx < 0 || idx >= outputShape {
			return nil, fmt.Errorf("qnn: outcome %d -> %d, want [0, %d): %w", outcome, idx, outputShape, ErrInterpretRange)
		}
		fold[outcome] = idx
	}

	sampler := cfg.Sampler
	if sampler == nil {
		sampler = quantum.NewStatevectorSampler(quantum.Options{})
	}
	gradient := cfg.Gradient
	if gradient == nil {
		gradient = quantum.NewParamShiftGradient(sampler)
	}

	return &SamplerQNN{
		circuit:        cfg.Circuit,
		inputParams:    cfg.InputParams,
		weightParams:   cfg.WeightParams,
		order:          order,
		fold:           fold,
		outputShape:    outputShape,
		sampler:        sampler,
		gradient:       gradient,
		inputGradients: cfg.InputGradients,
	}, nil
}

// Circuit returns the underlying circuit.
func (q *SamplerQNN) Circuit() *quantum.Circuit { return q.circuit }

// NumInputs returns the number of input parameters per row.
func (q *SamplerQNN) NumInputs() int { return len(q.inputParams) }

// NumWeights returns the number of weight parameters.
func (q *SamplerQNN) NumWeights() int { return len(q.weightParams) }

// OutputShape returns the number of outputs per row.
func (q *SamplerQNN) OutputShape() int { return q.outputShape }

// InputGradients reports whether Backward computes input Jacobians.
func (q *SamplerQNN) InputGradients() bool { return q.inputGradients }

// Forward evaluates every row of inputs with the shared weights.
// The result has one distribution of length OutputShape per row.
func (q *SamplerQNN) Forward(ctx context.Context, inputs [][]float64, weights []float64) ([][]float64, error) {
	values, err := q.bind(inputs, weights)
	if err != nil {
		return nil, err
	}

	res, err := q.sampler.Run(ctx, q.circuit, q.order, values)
	if err != nil {
		return nil, fmt.Errorf("qnn forward: %w", err)
	}

	out := make([][]float64, len(res.Distributions))
	for r, dist := range res.Distributions {
		out[r] = q.interpret(dist)
	}
	return out, nil
}

// Backward returns the Jacobians of Forward:
// inputGrad[r][o][i] = d out[r][o] / d inputs[r][i] (nil unless input
// gradients are enabled) and weightGrad[r][o][w] = d out[r][o] / d weights[w].
func (q *SamplerQNN) Backward(ctx context.Context, inputs [][]float64, weights []float64) (inputGrad, weightGrad [][][]float64, err error) {
	values, err := q.bind(inputs, weights)
	if err != nil {
		return nil, nil, err
	}

	wrt := q.weightParams
	if q.inputGradients {
		wrt = q.order
	}

	grads, err := q.gradient.Run(ctx, q.circuit, q.order, values, wrt)
	if err != nil {
		return nil, nil, fmt.Errorf("qnn backward: %w", err)
	}

	nIn := 0
	if q.inputGradients {
		nIn = len(q.inputParams)
		inputGrad = make([][][]float64, len(values))
	}
	weightGrad = make([][][]float64, len(values))

	for r, g := range grads {
		if q.inputGradients {
			inputGrad[r] = q.jacobian(g[:nIn])
		}
		weightGrad[r] = q.jacobian(g[nIn:])
	}
	return inputGrad, weightGrad, nil
}

// bind concatenates every input row with the weights.
func (q *SamplerQNN) bind(inputs [][]float64, weights []float64) ([][]float64, error) {
	if len(weights) != len(q.weightParams) {
		return nil, fmt.Errorf("qnn: got %d weights, want %d: %w", len(weights), len(q.weightParams), ErrShapeMismatch)
	}
	values := make([][]float64, len(inputs))
	for r, in := range inputs {
		if len(in) != len(q.inputParams) {
			return nil, fmt.Errorf("qnn: input row %d has %d values, want %d: %w", r, len(in), len(q.inputParams), ErrShapeMismatch)
		}
		row := make([]float64, 0, len(q.order))
		row = append(row, in...)
		row = append(row, weights...)
		values[r] = row
	}
	return values, nil
}

// interpret folds a basis-state distribution onto the output indices.
func (q *SamplerQNN) interpret(dist []float64) []float64 {
	out := make([]float64, q.outputShape)
	for outcome, p := range dist {
		out[q.fold[outcome]] += p
	}
	return out
}

// jacobian transposes per-parameter outcome gradients into [output][param].
func (q *SamplerQNN) jacobian(perParam [][]float64) [][]float64 {
	jac := make([][]float64, q.outputShape)
	for o := range jac {
		jac[o] = make([]float64, len(perParam))
	}
	for k, dist := range perParam {
		for outcome, d := range dist {
			jac[q.fold[outcome]][k] += d
		}
	}
	return jac
}
