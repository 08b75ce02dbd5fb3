package nn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/quanv/internal/qnn"
	"github.com/born-ml/quanv/internal/quantum"
	"github.com/born-ml/quanv/internal/tensor"
)

var (
	// ErrQubitCapacity is returned when 2^num_qubits cannot address every output channel.
	ErrQubitCapacity = errors.New("2^num_qubits must be at least output_channel")

	// ErrInvalidConfig is returned for non-positive layer sizes.
	ErrInvalidConfig = errors.New("invalid layer configuration")
)

// Quanv2d is a quantum convolution layer.
//
// Every kernelSize x kernelSize patch (across all input channels) is fed
// into a parameterized circuit as rotation angles. The measurement
// distribution, folded onto outChannels by modulo, becomes the patch's
// output channels.
//
// Input shape:  [batch, in_channels, height, width]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height - kernel_size) / stride + 1
//	out_w = (width - kernel_size) / stride + 1
//
// Example:
//
//	layer, err := nn.NewQuanv2d(3, 2, 3, 5, backend)
//	input := tensor.Rand[float32](tensor.Shape{5, 3, 8, 8}, backend)
//	output := layer.Forward(input) // [5, 2, 6, 6]
type Quanv2d[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	numQubits   int
	numWeights  int
	kernelSize  int
	stride      int

	connector *Connector[B]
	backend   B
}

type quanv2dConfig struct {
	kernelSize     int
	stride         int
	sampler        quantum.Sampler
	gradient       quantum.Gradient
	inputGradients bool
	weightSeed     uint64
	seeded         bool
}

// Quanv2dOption configures NewQuanv2d.
type Quanv2dOption func(*quanv2dConfig)

// WithKernelSize sets the patch side length (default 3).
func WithKernelSize(k int) Quanv2dOption {
	return func(c *quanv2dConfig) { c.kernelSize = k }
}

// WithStride sets the patch stride (default 1).
func WithStride(s int) Quanv2dOption {
	return func(c *quanv2dConfig) { c.stride = s }
}

// WithSampler sets the circuit execution backend (default: exact statevector).
func WithSampler(s quantum.Sampler) Quanv2dOption {
	return func(c *quanv2dConfig) { c.sampler = s }
}

// WithGradient sets the circuit gradient method (default: parameter shift on the sampler).
func WithGradient(g quantum.Gradient) Quanv2dOption {
	return func(c *quanv2dConfig) { c.gradient = g }
}

// WithInputGradients enables gradients with respect to the input image.
func WithInputGradients() Quanv2dOption {
	return func(c *quanv2dConfig) { c.inputGradients = true }
}

// WithWeightSeed makes the initial circuit weights reproducible.
func WithWeightSeed(seed uint64) Quanv2dOption {
	return func(c *quanv2dConfig) {
		c.weightSeed = seed
		c.seeded = true
	}
}

// NewQuanv2d creates a quantum convolution layer.
//
// Parameters:
//   - inChannels: Number of input channels
//   - outChannels: Number of output channels; requires 2^numQubits >= outChannels
//   - numQubits: Register size of the circuit
//   - numWeights: Number of trainable rotation weights
//   - backend: Backend for tensor operations
//
// Kernel size and stride default to 3 and 1.
func NewQuanv2d[B tensor.Backend](inChannels, outChannels, numQubits, numWeights int, backend B, opts ...Quanv2dOption) (*Quanv2d[B], error) {
	cfg := quanv2dConfig{kernelSize: 3, stride: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case inChannels <= 0 || outChannels <= 0:
		return nil, fmt.Errorf("quanv2d: channels in=%d, out=%d: %w", inChannels, outChannels, ErrInvalidConfig)
	case numQubits <= 0 || numQubits > quantum.MaxQubits:
		return nil, fmt.Errorf("quanv2d: %d qubits (want 1..%d): %w", numQubits, quantum.MaxQubits, ErrInvalidConfig)
	case numWeights < 0:
		return nil, fmt.Errorf("quanv2d: %d weights: %w", numWeights, ErrInvalidConfig)
	case cfg.kernelSize <= 0 || cfg.stride <= 0:
		return nil, fmt.Errorf("quanv2d: kernel_size=%d, stride=%d: %w", cfg.kernelSize, cfg.stride, ErrInvalidConfig)
	}
	if 1<<numQubits < outChannels {
		return nil, fmt.Errorf("quanv2d: 2^%d < %d: %w", numQubits, outChannels, ErrQubitCapacity)
	}

	numInputs := cfg.kernelSize * cfg.kernelSize * inChannels
	circuit, inputs, weights := QuanvCircuit(numWeights, numInputs, numQubits)

	network, err := qnn.New(qnn.Config{
		Circuit:        circuit,
		InputParams:    inputs,
		WeightParams:   weights,
		Interpret:      qnn.Modulo(outChannels),
		OutputShape:    outChannels,
		Sampler:        cfg.sampler,
		Gradient:       cfg.gradient,
		InputGradients: cfg.inputGradients,
	})
	if err != nil {
		return nil, fmt.Errorf("quanv2d: %w", err)
	}

	seed := cfg.weightSeed
	if !cfg.seeded {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		seed = rand.Uint64()
	}

	return &Quanv2d[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		numQubits:   numQubits,
		numWeights:  numWeights,
		kernelSize:  cfg.kernelSize,
		stride:      cfg.stride,
		connector:   NewConnector(network, seed, backend),
		backend:     backend,
	}, nil
}

// QuanvCircuit builds the quantum convolution circuit:
//
//  1. H on every qubit
//  2. RY(2π·x_i) on qubit i mod numQubits for every input
//  3. CX chain 0→1→...→numQubits-1
//  4. RX(2π·w_i) on qubit i mod numQubits for every weight
//  5. CX chain again
//
// It returns the circuit with its input parameters x0.. and weight parameters w0...
func QuanvCircuit(numWeights, numInputs, numQubits int) (*quantum.Circuit, []*quantum.Parameter, []*quantum.Parameter) {
	weights := quantum.ParameterVector("w", numWeights)
	inputs := quantum.ParameterVector("x", numInputs)

	c := quantum.NewCircuit(numQubits)
	for q := range numQubits {
		c.H(q)
	}
	for i, x := range inputs {
		c.RY(quantum.Scaled(x, 2*math.Pi), i%numQubits)
	}
	for q := 0; q < numQubits-1; q++ {
		c.CX(q, q+1)
	}
	for i, w := range weights {
		c.RX(quantum.Scaled(w, 2*math.Pi), i%numQubits)
	}
	for q := 0; q < numQubits-1; q++ {
		c.CX(q, q+1)
	}

	return c, inputs, weights
}

// Forward computes the layer output. Panics on error, like the other
// layers on invalid input; use ForwardContext to handle errors.
func (q *Quanv2d[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out, err := q.ForwardContext(context.Background(), input)
	if err != nil {
		panic(fmt.Sprintf("Quanv2d.Forward: %v", err))
	}
	return out
}

// ForwardContext computes the layer output.
//
// All patches of the batch are evaluated in a single QNN call:
//
//	[N, C, H, W] -unfold-> [N, C*k*k, L] -transpose-> [L, N, C*k*k]
//	-qnn-> [L, N, out] -transpose-> [N, out, L] -reshape-> [N, out, h, w]
//
// A kernel larger than the image yields a zero-sized output, not an error.
func (q *Quanv2d[B]) ForwardContext(ctx context.Context, input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("quanv2d: expected 4D input [batch, channels, height, width], got shape %v: %w",
			shape, qnn.ErrShapeMismatch)
	}
	batch := shape[0]
	height := tensor.SlidingWindows(shape[2], q.kernelSize, q.stride)
	width := tensor.SlidingWindows(shape[3], q.kernelSize, q.stride)

	output := tensor.Zeros[float32](tensor.Shape{batch, q.outChannels, height, width}, q.backend)

	patches := input.Unfold(q.kernelSize, q.stride).Transpose(2, 0, 1)
	evaluated, err := q.connector.ForwardContext(ctx, patches)
	if err != nil {
		return nil, fmt.Errorf("quanv2d: %w", err)
	}

	placed := evaluated.Transpose(1, 2, 0).Reshape(batch, q.outChannels, height, width)
	return output.Add(placed), nil
}

// Parameters returns the circuit weight parameter.
func (q *Quanv2d[B]) Parameters() []*Parameter[B] {
	return q.connector.Parameters()
}

// Connector returns the differentiable network binding.
func (q *Quanv2d[B]) Connector() *Connector[B] {
	return q.connector
}

// Circuit returns the layer's circuit.
func (q *Quanv2d[B]) Circuit() *quantum.Circuit {
	return q.connector.QNN().Circuit()
}

// InChannels returns the number of input channels.
func (q *Quanv2d[B]) InChannels() int { return q.inChannels }

// OutChannels returns the number of output channels.
func (q *Quanv2d[B]) OutChannels() int { return q.outChannels }

// NumQubits returns the circuit register size.
func (q *Quanv2d[B]) NumQubits() int { return q.numQubits }

// NumWeights returns the number of trainable circuit weights.
func (q *Quanv2d[B]) NumWeights() int { return q.numWeights }

// KernelSize returns the patch side length.
func (q *Quanv2d[B]) KernelSize() int { return q.kernelSize }

// Stride returns the patch stride.
func (q *Quanv2d[B]) Stride() int { return q.stride }

// String implements fmt.Stringer.
func (q *Quanv2d[B]) String() string {
	return fmt.Sprintf("Quanv2d(in=%d, out=%d, qubits=%d, weights=%d, kernel_size=%d, stride=%d)",
		q.inChannels, q.outChannels, q.numQubits, q.numWeights, q.kernelSize, q.stride)
}
