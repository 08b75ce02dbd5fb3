// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quantum exposes the circuit simulator that evaluates quantum
// layers: parameterized circuits, a statevector sampler with exact or
// shot-based execution, and parameter-shift gradients.
//
//	sampler := quantum.NewStatevectorSampler(quantum.Options{Shots: 1024, Seed: 42})
//	layer, err := nn.NewQuanv2d(3, 2, 3, 5, backend, nn.WithSampler(sampler))
package quantum

import (
	"github.com/born-ml/quanv/internal/quantum"
)

// MaxQubits is the largest register the simulator accepts.
const MaxQubits = quantum.MaxQubits

// Errors reported by circuit construction and execution.
var (
	ErrQubitIndex       = quantum.ErrQubitIndex
	ErrParameterCount   = quantum.ErrParameterCount
	ErrUnboundParameter = quantum.ErrUnboundParameter
)

// Parameter is a named symbolic circuit parameter.
type Parameter = quantum.Parameter

// NewParameter creates a parameter.
func NewParameter(name string) *Parameter {
	return quantum.NewParameter(name)
}

// ParameterVector creates parameters prefix0..prefix{n-1}.
func ParameterVector(prefix string, n int) []*Parameter {
	return quantum.ParameterVector(prefix, n)
}

// Expr is a rotation angle scale*value+offset.
type Expr = quantum.Expr

// Angle returns a constant angle.
func Angle(theta float64) Expr { return quantum.Angle(theta) }

// Scaled returns scale*p.
func Scaled(p *Parameter, scale float64) Expr { return quantum.Scaled(p, scale) }

// Circuit is a parameterized gate sequence.
type Circuit = quantum.Circuit

// NewCircuit creates an empty circuit on numQubits qubits.
func NewCircuit(numQubits int) *Circuit {
	return quantum.NewCircuit(numQubits)
}

// Sampler runs circuits and returns outcome distributions.
type Sampler = quantum.Sampler

// Result is the outcome of a sampler job.
type Result = quantum.Result

// Options configures a StatevectorSampler.
type Options = quantum.Options

// StatevectorSampler simulates circuits exactly, optionally drawing shots.
type StatevectorSampler = quantum.StatevectorSampler

// NewStatevectorSampler creates a sampler.
func NewStatevectorSampler(opts Options) *StatevectorSampler {
	return quantum.NewStatevectorSampler(opts)
}

// Gradient differentiates a sampler with respect to circuit parameters.
type Gradient = quantum.Gradient

// ParamShiftGradient implements the parameter-shift rule.
type ParamShiftGradient = quantum.ParamShiftGradient

// NewParamShiftGradient creates a parameter-shift gradient over sampler.
func NewParamShiftGradient(sampler Sampler) *ParamShiftGradient {
	return quantum.NewParamShiftGradient(sampler)
}
