package quantum

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// MaxQubits bounds the register size of the statevector simulator (2^24 amplitudes).
const MaxQubits = 24

var (
	// ErrQubitIndex is returned when a gate addresses a qubit outside the register.
	ErrQubitIndex = errors.New("qubit index out of range")

	// ErrParameterCount is returned when bound values do not match the parameter list.
	ErrParameterCount = errors.New("parameter count mismatch")

	// ErrUnboundParameter is returned when a circuit parameter has no bound value.
	ErrUnboundParameter = errors.New("unbound circuit parameter")
)

// Gate identifies a supported gate.
type Gate int

// Supported gates.
const (
	GateH Gate = iota
	GateRX
	GateRY
	GateCX
)

// String returns the lower-case gate mnemonic.
func (g Gate) String() string {
	switch g {
	case GateH:
		return "h"
	case GateRX:
		return "rx"
	case GateRY:
		return "ry"
	case GateCX:
		return "cx"
	default:
		return "unknown"
	}
}

// Instruction is one gate application.
type Instruction struct {
	Gate   Gate
	Qubits []int // target for single-qubit gates; control, target for CX
	Angle  Expr  // rotation gates only
}

// Parametrized reports whether the instruction angle depends on a parameter.
func (in Instruction) Parametrized() bool {
	return (in.Gate == GateRX || in.Gate == GateRY) && in.Angle.Param != nil
}

// String renders the instruction, e.g. "ry(6.283*x0) q[1]".
func (in Instruction) String() string {
	qubits := make([]string, len(in.Qubits))
	for i, q := range in.Qubits {
		qubits[i] = fmt.Sprintf("q[%d]", q)
	}
	switch in.Gate {
	case GateRX, GateRY:
		return fmt.Sprintf("%s(%s) %s", in.Gate, in.Angle, strings.Join(qubits, ", "))
	default:
		return fmt.Sprintf("%s %s", in.Gate, strings.Join(qubits, ", "))
	}
}

// Circuit is a parameterized gate sequence over a fixed qubit register.
//
// Builder methods return the circuit for chaining. The first invalid gate
// sets a sticky error reported by Err; later gates are ignored.
//
//	c := quantum.NewCircuit(2).H(0).RY(quantum.Scaled(x, 2*math.Pi), 1).CX(0, 1)
//	if err := c.Err(); err != nil { ... }
type Circuit struct {
	numQubits    int
	instructions []Instruction
	params       []*Parameter
	seen         map[*Parameter]struct{}
	err          error
}

// NewCircuit creates an empty circuit on numQubits qubits.
func NewCircuit(numQubits int) *Circuit {
	c := &Circuit{
		numQubits: numQubits,
		seen:      make(map[*Parameter]struct{}),
	}
	if numQubits < 1 || numQubits > MaxQubits {
		c.err = fmt.Errorf("circuit: %d qubits (want 1..%d): %w", numQubits, MaxQubits, ErrQubitIndex)
	}
	return c
}

// NumQubits returns the register size.
func (c *Circuit) NumQubits() int {
	return c.numQubits
}

// Err returns the first construction error.
func (c *Circuit) Err() error {
	return c.err
}

// Instructions returns the gate sequence.
func (c *Circuit) Instructions() []Instruction {
	return c.instructions
}

// Parameters returns the circuit parameters in order of first use.
func (c *Circuit) Parameters() []*Parameter {
	return c.params
}

// H appends a Hadamard gate.
func (c *Circuit) H(q int) *Circuit {
	return c.append(Instruction{Gate: GateH, Qubits: []int{q}})
}

// RX appends an X rotation.
func (c *Circuit) RX(angle Expr, q int) *Circuit {
	return c.append(Instruction{Gate: GateRX, Qubits: []int{q}, Angle: angle})
}

// RY appends a Y rotation.
func (c *Circuit) RY(angle Expr, q int) *Circuit {
	return c.append(Instruction{Gate: GateRY, Qubits: []int{q}, Angle: angle})
}

// CX appends a controlled-NOT gate.
func (c *Circuit) CX(control, target int) *Circuit {
	if c.err == nil && control == target {
		c.err = fmt.Errorf("circuit: cx control and target both %d: %w", control, ErrQubitIndex)
	}
	return c.append(Instruction{Gate: GateCX, Qubits: []int{control, target}})
}

func (c *Circuit) append(in Instruction) *Circuit {
	if c.err != nil {
		return c
	}
	for _, q := range in.Qubits {
		if q < 0 || q >= c.numQubits {
			c.err = fmt.Errorf("circuit: %s on qubit %d of %d: %w", in.Gate, q, c.numQubits, ErrQubitIndex)
			return c
		}
	}
	if p := in.Angle.Param; p != nil {
		if _, ok := c.seen[p]; !ok {
			c.seen[p] = struct{}{}
			c.params = append(c.params, p)
		}
	}
	c.instructions = append(c.instructions, in)
	return c
}

// Shifted returns a copy of the circuit with delta added to the angle offset
// of instruction idx.
func (c *Circuit) Shifted(idx int, delta float64) *Circuit {
	shifted := &Circuit{
		numQubits:    c.numQubits,
		instructions: slices.Clone(c.instructions),
		params:       slices.Clone(c.params),
		seen:         maps.Clone(c.seen),
		err:          c.err,
	}
	shifted.instructions[idx].Angle.Offset += delta
	return shifted
}

// GateCounts returns how many times each gate occurs.
func (c *Circuit) GateCounts() map[Gate]int {
	counts := make(map[Gate]int)
	for _, in := range c.instructions {
		counts[in.Gate]++
	}
	return counts
}

// bind resolves the rotation angle of every instruction for one row of
// parameter values ordered like order.
func (c *Circuit) bind(index map[*Parameter]int, values []float64) []float64 {
	angles := make([]float64, len(c.instructions))
	for i, in := range c.instructions {
		if in.Gate != GateRX && in.Gate != GateRY {
			continue
		}
		var v float64
		if in.Angle.Param != nil {
			v = values[index[in.Angle.Param]]
		}
		angles[i] = in.Angle.Eval(v)
	}
	return angles
}

// parameterIndex maps each parameter in order to its position and checks that
// every circuit parameter is bound.
func (c *Circuit) parameterIndex(order []*Parameter) (map[*Parameter]int, error) {
	index := make(map[*Parameter]int, len(order))
	for i, p := range order {
		index[p] = i
	}
	for _, p := range c.params {
		if _, ok := index[p]; !ok {
			return nil, fmt.Errorf("parameter %s: %w", p, ErrUnboundParameter)
		}
	}
	return index, nil
}
