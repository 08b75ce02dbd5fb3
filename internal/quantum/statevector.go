package quantum

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Statevector holds the 2^n complex amplitudes of an n-qubit register.
//
// Basis states are little-endian: qubit i is bit i of the amplitude index,
// so index 1 is |q0=1, q1=0, ...>.
type Statevector struct {
	numQubits int
	amps      []complex128
}

// NewStatevector returns |0...0> on numQubits qubits.
func NewStatevector(numQubits int) *Statevector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &Statevector{numQubits: numQubits, amps: amps}
}

// NumQubits returns the register size.
func (s *Statevector) NumQubits() int {
	return s.numQubits
}

// Amplitudes returns the amplitude slice (not a copy).
func (s *Statevector) Amplitudes() []complex128 {
	return s.amps
}

// apply1 applies the 2x2 unitary m to qubit q.
func (s *Statevector) apply1(q int, m [2][2]complex128) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a0 + m[0][1]*a1
		s.amps[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

// ApplyH applies a Hadamard gate to qubit q.
func (s *Statevector) ApplyH(q int) {
	h := complex(1/math.Sqrt2, 0)
	s.apply1(q, [2][2]complex128{{h, h}, {h, -h}})
}

// ApplyRX applies exp(-i θ X/2) to qubit q.
func (s *Statevector) ApplyRX(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	ns := complex(0, -math.Sin(theta/2))
	s.apply1(q, [2][2]complex128{{c, ns}, {ns, c}})
}

// ApplyRY applies exp(-i θ Y/2) to qubit q.
func (s *Statevector) ApplyRY(q int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	s.apply1(q, [2][2]complex128{{c, -sn}, {sn, c}})
}

// ApplyCX flips target on every basis state where control is 1.
func (s *Statevector) ApplyCX(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// Evolve applies the circuit with pre-resolved instruction angles.
func (s *Statevector) Evolve(c *Circuit, angles []float64) {
	for i, in := range c.instructions {
		switch in.Gate {
		case GateH:
			s.ApplyH(in.Qubits[0])
		case GateRX:
			s.ApplyRX(in.Qubits[0], angles[i])
		case GateRY:
			s.ApplyRY(in.Qubits[0], angles[i])
		case GateCX:
			s.ApplyCX(in.Qubits[0], in.Qubits[1])
		}
	}
}

// Probabilities returns the measurement distribution over basis states,
// renormalised to sum to 1.
func (s *Statevector) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	if total := floats.Sum(probs); total > 0 {
		floats.Scale(1/total, probs)
	}
	return probs
}
