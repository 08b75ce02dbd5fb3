package quantum

import (
	"fmt"
	"strconv"
)

// Parameter is a symbolic circuit parameter bound to a value at execution time.
// Parameters are compared by identity, not by name.
type Parameter struct {
	name string
}

// NewParameter creates a named parameter.
func NewParameter(name string) *Parameter {
	return &Parameter{name: name}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// String implements fmt.Stringer.
func (p *Parameter) String() string {
	return p.name
}

// ParameterVector creates n parameters named prefix0 ... prefix{n-1}.
func ParameterVector(prefix string, n int) []*Parameter {
	params := make([]*Parameter, n)
	for i := range params {
		params[i] = NewParameter(prefix + strconv.Itoa(i))
	}
	return params
}

// Expr is an affine rotation angle: Scale*value(Param) + Offset.
// A nil Param makes the angle the constant Offset.
type Expr struct {
	Param  *Parameter
	Scale  float64
	Offset float64
}

// Angle returns a constant angle expression.
func Angle(theta float64) Expr {
	return Expr{Offset: theta}
}

// Scaled returns scale*p.
func Scaled(p *Parameter, scale float64) Expr {
	return Expr{Param: p, Scale: scale}
}

// Eval evaluates the expression given the parameter value.
func (e Expr) Eval(value float64) float64 {
	if e.Param == nil {
		return e.Offset
	}
	return e.Scale*value + e.Offset
}

// String renders the expression, e.g. "6.283*x0" or "6.283*w1+1.571".
func (e Expr) String() string {
	if e.Param == nil {
		return strconv.FormatFloat(e.Offset, 'g', 4, 64)
	}
	s := e.Param.name
	if e.Scale != 1 {
		s = fmt.Sprintf("%.4g*%s", e.Scale, s)
	}
	if e.Offset != 0 {
		s = fmt.Sprintf("%s%+.4g", s, e.Offset)
	}
	return s
}
