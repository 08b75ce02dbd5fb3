package quantum

import (
	"context"
	"fmt"
	"math"
)

// Gradient computes derivatives of sampler distributions with respect to
// circuit parameters. grads[r][k][outcome] is dP_r(outcome)/d wrt[k].
type Gradient interface {
	Run(ctx context.Context, c *Circuit, order []*Parameter, values [][]float64, wrt []*Parameter) ([][][]float64, error)
}

// ParamShiftGradient differentiates sampler distributions with the
// parameter-shift rule. For a rotation whose angle is s*v+o,
//
//	dP/dv += s * (P(o+π/2) - P(o-π/2)) / 2
//
// summed over every gate that uses the parameter.
type ParamShiftGradient struct {
	sampler Sampler
}

// NewParamShiftGradient creates a gradient evaluator on top of sampler.
func NewParamShiftGradient(sampler Sampler) *ParamShiftGradient {
	return &ParamShiftGradient{sampler: sampler}
}

// Run implements Gradient. Parameters in wrt must appear in order.
func (g *ParamShiftGradient) Run(ctx context.Context, c *Circuit, order []*Parameter, values [][]float64, wrt []*Parameter) ([][][]float64, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	position := make(map[*Parameter]int, len(wrt))
	for k, p := range wrt {
		position[p] = k
	}

	dim := 1 << c.numQubits
	grads := make([][][]float64, len(values))
	for r := range grads {
		grads[r] = make([][]float64, len(wrt))
		for k := range grads[r] {
			grads[r][k] = make([]float64, dim)
		}
	}

	for idx, in := range c.instructions {
		if !in.Parametrized() {
			continue
		}
		k, ok := position[in.Angle.Param]
		if !ok {
			continue
		}

		plus, err := g.sampler.Run(ctx, c.Shifted(idx, math.Pi/2), order, values)
		if err != nil {
			return nil, fmt.Errorf("param shift %s: %w", in, err)
		}
		minus, err := g.sampler.Run(ctx, c.Shifted(idx, -math.Pi/2), order, values)
		if err != nil {
			return nil, fmt.Errorf("param shift %s: %w", in, err)
		}

		coef := in.Angle.Scale / 2
		for r := range values {
			p, m, out := plus.Distributions[r], minus.Distributions[r], grads[r][k]
			for o := range out {
				out[o] += coef * (p[o] - m[o])
			}
		}
	}

	return grads, nil
}
