package cpu

import (
	"fmt"

	"github.com/born-ml/quanv/internal/parallel"
	"github.com/born-ml/quanv/internal/tensor"
)

// Unfold extracts sliding patches from a [N, C, H, W] input (im2col without padding).
//
// Output shape is [N, C*K*K, HOut*WOut]. Row r = c*K*K + kh*K + kw holds
// input[n, c, oh*stride+kh, ow*stride+kw] at column l = oh*WOut + ow.
// When the kernel does not fit the input, HOut or WOut is 0 and the
// result is empty.
func (cpu *CPUBackend) Unfold(x *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("unfold: expected 4D input [N, C, H, W], got %v", shape))
	}
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("unfold: kernel size and stride must be positive, got %d and %d", kernelSize, stride))
	}

	g := newWindowGeometry(shape, kernelSize, stride)

	result, err := tensor.NewRaw(tensor.Shape{g.n, g.c * g.k * g.k, g.hOut * g.wOut}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("unfold: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		unfold(result.AsFloat32(), x.AsFloat32(), g, cpu.parallel)
	case tensor.Float64:
		unfold(result.AsFloat64(), x.AsFloat64(), g, cpu.parallel)
	default:
		panic(fmt.Sprintf("unfold: unsupported dtype %s", x.DType()))
	}

	return result
}

// Fold scatter-adds [N, C*K*K, L] patches into a tensor of inputShape (col2im).
// It is the adjoint of Unfold: elements covered by several windows
// receive the sum of every contribution.
func (cpu *CPUBackend) Fold(cols *tensor.RawTensor, inputShape tensor.Shape, kernelSize, stride int) *tensor.RawTensor {
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("fold: expected 4D output shape [N, C, H, W], got %v", inputShape))
	}

	g := newWindowGeometry(inputShape, kernelSize, stride)
	want := tensor.Shape{g.n, g.c * g.k * g.k, g.hOut * g.wOut}
	if !cols.Shape().Equal(want) {
		panic(fmt.Sprintf("fold: columns shape %v does not match %v for input %v", cols.Shape(), want, inputShape))
	}

	result, err := tensor.NewRaw(inputShape, cols.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("fold: %v", err))
	}

	switch cols.DType() {
	case tensor.Float32:
		fold(result.AsFloat32(), cols.AsFloat32(), g, cpu.parallel)
	case tensor.Float64:
		fold(result.AsFloat64(), cols.AsFloat64(), g, cpu.parallel)
	default:
		panic(fmt.Sprintf("fold: unsupported dtype %s", cols.DType()))
	}

	return result
}

type windowGeometry struct {
	n, c, h, w int
	k, stride  int
	hOut, wOut int
}

func newWindowGeometry(shape tensor.Shape, kernelSize, stride int) windowGeometry {
	return windowGeometry{
		n:      shape[0],
		c:      shape[1],
		h:      shape[2],
		w:      shape[3],
		k:      kernelSize,
		stride: stride,
		hOut:   tensor.SlidingWindows(shape[2], kernelSize, stride),
		wOut:   tensor.SlidingWindows(shape[3], kernelSize, stride),
	}
}

// unfold fills one (batch, channel) slab per task; slabs never overlap.
func unfold[T float](dst, src []T, g windowGeometry, cfg parallel.Config) {
	rows := g.c * g.k * g.k
	cols := g.hOut * g.wOut
	if cols == 0 {
		return
	}

	parallel.ForBatch(g.n, g.c, func(n, c int) {
		in := src[(n*g.c+c)*g.h*g.w:]
		for kh := 0; kh < g.k; kh++ {
			for kw := 0; kw < g.k; kw++ {
				row := c*g.k*g.k + kh*g.k + kw
				out := dst[(n*rows+row)*cols:]
				for oh := 0; oh < g.hOut; oh++ {
					ih := oh*g.stride + kh
					for ow := 0; ow < g.wOut; ow++ {
						out[oh*g.wOut+ow] = in[ih*g.w+ow*g.stride+kw]
					}
				}
			}
		}
	}, cfg)
}

// fold accumulates one (batch, channel) input slab per task.
func fold[T float](dst, src []T, g windowGeometry, cfg parallel.Config) {
	rows := g.c * g.k * g.k
	cols := g.hOut * g.wOut
	if cols == 0 {
		return
	}

	parallel.ForBatch(g.n, g.c, func(n, c int) {
		out := dst[(n*g.c+c)*g.h*g.w:]
		for kh := 0; kh < g.k; kh++ {
			for kw := 0; kw < g.k; kw++ {
				row := c*g.k*g.k + kh*g.k + kw
				in := src[(n*rows+row)*cols:]
				for oh := 0; oh < g.hOut; oh++ {
					ih := oh*g.stride + kh
					for ow := 0; ow < g.wOut; ow++ {
						out[ih*g.w+ow*g.stride+kw] += in[oh*g.wOut+ow]
					}
				}
			}
		}
	}, cfg)
}
