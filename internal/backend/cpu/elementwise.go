package cpu

import (
	"github.com/born-ml/quanv/internal/tensor"
)

// float is the set of element types the CPU kernels operate on.
type float interface {
	~float32 | ~float64
}

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
)

func combine[T float](op binaryOp, x, y T) T {
	switch op {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	case opMul:
		return x * y
	default:
		panic("unknown binary op")
	}
}

// applyBinary computes dst = a <op> b, broadcasting a and b to outShape.
func applyBinary[T float](op binaryOp, dst, a, b []T, aShape, bShape, outShape tensor.Shape) {
	if aShape.Equal(bShape) {
		for i := range dst {
			dst[i] = combine(op, a[i], b[i])
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	for i := range dst {
		ai := computeFlatIndex(i, outStrides, aStrides)
		bi := computeFlatIndex(i, outStrides, bStrides)
		dst[i] = combine(op, a[ai], b[bi])
	}
}

func scale[T float](dst, src []T, s T) {
	for i, v := range src {
		dst[i] = v * s
	}
}

func sum[T float](data []T) T {
	var total T
	for _, v := range data {
		total += v
	}
	return total
}

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}
