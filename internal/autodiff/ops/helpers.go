package ops

import (
	"fmt"

	"github.com/born-ml/quanv/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, _ tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	result, err := tensor.NewRaw(targetShape, grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("reduceBroadcast: failed to create result: %v", err))
	}

	switch grad.DType() {
	case tensor.Float32:
		reduceInto(result.AsFloat32(), grad.AsFloat32(), grad.Shape(), targetShape)
	case tensor.Float64:
		reduceInto(result.AsFloat64(), grad.AsFloat64(), grad.Shape(), targetShape)
	default:
		panic(fmt.Sprintf("reduceBroadcast: unsupported dtype %s", grad.DType()))
	}

	return result
}

// reduceInto sums src (shaped srcShape) into dst (shaped dstShape), where
// dstShape broadcasts to srcShape.
func reduceInto[T float32 | float64](dst, src []T, srcShape, dstShape tensor.Shape) {
	srcStrides := srcShape.ComputeStrides()
	dstStrides := make([]int, len(srcShape))

	offset := len(srcShape) - len(dstShape)
	orig := dstShape.ComputeStrides()
	for i := range srcShape {
		j := i - offset
		if j >= 0 && dstShape[j] != 1 {
			dstStrides[i] = orig[j]
		}
	}

	for i, v := range src {
		idx, rem := 0, i
		for d, s := range srcStrides {
			idx += (rem / s) * dstStrides[d]
			rem %= s
		}
		dst[idx] += v
	}
}

// filledLike returns a tensor with t's shape and dtype where every element is v.
func filledLike(t *tensor.RawTensor, v float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("filledLike: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = float32(v)
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = v
		}
	default:
		panic(fmt.Sprintf("filledLike: unsupported dtype %s", t.DType()))
	}

	return result
}

// rawFromFloat64s builds a tensor of the given shape and dtype from values.
func rawFromFloat64s(values []float64, shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("rawFromFloat64s: %v", err))
	}
	result.SetFloat64s(values)
	return result
}
