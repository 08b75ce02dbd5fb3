package hybrid

import (
	exprand "golang.org/x/exp/rand"

	"github.com/born-ml/quanv/internal/tensor"
)

// Dataset holds single-channel square images and binary labels.
type Dataset struct {
	Images []float32 // [num_samples, 1, size, size]
	Labels []float32 // [num_samples], 0 or 1
	Size   int
}

// Synthetic generates n noisy stripe images of size×size pixels.
// Label 1 marks a bright vertical stripe, label 0 a horizontal one.
// Classes alternate so any prefix is balanced.
func Synthetic(n, size int, noise float64, seed uint64) *Dataset {
	rng := exprand.New(exprand.NewSource(seed))
	pixels := size * size

	d := &Dataset{
		Images: make([]float32, n*pixels),
		Labels: make([]float32, n),
		Size:   size,
	}
	for i := range n {
		vertical := i%2 == 1
		line := rng.Intn(size)
		img := d.Images[i*pixels : (i+1)*pixels]
		for r := range size {
			for c := range size {
				v := noise * rng.Float64()
				if (vertical && c == line) || (!vertical && r == line) {
					v = 1 - v
				}
				img[r*size+c] = float32(v)
			}
		}
		if vertical {
			d.Labels[i] = 1
		}
	}
	return d
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Batch is one mini-batch ready for the model.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B] // [batch, 1, size, size]
	Labels *tensor.Tensor[float32, B] // [batch, 1]
	Size   int
}

// Batches splits the dataset into consecutive mini-batches. The last batch
// may be smaller.
func Batches[B tensor.Backend](d *Dataset, batchSize int, backend B) ([]*Batch[B], error) {
	pixels := d.Size * d.Size
	var out []*Batch[B]
	for start := 0; start < d.Len(); start += batchSize {
		end := min(start+batchSize, d.Len())
		n := end - start

		images, err := tensor.FromSlice(d.Images[start*pixels:end*pixels], tensor.Shape{n, 1, d.Size, d.Size}, backend)
		if err != nil {
			return nil, err
		}
		labels, err := tensor.FromSlice(d.Labels[start:end], tensor.Shape{n, 1}, backend)
		if err != nil {
			return nil, err
		}
		out = append(out, &Batch[B]{Images: images, Labels: labels, Size: n})
	}
	return out, nil
}
