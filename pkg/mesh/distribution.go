package mesh

import "sort"

// Distribution1D is a cumulative piecewise-constant probability table for
// discrete inverse-CDF sampling.
type Distribution1D struct {
	cdf        []float32
	sum        float32
	normalized bool
}

// NewDistribution1D returns an empty table with room for capacity entries.
func NewDistribution1D(capacity int) *Distribution1D {
	return &Distribution1D{cdf: make([]float32, 1, capacity+1)}
}

// Append adds one entry with the given unnormalized weight.
func (d *Distribution1D) Append(weight float32) {
	d.cdf = append(d.cdf, d.cdf[len(d.cdf)-1]+weight)
}

// Count returns the number of entries.
func (d *Distribution1D) Count() int {
	return len(d.cdf) - 1
}

// Normalize rescales the table so the final cumulative entry is exactly 1
// and returns the pre-normalization sum of weights.
func (d *Distribution1D) Normalize() float32 {
	d.sum = d.cdf[len(d.cdf)-1]
	if d.sum > 0 {
		inv := 1 / d.sum
		for i := range d.cdf {
			d.cdf[i] *= inv
		}
		d.cdf[len(d.cdf)-1] = 1
	}
	d.normalized = true
	return d.sum
}

// SampleReuse selects an entry by inverse-CDF lookup on u and rescales u's
// leftover entropy into a fresh uniform value in [0, 1).
func (d *Distribution1D) SampleReuse(u float32) (index int, remapped float32) {
	index = sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > u }) - 1
	if index < 0 {
		index = 0
	}
	if index > len(d.cdf)-2 {
		index = len(d.cdf) - 2
	}
	return index, (u - d.cdf[index]) / (d.cdf[index+1] - d.cdf[index])
}
