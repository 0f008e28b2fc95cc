package tank

import "math"

// KahanSum is a Kahan-Neumaier compensated accumulator. It keeps a running
// sum plus a correction term so that long series of adds and subtracts of
// finite doubles stay accurate to within a few ULPs.
//
// The zero value is an empty sum, ready to use.
type KahanSum struct {
	sum float64
	c   float64
}

// Add folds x into the sum.
func (k *KahanSum) Add(x float64) {
	t := k.sum + x
	if math.Abs(k.sum) >= math.Abs(x) {
		k.c += (k.sum - t) + x
	} else {
		k.c += (x - t) + k.sum
	}
	k.sum = t
}

// Sub removes x from the sum.
func (k *KahanSum) Sub(x float64) {
	k.Add(-x)
}

// Total returns the corrected sum. The correction is applied on read, not
// folded back into the running sum, so repeated reads are stable.
func (k *KahanSum) Total() float64 {
	return k.sum + k.c
}
