package tank

import (
	"math"
	"testing"
)

func TestKahanSumCancellation(t *testing.T) {
	// naive summation loses both small terms here, plain Kahan loses one
	var k KahanSum
	for _, x := range []float64{1.0, 1e100, 1.0, -1e100} {
		k.Add(x)
	}
	if got := k.Total(); got != 2.0 {
		t.Fatalf("expected 2.0, got %v", got)
	}
}

func TestKahanSumReadStable(t *testing.T) {
	var k KahanSum
	k.Add(0.1)
	k.Add(0.2)
	first := k.Total()
	for i := 0; i < 10; i++ {
		if got := k.Total(); got != first {
			t.Fatalf("read %d changed the total: %v != %v", i, got, first)
		}
	}
}

func TestKahanSumSlidingSubtract(t *testing.T) {
	// emulate a sliding window: add 1000 awkward values, retire the first 900
	vals := make([]float64, 1000)
	for i := range vals {
		vals[i] = 0.1 * float64(i%7)
	}

	var k KahanSum
	for _, v := range vals {
		k.Add(v)
	}
	for _, v := range vals[:900] {
		k.Sub(v)
	}

	want := 0.0
	for _, v := range vals[900:] {
		want += v
	}
	if got := k.Total(); math.Abs(got-want) > 1e-12*math.Abs(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
