package tank

import (
	"math/rand"
	"testing"
)

func randomBatch(rng *rand.Rand, n int) []float64 {
	batch := make([]float64, n)
	for i := range batch {
		batch[i] = rng.NormFloat64() * 100
	}
	return batch
}

func BenchmarkAddBatch10k(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	batch := randomBatch(rng, 10000)
	a := NewAggregator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.AddBatch(batch)
	}
}

func BenchmarkAddBatchSingle(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	batch := randomBatch(rng, b.N)
	a := NewAggregator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.AddBatch(batch[i : i+1])
	}
}

func BenchmarkStats(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	a := NewAggregator()
	for i := 0; i < 100; i++ {
		a.AddBatch(randomBatch(rng, 10000))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for k := 1; k <= DefaultLevels; k++ {
			a.Stats(k)
		}
	}
}

func BenchmarkMixed(b *testing.B) {
	// the expected production shape: many pushes, occasional reads
	rng := rand.New(rand.NewSource(1))
	batch := randomBatch(rng, 1000)
	a := NewAggregator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.AddBatch(batch)
		if i%100 == 0 {
			for k := 1; k <= DefaultLevels; k++ {
				a.Stats(k)
			}
		}
	}
}
