package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

func benchHeights(n int) []float32 {
	rng := rand.New(rand.NewSource(1))
	h := make([]float32, n*n)
	for i := range h {
		h[i] = (rng.Float32() - 0.5) * 0.02
	}
	return h
}

// Benchmark energy with a scalar loop
func BenchmarkEnergyScalar(b *testing.B) {
	h := benchHeights(256)

	b.ResetTimer()
	var sum float32
	for n := 0; n < b.N; n++ {
		sum = 0
		for _, v := range h {
			sum += v * v
		}
	}
	_ = sum
}

// Benchmark energy with blas32
func BenchmarkEnergyBLAS(b *testing.B) {
	h := benchHeights(256)
	v := blas32.Vector{N: len(h), Inc: 1, Data: h}

	b.ResetTimer()
	var sum float32
	for n := 0; n < b.N; n++ {
		sum = blas32.Dot(v, v)
	}
	_ = sum
}

func BenchmarkMaxAbsScalar(b *testing.B) {
	h := benchHeights(256)

	b.ResetTimer()
	var peak float32
	for n := 0; n < b.N; n++ {
		peak = 0
		for _, v := range h {
			peak = max(peak, absf(v))
		}
	}
	_ = peak
}

func BenchmarkMaxAbsBLAS(b *testing.B) {
	h := benchHeights(256)
	v := blas32.Vector{N: len(h), Inc: 1, Data: h}

	b.ResetTimer()
	var idx int
	for n := 0; n < b.N; n++ {
		idx = blas32.Iamax(v)
	}
	_ = idx
}

func BenchmarkUpdateNormals256(b *testing.B) {
	hf := NewHeightField(256, nil)
	hf.Restore(benchHeights(256), make([]float32, 256*256))

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		hf.UpdateNormals()
	}
}
