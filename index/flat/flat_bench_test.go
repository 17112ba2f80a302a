package flat_test

import (
	"fmt"
	"testing"

	"github.com/hupe1980/vecdb/index/flat"
	"github.com/hupe1980/vecdb/testutil"
)

// Benchmark single-threaded insert
func BenchmarkFlatInsert(b *testing.B) {
	dimensions := []int{128, 384, 768}

	for _, dim := range dimensions {
		b.Run(fmt.Sprintf("dim=%d", dim), func(b *testing.B) {
			f, err := flat.New(func(o *flat.Options) {
				o.Dimension = dim
			})
			if err != nil {
				b.Fatal(err)
			}
			rng := testutil.NewRNG(0)
			v := rng.UniformVectors(1, dim)[0]

			b.ReportAllocs()

			for i := 0; b.Loop(); i++ {
				if _, err := f.Insert(v, int64(i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark exhaustive search
func BenchmarkFlatSearch(b *testing.B) {
	sizes := []int{1_000, 10_000}
	dim := 128

	for _, size := range sizes {
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			f, err := flat.New(func(o *flat.Options) {
				o.Dimension = dim
			})
			if err != nil {
				b.Fatal(err)
			}
			rng := testutil.NewRNG(0)
			for i, v := range rng.UniformVectors(size, dim) {
				if _, err := f.Insert(v, int64(i)); err != nil {
					b.Fatal(err)
				}
			}
			q := rng.UniformVectors(1, dim)[0]

			b.ReportAllocs()

			for b.Loop() {
				if _, err := f.Search(q, 10, 0); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
