package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// UniformRangeVectors generates random vectors with values in range [-1, 1).
func (r *RNG) UniformRangeVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()*2 - 1
		}
		vectors[i] = vec
	}

	return vectors
}

// LineVectors returns num distinct vectors on a line through the origin:
// vector i has every component equal to i*step.
func LineVectors(num, dimensions int, step float32) [][]float32 {
	vectors := make([][]float32, num)
	for i := range num {
		v := make([]float32, dimensions)
		for j := range v {
			v[j] = float32(i) * step
		}
		vectors[i] = v
	}
	return vectors
}

// BruteForceSearch performs exact search for ground truth. vectors[i] is
// treated as having id ids[i]; a nil ids slice means id == position.
// Ties are resolved by position.
func BruteForceSearch(m distance.Metric, vectors [][]float32, ids []int64, query []float32, k int) []index.Result {
	fn, err := distance.Provider(m)
	if err != nil {
		panic(err)
	}

	type result struct {
		pos  int
		dist float32
	}

	results := make([]result, len(vectors))
	for i, v := range vectors {
		results[i] = result{pos: i, dist: fn(query, v)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].dist < results[j].dist
	})

	if len(results) > k {
		results = results[:k]
	}

	out := make([]index.Result, len(results))
	for i, r := range results {
		id := int64(r.pos)
		if ids != nil {
			id = ids[r.pos]
		}
		out[i] = index.Result{ID: id, Distance: r.dist}
	}
	return out
}

// ComputeRecall computes recall@k by comparing approximate results against ground truth.
// Padding entries in approximate are ignored.
func ComputeRecall(groundTruth, approximate []index.Result) float64 {
	approximate = index.Found(approximate)
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[int64]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].ID] = struct{}{}
	}

	hits := 0
	for _, r := range approximate[:k] {
		if _, ok := truthSet[r.ID]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}
