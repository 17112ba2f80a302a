package flat

import (
	"testing"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlat(t *testing.T, dim int, optFns ...func(o *Options)) *Flat {
	t.Helper()
	f, err := New(append([]func(o *Options){func(o *Options) { o.Dimension = dim }}, optFns...)...)
	require.NoError(t, err)
	return f
}

func TestFlat(t *testing.T) {
	t.Run("Insert", func(t *testing.T) {
		f := newFlat(t, 3)

		id, err := f.Insert([]float32{1.0, 2.0, 3.0}, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.Equal(t, 1, f.Len())

		// Test dimension mismatch error
		_, err = f.Insert([]float32{1.0, 2.0}, 8)
		assert.Error(t, err)
		assert.IsType(t, &index.ErrDimensionMismatch{}, err)

		_, err = f.Insert([]float32{1.0, 2.0, 3.0}, -1)
		assert.IsType(t, &index.ErrInvalidID{}, err)
	})

	t.Run("InsertCopiesVector", func(t *testing.T) {
		f := newFlat(t, 2)
		v := []float32{1, 1}
		_, err := f.Insert(v, 1)
		require.NoError(t, err)
		v[0] = 100

		stored, ok := f.Vector(1)
		require.True(t, ok)
		assert.Equal(t, []float32{1, 1}, stored)
	})

	t.Run("KNNSearch", func(t *testing.T) {
		f := newFlat(t, 3)

		_, _ = f.Insert([]float32{1.0, 2.0, 3.0}, 0)
		_, _ = f.Insert([]float32{4.0, 5.0, 6.0}, 1)
		_, _ = f.Insert([]float32{7.0, 8.0, 9.0}, 2)

		result, err := f.Search([]float32{9.0, 9.0, 9.0}, 2, 0)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, int64(2), result[0].ID)
		assert.Equal(t, int64(1), result[1].ID)
	})

	t.Run("InvalidSearch", func(t *testing.T) {
		f := newFlat(t, 2)

		_, err := f.Search([]float32{0, 0}, 0, 0)
		assert.ErrorIs(t, err, index.ErrInvalidK)

		_, err = f.Search([]float32{0, 0, 0}, 1, 0)
		assert.IsType(t, &index.ErrDimensionMismatch{}, err)
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		_, err := New()
		assert.IsType(t, &index.ErrInvalidDimension{}, err)

		_, err = New(func(o *Options) {
			o.Dimension = 2
			o.Metric = distance.Metric(99)
		})
		assert.IsType(t, &index.ErrInvalidMetric{}, err)
	})
}

func TestFlatScenarios(t *testing.T) {
	t.Run("TwoPoints", func(t *testing.T) {
		f := newFlat(t, 2)
		_, err := f.Insert([]float32{0, 0}, 1)
		require.NoError(t, err)
		_, err = f.Insert([]float32{3, 4}, 2)
		require.NoError(t, err)

		results, err := f.Search([]float32{0, 0}, 2, 0)
		require.NoError(t, err)

		ids, dists := index.Split(results)
		assert.Equal(t, []int64{1, 2}, ids)
		assert.Equal(t, []float32{0, 5}, dists)
	})

	t.Run("RemoveThenSearch", func(t *testing.T) {
		f := newFlat(t, 2)
		_, err := f.Insert([]float32{1, 1}, 5)
		require.NoError(t, err)

		require.NoError(t, f.Remove([]int64{5}))

		results, err := f.Search([]float32{1, 1}, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.NotNil(t, results)
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		f := newFlat(t, 2)
		results, err := f.Search([]float32{1, 1}, 3, 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("FewerThanK", func(t *testing.T) {
		f := newFlat(t, 1)
		for i := range 3 {
			_, err := f.Insert([]float32{float32(i)}, int64(i))
			require.NoError(t, err)
		}

		results, err := f.Search([]float32{0}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}

func TestFlatTieBreak(t *testing.T) {
	f := newFlat(t, 2)

	// All equidistant from the origin; insertion order must decide.
	_, _ = f.Insert([]float32{0, 1}, 30)
	_, _ = f.Insert([]float32{1, 0}, 10)
	_, _ = f.Insert([]float32{0, -1}, 20)
	_, _ = f.Insert([]float32{-1, 0}, 40)

	results, err := f.Search([]float32{0, 0}, 3, 0)
	require.NoError(t, err)

	ids, _ := index.Split(results)
	assert.Equal(t, []int64{30, 10, 20}, ids)
}

func TestFlatRemove(t *testing.T) {
	f := newFlat(t, 2)

	for i := range 5 {
		_, err := f.Insert([]float32{float32(i), 0}, int64(i))
		require.NoError(t, err)
	}

	require.NoError(t, f.Remove([]int64{0, 2, 99}))
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 2, f.Stats().Tombstones)

	results, err := f.Search([]float32{0, 0}, 5, 0)
	require.NoError(t, err)

	ids, _ := index.Split(results)
	assert.Equal(t, []int64{1, 3, 4}, ids)

	// A removed id may be inserted again.
	_, err = f.Insert([]float32{0, 0}, 0)
	require.NoError(t, err)

	results, err = f.Search([]float32{0, 0}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), results[0].ID)
}

func TestFlatDuplicatePolicy(t *testing.T) {
	t.Run("Reject", func(t *testing.T) {
		f := newFlat(t, 1)
		_, err := f.Insert([]float32{1}, 1)
		require.NoError(t, err)

		_, err = f.Insert([]float32{2}, 1)
		var dup *index.ErrDuplicateID
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, int64(1), dup.ID)

		stored, _ := f.Vector(1)
		assert.Equal(t, []float32{1}, stored)
	})

	t.Run("Overwrite", func(t *testing.T) {
		f := newFlat(t, 1, func(o *Options) { o.DuplicatePolicy = DuplicateOverwrite })
		_, err := f.Insert([]float32{1}, 1)
		require.NoError(t, err)
		_, err = f.Insert([]float32{2}, 1)
		require.NoError(t, err)

		assert.Equal(t, 1, f.Len())
		stored, _ := f.Vector(1)
		assert.Equal(t, []float32{2}, stored)

		results, err := f.Search([]float32{1}, 5, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, float32(1), results[0].Distance)
	})
}

func TestFlatMatchesBruteForce(t *testing.T) {
	for _, metric := range []distance.Metric{distance.Euclidean, distance.InnerProduct} {
		t.Run(metric.String(), func(t *testing.T) {
			rng := testutil.NewRNG(4711)
			vectors := rng.UniformRangeVectors(300, 16)
			queries := rng.UniformRangeVectors(20, 16)

			f := newFlat(t, 16, func(o *Options) { o.Metric = metric })
			for i, v := range vectors {
				_, err := f.Insert(v, int64(i))
				require.NoError(t, err)
			}

			for _, k := range []int{1, 5, 50, 300} {
				for _, q := range queries {
					got, err := f.Search(q, k, 0)
					require.NoError(t, err)

					want := testutil.BruteForceSearch(metric, vectors, nil, q, k)
					require.Equal(t, want, got)

					for i := 1; i < len(got); i++ {
						assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
					}
				}
			}
		})
	}
}

func TestFlatRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(1)
	vectors := rng.UniformVectors(100, 8)

	f := newFlat(t, 8)
	for i, v := range vectors {
		_, err := f.Insert(v, int64(i*3))
		require.NoError(t, err)
	}

	for i, v := range vectors {
		results, err := f.Search(v, 1, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(i*3), results[0].ID)
		assert.Equal(t, float32(0), results[0].Distance)
	}
}

func TestFlatStats(t *testing.T) {
	f := newFlat(t, 4, func(o *Options) { o.Metric = distance.InnerProduct })
	_, _ = f.Insert([]float32{1, 2, 3, 4}, 1)

	st := f.Stats()
	assert.Equal(t, index.TypeFlat, st.Type)
	assert.Equal(t, 4, st.Dimension)
	assert.Equal(t, distance.InnerProduct, st.Metric)
	assert.Equal(t, 1, st.Len)
	assert.Equal(t, 0, st.Tombstones)
}
