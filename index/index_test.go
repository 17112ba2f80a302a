package index

import (
	"errors"
	"testing"

	"github.com/hupe1980/vecdb/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		tag     string
		want    Type
		wantErr bool
	}{
		{"FLAT", TypeFlat, false},
		{"flat", TypeFlat, false},
		{"HNSW", TypeGraph, false},
		{"graph", TypeGraph, false},
		{"FILTER", TypeFilter, false},
		{"HNSWFLAT", TypeUnknown, true},
		{"", TypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseType(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustRoundTrip(t, got))
		})
	}
}

func mustRoundTrip(t *testing.T, typ Type) Type {
	t.Helper()
	b, err := typ.MarshalText()
	require.NoError(t, err)
	var out Type
	require.NoError(t, out.UnmarshalText(b))
	return out
}

func TestConfigValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Config{Type: TypeFlat, Dimension: 3}.Validate())
		assert.NoError(t, Config{Type: TypeGraph, Dimension: 1, Metric: distance.InnerProduct}.Validate())
	})

	t.Run("InvalidDimension", func(t *testing.T) {
		err := Config{Type: TypeFlat}.Validate()
		var target *ErrInvalidDimension
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 0, target.Dimension)
	})

	t.Run("ReservedType", func(t *testing.T) {
		err := Config{Type: TypeFilter, Dimension: 2}.Validate()
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := Config{Dimension: 2}.Validate()
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("InvalidMetric", func(t *testing.T) {
		err := Config{Type: TypeFlat, Dimension: 2, Metric: distance.Metric(7)}.Validate()
		var target *ErrInvalidMetric
		assert.ErrorAs(t, err, &target)
	})
}

func TestResultHelpers(t *testing.T) {
	results := []Result{{ID: 4, Distance: 0.5}, {ID: 9, Distance: 1.5}}

	t.Run("Pad", func(t *testing.T) {
		padded := Pad(append([]Result(nil), results...), 4)
		require.Len(t, padded, 4)
		assert.Equal(t, NotFoundID, padded[2].ID)
		assert.Equal(t, MaxDistance, padded[3].Distance)

		assert.Len(t, Pad(append([]Result(nil), results...), 1), 1)
	})

	t.Run("Found", func(t *testing.T) {
		padded := Pad(append([]Result(nil), results...), 4)
		assert.Equal(t, results, Found(padded))
	})

	t.Run("Split", func(t *testing.T) {
		ids, dists := Split(results)
		assert.Equal(t, []int64{4, 9}, ids)
		assert.Equal(t, []float32{0.5, 1.5}, dists)
	})
}

func TestChecks(t *testing.T) {
	err := CheckDimension(3, []float32{1, 2})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.EqualError(t, err, "dimension mismatch: expected 3, got 2")

	assert.NoError(t, CheckDimension(2, []float32{1, 2}))
	assert.ErrorIs(t, CheckK(0), ErrInvalidK)
	assert.NoError(t, CheckK(1))

	assert.ErrorIs(t, Unsupported(TypeGraph, "remove"), ErrUnsupported)
	assert.EqualError(t, Unsupported(TypeGraph, "remove"), "HNSW: remove: operation not supported")
}
