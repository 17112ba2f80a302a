package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dot(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8}, // (1 - -1)^2 + (-1 - 1)^2 = 4 + 4 = 8
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SquaredL2(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestL2(t *testing.T) {
	assert.Equal(t, float32(5), L2([]float32{0, 0}, []float32{3, 4}))
	assert.Equal(t, float32(0), L2([]float32{1, 1}, []float32{1, 1}))

	// symmetric
	a := []float32{0.5, -2, 7}
	b := []float32{3, 1.25, -1}
	assert.Equal(t, L2(a, b), L2(b, a))
}

func TestNegativeDot(t *testing.T) {
	// Larger inner product must rank as closer.
	q := []float32{1, 0}
	near := NegativeDot(q, []float32{10, 0})
	far := NegativeDot(q, []float32{1, 0})
	assert.Less(t, near, far)

	// Negative inner products are allowed and map to positive distances.
	assert.Equal(t, float32(3), NegativeDot([]float32{1, 1}, []float32{-1, -2}))
}

func TestProvider(t *testing.T) {
	fn, err := Provider(Euclidean)
	require.NoError(t, err)
	assert.Equal(t, float32(5), fn([]float32{0, 0}, []float32{3, 4}))

	fn, err = Provider(InnerProduct)
	require.NoError(t, err)
	assert.Equal(t, float32(-11), fn([]float32{1, 2}, []float32{3, 4}))

	_, err = Provider(Metric(42))
	assert.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"L2", Euclidean, false},
		{"euclidean", Euclidean, false},
		{" IP ", InnerProduct, false},
		{"inner_product", InnerProduct, false},
		{"cosine", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricText(t *testing.T) {
	b, err := InnerProduct.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "IP", string(b))

	var m Metric
	require.NoError(t, m.UnmarshalText([]byte("euclidean")))
	assert.Equal(t, Euclidean, m)

	assert.Error(t, m.UnmarshalText([]byte("hamming")))
	assert.Equal(t, "Unknown(9)", Metric(9).String())
}
