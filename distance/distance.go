package distance

import (
	"fmt"
	"math"
	"strings"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredL2(a, b))))
}

// NegativeDot returns -Dot(a, b). Larger inner products map to smaller
// distances, and the result may be negative.
func NegativeDot(a, b []float32) float32 {
	return -Dot(a, b)
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	Euclidean Metric = iota
	InnerProduct
)

func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "L2"
	case InnerProduct:
		return "IP"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric maps a configuration or wire name to a Metric.
// Matching is case-insensitive.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2", "euclidean":
		return Euclidean, nil
	case "ip", "inner_product", "innerproduct", "dot":
		return InnerProduct, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	switch m {
	case Euclidean, InnerProduct:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unsupported metric: %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case Euclidean:
		return L2, nil
	case InnerProduct:
		return NegativeDot, nil
	default:
		return nil, fmt.Errorf("unsupported metric for float32: %v", m)
	}
}
