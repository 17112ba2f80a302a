package index

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/vecdb/distance"
)

const (
	// AutoID asks an index to assign the identifier itself.
	AutoID int64 = -1

	// NotFoundID marks a padding slot in fixed-length search output.
	NotFoundID int64 = -1
)

// MaxDistance is the distance reported for padding slots.
const MaxDistance float32 = math.MaxFloat32

// Type identifies an index implementation.
type Type int

// Index types. The zero value is deliberately not a valid type.
const (
	TypeUnknown Type = iota
	TypeFlat
	TypeGraph
	TypeFilter // reserved
)

// String returns the wire tag of the type.
func (t Type) String() string {
	switch t {
	case TypeFlat:
		return "FLAT"
	case TypeGraph:
		return "HNSW"
	case TypeFilter:
		return "FILTER"
	default:
		return "UNKNOWN"
	}
}

// ParseType maps a wire tag to a Type. Tags are case-insensitive; "GRAPH" is
// accepted as an alias of "HNSW".
func ParseType(tag string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "FLAT":
		return TypeFlat, nil
	case "HNSW", "GRAPH":
		return TypeGraph, nil
	case "FILTER":
		return TypeFilter, nil
	default:
		return TypeUnknown, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t == TypeUnknown || t > TypeFilter {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Result represents a single search hit.
type Result struct {
	// ID is the identifier of the stored vector, or NotFoundID for padding.
	ID int64

	// Distance is the distance between the query vector and the result vector.
	Distance float32
}

// Index is the capability set every index type provides.
type Index interface {
	// Type returns the index type tag.
	Type() Type

	// Dimension returns the fixed vector dimension.
	Dimension() int

	// Metric returns the distance metric fixed at construction.
	Metric() distance.Metric

	// Len returns the number of live vectors.
	Len() int

	// Insert stores v under id and returns the identifier it was stored under.
	Insert(v []float32, id int64) (int64, error)

	// Remove deletes the given identifiers.
	Remove(ids []int64) error

	// Search returns up to k nearest neighbors of q, closest first.
	// efSearch is the beam breadth for approximate indexes and ignored otherwise.
	Search(q []float32, k int, efSearch int) ([]Result, error)

	// Stats describes the current state of the index.
	Stats() Stats
}

// Config describes an index instance to construct.
type Config struct {
	Type      Type
	Dimension int
	Metric    distance.Metric

	// M is the maximum number of neighbors per node on levels above 0 (graph only).
	M int

	// MMax0 is the maximum number of neighbors on level 0 (graph only).
	MMax0 int

	// EfConstruction is the candidate breadth used while linking a new node (graph only).
	EfConstruction int

	// Seed seeds the level generator (graph only). Zero means time-seeded.
	Seed int64

	// Overwrite replaces vectors on duplicate ids instead of rejecting them (flat only).
	Overwrite bool
}

// Validate checks the parts of the config every index type shares.
func (c Config) Validate() error {
	switch c.Type {
	case TypeFlat, TypeGraph:
	case TypeFilter:
		return fmt.Errorf("%w: index type %s is reserved", ErrUnsupported, c.Type)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, int(c.Type))
	}
	if c.Dimension <= 0 {
		return &ErrInvalidDimension{Dimension: c.Dimension}
	}
	if _, err := distance.Provider(c.Metric); err != nil {
		return &ErrInvalidMetric{Metric: c.Metric}
	}
	return nil
}
