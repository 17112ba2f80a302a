// Package distance provides the vector distance functions used by the indexes.
//
// # Supported Metrics
//
//   - Euclidean: L2 distance, sqrt(sum((a_i - b_i)^2))
//   - InnerProduct: negated dot product, so that lower is more similar
//
// Both metrics follow the "lower is closer" convention, which lets every
// index rank candidates with a single ascending order.
//
// # Usage
//
//	fn, err := distance.Provider(distance.Euclidean)
//	d := fn(a, b)
package distance
