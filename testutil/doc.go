// Package testutil provides deterministic data generators and ground-truth
// helpers shared by the index, engine and server tests.
package testutil
