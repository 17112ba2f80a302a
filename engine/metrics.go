package engine

import (
	"time"

	"github.com/hupe1980/vecdb/index"
)

// MetricsObserver defines the interface for observing registry events.
type MetricsObserver interface {
	// OnBuild is called when an index instance has been constructed by
	// Initialize or Reset.
	OnBuild(duration time.Duration, indexType index.Type, err error)

	// OnPoison is called when an operation panics and poisons a handle.
	OnPoison(indexType index.Type)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnBuild(duration time.Duration, indexType index.Type, err error) {}
func (o *NoopMetricsObserver) OnPoison(indexType index.Type)                                   {}
