package resource

import (
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrTooManyRequests is returned when the in-flight limit is reached.
	ErrTooManyRequests = errors.New("too many requests in flight")

	// ErrRateLimited is returned when the request rate limit is exceeded.
	ErrRateLimited = errors.New("request rate limit exceeded")

	// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// Config holds resource limits.
type Config struct {
	// MaxInFlight is the maximum number of concurrently admitted requests.
	// If 0, unlimited.
	MaxInFlight int64

	// RequestsPerSecond is the sustained request rate.
	// If 0, unlimited.
	RequestsPerSecond float64

	// Burst is the token bucket size. If 0, defaults to
	// max(1, RequestsPerSecond).
	Burst int

	// MemoryLimitBytes is the hard limit for request bodies held in memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64
}

// Controller manages admission limits.
type Controller struct {
	cfg Config

	// Concurrency
	inFlightSem *semaphore.Weighted // nil if unlimited
	inFlight    atomic.Int64

	// Rate
	limiter *rate.Limiter // nil if unlimited

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	rejected atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlight > 0 {
		c.inFlightSem = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = max(1, int(cfg.RequestsPerSecond))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	return c
}

// Admit reserves an in-flight slot and a rate token. On success the returned
// release func must be called exactly once when the request is done.
// Non-blocking: a saturated controller returns ErrTooManyRequests or
// ErrRateLimited immediately.
func (c *Controller) Admit() (func(), error) {
	if c == nil {
		return func() {}, nil
	}

	if c.inFlightSem != nil && !c.inFlightSem.TryAcquire(1) {
		c.rejected.Add(1)
		return nil, ErrTooManyRequests
	}

	if c.limiter != nil && !c.limiter.AllowN(time.Now(), 1) {
		if c.inFlightSem != nil {
			c.inFlightSem.Release(1)
		}
		c.rejected.Add(1)
		return nil, ErrRateLimited
	}

	c.inFlight.Add(1)

	var released atomic.Bool

	return func() {
		if !released.CompareAndSwap(false, true) {
			return
		}
		c.inFlight.Add(-1)
		if c.inFlightSem != nil {
			c.inFlightSem.Release(1)
		}
	}, nil
}

// InFlight returns the number of currently admitted requests.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Rejected returns the number of requests refused by Admit.
func (c *Controller) Rejected() int64 {
	if c == nil {
		return 0
	}
	return c.rejected.Load()
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}
