// Package resource implements admission control for the HTTP boundary.
//
// The Controller manages three limits:
//
//   - In-flight: a weighted semaphore caps the number of requests being
//     served at once (non-blocking, fail-fast).
//   - Rate: a token bucket caps the request rate.
//   - Body memory: a weighted semaphore caps the bytes of request bodies
//     held in memory at once (non-blocking, fail-fast).
//
// Every limit is optional; a zero value disables it. A nil *Controller
// admits everything.
//
//	rc := resource.NewController(resource.Config{
//	    MaxInFlight:       64,
//	    RequestsPerSecond: 500,
//	    Burst:             100,
//	})
//
//	release, err := rc.Admit()
//	if err != nil {
//	    // reply 429
//	}
//	defer release()
//
// Rejections never block: index operations are not cancellable, so queueing
// callers behind a saturated index only grows latency.
package resource
