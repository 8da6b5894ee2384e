// Package ratelimit paces requests to the IGDB catalog API.
//
// The catalog allows a handful of requests per second per client. The
// fetcher is strictly sequential, so a single minimum-interval limiter is
// enough: every call to Throttle returns no sooner than the configured
// interval after the previous one returned.
//
// Usage:
//
//	limiter := ratelimit.NewInterval(300 * time.Millisecond)
//
//	if err := limiter.Throttle(ctx); err != nil {
//	    return err // context cancelled while waiting
//	}
//	// Proceed with request
package ratelimit
