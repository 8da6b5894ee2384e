// Package retry runs an operation again after a delay when its error is
// worth retrying.
//
// The catalog client uses it for rate-limit rejections: only errors accepted
// by Config.RetryIf are retried, each retry waits the delay returned by the
// backoff strategy, and MaxAttempts bounds the total number of calls.
//
//	page, err := retry.DoWithResult(func() ([]Game, error) {
//		return client.query(ctx, body)
//	}, &retry.Config{
//		MaxAttempts: 2,
//		Backoff:     &retry.ConstantBackoff{Delay: time.Minute},
//		RetryIf:     isRateLimit,
//		Context:     ctx,
//	})
//
// When the attempts run out the last error is returned wrapped in
// ErrMaxAttempts, so callers can tell exhaustion from a non-retryable failure.
package retry
