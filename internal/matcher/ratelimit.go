package matcher

import (
	"context"

	"golang.org/x/time/rate"
)

// tokenBucket wraps golang.org/x/time/rate with the semantics distilled
// spec §4.6's "Rate limiting" section calls for: capacity
// maxAPICallsPerMinute, continuous refill of capacity/60 tokens per
// second, and acquire() that consumes one token per call — one branch
// lookup, keyword search or semantic call, whichever the caller is about
// to make.
type tokenBucket struct {
	limiter *rate.Limiter
}

func newTokenBucket(maxCallsPerMinute int) *tokenBucket {
	if maxCallsPerMinute <= 0 {
		maxCallsPerMinute = DefaultConfig().MaxAPICallsPerMinute
	}
	refillPerSecond := rate.Limit(float64(maxCallsPerMinute) / 60.0)
	return &tokenBucket{limiter: rate.NewLimiter(refillPerSecond, maxCallsPerMinute)}
}

// acquire blocks until one token is available.
func (b *tokenBucket) acquire(ctx context.Context) error {
	return b.limiter.WaitN(ctx, 1)
}
