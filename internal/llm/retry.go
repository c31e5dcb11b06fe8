package llm

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/kinderpath/internal/retry"
)

// RetryProvider retries transient failures with the shared backoff
// policy. A schema mismatch is retried once; rate limits honor RetryAfter.
type RetryProvider struct {
	inner  Provider
	policy retry.Policy
}

func WithRetry(p Provider, policy retry.Policy) Provider {
	return &RetryProvider{inner: p, policy: policy}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidRetried := false
	policy := r.policy
	policy.Retryable = func(err error) bool {
		var inv *ErrInvalidResponse
		if errors.As(err, &inv) {
			if invalidRetried {
				return false
			}
			invalidRetried = true
			return true
		}
		return retryable(err)
	}
	policy.Wait = func(err error) time.Duration {
		var rl *ErrRateLimit
		if errors.As(err, &rl) {
			return rl.RetryAfter
		}
		return 0
	}
	return retry.Value(ctx, policy, func(ctx context.Context) (*Response, error) {
		return r.inner.Generate(ctx, req)
	})
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }
