package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned, wrapped in ErrDeliveryFailed, when a send finds
// the rate budget spent. The notification is dropped rather than queued.
var ErrRateLimited = errors.New("notification rate limit exceeded")

// DefaultSendTimeout bounds one Send including its retries.
const DefaultSendTimeout = 2 * time.Second

// RetryingSink wraps a sink with a send rate limit, a bounded retry and an
// overall deadline, so a slow or saturated sink costs a caller at most the
// timeout. The final error wraps ErrDeliveryFailed.
type RetryingSink struct {
	next    Sink
	retries int
	backoff time.Duration
	timeout time.Duration
	limiter *rate.Limiter
}

type RetryOption func(*RetryingSink)

func WithBackoff(d time.Duration) RetryOption {
	return func(s *RetryingSink) { s.backoff = d }
}

// WithSendTimeout bounds each Send. A non-positive value removes the bound.
func WithSendTimeout(d time.Duration) RetryOption {
	return func(s *RetryingSink) { s.timeout = d }
}

// WithRateLimit caps sends per second. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64) RetryOption {
	return func(s *RetryingSink) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func NewRetryingSink(next Sink, retries int, opts ...RetryOption) *RetryingSink {
	if retries < 0 {
		retries = 0
	}
	s := &RetryingSink{
		next:    next,
		retries: retries,
		backoff: 200 * time.Millisecond,
		timeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RetryingSink) Send(ctx context.Context, n Notification) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 && s.backoff > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v (last error: %v)", ErrDeliveryFailed, ctx.Err(), lastErr)
			case <-time.After(s.backoff):
			}
		}
		if s.limiter != nil && !s.limiter.Allow() {
			return fmt.Errorf("%w: %w", ErrDeliveryFailed, ErrRateLimited)
		}
		if lastErr = s.next.Send(ctx, n); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrDeliveryFailed, s.retries+1, lastErr)
}
