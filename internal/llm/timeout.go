package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single oracle call when none is configured.
const DefaultTimeout = 60 * time.Second

// TimeoutClient bounds every call to Base. A call that runs out of time is
// reported as ErrUnavailable.
type TimeoutClient struct {
	Base    Client
	Timeout time.Duration
}

// WithTimeout wraps c so each Analyze call is bounded by d.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		d = DefaultTimeout
	}
	return TimeoutClient{Base: c, Timeout: d}
}

// Analyze implements Client.
func (t TimeoutClient) Analyze(ctx context.Context, input AnalyzeInput) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	res, err := t.Base.Analyze(callCtx, input)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrUnavailable) {
			return Result{}, fmt.Errorf("%w: timed out after %s: %v", ErrUnavailable, t.Timeout, err)
		}
		return Result{}, err
	}
	return res, nil
}
