package llm

import (
	"context"
	"errors"
)

// Client is the analysis oracle: it turns CV text into a scored, structured
// result for one target position.
type Client interface {
	Analyze(ctx context.Context, input AnalyzeInput) (Result, error)
}

// AnalyzeInput captures the inputs needed for one CV analysis.
type AnalyzeInput struct {
	DocumentText string
	TargetID     string
}

var (
	// ErrUnavailable marks failures to reach the oracle at all: timeouts,
	// refused connections, gateway errors.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrBadResponse marks an oracle that answered with something unusable.
	ErrBadResponse = errors.New("oracle returned an invalid response")
)
