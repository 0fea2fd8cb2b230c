package main

// Analyze local CV files against a target without running the API:
//   go run ./cmd/analyze-local batch <targetId> cv1.pdf cv2.docx
//   go run ./cmd/analyze-local single <targetId> cv.pdf

import (
	"context"
	"fmt"
	"os"

	"recruit-analysis/internal/bootstrap"
	"recruit-analysis/internal/shared/config"
)

func main() {
	build := func(ctx context.Context) (*bootstrap.App, error) {
		return bootstrap.Build(ctx, config.Load())
	}
	if err := newRootCmd(build).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "analyze-local:", err)
		os.Exit(1)
	}
}
