package vision

import (
	"context"
	"errors"
)

// Unconfigured is a stand-in client for when no provider credentials are
// present. Every call fails, which downstream code surfaces as a per-image
// analysis error rather than a crash.
type Unconfigured struct{}

var errUnconfigured = errors.New("vision provider not configured")

func (Unconfigured) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return "", errUnconfigured
}

func (Unconfigured) AnalyzeImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	return "", errUnconfigured
}

var _ Client = Unconfigured{}
