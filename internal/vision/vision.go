package vision

import "context"

// Client is the capability boundary to a multimodal vision model. Exactly two
// operations exist so provider-specific request and auth formatting stays out
// of the analysis core, and tests can substitute canned text.
type Client interface {
	// AnalyzeImage sends one image with a prompt and returns the model's
	// raw text reply.
	AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error)
	// AnalyzeImages sends several images in a single call so the model can
	// compare them against each other.
	AnalyzeImages(ctx context.Context, images [][]byte, prompt string) (string, error)
}
