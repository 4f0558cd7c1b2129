package analyzer

import (
	"context"
	"time"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/metrics"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/telemetry"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision"
)

// Analyzer turns images into sweetness estimates by delegating visual
// judgment to a vision model and structuring its reply. Every failure mode
// is converted into result data; no path returns an error to the caller.
type Analyzer struct {
	Vision vision.Client
}

// New constructs an Analyzer over the given vision client.
func New(client vision.Client) *Analyzer {
	return &Analyzer{Vision: client}
}

// Analyze evaluates a single image. Provider failures (network, auth, quota)
// become a non-orange result carrying the failure text.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) Result {
	started := time.Now()
	raw, err := a.Vision.AnalyzeImage(ctx, image, SingleAnalysisPrompt)
	metrics.ObserveVisionCallDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		telemetry.Error("analysis.vision_call_failed", map[string]any{"error": err.Error()})
		return capabilityFailureResult(err)
	}
	return ParseSingle(raw)
}

// AnalyzeMultiple ranks a set of named images by expected sweetness. All
// images go to the model in one call so it can judge relative differences;
// if that call fails or its reply cannot be parsed, each image is analyzed
// independently and ranked locally. The returned batch is always fully
// ranked.
func (a *Analyzer) AnalyzeMultiple(ctx context.Context, images []Image) Batch {
	if len(images) == 0 {
		return Batch{Method: MethodBatchCompared}
	}
	if len(images) == 1 {
		// Nothing to compare; a singleton batch is rank 1 by definition.
		result := a.Analyze(ctx, images[0].Data)
		rank := 1
		result.Rank = &rank
		return Batch{
			Method: MethodIndividuallyRanked,
			Items:  []Item{{Name: images[0].Name, Result: result}},
		}
	}

	datas := make([][]byte, len(images))
	names := make([]string, len(images))
	for i, img := range images {
		datas[i] = img.Data
		names[i] = img.Name
	}

	started := time.Now()
	raw, err := a.Vision.AnalyzeImages(ctx, datas, MultiComparisonPrompt(len(images)))
	metrics.ObserveVisionCallDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		return a.fallbackIndividual(ctx, images, err)
	}

	items, err := ParseBatch(raw, names)
	if err != nil {
		return a.fallbackIndividual(ctx, images, err)
	}
	return Batch{Method: MethodBatchCompared, Items: items}
}
