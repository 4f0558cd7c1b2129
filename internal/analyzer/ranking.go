package analyzer

import (
	"context"
	"sort"
	"sync"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/metrics"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/telemetry"
)

// fallbackIndividual analyzes every image independently and computes a local
// ranking. It runs when the batch comparison call fails or its reply cannot
// be parsed. The cause is logged for diagnostics only; it never appears in
// the returned batch.
func (a *Analyzer) fallbackIndividual(ctx context.Context, images []Image, cause error) Batch {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	telemetry.Info("analysis.fallback", map[string]any{
		"image_count": len(images),
		"reason":      reason,
	})
	metrics.IncAnalysisFallback()

	// The per-image calls are independent; fan out and collect by index so
	// the final ordering depends only on the sort key, never on completion
	// order.
	results := make([]Result, len(images))
	var wg sync.WaitGroup
	for i := range images {
		wg.Add(1)
		go func(i int, data []byte) {
			defer wg.Done()
			results[i] = a.Analyze(ctx, data)
		}(i, images[i].Data)
	}
	wg.Wait()

	items := make([]Item, len(images))
	for i := range images {
		items[i] = Item{Name: images[i].Name, Result: results[i]}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return fallbackSortKey(items[i].Result) > fallbackSortKey(items[j].Result)
	})

	for i := range items {
		rank := i + 1
		items[i].Result.Rank = &rank
	}
	return Batch{Method: MethodIndividuallyRanked, Items: items}
}

// fallbackSortKey orders results best-first: non-oranges sort below any real
// orange, and an orange without score information ties with a worst-case
// orange rather than being discarded.
func fallbackSortKey(r Result) float64 {
	if !r.IsOrange {
		return -1
	}
	if r.SweetnessScore != nil {
		return float64(*r.SweetnessScore)
	}
	if r.BrixMax != nil {
		return *r.BrixMax
	}
	return 0
}
