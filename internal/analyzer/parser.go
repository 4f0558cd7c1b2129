package analyzer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/telemetry"
)

// Models often wrap their JSON in a fenced markdown block, sometimes with
// surrounding prose. Take the fenced interior when present, the whole trimmed
// reply otherwise.
var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

func extractJSON(raw string) string {
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

type singlePayload struct {
	IsOrange         bool     `json:"is_orange"`
	SweetnessGrade   *string  `json:"sweetness_grade"`
	SweetnessScore   *int     `json:"sweetness_score"`
	ConfidenceScore  *int     `json:"confidence_score"`
	BrixMin          *float64 `json:"brix_min"`
	BrixMax          *float64 `json:"brix_max"`
	AnalysisReason   *string  `json:"analysis_reason"`
	ColorAnalysis    *string  `json:"color_analysis"`
	SurfaceAnalysis  *string  `json:"surface_analysis"`
	RipenessAnalysis *string  `json:"ripeness_analysis"`
}

type batchPayload struct {
	singlePayload
	ImageIndex     *int   `json:"image_index"`
	Rank           *int   `json:"rank"`
	ComparisonNote string `json:"comparison_note"`
}

// ParseSingle maps a single-image model reply into a Result. It never fails
// outward: undecodable replies become a parse-failure result, and a reply
// whose subject check is absent or false becomes a not-an-orange result with
// any partial fields discarded.
func ParseSingle(raw string) Result {
	var payload singlePayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return parseFailureResult()
	}
	if !payload.IsOrange {
		return notOrangeResult()
	}
	return resultFromPayload(payload)
}

func resultFromPayload(p singlePayload) Result {
	r := Result{
		IsOrange:         true,
		SweetnessGrade:   p.SweetnessGrade,
		SweetnessScore:   p.SweetnessScore,
		ConfidenceScore:  p.ConfidenceScore,
		AnalysisReason:   p.AnalysisReason,
		ColorAnalysis:    p.ColorAnalysis,
		SurfaceAnalysis:  p.SurfaceAnalysis,
		RipenessAnalysis: p.RipenessAnalysis,
	}
	// Brix bounds are paired: keep both or neither.
	if p.BrixMin != nil && p.BrixMax != nil {
		r.BrixMin = p.BrixMin
		r.BrixMax = p.BrixMax
	}
	return r
}

// Missing ranks sort after every real rank.
const missingRankSentinel = 999

// ParseBatch maps a multi-image comparison reply into named items ordered
// ascending by the model-assigned rank. Elements referencing an image_index
// outside [1, len(names)] are dropped, not fatal. A reply that cannot be
// decoded as an array, or that yields no usable element at all, returns an
// error so the caller can fall back to individual analysis.
func ParseBatch(raw string, names []string) ([]Item, error) {
	var payloads []batchPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payloads); err != nil {
		return nil, fmt.Errorf("decode comparison response: %w", err)
	}

	items := make([]Item, 0, len(payloads))
	for _, p := range payloads {
		// The prompt numbers images from 1; a missing index means the
		// first image.
		idx := 1
		if p.ImageIndex != nil {
			idx = *p.ImageIndex
		}
		if idx < 1 || idx > len(names) {
			telemetry.Info("analysis.batch.index_dropped", map[string]any{
				"image_index": idx,
				"image_count": len(names),
			})
			continue
		}

		var result Result
		if p.IsOrange {
			result = resultFromPayload(p.singlePayload)
		} else {
			result = notOrangeResult()
		}
		result.Rank = p.Rank
		if note := strings.TrimSpace(p.ComparisonNote); note != "" && result.IsOrange {
			reason := ""
			if p.AnalysisReason != nil {
				reason = *p.AnalysisReason
			}
			combined := fmt.Sprintf("%s (%s)", reason, note)
			result.AnalysisReason = &combined
		}
		items = append(items, Item{Name: names[idx-1], Result: result})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("comparison response contained no usable elements")
	}

	sort.SliceStable(items, func(i, j int) bool {
		return rankOrSentinel(items[i].Result) < rankOrSentinel(items[j].Result)
	})
	return items, nil
}

func rankOrSentinel(r Result) int {
	if r.Rank == nil {
		return missingRankSentinel
	}
	return *r.Rank
}
