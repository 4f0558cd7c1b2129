package analyses

import "time"

// Record is the stored outcome of one analysis request. The per-image
// results are snapshotted at completion time; the analyzer itself holds no
// state between requests.
type Record struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Method          string        `json:"method"`
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	AnalysisVersion string        `json:"analysisVersion"`
	ImageCount      int           `json:"imageCount"`
	Results         []ImageResult `json:"results"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ImageResult is the stored snapshot of a single image's outcome, ordered by
// rank within Record.Results.
type ImageResult struct {
	Name             string   `json:"name"`
	StorageKey       string   `json:"storageKey,omitempty"`
	IsOrange         bool     `json:"isOrange"`
	SweetnessGrade   *string  `json:"sweetnessGrade,omitempty"`
	BrixMin          *float64 `json:"brixMin,omitempty"`
	BrixMax          *float64 `json:"brixMax,omitempty"`
	BrixRange        *string  `json:"brixRange,omitempty"`
	SweetnessScore   *int     `json:"sweetnessScore,omitempty"`
	ConfidenceScore  *int     `json:"confidenceScore,omitempty"`
	Rank             *int     `json:"rank,omitempty"`
	AnalysisReason   *string  `json:"analysisReason,omitempty"`
	ColorAnalysis    *string  `json:"colorAnalysis,omitempty"`
	SurfaceAnalysis  *string  `json:"surfaceAnalysis,omitempty"`
	RipenessAnalysis *string  `json:"ripenessAnalysis,omitempty"`
	ErrorMessage     *string  `json:"errorMessage,omitempty"`
	ErrorCode        string   `json:"errorCode,omitempty"`
}
