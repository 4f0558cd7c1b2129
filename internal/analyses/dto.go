package analyses

import "time"

// RecordResponse is the outward-facing representation of an analysis.
type RecordResponse struct {
	AnalysisID      string          `json:"analysisId"`
	Method          string          `json:"method"`
	Provider        string          `json:"provider"`
	Model           string          `json:"model"`
	AnalysisVersion string          `json:"analysisVersion"`
	ImageCount      int             `json:"imageCount"`
	Results         []ResultPayload `json:"results"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ResultPayload is the outward-facing form of one image's result.
type ResultPayload struct {
	Name             string   `json:"name"`
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

func toResponse(record Record) RecordResponse {
	results := make([]ResultPayload, 0, len(record.Results))
	for _, ir := range record.Results {
		results = append(results, ResultPayload{
			Name:             ir.Name,
			IsOrange:         ir.IsOrange,
			SweetnessGrade:   ir.SweetnessGrade,
			BrixMin:          ir.BrixMin,
			BrixMax:          ir.BrixMax,
			BrixRange:        ir.BrixRange,
			SweetnessScore:   ir.SweetnessScore,
			ConfidenceScore:  ir.ConfidenceScore,
			Rank:             ir.Rank,
			AnalysisReason:   ir.AnalysisReason,
			ColorAnalysis:    ir.ColorAnalysis,
			SurfaceAnalysis:  ir.SurfaceAnalysis,
			RipenessAnalysis: ir.RipenessAnalysis,
			ErrorMessage:     ir.ErrorMessage,
			ErrorCode:        ir.ErrorCode,
		})
	}
	return RecordResponse{
		AnalysisID:      record.ID,
		Method:          record.Method,
		Provider:        record.Provider,
		Model:           record.Model,
		AnalysisVersion: record.AnalysisVersion,
		ImageCount:      record.ImageCount,
		Results:         results,
		CreatedAt:       record.CreatedAt,
	}
}
