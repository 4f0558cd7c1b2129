package analyzer

import "strconv"

// Sweetness grades as they appear on the wire. The parser passes any other
// string the model returns through unvalidated; display code decides how to
// present unknown grades.
const (
	GradeHigh   = "High"
	GradeMedium = "Medium"
	GradeLow    = "Low"
)

// Result is the typed outcome of analyzing one image. A value is built once
// per image per request and is never stored; only Rank is assigned after
// construction, by the ranking step of a multi-image analysis.
//
// If IsOrange is false, every grade/score/analysis field is nil and
// ErrorMessage is set.
type Result struct {
	IsOrange         bool
	SweetnessGrade   *string
	BrixMin          *float64
	BrixMax          *float64
	SweetnessScore   *int
	ConfidenceScore  *int
	Rank             *int
	AnalysisReason   *string
	ColorAnalysis    *string
	SurfaceAnalysis  *string
	RipenessAnalysis *string
	ErrorMessage     *string
}

// BrixRange returns the display form "{min}~{max}" when both bounds are
// present, nil otherwise. The bounds are paired: one without the other is
// treated as absent.
func (r Result) BrixRange() *string {
	if r.BrixMin == nil || r.BrixMax == nil {
		return nil
	}
	s := formatBrix(*r.BrixMin) + "~" + formatBrix(*r.BrixMax)
	return &s
}

func formatBrix(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Method records which path produced a batch.
type Method string

const (
	// MethodBatchCompared means the model ranked all images in one
	// comparison call.
	MethodBatchCompared Method = "batch_compared"
	// MethodIndividuallyRanked means each image was analyzed independently
	// and ranks were computed locally.
	MethodIndividuallyRanked Method = "individually_ranked"
)

// Image pairs raw image bytes with a caller-chosen name used to correlate
// results back to inputs.
type Image struct {
	Name string
	Data []byte
}

// Item is one named result within a batch.
type Item struct {
	Name   string
	Result Result
}

// Batch is the ordered outcome of a multi-image analysis. Position conveys
// rank: index 0 is rank 1.
type Batch struct {
	Method Method
	Items  []Item
}

// User-facing messages for the two local failure modes of single-image
// parsing. These are fixed strings, not wrapped provider errors.
const (
	notOrangeMessage    = "This is not an orange image. Please upload an orange photo."
	parseFailureMessage = "Could not parse analysis result. Please try again."
)

const capabilityFailurePrefix = "Error during analysis: "

// IsCapabilityFailure reports whether a result's error came from the vision
// provider call itself rather than from parsing or the subject check.
func IsCapabilityFailure(r Result) bool {
	return r.ErrorMessage != nil && len(*r.ErrorMessage) > len(capabilityFailurePrefix) &&
		(*r.ErrorMessage)[:len(capabilityFailurePrefix)] == capabilityFailurePrefix
}

// CapabilityFailureCause returns the provider error text of a capability
// failure result, without the user-facing prefix. ok is false for any other
// kind of result.
func CapabilityFailureCause(r Result) (cause string, ok bool) {
	if !IsCapabilityFailure(r) {
		return "", false
	}
	return (*r.ErrorMessage)[len(capabilityFailurePrefix):], true
}

func notOrangeResult() Result {
	msg := notOrangeMessage
	return Result{IsOrange: false, ErrorMessage: &msg}
}

func parseFailureResult() Result {
	msg := parseFailureMessage
	return Result{IsOrange: false, ErrorMessage: &msg}
}

func capabilityFailureResult(err error) Result {
	msg := capabilityFailurePrefix + err.Error()
	return Result{IsOrange: false, ErrorMessage: &msg}
}
