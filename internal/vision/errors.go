package vision

import "strings"

// FailureCode is a coarse, user-facing classification of a provider failure.
type FailureCode string

const (
	FailureInsufficientCredit FailureCode = "insufficient_credit"
	FailureInvalidAPIKey      FailureCode = "invalid_api_key"
	FailureGeneric            FailureCode = "provider_error"
)

// Classify maps a provider failure message to a code and a user-facing
// message by substring matching. Providers do not share structured error
// codes, so this is a best-effort heuristic.
func Classify(message string) (FailureCode, string) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "credit") || strings.Contains(lower, "balance"):
		return FailureInsufficientCredit, "Insufficient API credits. Please add credits on your API provider's website."
	case strings.Contains(lower, "api_key") || strings.Contains(lower, "api key") || strings.Contains(lower, "invalid"):
		return FailureInvalidAPIKey, "Invalid API key. Please check and try again."
	default:
		return FailureGeneric, "An error occurred: " + message
	}
}
