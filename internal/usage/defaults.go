package usage

import "time"

// Free-tier quota: guests get a weekly allowance of analyzed images.
const (
	defaultPlan   = "Free"
	defaultLimit  = 30
	defaultWindow = 7 * 24 * time.Hour
)

func defaultUsage() Usage {
	return Usage{
		Plan:     defaultPlan,
		Limit:    defaultLimit,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(defaultWindow),
	}
}
