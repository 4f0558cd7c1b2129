package usage

import "time"

// Usage is a snapshot of how many image analyses an identity has run in the
// current window. The unit is one image, so a five-image comparison consumes
// five.
type Usage struct {
	Plan     string    `json:"plan"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Remaining returns how many image analyses are left in the window.
func (u Usage) Remaining() int {
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}
