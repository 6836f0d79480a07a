package core

import "time"

// RateLimitState captures per-identity request counting within a fixed window.
type RateLimitState struct {
	Count        int        `json:"count"`
	WindowStart  time.Time  `json:"window_start"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// FailPolicy selects the behavior when the limiter itself fails.
// Mutating endpoints fail closed; read-only content delivery fails open.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	FailClosed
)

func (p FailPolicy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}
