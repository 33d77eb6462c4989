package probe

import (
	"time"
)

// DefaultCategory is assigned to targets configured without one.
const DefaultCategory = "uncategorized"

// ErrorKind classifies why a single strategy attempt failed. Failures are
// recorded, never raised; the orchestration loop stays total.
type ErrorKind string

// Attempt failure classes.
const (
	ErrTimeout         ErrorKind = "timeout"
	ErrTransport       ErrorKind = "transport"
	ErrProtocol        ErrorKind = "protocol"
	ErrContentTooShort ErrorKind = "content_too_short"
)

// Target is a named endpoint to probe. Immutable once constructed.
type Target struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// NewTarget builds a Target, defaulting the category when empty.
func NewTarget(name, url, category string) Target {
	if category == "" {
		category = DefaultCategory
	}
	return Target{Name: name, URL: url, Category: category}
}

// AttemptOutcome records one strategy attempt against one target.
type AttemptOutcome struct {
	Succeeded   bool      `json:"succeeded"`
	Strategy    string    `json:"strategyName"`
	ContentSize int       `json:"contentSize"`
	LatencyMs   float64   `json:"latencyMs"`
	ErrorKind   ErrorKind `json:"errorKind,omitempty"`
}

// FetchResult is the full outcome of probing one target: every attempt in
// order, plus the winning strategy when one succeeded. MethodUsed and
// ContentSize are nil when all strategies were exhausted.
type FetchResult struct {
	Target         Target           `json:"target"`
	Succeeded      bool             `json:"succeeded"`
	MethodUsed     *string          `json:"methodUsed"`
	ContentSize    *int             `json:"contentSize"`
	TotalLatencyMs float64          `json:"totalLatencyMs"`
	Attempts       []AttemptOutcome `json:"attempts"`
}

// CategoryStats counts targets and successes within one category. Derived
// during aggregation, never hand-edited.
type CategoryStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
}

// Report is the serializable summary of one batch run. Field names form the
// interop contract with prior report consumers and must not change.
type Report struct {
	Timestamp          time.Time                `json:"timestamp"`
	TotalTargets       int                      `json:"totalTargets"`
	SuccessfulTargets  int                      `json:"successfulTargets"`
	SuccessRatePercent float64                  `json:"successRatePercent"`
	TargetGoalPercent  float64                  `json:"targetGoalPercent"`
	GoalAchieved       bool                     `json:"goalAchieved"`
	ByCategory         map[string]CategoryStats `json:"byCategory"`
	Results            []FetchResult            `json:"results"`
}
