package probe

import (
	"context"
	"time"
)

// Strategy is one concrete technique for retrieving a target's content.
// Attempt issues at most one outbound request and reports the outcome; it
// must capture every failure in the returned AttemptOutcome rather than
// propagating it. The caller bounds each attempt through ctx.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, url string) AttemptOutcome
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
