package overlay

import (
	"context"

	"pxsnap/src/screenshot"
)

// Outcome describes how a region selection ended.
type Outcome int

const (
	OutcomeSelected Outcome = iota
	OutcomeCancelled
	OutcomeTooSmall
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeTooSmall:
		return "too small"
	}
	return "unknown"
}

// Selector defines a synchronous region-selection API owned by the event loop.
// The call is blocking and MUST be invoked only from the single event-loop
// goroutine. The overlay is always dismissed by the time Select returns,
// whatever the outcome. The region is only meaningful for OutcomeSelected.
type Selector interface {
	Select(ctx context.Context) (screenshot.Region, Outcome, error)
}

// NewSelector returns the platform implementation (Windows in this project).
// Implementation is provided in a platform-specific file.
func NewSelector() Selector {
	return newPlatformSelector()
}
