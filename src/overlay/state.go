package overlay

import (
	"pxsnap/src/screenshot"
)

// Phase is the position of a selection within its lifecycle.
type Phase int

const (
	// PhaseArmed means the overlay is up and waiting for a button press.
	PhaseArmed Phase = iota
	// PhaseDragging means the button is down and the rectangle is growing.
	PhaseDragging
	// PhaseSelected, PhaseTooSmall and PhaseCancelled are terminal.
	PhaseSelected
	PhaseTooSmall
	PhaseCancelled
)

// State is an immutable snapshot of a selection in progress. Transitions
// return a new value and ignore events that do not apply to the current
// phase, so the window procedure can feed raw input without ordering checks.
type State struct {
	phase          Phase
	startX, startY int
	lastX, lastY   int
}

// NewState returns a selection waiting for the first button press.
func NewState() State {
	return State{phase: PhaseArmed}
}

// Phase returns the current lifecycle phase.
func (s State) Phase() Phase { return s.phase }

// PointerDown starts a drag. Only meaningful while armed.
func (s State) PointerDown(x, y int) State {
	if s.phase != PhaseArmed {
		return s
	}
	s.phase = PhaseDragging
	s.startX, s.startY = x, y
	s.lastX, s.lastY = x, y
	return s
}

// PointerMove extends the drag rectangle. Only meaningful while dragging.
func (s State) PointerMove(x, y int) State {
	if s.phase != PhaseDragging {
		return s
	}
	s.lastX, s.lastY = x, y
	return s
}

// PointerUp ends the drag. Both dimensions must exceed the minimum span for
// the selection to count, otherwise the result is too small.
func (s State) PointerUp(x, y int) State {
	if s.phase != PhaseDragging {
		return s
	}
	s.lastX, s.lastY = x, y
	r := s.Rect()
	if r.Width > screenshot.MinSelectionSpan && r.Height > screenshot.MinSelectionSpan {
		s.phase = PhaseSelected
	} else {
		s.phase = PhaseTooSmall
	}
	return s
}

// Escape cancels the selection from any non-terminal phase.
func (s State) Escape() State {
	if s.Done() {
		return s
	}
	s.phase = PhaseCancelled
	return s
}

// Rect returns the normalized rectangle spanned so far.
func (s State) Rect() screenshot.Region {
	return screenshot.NewRegionFromCorners(s.startX, s.startY, s.lastX, s.lastY)
}

// Done reports whether the selection reached a terminal phase.
func (s State) Done() bool {
	switch s.phase {
	case PhaseSelected, PhaseTooSmall, PhaseCancelled:
		return true
	}
	return false
}

// Outcome maps a terminal phase to its selection outcome. Non-terminal
// phases report cancelled.
func (s State) Outcome() Outcome {
	switch s.phase {
	case PhaseSelected:
		return OutcomeSelected
	case PhaseTooSmall:
		return OutcomeTooSmall
	}
	return OutcomeCancelled
}
