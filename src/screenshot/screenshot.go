package screenshot

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// MinSelectionSpan is the smallest selectable region side in pixels. Both
// dimensions must exceed it for a region capture to proceed.
const MinSelectionSpan = 5

// Region represents a screen region to capture, in primary display
// coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewRegionFromCorners builds a normalized region from two opposite corners
// in any order. The result has the top-left origin and non-negative
// dimensions.
func NewRegionFromCorners(x1, y1, x2, y2 int) Region {
	x := x1
	if x2 < x1 {
		x = x2
	}
	y := y1
	if y2 < y1 {
		y = y2
	}
	w := x1 - x2
	if w < 0 {
		w = -w
	}
	h := y1 - y2
	if h < 0 {
		h = -h
	}
	return Region{X: x, Y: y, Width: w, Height: h}
}

// Capture captures the full primary display.
func Capture() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

// CaptureRegion captures a specific region of the primary display. The region
// is validated before any pixels are read: the origin must be non-negative,
// both dimensions must exceed MinSelectionSpan, and the region must lie
// within the screen bounds.
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Width <= MinSelectionSpan || region.Height <= MinSelectionSpan {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d (both must exceed %dpx)",
			region.Width, region.Height, MinSelectionSpan)
	}
	if region.X < 0 || region.Y < 0 {
		return nil, fmt.Errorf("region origin out of bounds: x=%d, y=%d", region.X, region.Y)
	}
	screenW, screenH := ScreenSize()
	if region.X+region.Width > screenW || region.Y+region.Height > screenH {
		return nil, fmt.Errorf("region exceeds screen bounds %dx%d: right=%d, bottom=%d",
			screenW, screenH, region.X+region.Width, region.Y+region.Height)
	}

	bounds := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// ScreenSize returns the primary display resolution. When no display can be
// queried it falls back to 1920x1080 so validation still has bounds to work
// against.
func ScreenSize() (int, int) {
	if screenshot.NumActiveDisplays() == 0 {
		return 1920, 1080
	}
	bounds := screenshot.GetDisplayBounds(0)
	return bounds.Dx(), bounds.Dy()
}
