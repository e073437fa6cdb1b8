package screenshot

import (
	"testing"
)

func TestCapture(t *testing.T) {
	// This test would require a display, so we'll just check if the function
	// doesn't panic
	_, err := Capture()
	if err != nil {
		t.Logf("Failed to capture screenshot (expected in headless environment): %v", err)
	}
}

func TestCaptureRegionRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		region Region
	}{
		{"zero size", Region{X: 0, Y: 0, Width: 0, Height: 0}},
		{"width at minimum", Region{X: 0, Y: 0, Width: 5, Height: 100}},
		{"height at minimum", Region{X: 0, Y: 0, Width: 100, Height: 5}},
		{"negative width", Region{X: 0, Y: 0, Width: -10, Height: 100}},
		{"negative height", Region{X: 0, Y: 0, Width: 100, Height: -10}},
		{"negative origin x", Region{X: -1, Y: 0, Width: 100, Height: 100}},
		{"negative origin y", Region{X: 0, Y: -1, Width: 100, Height: 100}},
		{"beyond right edge", Region{X: 1 << 20, Y: 0, Width: 100, Height: 100}},
		{"beyond bottom edge", Region{X: 0, Y: 1 << 20, Width: 100, Height: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CaptureRegion(tt.region)
			if err == nil {
				t.Errorf("Expected error for region %+v", tt.region)
			}
		})
	}
}

func TestCaptureRegionValid(t *testing.T) {
	// May fail without a display; validation must pass either way.
	_, err := CaptureRegion(Region{X: 0, Y: 0, Width: 100, Height: 100})
	if err != nil {
		t.Logf("Failed to capture region (expected in headless environment): %v", err)
	}
}

func TestScreenSize(t *testing.T) {
	w, h := ScreenSize()
	if w <= 0 || h <= 0 {
		t.Errorf("Expected positive screen size, got %dx%d", w, h)
	}
}

func TestNewRegionFromCorners(t *testing.T) {
	want := Region{X: 10, Y: 20, Width: 100, Height: 200}

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"top-left to bottom-right", 10, 20, 110, 220},
		{"bottom-right to top-left", 110, 220, 10, 20},
		{"top-right to bottom-left", 110, 20, 10, 220},
		{"bottom-left to top-right", 10, 220, 110, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRegionFromCorners(tt.x1, tt.y1, tt.x2, tt.y2)
			if got != want {
				t.Errorf("Expected %+v, got %+v", want, got)
			}
		})
	}
}

func TestNewRegionFromCornersDegenerate(t *testing.T) {
	got := NewRegionFromCorners(50, 60, 50, 60)
	want := Region{X: 50, Y: 60, Width: 0, Height: 0}
	if got != want {
		t.Errorf("Expected %+v for identical corners, got %+v", want, got)
	}
}
