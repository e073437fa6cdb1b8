//go:build !windows

package overlay

import (
	"context"
	"fmt"

	"pxsnap/src/screenshot"
)

type stubSelector struct{}

func newPlatformSelector() Selector { return &stubSelector{} }

func (s *stubSelector) Select(ctx context.Context) (screenshot.Region, Outcome, error) {
	return screenshot.Region{}, OutcomeCancelled, fmt.Errorf("interactive region selection not implemented for this platform")
}
