package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// CaptureFunc produces the raw frame, either the full screen or a bound
// region.
type CaptureFunc func() (*image.RGBA, error)

// StampFunc decorates a captured frame, returning the image to persist.
type StampFunc func(*image.RGBA) *image.RGBA

// SaveFunc persists the frame and returns the absolute file path.
type SaveFunc func(image.Image) (string, error)

type Options struct {
	Deadline time.Duration
	Capture  CaptureFunc
	Stamp    StampFunc
	Save     SaveFunc
}

type Result struct {
	Path  string
	Image *image.RGBA
}

// Execute runs one capture session: capture, optional stamp, save. The whole
// pipeline runs under a deadline so a wedged capture or a dead network share
// cannot hang the caller forever.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Capture == nil {
		return Result{}, errors.New("Capture is required")
	}
	if opts.Save == nil {
		return Result{}, errors.New("Save is required")
	}

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = 20 * time.Second
	}

	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	return runWithContext(jobCtx, opts)
}

func runWithContext(ctx context.Context, opts Options) (Result, error) {
	resCh := make(chan struct {
		res Result
		err error
	}, 1)

	go func() {
		res, err := run(opts)
		resCh <- struct {
			res Result
			err error
		}{res: res, err: err}
	}()

	select {
	case r := <-resCh:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func run(opts Options) (Result, error) {
	img, err := opts.Capture()
	if err != nil {
		return Result{}, fmt.Errorf("capture failed: %w", err)
	}

	if opts.Stamp != nil {
		img = opts.Stamp(img)
	}

	path, err := opts.Save(img)
	if err != nil {
		return Result{}, fmt.Errorf("save failed: %w", err)
	}

	return Result{Path: path, Image: img}, nil
}
