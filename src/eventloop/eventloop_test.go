package eventloop

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pxsnap/src/config"
	"pxsnap/src/overlay"
	"pxsnap/src/screenshot"
	"pxsnap/src/session"
)

// fakeFrontend records every UI call the loop makes.
type fakeFrontend struct {
	mu         sync.Mutex
	statuses   []string
	errTitles  []string
	results    []session.Result
	selections []bool
}

func (f *fakeFrontend) ShowStatus(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, text)
}

func (f *fakeFrontend) ShowResult(res session.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
}

func (f *fakeFrontend) ShowError(title string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errTitles = append(f.errTitles, title)
}

func (f *fakeFrontend) SetSelectionActive(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selections = append(f.selections, active)
}

func (f *fakeFrontend) statusSeen(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.statuses {
		if s == text {
			return true
		}
	}
	return false
}

func (f *fakeFrontend) errorSeen(title string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.errTitles {
		if s == title {
			return true
		}
	}
	return false
}

func (f *fakeFrontend) resultCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

func (f *fakeFrontend) lastResult() (session.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return session.Result{}, false
	}
	return f.results[len(f.results)-1], true
}

func (f *fakeFrontend) selectionLog() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.selections))
	copy(out, f.selections)
	return out
}

// fakeSelector returns a scripted selection. When block is non-nil, Select
// waits for it to close first, holding the loop goroutine like a real
// overlay would.
type fakeSelector struct {
	mu      sync.Mutex
	region  screenshot.Region
	outcome overlay.Outcome
	err     error
	calls   int
	block   chan struct{}
}

func (s *fakeSelector) Select(ctx context.Context) (screenshot.Region, overlay.Outcome, error) {
	s.mu.Lock()
	s.calls++
	region, outcome, err := s.region, s.outcome, s.err
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return region, outcome, err
}

func (s *fakeSelector) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// saveRecorder stands in for the disk writer.
type saveRecorder struct {
	mu     sync.Mutex
	images []image.Image
	path   string
	err    error
}

func (r *saveRecorder) save(img image.Image, settings config.Settings) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, img)
	return r.path, r.err
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.images)
}

func (r *saveRecorder) last() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.images) == 0 {
		return nil
	}
	return r.images[len(r.images)-1]
}

func testImage(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", desc)
}

func newTestLoop(t *testing.T, cfg *config.Config, frontend *fakeFrontend) (*Loop, *saveRecorder) {
	t.Helper()
	store := config.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	l := New(cfg, store, frontend)
	rec := &saveRecorder{path: "/tmp/pxsnap-test/screenshot_20240101_120000.png"}
	l.saveImage = rec.save
	return l, rec
}

func startLoop(t *testing.T, l *Loop) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("Loop did not stop after cancel")
		}
	})
	return cancel
}

func TestFullscreenCaptureSavesAndReports(t *testing.T) {
	frontend := &fakeFrontend{}
	l, rec := newTestLoop(t, &config.Config{}, frontend)
	captured := testImage(64, 48)
	l.captureScreen = func() (*image.RGBA, error) { return captured, nil }

	startLoop(t, l)
	l.Post(RequestFullscreen)

	waitFor(t, 2*time.Second, "capture result", func() bool { return frontend.resultCount() == 1 })
	res, _ := frontend.lastResult()
	if res.Path != rec.path {
		t.Errorf("Expected result path %q, got %q", rec.path, res.Path)
	}
	if res.Image != captured {
		t.Errorf("Expected unstamped capture to flow through unchanged")
	}
	if rec.last() != image.Image(captured) {
		t.Errorf("Expected the captured image to be saved")
	}

	// The busy flag must clear after a success; a second capture proves it.
	l.Post(RequestFullscreen)
	waitFor(t, 2*time.Second, "second capture result", func() bool { return frontend.resultCount() == 2 })
}

func TestRegionCaptureUsesSelectedRegion(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{}, frontend)
	want := screenshot.Region{X: 10, Y: 20, Width: 300, Height: 200}
	l.selector = &fakeSelector{region: want, outcome: overlay.OutcomeSelected}

	var mu sync.Mutex
	var got []screenshot.Region
	l.captureRegion = func(r screenshot.Region) (*image.RGBA, error) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
		return testImage(r.Width, r.Height), nil
	}

	startLoop(t, l)
	l.Post(RequestRegion)

	waitFor(t, 2*time.Second, "region capture result", func() bool { return frontend.resultCount() == 1 })
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != want {
		t.Errorf("Expected capture of %+v, got %+v", want, got)
	}
	log := frontend.selectionLog()
	if len(log) != 2 || !log[0] || log[1] {
		t.Errorf("Expected selection active transitions [true false], got %v", log)
	}
}

func TestRegionSelectionCancelled(t *testing.T) {
	frontend := &fakeFrontend{}
	l, rec := newTestLoop(t, &config.Config{}, frontend)
	l.selector = &fakeSelector{outcome: overlay.OutcomeCancelled}
	l.captureRegion = func(r screenshot.Region) (*image.RGBA, error) {
		t.Errorf("Capture must not run for a cancelled selection")
		return testImage(1, 1), nil
	}

	startLoop(t, l)
	l.Post(RequestRegion)

	waitFor(t, 2*time.Second, "cancel status", func() bool {
		return frontend.statusSeen("Region selection cancelled")
	})
	if rec.count() != 0 {
		t.Errorf("Expected no save after cancel, got %d", rec.count())
	}
	if frontend.resultCount() != 0 {
		t.Errorf("Expected no result after cancel, got %d", frontend.resultCount())
	}
	log := frontend.selectionLog()
	if len(log) != 2 || !log[0] || log[1] {
		t.Errorf("Expected overlay dismissed after cancel, transitions %v", log)
	}
}

func TestRegionSelectionTooSmall(t *testing.T) {
	frontend := &fakeFrontend{}
	l, rec := newTestLoop(t, &config.Config{}, frontend)
	l.selector = &fakeSelector{outcome: overlay.OutcomeTooSmall}

	startLoop(t, l)
	l.Post(RequestRegion)

	waitFor(t, 2*time.Second, "too-small status", func() bool {
		return frontend.statusSeen("Region too small - please select a larger area")
	})
	if rec.count() != 0 {
		t.Errorf("Expected no save for a too-small selection, got %d", rec.count())
	}
}

func TestRegionSelectionError(t *testing.T) {
	frontend := &fakeFrontend{}
	l, rec := newTestLoop(t, &config.Config{}, frontend)
	l.selector = &fakeSelector{err: errors.New("overlay window creation failed")}

	startLoop(t, l)
	l.Post(RequestRegion)

	waitFor(t, 2*time.Second, "selection error dialog", func() bool {
		return frontend.errorSeen("Selection Failed")
	})
	if rec.count() != 0 {
		t.Errorf("Expected no save after a selection error, got %d", rec.count())
	}
}

func TestBusyRejectsConcurrentRequest(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{}, frontend)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	l.captureScreen = func() (*image.RGBA, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return testImage(8, 8), nil
	}

	startLoop(t, l)
	l.Post(RequestFullscreen)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("First capture never started")
	}

	l.Post(RequestFullscreen)
	waitFor(t, 2*time.Second, "busy status", func() bool {
		return frontend.statusSeen("Capture already in progress")
	})

	close(release)
	waitFor(t, 2*time.Second, "first capture result", func() bool { return frontend.resultCount() == 1 })
}

func TestCaptureErrorShowsFailure(t *testing.T) {
	frontend := &fakeFrontend{}
	l, rec := newTestLoop(t, &config.Config{}, frontend)
	l.captureScreen = func() (*image.RGBA, error) {
		return nil, errors.New("display handle lost")
	}

	startLoop(t, l)
	l.Post(RequestFullscreen)

	waitFor(t, 2*time.Second, "failure status", func() bool {
		return frontend.statusSeen("Capture failed")
	})
	if !frontend.errorSeen("Capture Failed") {
		t.Errorf("Expected an error dialog for a failed capture")
	}
	if frontend.resultCount() != 0 {
		t.Errorf("Expected no result after capture error, got %d", frontend.resultCount())
	}
	if rec.count() != 0 {
		t.Errorf("Expected no save after capture error, got %d", rec.count())
	}
}

func TestSaveErrorShowsFailure(t *testing.T) {
	frontend := &fakeFrontend{}
	l, rec := newTestLoop(t, &config.Config{}, frontend)
	rec.err = errors.New("disk full")
	l.captureScreen = func() (*image.RGBA, error) { return testImage(8, 8), nil }

	startLoop(t, l)
	l.Post(RequestFullscreen)

	waitFor(t, 2*time.Second, "failure status", func() bool {
		return frontend.statusSeen("Capture failed")
	})
	if frontend.resultCount() != 0 {
		t.Errorf("Expected no result after save error, got %d", frontend.resultCount())
	}
}

func TestClipboardFailureStillReportsSave(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{CopyToClipboard: true}, frontend)
	l.captureScreen = func() (*image.RGBA, error) { return testImage(8, 8), nil }
	l.copyImage = func(img image.Image) error { return errors.New("clipboard unavailable") }

	startLoop(t, l)
	l.Post(RequestFullscreen)

	waitFor(t, 2*time.Second, "clipboard warning", func() bool {
		return frontend.statusSeen("Screenshot saved, but clipboard copy failed")
	})
	if frontend.resultCount() != 1 {
		t.Errorf("Expected the saved result to still be shown, got %d results", frontend.resultCount())
	}
}

func TestStampAppliedWhenConfigured(t *testing.T) {
	frontend := &fakeFrontend{}
	cfg := &config.Config{StampTimestamp: true, StampPosition: "bottom-right"}
	l, rec := newTestLoop(t, cfg, frontend)
	captured := testImage(200, 100)
	l.captureScreen = func() (*image.RGBA, error) { return captured, nil }

	startLoop(t, l)
	l.Post(RequestFullscreen)

	waitFor(t, 2*time.Second, "capture result", func() bool { return frontend.resultCount() == 1 })
	if rec.last() == image.Image(captured) {
		t.Errorf("Expected the stamped copy to be saved, not the raw capture")
	}
}

func TestStaleRequestsDroppedDuringSelection(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{}, frontend)
	block := make(chan struct{})
	sel := &fakeSelector{outcome: overlay.OutcomeCancelled, block: block}
	l.selector = sel

	var captures sync.WaitGroup
	var mu sync.Mutex
	captureCalls := 0
	l.captureScreen = func() (*image.RGBA, error) {
		mu.Lock()
		captureCalls++
		mu.Unlock()
		captures.Done()
		return testImage(8, 8), nil
	}

	startLoop(t, l)
	l.Post(RequestRegion)
	waitFor(t, 2*time.Second, "selector start", func() bool { return sel.callCount() == 1 })

	// These queue up while the overlay holds the screen; they must be
	// discarded, not replayed.
	l.Post(RequestFullscreen)
	l.Post(RequestFullscreen)
	close(block)

	waitFor(t, 2*time.Second, "cancel status", func() bool {
		return frontend.statusSeen("Region selection cancelled")
	})

	// A fresh trigger still works; only the stale ones were dropped.
	captures.Add(1)
	l.Post(RequestFullscreen)
	waitFor(t, 2*time.Second, "post-cancel capture", func() bool { return frontend.resultCount() == 1 })
	captures.Wait()

	mu.Lock()
	defer mu.Unlock()
	if captureCalls != 1 {
		t.Errorf("Expected 1 capture after the drained selection, got %d", captureCalls)
	}
	if sel.callCount() != 1 {
		t.Errorf("Expected selector to run once, got %d", sel.callCount())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{}, frontend)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPostDropsWhenQueueFull(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{}, frontend)

	// No loop is running, so the queue fills and extra posts must not block.
	for i := 0; i < 10; i++ {
		l.Post(RequestFullscreen)
	}
	if n := len(l.requests); n != cap(l.requests) {
		t.Errorf("Expected a full queue of %d, got %d", cap(l.requests), n)
	}
}

func TestCaptureDeadlineFromConfig(t *testing.T) {
	frontend := &fakeFrontend{}
	l, _ := newTestLoop(t, &config.Config{CaptureDeadlineSec: 45}, frontend)
	if l.Deadline() != 45*time.Second {
		t.Errorf("Expected 45s deadline, got %v", l.Deadline())
	}

	l2, _ := newTestLoop(t, &config.Config{}, frontend)
	if l2.Deadline() != 20*time.Second {
		t.Errorf("Expected default 20s deadline, got %v", l2.Deadline())
	}
}
