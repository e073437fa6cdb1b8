package eventloop

import (
	"context"
	"image"
	"log"
	"time"

	"pxsnap/src/clipboard"
	"pxsnap/src/config"
	"pxsnap/src/hotkey"
	"pxsnap/src/overlay"
	"pxsnap/src/screenshot"
	"pxsnap/src/session"
	"pxsnap/src/tray"
	"pxsnap/src/worker"
)

// RequestKind selects what a capture request grabs.
type RequestKind int

const (
	RequestFullscreen RequestKind = iota
	RequestRegion
)

func (k RequestKind) String() string {
	if k == RequestRegion {
		return "region"
	}
	return "fullscreen"
}

// Request is one capture trigger, whatever its source (hotkey, button, tray).
type Request struct {
	Kind RequestKind
}

// Frontend is the loop's view of the UI shell. Implementations must be safe
// to call from the loop goroutine; marshaling onto the UI thread is their
// job.
type Frontend interface {
	ShowStatus(text string)
	ShowResult(res session.Result)
	ShowError(title string, err error)
	SetSelectionActive(active bool)
}

// Loop is the single-goroutine coordinator between triggers, the region
// selector, and the capture workers. All requests funnel through one queue
// so at most one overlay and one capture session exist at a time.
type Loop struct {
	cfg      *config.Config
	store    *config.Store
	frontend Frontend
	selector overlay.Selector
	pool     *worker.Pool

	busy           bool
	results        chan result
	requests       chan Request
	defaultTooltip string
	deadline       time.Duration

	captureScreen func() (*image.RGBA, error)
	captureRegion func(screenshot.Region) (*image.RGBA, error)
	saveImage     func(image.Image, config.Settings) (string, error)
	copyImage     func(image.Image) error
}

type result struct {
	res    session.Result
	err    error
	target resultTarget
	cancel context.CancelFunc
}

type resultTarget interface {
	OnSuccess(res session.Result) error
	OnProcessError(err error)
	OnDeliveryError(res session.Result, err error)
	Close()
}

// uiResultTarget routes results to the UI shell. Delivery means the optional
// clipboard copy; a failed copy is reported as a warning, not a failure,
// because the file is already on disk.
type uiResultTarget struct {
	frontend Frontend
	copy     func(image.Image) error
}

func (t uiResultTarget) OnSuccess(res session.Result) error {
	if t.copy != nil {
		return t.copy(res.Image)
	}
	return nil
}

func (t uiResultTarget) OnProcessError(err error) {
	t.frontend.ShowStatus("Capture failed")
	t.frontend.ShowError("Capture Failed", err)
}

func (t uiResultTarget) OnDeliveryError(res session.Result, err error) {
	log.Printf("Clipboard copy failed: %v", err)
	t.frontend.ShowResult(res)
	t.frontend.ShowStatus("Screenshot saved, but clipboard copy failed")
}

func (t uiResultTarget) Close() {}

type requestCallbacks struct {
	onBusy        func()
	onSelectError func(err error)
	onCancelled   func()
	onTooSmall    func()
}

// New creates the event loop. A nil cfg falls back to a 20s capture deadline
// and no clipboard copy.
func New(cfg *config.Config, store *config.Store, frontend Frontend) *Loop {
	deadlineSec := 20
	if cfg != nil && cfg.CaptureDeadlineSec > 0 {
		deadlineSec = cfg.CaptureDeadlineSec
	}

	l := &Loop{
		cfg:      cfg,
		store:    store,
		frontend: frontend,
		selector: overlay.NewSelector(),
		// Captures are serialized by the busy flag; one worker keeps GDI
		// calls off parallel threads.
		pool:           worker.New(1),
		results:        make(chan result, 1),
		requests:       make(chan Request, 4),
		defaultTooltip: "pxsnap",
		deadline:       time.Duration(deadlineSec) * time.Second,

		captureScreen: screenshot.Capture,
		captureRegion: screenshot.CaptureRegion,
		saveImage: func(img image.Image, settings config.Settings) (string, error) {
			return screenshot.Save(img, settings, "")
		},
	}
	if cfg != nil && cfg.CopyToClipboard {
		l.copyImage = clipboard.WriteImage
	}
	return l
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// Deadline returns the per-capture deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }

// Post enqueues a capture request without blocking. Extra triggers beyond
// the queue length are dropped.
func (l *Loop) Post(kind RequestKind) {
	select {
	case l.requests <- Request{Kind: kind}:
	default:
		log.Printf("Request queue full, dropping %v request", kind)
	}
}

// StartHotkeys binds the global capture hotkeys to the request queue. Combos
// come from the settings store; an empty combo disables that trigger.
func (l *Loop) StartHotkeys(fullscreenCombo, regionCombo string) error {
	var bindings []hotkey.Binding
	if fullscreenCombo != "" {
		bindings = append(bindings, hotkey.Binding{
			Combo:    fullscreenCombo,
			Callback: func() { l.Post(RequestFullscreen) },
		})
	}
	if regionCombo != "" {
		bindings = append(bindings, hotkey.Binding{
			Combo:    regionCombo,
			Callback: func() { l.Post(RequestRegion) },
		})
	}
	if len(bindings) == 0 {
		return nil
	}
	return hotkey.Listen(bindings)
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("pxsnap: capturing...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// Run processes requests and results until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-l.requests:
			l.handleRequest(ctx, req)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleRequest(ctx context.Context, req Request) {
	log.Printf("handleRequest: %v", req.Kind)
	target := uiResultTarget{frontend: l.frontend, copy: l.copyImage}
	l.startRequest(ctx, req.Kind, target, requestCallbacks{
		onBusy: func() {
			log.Printf("handleRequest: busy, skipping")
			l.frontend.ShowStatus("Capture already in progress")
		},
		onSelectError: func(err error) {
			log.Printf("handleRequest: selection error: %v", err)
			l.frontend.ShowError("Selection Failed", err)
		},
		onCancelled: func() {
			log.Printf("handleRequest: selection cancelled")
			l.frontend.ShowStatus("Region selection cancelled")
		},
		onTooSmall: func() {
			log.Printf("handleRequest: selection too small")
			l.frontend.ShowStatus("Region too small - please select a larger area")
		},
	})
}

func (l *Loop) handleResult(res result) {
	log.Printf("handleResult: path=%q, err=%v", res.res.Path, res.err)
	defer func() {
		l.setBusy(false)
		if res.cancel != nil {
			res.cancel()
		}
	}()
	if res.target == nil {
		log.Printf("handleResult: missing target")
		return
	}
	defer res.target.Close()

	if res.err != nil {
		res.target.OnProcessError(res.err)
		return
	}

	if err := res.target.OnSuccess(res.res); err != nil {
		res.target.OnDeliveryError(res.res, err)
		return
	}

	l.frontend.ShowResult(res.res)
}

func (l *Loop) startRequest(ctx context.Context, kind RequestKind, target resultTarget, callbacks requestCallbacks) {
	if l.busy {
		if callbacks.onBusy != nil {
			callbacks.onBusy()
		}
		return
	}

	var task worker.Task
	switch kind {
	case RequestRegion:
		l.frontend.SetSelectionActive(true)
		region, outcome, err := l.selector.Select(ctx)
		l.frontend.SetSelectionActive(false)
		l.drainStaleRequests()
		if err != nil {
			if callbacks.onSelectError != nil {
				callbacks.onSelectError(err)
			}
			return
		}
		switch outcome {
		case overlay.OutcomeCancelled:
			if callbacks.onCancelled != nil {
				callbacks.onCancelled()
			}
			return
		case overlay.OutcomeTooSmall:
			if callbacks.onTooSmall != nil {
				callbacks.onTooSmall()
			}
			return
		}
		task = l.regionTask(region)
	default:
		task = l.fullscreenTask()
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, task, func(res session.Result, err error) {
		l.results <- result{res: res, err: err, target: target, cancel: cancel}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		if callbacks.onBusy != nil {
			callbacks.onBusy()
		}
	}
}

// drainStaleRequests discards triggers that queued up while the overlay had
// the screen. Replaying them after the selection ends would pop surprise
// overlays.
func (l *Loop) drainStaleRequests() {
	for {
		select {
		case req := <-l.requests:
			log.Printf("Discarding %v request queued during selection", req.Kind)
		default:
			return
		}
	}
}

func (l *Loop) fullscreenTask() worker.Task {
	settings := l.store.Settings()
	stamp := l.stampFunc()
	return func(ctx context.Context) (session.Result, error) {
		return session.Execute(ctx, session.Options{
			Deadline: l.deadline,
			Capture:  l.captureScreen,
			Stamp:    stamp,
			Save: func(img image.Image) (string, error) {
				return l.saveImage(img, settings)
			},
		})
	}
}

func (l *Loop) regionTask(region screenshot.Region) worker.Task {
	settings := l.store.Settings()
	stamp := l.stampFunc()
	return func(ctx context.Context) (session.Result, error) {
		return session.Execute(ctx, session.Options{
			Deadline: l.deadline,
			Capture: func() (*image.RGBA, error) {
				return l.captureRegion(region)
			},
			Stamp: stamp,
			Save: func(img image.Image) (string, error) {
				return l.saveImage(img, settings)
			},
		})
	}
}

func (l *Loop) stampFunc() session.StampFunc {
	if l.cfg == nil || !l.cfg.StampTimestamp {
		return nil
	}
	anchor := screenshot.ParseAnchor(l.cfg.StampPosition)
	return func(img *image.RGBA) *image.RGBA {
		return screenshot.AddTimestamp(img, anchor)
	}
}
