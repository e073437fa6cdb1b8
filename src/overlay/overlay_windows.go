//go:build windows

package overlay

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"pxsnap/src/screenshot"

	"github.com/lxn/win"
)

// windowsSelector runs a native layered overlay over the primary display.
type windowsSelector struct{}

func newPlatformSelector() Selector { return &windowsSelector{} }

func (s *windowsSelector) Select(ctx context.Context) (screenshot.Region, Outcome, error) {
	// The overlay window and its message loop must stay on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return runOverlay(ctx)
}

type selection struct {
	region  screenshot.Region
	outcome Outcome
}

// Window-procedure state. Only one overlay runs at a time and everything
// below is touched solely from the message-loop thread.
var (
	overlayState      State
	overlayResult     chan selection
	overlayEscWasDown bool
	overlayCursor     win.HCURSOR
)

const (
	overlayAlpha             = 76 // ~30% opacity
	lwaAlpha                 = 0x2
	selectionPenWidth        = 2
	overlayKeyPollTimerID    = 1
	overlayKeyPollIntervalMs = 25
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow   = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState           = user32DLL.NewProc("GetAsyncKeyState")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
	procPostMessage                = user32DLL.NewProc("PostMessageW")
	gdi32CreatePen                 = syscall.NewLazyDLL("gdi32.dll").NewProc("CreatePen")
)

var overlayWndProcPtr = syscall.NewCallback(overlayWndProc)

func runOverlay(ctx context.Context) (screenshot.Region, Outcome, error) {
	screenW := win.GetSystemMetrics(win.SM_CXSCREEN)
	screenH := win.GetSystemMetrics(win.SM_CYSCREEN)
	log.Printf("OVERLAY: Primary display %dx%d", screenW, screenH)

	overlayState = NewState()
	overlayResult = make(chan selection, 1)
	overlayEscWasDown = false

	overlayCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	if overlayCursor == 0 {
		log.Printf("OVERLAY: Failed to load cross cursor")
	}

	// Register window class with unique name to avoid conflicts
	classNameStr := fmt.Sprintf("PxsnapOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   overlayWndProcPtr,
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       overlayCursor,
		HbrBackground: win.HBRUSH(win.GetStockObject(win.BLACK_BRUSH)),
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return screenshot.Region{}, OutcomeCancelled, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	hwnd := win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		className,
		syscall.StringToUTF16Ptr("Select Region - Drag to select, ESC cancels"),
		win.WS_POPUP|win.WS_VISIBLE,
		0, 0, screenW, screenH,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return screenshot.Region{}, OutcomeCancelled, fmt.Errorf("failed to create overlay window")
	}
	log.Printf("OVERLAY: Window created, hwnd: %v, size: %dx%d", hwnd, screenW, screenH)

	// Dim the desktop through the black background instead of hiding it.
	setLayeredWindowAttributes(hwnd, 0, overlayAlpha, lwaAlpha)

	win.ShowWindow(hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	win.UpdateWindow(hwnd)

	if timerID := win.SetTimer(hwnd, overlayKeyPollTimerID, overlayKeyPollIntervalMs, 0); timerID == 0 {
		log.Printf("OVERLAY: Failed to start keyboard poll timer")
	}

	// Tear the overlay down on shutdown even mid-selection.
	watchdogDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.Printf("OVERLAY: Context cancelled, closing overlay window")
			procPostMessage.Call(uintptr(hwnd), win.WM_CLOSE, 0, 0)
		case <-watchdogDone:
		}
	}()
	defer close(watchdogDone)

	// Message loop
	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 { // WM_QUIT
			log.Printf("OVERLAY: WM_QUIT received")
			break
		}
		if ret == -1 { // Error
			log.Printf("OVERLAY: GetMessage error")
			break
		}

		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)

		// Check if selection is done
		select {
		case sel := <-overlayResult:
			win.DestroyWindow(hwnd)
			log.Printf("OVERLAY: Selection finished: %v %+v", sel.outcome, sel.region)
			return sel.region, sel.outcome, nil
		default:
		}
	}

	win.DestroyWindow(hwnd)
	log.Printf("OVERLAY: Message loop ended without a selection")
	return screenshot.Region{}, OutcomeCancelled, nil
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_LBUTTONDOWN:
		x := int(win.LOWORD(uint32(lParam)))
		y := int(win.HIWORD(uint32(lParam)))
		log.Printf("OVERLAY: Mouse down at (%d, %d)", x, y)

		win.SetCapture(hwnd)
		overlayState = overlayState.PointerDown(x, y)
		win.InvalidateRect(hwnd, nil, true)
		win.UpdateWindow(hwnd)
		return 0

	case win.WM_MOUSEMOVE:
		if overlayState.Phase() == PhaseDragging {
			x := int(win.LOWORD(uint32(lParam)))
			y := int(win.HIWORD(uint32(lParam)))
			overlayState = overlayState.PointerMove(x, y)
			win.InvalidateRect(hwnd, nil, true)
			win.UpdateWindow(hwnd)
		}
		return 0

	case win.WM_LBUTTONUP:
		if overlayState.Phase() == PhaseDragging {
			win.ReleaseCapture()
			x := int(win.LOWORD(uint32(lParam)))
			y := int(win.HIWORD(uint32(lParam)))
			overlayState = overlayState.PointerUp(x, y)
			log.Printf("OVERLAY: Mouse up at (%d, %d), outcome: %v, region: %+v",
				x, y, overlayState.Outcome(), overlayState.Rect())
			deliverSelection()
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		if hdc != 0 {
			drawOverlayHint(hdc)
			if overlayState.Phase() == PhaseDragging {
				drawSelectionRectangle(hdc, overlayState.Rect())
			}
		}
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_SETCURSOR:
		if overlayCursor != 0 {
			win.SetCursor(overlayCursor)
		}
		return 1 // Indicate we handled it

	case win.WM_TIMER:
		if wParam == overlayKeyPollTimerID {
			handlePolledEscape()
		}
		return 0

	case win.WM_KEYDOWN:
		if wParam == uintptr(win.VK_ESCAPE) {
			overlayEscWasDown = true
			cancelSelection()
		}
		return 0

	case win.WM_KEYUP, win.WM_SYSKEYUP:
		if wParam == uintptr(win.VK_ESCAPE) {
			overlayEscWasDown = false
		}
		return 0

	case win.WM_NCHITTEST:
		// Force all points to be client area so the window receives mouse events
		return uintptr(win.HTCLIENT)

	case win.WM_CLOSE:
		overlayState = overlayState.Escape()
		deliverSelection()
		return 0

	case win.WM_DESTROY:
		win.KillTimer(hwnd, overlayKeyPollTimerID)
		// Do NOT PostQuitMessage here. The loop returns as soon as a result
		// is delivered, and a WM_QUIT posted now would linger in the thread
		// queue and abort the next selection immediately.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// deliverSelection hands a terminal state to the message loop. The 1-slot
// channel makes delivery idempotent.
func deliverSelection() {
	if !overlayState.Done() {
		return
	}
	sel := selection{outcome: overlayState.Outcome()}
	if sel.outcome == OutcomeSelected {
		sel.region = overlayState.Rect()
	}
	select {
	case overlayResult <- sel:
	default:
	}
}

func cancelSelection() {
	log.Printf("OVERLAY: Escape pressed, cancelling selection")
	overlayState = overlayState.Escape()
	deliverSelection()
}

// handlePolledEscape catches Escape even when the overlay loses key focus,
// which WM_KEYDOWN alone misses.
func handlePolledEscape() {
	escDown, escPressed := getAsyncKeyState(win.VK_ESCAPE)
	if !overlayEscWasDown && (escDown || escPressed) {
		log.Printf("OVERLAY: Escape detected via async polling")
		cancelSelection()
	}
	overlayEscWasDown = escDown
}

func getAsyncKeyState(vk int32) (bool, bool) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	s := uint16(state)
	isDown := s&0x8000 != 0
	wasPressedSinceLastPoll := s&0x0001 != 0
	return isDown, wasPressedSinceLastPoll
}

func drawSelectionRectangle(hdc win.HDC, r screenshot.Region) {
	pen := createPen(win.PS_SOLID, selectionPenWidth, uint32(win.RGB(255, 0, 0)))
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	win.Rectangle_(hdc, int32(r.X), int32(r.Y), int32(r.X+r.Width), int32(r.Y+r.Height))

	win.SelectObject(hdc, oldBrush)
	win.SelectObject(hdc, oldPen)
	win.DeleteObject(win.HGDIOBJ(pen))
}

func drawOverlayHint(hdc win.HDC) {
	hint := "Drag to select a region   ESC cancels"
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0x00FFFF))
	win.TextOut(hdc, 16, 16, syscall.StringToUTF16Ptr(hint), int32(len(hint)))
}

func createPen(style, width int32, color uint32) win.HPEN {
	r, _, _ := gdi32CreatePen.Call(uintptr(style), uintptr(width), uintptr(color))
	return win.HPEN(r)
}

func setLayeredWindowAttributes(hwnd win.HWND, crKey uint32, alpha uint8, flags uint32) bool {
	r, _, _ := procSetLayeredWindowAttributes.Call(uintptr(hwnd), uintptr(crKey), uintptr(alpha), uintptr(flags))
	return r != 0
}
