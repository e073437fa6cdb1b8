//go:build windows

package main

import (
	"log"

	"golang.org/x/sys/windows"
)

var (
	shcore                     = windows.NewLazySystemDLL("Shcore.dll")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	envUser32                  = windows.NewLazySystemDLL("user32.dll")
	procSetProcessDPIAware     = envUser32.NewProc("SetProcessDPIAware")
	procGetSystemMetrics       = envUser32.NewProc("GetSystemMetrics")
)

// enableDPIAwareness opts into per-monitor DPI awareness so captures and the
// selection overlay work in physical pixels rather than the scaled desktop.
func enableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: Per-monitor DPI awareness set")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed, code %d", ret)
		}
		return
	}

	// Vista fallback: system-wide awareness only.
	if err := procSetProcessDPIAware.Find(); err == nil {
		if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
			log.Printf("DPI: System DPI awareness set (fallback)")
		} else {
			log.Printf("DPI: SetProcessDPIAware failed")
		}
	} else {
		log.Printf("DPI: No DPI awareness API available")
	}
}

// logMonitorConfiguration records the screen layout captures run against, for
// diagnosing wrong-monitor and scaling reports.
func logMonitorConfiguration() {
	const (
		smCXScreen        = 0
		smCYScreen        = 1
		smXVirtualScreen  = 76
		smYVirtualScreen  = 77
		smCXVirtualScreen = 78
		smCYVirtualScreen = 79
		smCMonitors       = 80
	)

	metric := func(index int) int {
		ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
		return int(int32(ret))
	}

	log.Printf("MONITOR: Detected %d monitors", metric(smCMonitors))
	log.Printf("MONITOR: Virtual screen - x:%d y:%d w:%d h:%d",
		metric(smXVirtualScreen), metric(smYVirtualScreen),
		metric(smCXVirtualScreen), metric(smCYVirtualScreen))
	log.Printf("MONITOR: Primary screen - w:%d h:%d", metric(smCXScreen), metric(smCYScreen))
}
