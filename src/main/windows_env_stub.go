//go:build !windows

package main

// DPI awareness is a Windows concern; other platforms handle scaling in the
// display server.
func enableDPIAwareness() {}

func logMonitorConfiguration() {}
