//go:build !windows

package ui

import (
	"os/exec"
	"runtime"
)

// OpenFolder shows dir in the platform file manager.
func OpenFolder(dir string) error {
	if runtime.GOOS == "darwin" {
		return exec.Command("open", dir).Start()
	}
	return exec.Command("xdg-open", dir).Start()
}
