//go:build windows

package ui

import "os/exec"

// OpenFolder shows dir in Explorer. Start, not Run: explorer reports a
// nonzero exit code even on success.
func OpenFolder(dir string) error {
	return exec.Command("explorer", dir).Start()
}
