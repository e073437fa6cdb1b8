//go:build !windows

package notification

import "log"

func showMessageBox(title, message string) {
	log.Printf("%s: %s", title, message)
}
