// Package notification surfaces fatal startup errors before any window
// exists.
package notification

// ShowBlockingError displays a modal error box and waits for the user to
// dismiss it. On platforms without a native message box it logs instead.
func ShowBlockingError(title, message string) {
	showMessageBox(title, message)
}
