package ui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// geometryPattern accepts "WxH" plus the legacy "WxH+X+Y" form. The screen
// position part is parsed but ignored: only the size is restored.
var geometryPattern = regexp.MustCompile(`^(\d+)x(\d+)(?:([+-]\d+)([+-]\d+))?$`)

func parseGeometry(s string) (width, height int, ok bool) {
	m := geometryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	width, _ = strconv.Atoi(m[1])
	height, _ = strconv.Atoi(m[2])
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

func formatGeometry(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
