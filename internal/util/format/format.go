// Package format renders sizes and percentages for terminal output.
package format

import (
	"strconv"
	"strings"
)

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < len(byteUnits)-1; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + byteUnits[exp]
}

// Percent renders a whole percentage, clamped to 0..100.
func Percent(p int) string {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return strconv.Itoa(p) + "%"
}

// Meter draws a fixed-width text bar for p percent, e.g. "███░░░".
func Meter(p, width int) string {
	if width <= 0 {
		return ""
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	filled := p * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
