package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// FormatPrice formats a price with two decimals, or "-" before the first
// quote arrives.
func FormatPrice(p float64) string {
	if p == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// FormatPercent formats a fractional change as a signed percentage,
// e.g. 0.0123 -> "+1.23%".
func FormatPercent(f float64) string {
	pct := f * 100
	switch {
	case pct > 0:
		return fmt.Sprintf("+%.2f%%", pct)
	case pct < 0:
		return fmt.Sprintf("%.2f%%", pct)
	default:
		return "0.00%"
	}
}

// FormatUpdate renders the last-refresh time, or "--:--:--" before the first
// successful refresh.
func FormatUpdate(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

// changeStyle colours a change: rising red, falling green.
func changeStyle(f float64) lipgloss.Style {
	switch {
	case f > 0:
		return riseStyle
	case f < 0:
		return fallStyle
	default:
		return flatStyle
	}
}

// padOrTrunc pads s with spaces to width cells, or truncates it.
func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := lipgloss.Width(s)
	if n == width {
		return s
	}
	if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + strings.Repeat(" ", width-w)
}
