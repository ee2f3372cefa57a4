package consumption

import (
	"fmt"
	"strings"
)

// Style selects the chart rendering.
type Style string

const (
	StyleLine Style = "line"
	StyleBar  Style = "bar"
)

// ParseStyle validates a user-supplied chart style.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleLine, StyleBar:
		return Style(s), nil
	}
	return "", fmt.Errorf("consumption: unknown chart style %q (want line or bar)", s)
}

const (
	barWidth   = 40
	lineHeight = 12
)

// Render draws the hourly buckets as a terminal chart.
func Render(buckets [24]float64, style Style) string {
	if style == StyleBar {
		return renderBar(buckets)
	}
	return renderLine(buckets)
}

// renderBar draws one row per hour, bar lengths scaled to the peak bucket.
func renderBar(buckets [24]float64) string {
	_, peak := Peak(buckets)
	var b strings.Builder
	for h, v := range buckets {
		bar := 0
		if peak > 0 {
			bar = int(v / peak * barWidth)
		}
		fmt.Fprintf(&b, "%02d │%-*s %7.2f\n", h, barWidth, strings.Repeat("█", bar), v)
	}
	return b.String()
}

// renderLine draws a dot grid, one column per hour, scaled to the peak bucket.
func renderLine(buckets [24]float64) string {
	_, peak := Peak(buckets)
	if peak == 0 {
		peak = 1
	}

	rows := make([][]rune, lineHeight)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", 24))
	}
	for h, v := range buckets {
		level := int(v / peak * float64(lineHeight-1))
		// Row 0 is the top of the chart.
		rows[lineHeight-1-level][h] = '●'
	}

	var b strings.Builder
	for i, row := range rows {
		label := peak * float64(lineHeight-1-i) / float64(lineHeight-1)
		fmt.Fprintf(&b, "%7.2f │%s\n", label, string(row))
	}
	b.WriteString("        └" + strings.Repeat("─", 24) + "\n")
	b.WriteString("         0    5    10   15   20\n")
	return b.String()
}
