// Package ui holds rendering helpers shared by the TUI views.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Placement is the vertical anchor of an overlay.
type Placement int

const (
	// Center places the overlay in the middle of the screen.
	Center Placement = iota
	// Top places the overlay a fifth of the way down, like a launcher.
	Top
)

// dimStyle greys out the background. Existing colors are stripped first
// because SGR faint does not combine reliably with them.
var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

func blockWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

func dim(s string) string {
	if s == "" {
		return ""
	}
	return dimStyle.Render(s)
}

// splice writes fg over bg starting at column x. The visible parts of bg
// are dimmed; bg is padded when it is shorter than x.
func splice(bg, fg string, x, fgWidth int) string {
	plain := ansi.Strip(bg)
	bgWidth := ansi.StringWidth(plain)

	var b strings.Builder
	if x > 0 {
		left := ansi.Truncate(plain, x, "")
		b.WriteString(dim(left))
		if w := ansi.StringWidth(left); w < x {
			b.WriteString(strings.Repeat(" ", x-w))
		}
	}
	b.WriteString(fg)
	if end := x + fgWidth; bgWidth > end {
		b.WriteString(dim(ansi.Cut(plain, end, bgWidth)))
	}
	return b.String()
}

// Overlay draws fg over a dimmed bg on a width x height screen. fg is
// centered horizontally and anchored vertically by p.
func Overlay(bg, fg string, width, height int, p Placement) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	fgWidth := blockWidth(fgLines)

	x := max(0, (width-fgWidth)/2)
	y := max(0, (height-len(fgLines))/2)
	if p == Top {
		y = min(y, height/5)
	}

	out := make([]string, height)
	for row := range out {
		line := ""
		if row < len(bgLines) {
			line = bgLines[row]
		}
		if i := row - y; i >= 0 && i < len(fgLines) {
			out[row] = splice(line, fgLines[i], x, fgWidth)
			continue
		}
		out[row] = dim(ansi.Strip(line))
	}
	return strings.Join(out, "\n")
}
