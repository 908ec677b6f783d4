// Package styles holds the lipgloss styles shared by every view. All styles
// are derived from the applied Theme.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Panels.
var (
	PanelActive   lipgloss.Style
	PanelInactive lipgloss.Style
)

// Text.
var (
	Title   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Code    lipgloss.Style
	KeyHint lipgloss.Style
)

// File status.
var (
	StatusStaged     lipgloss.Style
	StatusModified   lipgloss.Style
	StatusUntracked  lipgloss.Style
	StatusDeleted    lipgloss.Style
	StatusConflicted lipgloss.Style
	StatusInProgress lipgloss.Style
)

// Toasts, lists and bars.
var (
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	ListItemSelected lipgloss.Style
	ListCursor       lipgloss.Style

	BarTitle      lipgloss.Style
	BarText       lipgloss.Style
	BarChip       lipgloss.Style
	BarChipActive lipgloss.Style
	Header        lipgloss.Style
	Footer        lipgloss.Style
)

// Diff lines.
var (
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style
	DiffHeader  lipgloss.Style
)

// Modal boxes and the palette.
var (
	ModalBox             lipgloss.Style
	ModalTitle           lipgloss.Style
	PalettePrompt        lipgloss.Style
	PaletteEntry         lipgloss.Style
	PaletteEntrySelected lipgloss.Style
	PaletteLabel         lipgloss.Style
	PaletteDetail        lipgloss.Style
	PaletteKey           lipgloss.Style
	FuzzyMatchChar       lipgloss.Style
)

func init() {
	build(Dark.Colors)
}

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func chip(text, bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(text).Background(bg).Padding(0, 1)
}

func build(p Palette) {
	panel := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PanelActive = panel.BorderForeground(p.Primary)
	PanelInactive = panel.BorderForeground(p.Border)

	Title = fg(p.Text).Bold(true)
	Body = fg(p.Text)
	Muted = fg(p.TextMuted)
	Subtle = fg(p.TextSubtle)
	Code = fg(p.Accent)
	KeyHint = chip(p.TextMuted, p.BgSelected)

	StatusStaged = fg(p.Success).Bold(true)
	StatusModified = fg(p.Warning).Bold(true)
	StatusUntracked = fg(p.TextMuted)
	StatusDeleted = fg(p.Error).Bold(true)
	StatusConflicted = fg(p.Error).Bold(true).Underline(true)
	StatusInProgress = fg(p.Info).Bold(true)

	ToastSuccess = chip(p.OnSuccess, p.Success).Bold(true)
	ToastError = chip(p.OnError, p.Error).Bold(true)

	ListItemSelected = fg(p.Text).Background(p.BgSelected)
	ListCursor = fg(p.Primary).Bold(true)

	BarTitle = fg(p.Text).Bold(true)
	BarText = fg(p.TextMuted)
	BarChip = chip(p.TextMuted, p.BgSelected)
	BarChipActive = chip(p.Text, p.Primary).Bold(true)
	Header = lipgloss.NewStyle().Background(p.BgBar)
	Footer = fg(p.TextMuted).Background(p.BgBar)

	DiffAdd = fg(p.Success)
	DiffRemove = fg(p.Error)
	DiffContext = fg(p.TextMuted)
	DiffHeader = fg(p.Info).Bold(true)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Background(p.BgBar).
		Padding(1, 2)
	ModalTitle = fg(p.Text).Bold(true).MarginBottom(1)
	PalettePrompt = fg(p.Primary).Bold(true)
	PaletteEntry = fg(p.Text)
	PaletteEntrySelected = fg(p.Text).Background(p.BgSelected)
	PaletteLabel = fg(p.Text)
	PaletteDetail = fg(p.TextDim)
	PaletteKey = chip(p.TextMuted, p.BgSelected)
	FuzzyMatchChar = fg(p.Primary).Bold(true)
}

// Truncate shortens s to width display cells, keeping ANSI styling intact.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// DiffLine styles one line of unified diff output.
func DiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
		return DiffHeader.Render(line)
	case strings.HasPrefix(line, "+"):
		return DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		return DiffRemove.Render(line)
	}
	return DiffContext.Render(line)
}
