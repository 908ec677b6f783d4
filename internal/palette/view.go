package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcus/pinax/internal/styles"
)

// keyColumnWidth fits "ctrl+shift+p" plus chip padding.
const keyColumnWidth = 14

// View renders the palette box.
func (m Model) View() string {
	width := min(80, m.width-4)
	if width < 40 {
		width = 40
	}
	contentWidth := width - 4

	var b strings.Builder

	prompt := styles.PalettePrompt.Render(">")
	esc := styles.KeyHint.Render("esc")
	inputWidth := contentWidth - lipgloss.Width(prompt) - lipgloss.Width(esc) - 2
	input := lipgloss.NewStyle().Width(inputWidth).Render(m.input.View())
	fmt.Fprintf(&b, "%s %s %s\n", prompt, input, esc)
	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")

	total := len(m.filtered)
	end := min(m.offset+m.maxVisible, total)

	if m.offset > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↑ %d more above", m.offset)))
		b.WriteString("\n")
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderEntry(m.filtered[i], i == m.cursor, contentWidth))
		b.WriteString("\n")
	}
	if end < total {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↓ %d more below", total-end)))
		b.WriteString("\n")
	}

	if total == 0 {
		b.WriteString(styles.Muted.Render(m.mode.empty()))
		b.WriteString("\n")
	}

	content := strings.TrimRight(b.String(), "\n")
	return styles.ModalBox.Width(width).Render(content)
}

func (m Model) renderEntry(e Entry, selected bool, width int) string {
	var line string
	if m.mode == ModeCommands {
		key := ""
		if e.Shortcut != "" {
			key = styles.PaletteKey.Render(e.Shortcut)
		}
		if w := lipgloss.Width(key); w < keyColumnWidth {
			key += strings.Repeat(" ", keyColumnWidth-w)
		}
		label := runewidth.FillRight(runewidth.Truncate(e.Label, 28, "…"), 28)
		line = fmt.Sprintf("%s %s %s", key,
			highlight(label, m.input.Value()),
			styles.PaletteDetail.Render(e.Detail))
	} else {
		line = fmt.Sprintf("%s  %s",
			highlight(e.Label, m.input.Value()),
			styles.PaletteDetail.Render(e.Detail))
	}

	line = styles.Truncate(" "+line, width)
	if selected {
		return styles.PaletteEntrySelected.Width(width).Render(line)
	}
	return styles.PaletteEntry.Width(width).Render(line)
}

// highlight marks the first case-insensitive occurrence of query in text.
func highlight(text, query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return styles.PaletteLabel.Render(text)
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(q))
	if idx < 0 || idx+len(q) > len(text) {
		return styles.PaletteLabel.Render(text)
	}
	return styles.PaletteLabel.Render(text[:idx]) +
		styles.FuzzyMatchChar.Render(text[idx:idx+len(q)]) +
		styles.PaletteLabel.Render(text[idx+len(q):])
}
