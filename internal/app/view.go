package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/marcus/pinax/internal/store"
	"github.com/marcus/pinax/internal/styles"
	"github.com/marcus/pinax/internal/ui"
)

const (
	headerHeight = 1
	footerHeight = 1
	sidebarWidth = 32
	minWidth     = 60
	minHeight    = 16
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.width < minWidth || m.height < minHeight {
		text := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.StatusDeleted.Render(text))
	}

	contentHeight := m.height - headerHeight
	if m.cfg.UI.ShowFooter {
		contentHeight -= footerHeight
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent(m.width, contentHeight))
	if m.cfg.UI.ShowFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}
	bg := b.String()

	switch {
	case m.state.CommandPaletteOpen:
		return ui.Overlay(bg, m.palette.View(), m.width, m.height, ui.Top)
	case m.composing():
		box := styles.ModalBox.Width(min(72, m.width-4)).Render(
			styles.ModalTitle.Render(m.promptTitle()) + "\n" + m.input.View())
		return ui.Overlay(bg, box, m.width, m.height, ui.Center)
	}
	return bg
}

// renderHeader shows the title, workspace chips and branch summary.
func (m Model) renderHeader() string {
	title := styles.BarTitle.Render(" Pinax ")

	chips := []string{m.chip("All", store.WorkspaceAll), m.chip("Uncategorized", store.WorkspaceUncategorized)}
	for _, w := range m.state.Workspaces {
		chips = append(chips, m.chip(w.Name, w.ID))
	}
	tabs := strings.Join(chips, " ")

	var right string
	if st := m.state.Status; st != nil {
		right = styles.BarText.Render(fmt.Sprintf("%s ↑%d ↓%d ", st.Branch, st.Ahead, st.Behind))
	}
	if m.state.Busy() {
		right = m.spinner.View() + " " + right
	}

	spacing := max(0, m.width-lipgloss.Width(title)-lipgloss.Width(tabs)-lipgloss.Width(right))
	line := title + tabs + strings.Repeat(" ", spacing) + right
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(styles.Truncate(line, m.width))
}

func (m Model) chip(label, id string) string {
	if m.state.SelectedWorkspaceID == id {
		return styles.BarChipActive.Render(label)
	}
	return styles.BarChip.Render(label)
}

func (m Model) renderContent(width, height int) string {
	side := min(sidebarWidth, width/3)
	rest := width - side

	sidebar := m.renderSidebar(side, height)
	if m.state.SelectedRepository == "" {
		welcome := m.renderWelcome(rest, height)
		return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, welcome)
	}

	listHeight := max(6, height*2/5)
	diffHeight := height - listHeight
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderMain(rest, listHeight),
		m.renderDiff(rest, diffHeight))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, right)
}

// panel draws a bordered box of exactly width x height cells.
func panel(title string, lines []string, width, height int, active bool) string {
	style := styles.PanelInactive
	if active {
		style = styles.PanelActive
	}
	inner := width - 4
	rows := max(0, height-3)
	if len(lines) > rows {
		lines = lines[:rows]
	}
	body := make([]string, 0, rows+1)
	body = append(body, styles.Title.Render(styles.Truncate(title, inner)))
	for _, l := range lines {
		body = append(body, styles.Truncate(l, inner))
	}
	return style.Width(width - 2).Height(height - 2).MaxHeight(height).Render(strings.Join(body, "\n"))
}

// window returns the start index that keeps cursor visible in rows lines.
func window(cursor, total, rows int) int {
	if rows <= 0 || total <= rows {
		return 0
	}
	start := max(0, cursor-rows+1)
	return min(start, total-rows)
}

func (m Model) renderSidebar(width, height int) string {
	repos := m.state.VisibleRepositories()
	focused := m.state.Focus == store.FocusSidebar
	rows := height - 3

	var lines []string
	start := window(m.sidebarCursor, len(repos), rows)
	for i := start; i < len(repos); i++ {
		r := repos[i]
		marker := "  "
		if r.Path == m.state.SelectedRepository {
			marker = styles.ListCursor.Render("● ")
		}
		when := ""
		if r.LastCommit != nil {
			when = " " + styles.Muted.Render(humanize.Time(r.LastCommit.Timestamp))
		}
		line := marker + r.Name + when
		if focused && i == m.sidebarCursor {
			line = styles.ListItemSelected.Width(width - 4).Render(styles.Truncate(line, width-4))
		}
		lines = append(lines, line)
	}
	if len(repos) == 0 {
		lines = append(lines, styles.Muted.Render("No repositories"))
	}
	return panel(fmt.Sprintf("Repositories (%d)", len(repos)), lines, width, height, focused)
}

func (m Model) renderWelcome(width, height int) string {
	var hint string
	if k, ok := m.engine.ShortcutFor("quickSearch.open"); ok {
		hint = fmt.Sprintf("Press %s to search repositories.", styles.KeyHint.Render(k))
	}
	lines := []string{
		"",
		styles.Body.Render("Select a repository from the sidebar."),
		hint,
	}
	if n := len(m.state.Repositories); n > 0 {
		lines = append(lines, "", styles.Muted.Render(fmt.Sprintf("%d repositories found", n)))
	}
	return panel("Welcome", lines, width, height, false)
}

func (m Model) renderMain(width, height int) string {
	items := mainItems(m.state)
	focused := m.state.Focus == store.FocusMain
	rows := height - 3

	title := "Changes"
	if repo, ok := m.state.Repository(m.state.SelectedRepository); ok {
		title = repo.Name
	}
	if m.state.CommitMode() {
		title = "Commit " + shortHash(m.state.SelectedCommit)
	}
	if m.state.MergeInProgress {
		title += "  " + styles.StatusConflicted.Render("merging")
	}

	var lines []string
	if m.state.Status != nil && m.state.Status.IsClean && !m.state.CommitMode() {
		lines = append(lines, styles.StatusStaged.Render("✓ Working tree clean"))
		rows--
	}

	start := window(m.mainCursor, len(items), rows)
	section := ""
	for i := start; i < len(items); i++ {
		it := items[i]
		if it.section != section {
			section = it.section
			lines = append(lines, styles.Subtle.Render(section))
		}
		line := m.renderItem(it)
		if focused && i == m.mainCursor {
			line = styles.ListItemSelected.Width(width - 4).Render(styles.Truncate(line, width-4))
		}
		lines = append(lines, line)
	}
	if len(items) == 0 && m.state.IsLoading {
		lines = append(lines, styles.Muted.Render("Loading..."))
	}
	return panel(title, lines, width, height, focused)
}

func (m Model) renderItem(it mainItem) string {
	if it.kind == itemCommit {
		c := it.commit
		return fmt.Sprintf("%s %s %s",
			styles.Code.Render(c.ShortHash), c.Message,
			styles.Muted.Render(c.Author+", "+humanize.Time(c.Timestamp)))
	}
	glyph := statusGlyph(it.status, it.section)
	style := styles.StatusModified
	switch it.section {
	case sectionStaged:
		style = styles.StatusStaged
	case sectionConflicts:
		style = styles.StatusConflicted
	case sectionUntracked:
		style = styles.StatusUntracked
	}
	selected := "  "
	if it.path == m.state.SelectedFile {
		selected = styles.ListCursor.Render("▸ ")
	}
	return selected + style.Render(glyph) + " " + it.path
}

func (m Model) renderDiff(width, height int) string {
	focused := m.state.Focus == store.FocusDiff
	title := "Diff"
	if m.state.SelectedFile != "" {
		title = "Diff " + m.state.SelectedFile
	}

	all := diffLines(m.state)
	var lines []string
	if len(all) == 0 {
		lines = append(lines, styles.Muted.Render("Select a file to see its diff"))
	}
	for i := min(m.diffOffset, len(all)); i < len(all) && len(lines) < height-3; i++ {
		lines = append(lines, styles.DiffLine(all[i]))
	}
	return panel(title, lines, width, height, focused)
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// renderFooter shows the current error or notice, then key hints.
func (m Model) renderFooter() string {
	var status string
	switch {
	case m.state.Err != nil:
		text := m.state.Err.Message
		if m.state.NeedsAuth() {
			text += " (check your credentials)"
		}
		status = styles.ToastError.Render(text)
	case m.state.Notice != "":
		status = styles.ToastSuccess.Render(m.state.Notice)
	case m.toast != "":
		if m.toastIsError {
			status = styles.ToastError.Render(m.toast)
		} else {
			status = styles.ToastSuccess.Render(m.toast)
		}
	}

	hints := ""
	if m.cfg.UI.ShowHints {
		hints = m.help.ShortHelpView(m.footerBindings())
	}
	avail := m.width - lipgloss.Width(status) - 2
	hints = styles.Truncate(hints, max(0, avail))

	spacing := max(1, m.width-lipgloss.Width(hints)-lipgloss.Width(status))
	line := hints + strings.Repeat(" ", spacing) + status
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(styles.Truncate(line, m.width))
}

// footerBindings builds help entries from the engine's current bindings.
func (m Model) footerBindings() []key.Binding {
	switch {
	case m.state.CommandPaletteOpen:
		return []key.Binding{
			hint("enter", "run"), hint("↑/↓", "move"), hint("esc", "close"),
		}
	case m.composing():
		return []key.Binding{hint("enter", "confirm"), hint("esc", "cancel")}
	}

	specs := []struct{ id, label string }{
		{"quickSearch.open", "search"},
		{"command-palette.toggle", "commands"},
	}
	if m.state.SelectedRepository != "" {
		specs = append(specs, []struct{ id, label string }{
			{"commit.compose", "commit"},
			{"file.toggleStage", "stage"},
			{"repository.fetch", "fetch"},
			{"repository.pull", "pull"},
			{"repository.push", "push"},
		}...)
	}
	specs = append(specs, struct{ id, label string }{"app.quit", "quit"})

	var out []key.Binding
	for _, s := range specs {
		if k, ok := m.engine.ShortcutFor(s.id); ok {
			out = append(out, hint(k, s.label))
		}
	}
	return out
}

func hint(keys, label string) key.Binding {
	return key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, label))
}
