// Package palette implements the command palette and the repository quick
// search, which share one filterable list.
package palette

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode selects what the palette lists.
type Mode int

const (
	ModeCommands Mode = iota
	ModeRepositories
	ModeBranches
	ModeWorkspaces
	ModeEditors
)

var modeText = [...]struct{ placeholder, empty string }{
	ModeCommands:     {"Type a command...", "No matching commands"},
	ModeRepositories: {"Search repositories...", "No matching repositories"},
	ModeBranches:     {"Switch to branch...", "No matching branches"},
	ModeWorkspaces:   {"Choose a workspace...", "No matching workspaces"},
	ModeEditors:      {"Open repositories with...", "No editors found on PATH"},
}

func (m Mode) placeholder() string { return modeText[m].placeholder }

func (m Mode) empty() string { return modeText[m].empty }

// SelectedMsg is sent when the user picks an entry.
type SelectedMsg struct {
	Mode Mode
	ID   string
}

// ClosedMsg is sent when the user dismisses the palette.
type ClosedMsg struct{}

const defaultMaxVisible = 10

// Model is the palette state.
type Model struct {
	input      textinput.Model
	mode       Mode
	entries    []Entry
	filtered   []Entry
	cursor     int
	offset     int
	maxVisible int
	width      int
}

// New creates a closed palette.
func New() Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 100
	return Model{
		input:      ti,
		maxVisible: defaultMaxVisible,
		width:      80,
	}
}

// Open resets the query and lists entries in mode.
func (m *Model) Open(mode Mode, entries []Entry) {
	m.mode = mode
	m.entries = entries
	m.input.SetValue("")
	m.input.Placeholder = mode.placeholder()
	m.input.Focus()
	m.refilter()
}

// Close blurs the input.
func (m *Model) Close() {
	m.input.Blur()
}

// SetSize sets the available screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.maxVisible = defaultMaxVisible
	if rows := height - 10; rows < m.maxVisible && rows > 3 {
		m.maxVisible = rows
	}
}

// Mode returns the current listing mode.
func (m Model) Mode() Mode { return m.mode }

// Query returns the typed filter text.
func (m Model) Query() string { return m.input.Value() }

// Filtered returns the visible entries in rank order.
func (m Model) Filtered() []Entry { return m.filtered }

// Selected returns the entry under the cursor.
func (m Model) Selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return Entry{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *Model) refilter() {
	m.filtered = Filter(m.entries, m.input.Value())
	m.cursor = 0
	m.offset = 0
}

func (m *Model) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible {
		m.offset = m.cursor - m.maxVisible + 1
	}
}

// Update handles navigation keys and forwards the rest to the input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.Type {
	case tea.KeyEsc:
		return m, func() tea.Msg { return ClosedMsg{} }
	case tea.KeyEnter:
		e, ok := m.Selected()
		if !ok {
			return m, nil
		}
		mode := m.mode
		return m, func() tea.Msg { return SelectedMsg{Mode: mode, ID: e.ID} }
	case tea.KeyUp, tea.KeyCtrlK:
		m.moveCursor(-1)
		return m, nil
	case tea.KeyDown, tea.KeyCtrlJ:
		m.moveCursor(1)
		return m, nil
	case tea.KeyPgUp:
		m.moveCursor(-m.maxVisible)
		return m, nil
	case tea.KeyPgDown:
		m.moveCursor(m.maxVisible)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}
