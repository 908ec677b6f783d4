package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/pinax/internal/keymap"
	"github.com/marcus/pinax/internal/msg"
	"github.com/marcus/pinax/internal/palette"
)

// Update handles all messages.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch v := message.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.ready = true
		m.palette.SetSize(v.Width, v.Height)
		m.help.Width = v.Width

	case msg.StateChangedMsg:
		m.applyState(v.State)
		cmds = append(cmds, m.feed.wait())

	case msg.ToastMsg:
		m.showToast(v)

	case TickMsg:
		m.clearExpiredToast(time.Time(v))
		cmds = append(cmds, tickCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(v)
		cmds = append(cmds, cmd)

	case palette.SelectedMsg:
		m.choose(v)

	case palette.ClosedMsg:
		m.closePalette()

	case editorClosedMsg:
		if v.err != nil {
			m.showToast(msg.Failure("Editor failed: %v", v.err))
		}
		st := m.store
		m.queue(m.run("refresh", func(ctx context.Context) error { return st.RefreshStatus(ctx) }))

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(v))

	default:
		cmds = append(cmds, m.forwardToInput(message))
	}

	cmds = append(cmds, m.drain()...)
	if _, ok := message.(msg.StateChangedMsg); !ok {
		m.refreshState()
	}
	if m.quitting {
		m.Shutdown()
	}
	return m, tea.Batch(cmds...)
}

// handleKeyMsg routes a key. While a text input is focused, keys without a
// command modifier go straight to the input; everything else is offered to
// the engine first and falls through to the input when nothing matched.
func (m Model) handleKeyMsg(k tea.KeyMsg) tea.Cmd {
	ev := keymap.FromKeyMsg(k)
	paletteOpen := m.store.Snapshot().CommandPaletteOpen

	if (m.composing() || paletteOpen) && !ev.HasCommandModifier() {
		return m.forwardToInput(k)
	}
	if m.engine.HandleKeyEvent(ev) {
		return nil
	}
	return m.forwardToInput(k)
}

func (m Model) forwardToInput(message tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.composing():
		if k, ok := message.(tea.KeyMsg); ok {
			switch k.Type {
			case tea.KeyEsc:
				m.cancelPrompt()
				return nil
			case tea.KeyEnter:
				m.submitPrompt()
				return nil
			}
		}
		m.input, cmd = m.input.Update(message)
	case m.store.Snapshot().CommandPaletteOpen:
		m.palette, cmd = m.palette.Update(message)
	}
	return cmd
}
