package keymap

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in       string
		platform Platform
		want     Chord
	}{
		{"p", PlatformOther, Chord{Key: "p"}},
		{"mod+p", PlatformOther, Chord{Ctrl: true, Key: "p"}},
		{"mod+p", PlatformMac, Chord{Meta: true, Key: "p"}},
		{"Mod+Shift+P", PlatformOther, Chord{Ctrl: true, Shift: true, Key: "p"}},
		{"cmd+k", PlatformOther, Chord{Meta: true, Key: "k"}},
		{"ctrl+alt+delete", PlatformOther, Chord{Ctrl: true, Alt: true, Key: "delete"}},
		{"option+esc", PlatformMac, Chord{Alt: true, Key: "escape"}},
		{"ctrl++", PlatformOther, Chord{Ctrl: true, Key: "+"}},
		{"+", PlatformOther, Chord{Key: "+"}},
		{"return", PlatformOther, Chord{Key: "enter"}},
	}
	for _, tc := range tests {
		got, err := ParseChord(tc.in, tc.platform)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseChord_Errors(t *testing.T) {
	for _, in := range []string{"", "  ", "shift+", "hyper+x"} {
		_, err := ParseChord(in, PlatformOther)
		assert.Error(t, err, "ParseChord(%q)", in)
	}
}

func TestFromKeyMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Chord
	}{
		{"ctrl+p", tea.KeyMsg{Type: tea.KeyCtrlP}, Chord{Ctrl: true, Key: "p"}},
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, Chord{Key: "j"}},
		{"upper rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'P'}}, Chord{Shift: true, Key: "p"}},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true}, Chord{Alt: true, Key: "1"}},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, Chord{Shift: true, Key: "tab"}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, Chord{Key: "escape"}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, Chord{Key: "enter"}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, Chord{Key: "space"}},
		{"question mark", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}, Chord{Key: "?"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromKeyMsg(tc.msg).Chord())
		})
	}
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("modalOpen")
	require.NoError(t, err)
	assert.Equal(t, CondModalOpen, c)

	c, err = ParseCondition("")
	require.NoError(t, err)
	assert.Equal(t, CondNone, c)

	_, err = ParseCondition("modalOpenn")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	ctx := NewContext(CondListFocused, CondRepositorySelected)
	assert.True(t, ctx.Has(CondListFocused))
	assert.False(t, ctx.Has(CondModalOpen))
	assert.True(t, ctx.Satisfies(CondNone))
	assert.False(t, ctx.Satisfies(CondModalOpen))

	ctx = ctx.With(CondListFocused, false)
	assert.False(t, ctx.Has(CondListFocused))
	assert.True(t, ctx.Has(CondRepositorySelected))
}
