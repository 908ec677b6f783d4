package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder registers commands that append their ID to calls.
type recorder struct {
	calls []string
}

func (r *recorder) register(e *Engine, ids ...string) {
	for _, id := range ids {
		id := id
		e.RegisterCommand(Command{ID: id, Label: id, Handler: func() { r.calls = append(r.calls, id) }})
	}
}

func TestEngine_FirstRegisteredWins(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{
		{Key: "ctrl+p", Command: "first"},
		{Key: "ctrl+p", Command: "second"},
	})
	r := &recorder{}
	r.register(e, "first", "second")

	ev := &KeyEvent{Ctrl: true, Key: "p"}
	require.True(t, e.HandleKeyEvent(ev))
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, []string{"first"}, r.calls)
}

func TestEngine_ExactModifierMatch(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{{Key: "ctrl+p", Command: "palette"}})
	r := &recorder{}
	r.register(e, "palette")

	for _, ev := range []*KeyEvent{
		{Ctrl: true, Shift: true, Key: "p"},
		{Key: "p"},
		{Meta: true, Key: "p"},
		{Ctrl: true, Alt: true, Key: "p"},
	} {
		assert.False(t, e.HandleKeyEvent(ev), "%+v", ev.Chord())
		assert.False(t, ev.DefaultPrevented())
	}
	assert.Empty(t, r.calls)
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Ctrl: true, Key: "P"}))
}

func TestEngine_UnknownCommandIsInert(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{
		{Key: "f", Command: "not.registered"},
		{Key: "f", Command: "repository.fetch"},
	})
	r := &recorder{}

	ev := &KeyEvent{Key: "f"}
	assert.False(t, e.HandleKeyEvent(ev))
	assert.False(t, ev.DefaultPrevented())

	// A later binding for the same chord still fires
	r.register(e, "repository.fetch")
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "f"}))
	assert.Equal(t, []string{"repository.fetch"}, r.calls)
}

func TestEngine_Conditions(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{
		{Key: "escape", Command: "modal.close", When: CondModalOpen},
		{Key: "escape", Command: "error.dismiss"},
		{Key: "j", Command: "navigation.down", When: CondListFocused},
	})
	r := &recorder{}
	r.register(e, "modal.close", "error.dismiss", "navigation.down")

	// No provider: no condition holds
	assert.False(t, e.HandleKeyEvent(&KeyEvent{Key: "j"}))
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "escape"}))

	var ctx Context
	e.SetContextProvider(func() Context { return ctx })
	ctx = NewContext(CondModalOpen, CondListFocused)
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "esc"}))
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "j"}))

	assert.Equal(t, []string{"error.dismiss", "modal.close", "navigation.down"}, r.calls)
}

func TestEngine_ContextEvaluatedPerEvent(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{{Key: "escape", Command: "modal.close", When: CondModalOpen}})

	open := true
	calls := 0
	e.RegisterCommand(Command{ID: "modal.close", Handler: func() {
		calls++
		open = false
	}})
	e.SetContextProvider(func() Context { return NewContext().With(CondModalOpen, open) })

	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "escape"}))
	assert.False(t, e.HandleKeyEvent(&KeyEvent{Key: "escape"}))
	assert.Equal(t, 1, calls)
}

func TestEngine_ModResolvedAtLoad(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformMac))
	e.LoadBindings([]Binding{{Key: "mod+p", Command: "quickSearch.open"}})
	r := &recorder{}
	r.register(e, "quickSearch.open")

	assert.True(t, e.HandleKeyEvent(&KeyEvent{Meta: true, Key: "p"}))
	assert.False(t, e.HandleKeyEvent(&KeyEvent{Ctrl: true, Key: "p"}))

	// Changing platform does not re-resolve loaded bindings
	e.SetPlatform(PlatformOther)
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Meta: true, Key: "p"}))
	assert.False(t, e.HandleKeyEvent(&KeyEvent{Ctrl: true, Key: "p"}))

	e.LoadBindings(e.Bindings())
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Ctrl: true, Key: "p"}))
}

func TestEngine_InvalidBindingNeverMatches(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{
		{Key: "hyper+x", Command: "x"},
		{Key: "x", Command: "x"},
	})
	r := &recorder{}
	r.register(e, "x")

	assert.Len(t, e.Bindings(), 2)
	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "x"}))
	assert.Equal(t, []string{"x"}, r.calls)
}

func TestEngine_UnregisterCommand(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{{Key: "r", Command: "repository.refresh"}})
	r := &recorder{}
	r.register(e, "repository.refresh")

	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "r"}))
	e.UnregisterCommand("repository.refresh")
	assert.False(t, e.HandleKeyEvent(&KeyEvent{Key: "r"}))
	assert.False(t, e.ExecuteCommand("repository.refresh"))
}

func TestEngine_RegisterOverwrites(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{{Key: "r", Command: "c"}})
	var got string
	e.RegisterCommand(Command{ID: "c", Handler: func() { got = "old" }})
	e.RegisterCommand(Command{ID: "c", Handler: func() { got = "new" }})

	require.True(t, e.HandleKeyEvent(&KeyEvent{Key: "r"}))
	assert.Equal(t, "new", got)
	assert.Len(t, e.Commands(), 1)
}

func TestEngine_HandlerMayReenter(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{{Key: "a", Command: "outer"}})
	ran := false
	e.RegisterCommand(Command{ID: "inner", Handler: func() { ran = true }})
	e.RegisterCommand(Command{ID: "outer", Handler: func() {
		e.UnregisterCommand("outer")
		e.ExecuteCommand("inner")
	}})

	assert.True(t, e.HandleKeyEvent(&KeyEvent{Key: "a"}))
	assert.True(t, ran)
}

func TestEngine_ShortcutFor(t *testing.T) {
	e := NewEngine(WithPlatform(PlatformOther))
	e.LoadBindings([]Binding{
		{Key: "mod+shift+p", Command: "command-palette.toggle"},
		{Key: "?", Command: "command-palette.toggle"},
	})

	got, ok := e.ShortcutFor("command-palette.toggle")
	require.True(t, ok)
	assert.Equal(t, "Ctrl+Shift+P", got)
	assert.Equal(t, []string{"Ctrl+Shift+P", "?"}, e.ShortcutsFor("command-palette.toggle"))

	_, ok = e.ShortcutFor("missing")
	assert.False(t, ok)

	e.SetPlatform(PlatformMac)
	got, _ = e.ShortcutFor("command-palette.toggle")
	assert.Equal(t, "⌘⇧P", got)
}

func TestEngine_CommandsSorted(t *testing.T) {
	e := NewEngine()
	e.RegisterCommand(Command{ID: "b", Label: "Push", Category: CategoryRepository})
	e.RegisterCommand(Command{ID: "a", Label: "Fetch", Category: CategoryRepository})
	e.RegisterCommand(Command{ID: "c", Label: "Toggle Palette", Category: CategoryGeneral})
	e.RegisterCommand(Command{ID: "d", Label: "Down", Category: CategoryNavigation})

	var ids []string
	for _, c := range e.Commands() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
}

func TestDefaultBindings_HintsAreTypeable(t *testing.T) {
	for _, p := range []Platform{PlatformOther, PlatformMac} {
		e := NewEngine(WithPlatform(p))
		e.LoadBindings(DefaultBindings())

		tests := map[string]string{
			"command-palette.toggle": "Ctrl+K",
			"quickSearch.open":       "Ctrl+P",
			"sidebar.focus":          "1",
			"main.focus":             "2",
			"diff.focus":             "3",
		}
		if p == PlatformMac {
			tests["command-palette.toggle"] = "⌃K"
			tests["quickSearch.open"] = "⌃P"
		}
		for id, want := range tests {
			got, ok := e.ShortcutFor(id)
			require.True(t, ok, id)
			assert.Equal(t, want, got, "platform %v, command %s", p, id)
		}
	}
}

func TestDefaultBindings_Parse(t *testing.T) {
	for _, p := range []Platform{PlatformOther, PlatformMac} {
		for _, b := range DefaultBindings() {
			_, err := ParseChord(b.Key, p)
			assert.NoError(t, err, "binding %q -> %s", b.Key, b.Command)
		}
	}
}
