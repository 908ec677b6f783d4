package keymap

// Binding maps a key chord string to a command, optionally scoped by a condition.
type Binding struct {
	Key         string    // e.g. "mod+shift+p", "ctrl+p", "j"
	Command     string    // Command ID
	When        Condition // CondNone matches everywhere
	Description string
}

// DefaultBindings returns the default key bindings. Order matters: the first
// matching binding wins, so scoped bindings precede global ones on the same key.
// The first binding of a command is the one shown in hints, so chords a
// terminal can deliver come before their desktop-style aliases.
func DefaultBindings() []Binding {
	return []Binding{
		// Modal bindings
		{Key: "escape", Command: "modal.close", When: CondModalOpen},
		{Key: "ctrl+k", Command: "command-palette.toggle"},
		{Key: "mod+shift+p", Command: "command-palette.toggle"},
		{Key: "ctrl+p", Command: "quickSearch.open"},
		{Key: "mod+p", Command: "quickSearch.open"},

		// Global bindings
		{Key: "ctrl+c", Command: "app.quit"},
		{Key: "q", Command: "app.quit"},
		{Key: "?", Command: "command-palette.toggle"},
		{Key: "escape", Command: "error.dismiss"},
		{Key: "1", Command: "sidebar.focus"},
		{Key: "2", Command: "main.focus"},
		{Key: "3", Command: "diff.focus"},
		{Key: "mod+1", Command: "sidebar.focus"},
		{Key: "mod+2", Command: "main.focus"},
		{Key: "mod+3", Command: "diff.focus"},
		{Key: "alt+1", Command: "workspace.select.1"},
		{Key: "alt+2", Command: "workspace.select.2"},
		{Key: "alt+3", Command: "workspace.select.3"},
		{Key: "w", Command: "workspace.switch"},

		// Sidebar (repository list)
		{Key: "j", Command: "navigation.down", When: CondListFocused},
		{Key: "down", Command: "navigation.down", When: CondListFocused},
		{Key: "k", Command: "navigation.up", When: CondListFocused},
		{Key: "up", Command: "navigation.up", When: CondListFocused},
		{Key: "enter", Command: "item.select", When: CondListFocused},
		{Key: "tab", Command: "main.focus", When: CondListFocused},

		// Main pane (changes and history)
		{Key: "shift+tab", Command: "sidebar.focus"},
		{Key: "tab", Command: "sidebar.focus"},
		{Key: "j", Command: "navigation.down"},
		{Key: "down", Command: "navigation.down"},
		{Key: "k", Command: "navigation.up"},
		{Key: "up", Command: "navigation.up"},
		{Key: "enter", Command: "item.select"},
		{Key: "backspace", Command: "selection.clear", When: CondRepositorySelected},

		// Repository actions
		{Key: "r", Command: "repository.refresh", When: CondRepositorySelected},
		{Key: "mod+r", Command: "repository.refresh"},
		{Key: "f", Command: "repository.fetch", When: CondRepositorySelected},
		{Key: "p", Command: "repository.pull", When: CondRepositorySelected},
		{Key: "shift+p", Command: "repository.push", When: CondRepositorySelected},
		{Key: "y", Command: "repository.copyPath", When: CondRepositorySelected},
		{Key: "shift+y", Command: "branch.copyName", When: CondRepositorySelected},
		{Key: "shift+s", Command: "changes.stageAll", When: CondRepositorySelected},
		{Key: "shift+u", Command: "commit.undo", When: CondRepositorySelected},
		{Key: "o", Command: "repository.openInEditor", When: CondRepositorySelected},
		{Key: "c", Command: "commit.compose", When: CondRepositorySelected},
		{Key: "s", Command: "file.toggleStage", When: CondRepositorySelected},
		{Key: "b", Command: "branch.switch", When: CondRepositorySelected},
		{Key: "shift+b", Command: "branch.create", When: CondRepositorySelected},
		{Key: "shift+w", Command: "workspace.addRepository", When: CondRepositorySelected},
	}
}
