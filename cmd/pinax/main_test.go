package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/keymap"
)

// execute runs the root command with an isolated home and config.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(home, "missing.json")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEffectiveVersion_Explicit(t *testing.T) {
	assert.Equal(t, "v1.2.3", effectiveVersion("v1.2.3"))
	assert.NotEmpty(t, effectiveVersion(""))
}

func TestKeysListsDefaults(t *testing.T) {
	out, err := execute(t, "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "quickSearch.open")
	assert.Contains(t, out, "when repositorySelected")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(keymap.DefaultBindings()))
}

func TestKeysExportRoundTrip(t *testing.T) {
	out, err := execute(t, "keys", "--export")
	require.NoError(t, err)

	parsed, err := keymap.ParseYAML([]byte(out))
	require.NoError(t, err)
	defaults := keymap.DefaultBindings()
	require.Len(t, parsed, len(defaults))
	for i := range defaults {
		assert.Equal(t, defaults[i].Key, parsed[i].Key)
		assert.Equal(t, defaults[i].Command, parsed[i].Command)
		assert.Equal(t, defaults[i].When, parsed[i].When)
	}
}

func TestKeymapFlagReplacesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.yaml")
	doc := "version: 1\nbindings:\n  - key: ctrl+x\n    command: app.quit\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "--keymap", path, "keys")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
	assert.Contains(t, out, "app.quit")
}

func TestKeymapFlagMissingFile(t *testing.T) {
	_, err := execute(t, "--keymap", filepath.Join(t.TempDir(), "nope.yaml"), "keys")
	assert.Error(t, err)
}

func TestScanRequiresRoot(t *testing.T) {
	_, err := execute(t, "scan")
	assert.Error(t, err)
}

func TestScanEmptyDirectory(t *testing.T) {
	out, err := execute(t, "scan", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "0 repositories in ")
}

func TestLoadConfig_RootFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	cfg, err := loadConfig(&globalFlags{
		configPath: filepath.Join(t.TempDir(), "missing.json"),
		roots:      []string{root},
	})
	require.NoError(t, err)
	assert.Contains(t, cfg.Repositories.ScanRoots, root)
}

func TestLoadBindings_Overrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := loadConfig(&globalFlags{configPath: filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)
	cfg.Keymap.Overrides["ctrl+x"] = "app.quit"

	bindings, err := loadBindings(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, bindings)
	assert.Equal(t, keymap.Binding{Key: "ctrl+x", Command: "app.quit"}, bindings[0])
}

func TestPrintStatus(t *testing.T) {
	tests := []struct {
		name   string
		status backend.Status
		want   []string
	}{
		{
			name:   "clean",
			status: backend.Status{Branch: "main", IsClean: true},
			want:   []string{"On branch main\n", "Working tree clean"},
		},
		{
			name: "changes",
			status: backend.Status{
				Branch:    "feature",
				Ahead:     2,
				Staged:    []backend.FileChange{{Path: "a.go", Status: backend.StatusAdded}},
				Unstaged:  []backend.FileChange{{Path: "b.go", Status: backend.StatusModified}},
				Untracked: []string{"notes.txt"},
			},
			want: []string{"(ahead 2, behind 0)", "Staged:\n  added       a.go", "Changes:\n  modified    b.go", "Untracked:\n  notes.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printStatus(&buf, &tt.status)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPluralRepos(t *testing.T) {
	assert.Equal(t, "1 repository", pluralRepos(1))
	assert.Equal(t, "1,200 repositories", pluralRepos(1200))
}
