package settings

import (
	"os/exec"
	"sort"
	"strings"
)

// EditorInfo is an editor that can open a repository directory.
type EditorInfo struct {
	Name    string
	Command string
}

var knownEditors = []EditorInfo{
	{"Visual Studio Code", "code"},
	{"Cursor", "cursor"},
	{"Sublime Text", "subl"},
	{"Zed", "zed"},
	{"Neovim", "nvim"},
	{"Vim", "vim"},
	{"Helix", "hx"},
	{"GNU Emacs", "emacs"},
	{"Kate", "kate"},
	{"Gedit", "gedit"},
}

// DetectEditors lists the known editors found on PATH, sorted by name.
func DetectEditors() []EditorInfo {
	return detectEditors(exec.LookPath)
}

func detectEditors(lookPath func(string) (string, error)) []EditorInfo {
	var found []EditorInfo
	for _, e := range knownEditors {
		if _, err := lookPath(e.Command); err == nil {
			found = append(found, e)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return strings.ToLower(found[i].Name) < strings.ToLower(found[j].Name)
	})
	return found
}
