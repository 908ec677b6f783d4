package app

import (
	"strings"

	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/store"
)

type itemKind int

const (
	itemFile itemKind = iota
	itemCommit
	itemCommitFile
)

const (
	sectionConflicts = "Conflicts"
	sectionStaged    = "Staged"
	sectionUnstaged  = "Changes"
	sectionUntracked = "Untracked"
	sectionHistory   = "History"
	sectionCommit    = "Files in commit"
)

// mainItem is one selectable row of the main pane.
type mainItem struct {
	kind    itemKind
	section string
	path    string
	hash    string
	status  backend.FileStatus
	commit  backend.CommitInfo
}

// mainItems lists the main pane rows. The working tree shows changed files
// followed by history; commit mode shows the files of the selected commit.
func mainItems(st store.State) []mainItem {
	if st.SelectedRepository == "" {
		return nil
	}
	var items []mainItem
	if st.CommitMode() {
		for _, f := range st.CommitFiles {
			items = append(items, mainItem{kind: itemCommitFile, section: sectionCommit, path: f.Path, status: f.Status})
		}
		return items
	}

	if st.Status != nil {
		for _, f := range st.Status.Conflicts {
			items = append(items, mainItem{kind: itemFile, section: sectionConflicts, path: f.Path, status: f.Status})
		}
		for _, f := range st.Status.Staged {
			items = append(items, mainItem{kind: itemFile, section: sectionStaged, path: f.Path, status: f.Status})
		}
		for _, f := range st.Status.Unstaged {
			items = append(items, mainItem{kind: itemFile, section: sectionUnstaged, path: f.Path, status: f.Status})
		}
		for _, p := range st.Status.Untracked {
			items = append(items, mainItem{kind: itemFile, section: sectionUntracked, path: p, status: backend.StatusAdded})
		}
	}
	for _, c := range st.Commits {
		items = append(items, mainItem{kind: itemCommit, section: sectionHistory, hash: c.Hash, commit: c})
	}
	return items
}

// diffLines splits the selected diff for scrolling.
func diffLines(st store.State) []string {
	if st.SelectedFileDiff == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(st.SelectedFileDiff, "\n"), "\n")
}

// statusGlyph is the one-letter marker for a file change.
func statusGlyph(s backend.FileStatus, section string) string {
	if section == sectionUntracked {
		return "?"
	}
	switch s {
	case backend.StatusAdded:
		return "A"
	case backend.StatusDeleted:
		return "D"
	case backend.StatusRenamed:
		return "R"
	case backend.StatusCopied:
		return "C"
	case backend.StatusConflicted:
		return "U"
	}
	return "M"
}
