package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/config"
	"github.com/marcus/pinax/internal/msg"
	"github.com/marcus/pinax/internal/store"
)

// promptKind says what the single-line input at the center of the screen is
// collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptCommit
	promptBranch
	promptWorkspace
	promptClone
	promptPublish
	promptToken
	promptUserName
	promptUserEmail
)

func (s *session) composing() bool {
	return s.prompt != promptNone
}

func (s *session) openPrompt(kind promptKind, placeholder, value string) {
	if s.store.Snapshot().CommandPaletteOpen {
		s.closePalette()
	}
	s.prompt = kind
	s.input.EchoMode = textinput.EchoNormal
	if kind == promptToken {
		s.input.EchoMode = textinput.EchoPassword
	}
	s.input.Placeholder = placeholder
	s.input.SetValue(value)
	s.input.CursorEnd()
	s.queue(s.input.Focus())
}

func (s *session) cancelPrompt() {
	s.prompt = promptNone
	s.publish = ""
	s.input.Blur()
}

// promptTitle heads the prompt box.
func (s *session) promptTitle() string {
	st := s.state
	switch s.prompt {
	case promptCommit:
		return "Commit to " + st.CurrentBranch()
	case promptBranch:
		if hash := s.targetCommit(); hash != "" {
			return "New branch at " + shortHash(hash)
		}
		return "New branch from " + st.CurrentBranch()
	case promptWorkspace:
		return "New workspace"
	case promptClone:
		return "Clone into " + s.cloneDir()
	case promptPublish:
		return "Publish directory to GitHub"
	case promptToken:
		if s.publish != "" {
			return "GitHub token for " + filepath.Base(s.publish)
		}
		return "GitHub token"
	case promptUserName:
		return "Git user name"
	case promptUserEmail:
		return "Git user email"
	}
	return ""
}

func (s *session) composeCommit() {
	if s.store.SelectedRepository() == "" {
		return
	}
	s.openPrompt(promptCommit, "Commit message", "")
}

func (s *session) composeBranch() {
	if s.store.SelectedRepository() == "" {
		return
	}
	s.openPrompt(promptBranch, "Branch name", "")
}

func (s *session) composeWorkspace() {
	s.openPrompt(promptWorkspace, "Workspace name", "")
}

func (s *session) composeClone() {
	s.openPrompt(promptClone, "https://github.com/owner/repo.git", "")
}

func (s *session) composePublish() {
	value := s.store.SelectedRepository()
	if value == "" {
		value = s.cloneDir() + string(filepath.Separator)
	}
	s.openPrompt(promptPublish, "Local directory", value)
}

func (s *session) composeToken() {
	s.openPrompt(promptToken, "Personal access token with repo scope", "")
}

func (s *session) composeUserName() {
	s.openPrompt(promptUserName, "Full name", s.state.Identity.Name)
}

func (s *session) composeUserEmail() {
	s.openPrompt(promptUserEmail, "you@example.com", s.state.Identity.Email)
}

// savedToken reports whether publishing can go ahead without asking.
func (s *session) savedToken() bool {
	if s.prefs == nil {
		return false
	}
	token, err := s.prefs.GitHubToken()
	if err != nil {
		s.logger.Warn("read saved token", "err", err)
	}
	return strings.TrimSpace(token) != ""
}

// submitPrompt runs the action for the open prompt. Empty input does
// nothing, except for commits where the store already ignores it.
func (s *session) submitPrompt() {
	kind, raw, pending := s.prompt, s.input.Value(), s.publish
	value := strings.TrimSpace(raw)
	s.cancelPrompt()
	if value == "" {
		return
	}

	st := s.store
	switch kind {
	case promptCommit:
		s.queue(s.run("commit", func(ctx context.Context) error { return st.Commit(ctx, raw) }))

	case promptBranch:
		if hash := s.targetCommit(); hash != "" {
			s.queue(s.run("create branch", func(ctx context.Context) error {
				return st.CreateBranchFromCommit(ctx, value, hash)
			}))
			return
		}
		s.queue(s.run("create branch", func(ctx context.Context) error { return st.CreateBranch(ctx, value) }))

	case promptWorkspace:
		s.queue(func() tea.Msg {
			ws, err := st.CreateWorkspace(s.ctx, value)
			if err != nil {
				return nil
			}
			st.SelectWorkspace(ws.ID)
			return msg.Info("Created workspace %s", ws.Name)
		})

	case promptClone:
		dest := filepath.Join(s.cloneDir(), repoNameFromURL(value))
		s.queue(s.run("clone", func(ctx context.Context) error { return st.CloneRepository(ctx, value, dest) }))

	case promptPublish:
		path := config.ExpandPath(value)
		if !s.savedToken() {
			s.openPrompt(promptToken, "Personal access token with repo scope", "")
			s.publish = path
			return
		}
		s.publishDir(path, "")

	case promptToken:
		if pending != "" {
			s.publishDir(pending, value)
			return
		}
		prefs := s.prefs
		if prefs == nil {
			s.showToast(msg.Failure("Settings are unavailable; the token was not saved"))
			return
		}
		s.queue(func() tea.Msg {
			if err := prefs.SetGitHubToken(value); err != nil {
				return msg.Failure("Saving token failed: %v", err)
			}
			return msg.Info("GitHub token saved")
		})

	case promptUserName:
		s.queue(s.run("config", func(ctx context.Context) error {
			return st.SetIdentity(ctx, store.Identity{Name: value})
		}))

	case promptUserEmail:
		s.queue(s.run("config", func(ctx context.Context) error {
			return st.SetIdentity(ctx, store.Identity{Email: value})
		}))
	}
}

// publishDir publishes path as a private repository. A token typed at the
// prompt is saved once the publish gets that far.
func (s *session) publishDir(path, token string) {
	st := s.store
	s.queue(func() tea.Msg {
		remote, err := st.PublishRepository(s.ctx, store.PublishRequest{
			Path:      path,
			Private:   true,
			Token:     token,
			SaveToken: token != "",
			Templates: backend.TemplateOptions{Readme: true},
		})
		if err != nil || remote == nil {
			return nil
		}
		return msg.Info("Published %s", remote.HTMLURL)
	})
}

// cloneDir is where new clones land: the first scan root, or the working
// directory when none is configured.
func (s *session) cloneDir() string {
	if roots := s.cfg.Repositories.ScanRoots; len(roots) > 0 {
		return roots[0]
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// repoNameFromURL returns the last path element of a clone URL without its
// .git suffix. Both URL and scp-like forms are accepted.
func repoNameFromURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	if url == "" {
		return "repository"
	}
	return url
}
