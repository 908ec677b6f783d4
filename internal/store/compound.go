package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/marcus/pinax/internal/backend"
)

// InitialCommitMessage is used for the first commit of a published repository.
const InitialCommitMessage = "Initial commit"

// PublishRequest describes a new repository to create locally and on GitHub.
type PublishRequest struct {
	Path        string // Local directory; created if missing
	Name        string // Remote name; defaults to the base name of Path
	Description string
	Private     bool
	Token       string // Falls back to the saved token
	SaveToken   bool
	Templates   backend.TemplateOptions
}

// PublishRepository creates a remote repository, initializes the local one,
// writes templates, commits and pushes. A failed push still registers and
// selects the repository and leaves a notice instead of an error; nothing
// already created is rolled back.
func (s *Store) PublishRepository(ctx context.Context, req PublishRequest) (*backend.RemoteRepository, error) {
	const label = "Failed to publish repository"
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	if req.Name == "" {
		req.Name = filepath.Base(req.Path)
	}
	token := strings.TrimSpace(req.Token)
	if token == "" && s.tokens != nil {
		saved, err := s.tokens.GitHubToken()
		if err != nil {
			s.logger.Warn("read saved token", "err", err)
		}
		token = saved
	}
	if token == "" {
		err := backend.Errorf(backend.KindAuth, "create-remote", "a GitHub token is required")
		s.failGlobal("create-remote", label, err)
		return nil, err
	}
	if req.Path == "" {
		err := backend.Errorf(backend.KindValidation, "publish", "a local path is required")
		s.failGlobal("publish", label, err)
		return nil, err
	}

	remote, err := s.backend.CreateRemoteRepository(ctx, backend.CreateRemoteOptions{
		Token:       token,
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
	})
	if err != nil {
		s.failGlobal("create-remote", "Failed to create GitHub repository", err)
		return nil, err
	}

	steps := []struct {
		op  string
		run func() error
	}{
		{"init", func() error { return s.backend.Init(ctx, req.Path) }},
		{"templates", func() error {
			if req.Templates.Empty() {
				return nil
			}
			return s.backend.WriteTemplates(ctx, req.Path, req.Templates)
		}},
		{"set-remote", func() error {
			return s.backend.SetRemote(ctx, req.Path, "origin", backend.AuthenticatedURL(remote.CloneURL, token))
		}},
		{"commit", func() error {
			changed, err := s.backend.HasChanges(ctx, req.Path)
			if err != nil || !changed {
				return err
			}
			if err := s.backend.StageAll(ctx, req.Path); err != nil {
				return err
			}
			return s.backend.Commit(ctx, req.Path, InitialCommitMessage)
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			s.resetOrigin(ctx, req.Path, remote.CloneURL)
			err = redact(err, token)
			s.failGlobal(step.op, label, err)
			return remote, err
		}
	}

	pushErr := redact(s.backend.PushInitial(ctx, req.Path), token)
	s.resetOrigin(ctx, req.Path, remote.CloneURL)

	if req.SaveToken && s.tokens != nil {
		if err := s.tokens.SetGitHubToken(token); err != nil {
			s.logger.Warn("save token", "err", err)
		}
	}

	s.registerRepository(ctx, req.Path)
	_ = s.SelectRepository(ctx, req.Path)

	notice := "Published " + remote.FullName
	if pushErr != nil {
		s.logger.Warn("initial push failed", "path", req.Path, "err", pushErr)
		notice = "Repository created but not pushed: " + errorMessage(pushErr)
	}
	s.update(func(st *State) { st.Notice = notice })
	return remote, nil
}

// resetOrigin points origin back at the token-less clone URL.
func (s *Store) resetOrigin(ctx context.Context, path, url string) {
	if err := s.backend.SetRemote(ctx, path, "origin", url); err != nil {
		s.logger.Warn("reset origin", "path", path, "err", err)
	}
}

// registerRepository adds path to the list, falling back to a bare handle
// when its metadata cannot be read.
func (s *Store) registerRepository(ctx context.Context, path string) {
	if _, ok := s.Snapshot().Repository(path); ok {
		return
	}
	repo, err := s.backend.RepositoryInfo(ctx, path)
	if err != nil {
		s.logger.Warn("repository info", "path", path, "err", err)
		repo = backend.Repository{Path: path, Name: filepath.Base(path)}
	}
	s.update(func(st *State) {
		if _, ok := st.Repository(path); ok {
			return
		}
		list := make([]backend.Repository, 0, len(st.Repositories)+1)
		list = append(list, st.Repositories...)
		st.Repositories = append(list, repo)
	})
}

// CloneRepository clones url into dest, adds it to the active workspace
// (unless the all or uncategorized view is active), selects it and appends
// it to the repository list if missing.
func (s *Store) CloneRepository(ctx context.Context, url, dest string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	if err := s.backend.Clone(ctx, url, dest); err != nil {
		s.failGlobal("clone", "Clone failed", err)
		return err
	}

	switch ws := s.Snapshot().SelectedWorkspaceID; ws {
	case "", WorkspaceAll, WorkspaceUncategorized:
	default:
		if err := s.backend.AddRepositoryToWorkspace(ctx, ws, dest); err != nil {
			s.failGlobal("add-to-workspace", "Failed to add repository to workspace", err)
		} else {
			_ = s.reloadWorkspaces(ctx)
		}
	}

	_ = s.SelectRepository(ctx, dest)
	return s.appendRepository(ctx, dest)
}

// redact removes token from err's text.
func redact(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	var be *backend.Error
	if errors.As(err, &be) {
		msg := be.Message
		if msg == "" && be.Err != nil {
			msg = be.Err.Error()
		}
		c := *be
		c.Message = strings.ReplaceAll(msg, token, "***")
		c.Err = nil
		return &c
	}
	if strings.Contains(err.Error(), token) {
		return errors.New(strings.ReplaceAll(err.Error(), token, "***"))
	}
	return err
}
