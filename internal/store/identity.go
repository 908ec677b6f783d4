package store

import (
	"context"
	"strings"

	"github.com/marcus/pinax/internal/backend"
)

// IdentityNotice is shown when git has no global author identity.
const IdentityNotice = "Git user name or email is not set; commits will fail until you set them"

// Identity is the author recorded in new commits.
type Identity struct {
	Name  string
	Email string
}

// Complete reports whether both name and email are set.
func (i Identity) Complete() bool {
	return i.Name != "" && i.Email != ""
}

// LoadIdentity reads the global user.name and user.email. An incomplete
// identity leaves a notice rather than an error, since only commits need it.
func (s *Store) LoadIdentity(ctx context.Context) error {
	id, err := s.readIdentity(ctx)
	if err != nil {
		s.logger.Warn("read git identity", "err", err)
		return err
	}
	s.update(func(st *State) {
		st.Identity = id
		if !id.Complete() {
			st.Notice = IdentityNotice
		}
	})
	return nil
}

// SetIdentity writes the non-blank fields of id to the global git
// configuration and reloads it.
func (s *Store) SetIdentity(ctx context.Context, id Identity) error {
	fields := []struct{ key, value string }{
		{backend.ConfigUserName, strings.TrimSpace(id.Name)},
		{backend.ConfigUserEmail, strings.TrimSpace(id.Email)},
	}
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := s.backend.SetGlobalConfig(ctx, f.key, f.value); err != nil {
			s.failGlobal("config", "Failed to update git config", err)
			return err
		}
	}
	cur, err := s.readIdentity(ctx)
	if err != nil {
		s.failGlobal("config", "Failed to read git config", err)
		return err
	}
	s.update(func(st *State) {
		st.Identity = cur
		if cur.Complete() && st.Notice == IdentityNotice {
			st.Notice = ""
		}
	})
	return nil
}

func (s *Store) readIdentity(ctx context.Context) (Identity, error) {
	name, err := s.backend.GlobalConfig(ctx, backend.ConfigUserName)
	if err != nil {
		return Identity{}, err
	}
	email, err := s.backend.GlobalConfig(ctx, backend.ConfigUserEmail)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Email: email}, nil
}
