package backend

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Status returns a fresh snapshot of repo's working tree.
func (c *CLI) Status(ctx context.Context, repo string) (*Status, error) {
	out, err := c.outputRaw(ctx, "status", repo,
		"status", "--porcelain=v2", "--branch", "-z", "--untracked-files=all")
	if err != nil {
		return nil, err
	}
	return ParseStatus(out), nil
}

// ParseStatus parses `git status --porcelain=v2 --branch -z` output.
func ParseStatus(output []byte) *Status {
	s := &Status{
		Staged:    []FileChange{},
		Unstaged:  []FileChange{},
		Untracked: []string{},
		Conflicts: []FileChange{},
	}

	parts := bytes.Split(output, []byte{0})
	for i := 0; i < len(parts); i++ {
		line := string(parts[i])
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "# "):
			s.parseHeader(line[2:])

		case strings.HasPrefix(line, "1 "):
			// 1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
			fields := strings.SplitN(line, " ", 9)
			if len(fields) < 9 {
				continue
			}
			s.addEntry(fields[1], fields[8], "")

		case strings.HasPrefix(line, "2 "):
			// 2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path>, then <origPath>
			fields := strings.SplitN(line, " ", 10)
			if len(fields) < 10 {
				continue
			}
			var orig string
			if i+1 < len(parts) {
				i++
				orig = string(parts[i])
			}
			s.addEntry(fields[1], fields[9], orig)

		case strings.HasPrefix(line, "u "):
			// u <XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
			fields := strings.SplitN(line, " ", 11)
			if len(fields) < 11 {
				continue
			}
			s.Conflicts = append(s.Conflicts, FileChange{Path: fields[10], Status: StatusConflicted})

		case strings.HasPrefix(line, "? "):
			s.Untracked = append(s.Untracked, line[2:])
		}
	}

	if s.Branch == "" {
		s.Branch = "HEAD"
	}
	s.IsClean = len(s.Staged) == 0 && len(s.Unstaged) == 0 &&
		len(s.Untracked) == 0 && len(s.Conflicts) == 0
	s.Fingerprint = s.fingerprint()
	return s
}

func (s *Status) parseHeader(h string) {
	key, value, _ := strings.Cut(h, " ")
	switch key {
	case "branch.head":
		if value == "(detached)" {
			s.Branch = "HEAD"
		} else {
			s.Branch = value
		}
	case "branch.ab":
		// +<ahead> -<behind>
		for _, f := range strings.Fields(value) {
			n, err := strconv.Atoi(f[1:])
			if err != nil {
				continue
			}
			if f[0] == '+' {
				s.Ahead = n
			} else if f[0] == '-' {
				s.Behind = n
			}
		}
	}
}

func (s *Status) addEntry(xy, path, orig string) {
	if len(xy) != 2 {
		return
	}
	if st, ok := statusFromCode(xy[0]); ok {
		s.Staged = append(s.Staged, FileChange{Path: path, OldPath: orig, Status: st})
	}
	if st, ok := statusFromCode(xy[1]); ok {
		s.Unstaged = append(s.Unstaged, FileChange{Path: path, OldPath: orig, Status: st})
	}
}

func statusFromCode(c byte) (FileStatus, bool) {
	switch c {
	case 'A':
		return StatusAdded, true
	case 'M', 'T':
		return StatusModified, true
	case 'D':
		return StatusDeleted, true
	case 'R':
		return StatusRenamed, true
	case 'C':
		return StatusCopied, true
	case 'U':
		return StatusConflicted, true
	}
	return "", false
}

func (s *Status) fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(s.Branch)
	_, _ = h.WriteString("\x00" + strconv.Itoa(s.Ahead) + "\x00" + strconv.Itoa(s.Behind))
	writeChanges := func(tag string, changes []FileChange) {
		_, _ = h.WriteString("\x01" + tag)
		for _, f := range changes {
			_, _ = h.WriteString("\x00" + f.Path + "\x00" + f.OldPath + "\x00" + string(f.Status))
		}
	}
	writeChanges("staged", s.Staged)
	writeChanges("unstaged", s.Unstaged)
	writeChanges("conflicts", s.Conflicts)
	_, _ = h.WriteString("\x01untracked")
	for _, p := range s.Untracked {
		_, _ = h.WriteString("\x00" + p)
	}
	return h.Sum64()
}
