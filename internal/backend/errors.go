package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of failure categories that cross the backend boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "authentication"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is a failed backend call.
type Error struct {
	Kind    Kind
	Op      string // e.g. "push", "status", "create-remote"
	Message string // Human-readable detail, usually trimmed command output
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown when err is not a backend error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindUnknown
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// outputPatterns maps fragments of git output to failure kinds.
// Entries are checked in order; the first match wins.
var outputPatterns = []struct {
	fragment string
	kind     Kind
}{
	{"authentication failed", KindAuth},
	{"could not read username", KindAuth},
	{"permission denied", KindAuth},
	{"invalid username or password", KindAuth},
	{"terminal prompts disabled", KindAuth},
	{"returned error: 403", KindAuth},
	{"error: 403", KindAuth},
	{"conflict", KindConflict},
	{"unmerged", KindConflict},
	{"would be overwritten", KindConflict},
	{"non-fast-forward", KindConflict},
	{"[rejected]", KindConflict},
	{"not possible to fast-forward", KindConflict},
	{"index.lock", KindTransient},
	{"could not resolve host", KindTransient},
	{"connection timed out", KindTransient},
	{"connection refused", KindTransient},
	{"operation timed out", KindTransient},
	{"the remote end hung up", KindTransient},
	{"not a git repository", KindNotFound},
	{"did not match any file", KindNotFound},
	{"does not exist", KindNotFound},
	{"no such file", KindNotFound},
	{"repository not found", KindNotFound},
	{"unknown revision", KindNotFound},
	{"not a valid", KindValidation},
	{"already exists", KindValidation},
	{"is not a valid branch name", KindValidation},
}

// classify turns raw command output into a Kind.
func classify(output string) Kind {
	lower := strings.ToLower(output)
	for _, p := range outputPatterns {
		if strings.Contains(lower, p.fragment) {
			return p.kind
		}
	}
	return KindUnknown
}
