// Package msg holds the tea messages shared between the app packages.
package msg

import (
	"fmt"
	"time"

	"github.com/marcus/pinax/internal/store"
)

// Toast lifetimes.
const (
	InfoDuration    = 3 * time.Second
	FailureDuration = 5 * time.Second
)

// StateChangedMsg carries a store snapshot into the tea program.
type StateChangedMsg struct {
	State store.State
}

// ToastMsg shows Message in the footer for Duration. A zero Duration uses
// InfoDuration.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool
}

// Info returns a short-lived confirmation toast.
func Info(format string, args ...any) ToastMsg {
	return ToastMsg{Message: fmt.Sprintf(format, args...), Duration: InfoDuration}
}

// Failure returns an error toast that stays up a little longer.
func Failure(format string, args ...any) ToastMsg {
	return ToastMsg{Message: fmt.Sprintf(format, args...), Duration: FailureDuration, IsError: true}
}
