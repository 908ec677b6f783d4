// Package main is the pinax command: a keyboard-first terminal workbench for
// many local git repositories.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// Version is set at build time via ldflags.
var Version = ""

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// effectiveVersion prefers the linker-provided version, then the module
// version, then a short VCS revision such as "devel+1a2b3c4d5e6f+dirty".
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	vcs := make(map[string]string, len(info.Settings))
	for _, kv := range info.Settings {
		vcs[kv.Key] = kv.Value
	}
	rev := vcs["vcs.revision"]
	if rev == "" {
		return "devel"
	}
	ver := "devel+" + rev[:min(len(rev), 12)]
	if vcs["vcs.modified"] == "true" {
		ver += "+dirty"
	}
	return ver
}
