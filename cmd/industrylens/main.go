package main

import (
	"github.com/industrylens/industrylens/internal/cmd"
	"github.com/industrylens/industrylens/internal/server/handlers"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2026-10-19"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		// Maps the error to an exit code; commands do not log their own failure.
		cmd.Fail(err)
	}
}
