// Package main is the entry point for the erasmus CLI.
// erasmus keeps an editor's rules file synchronized with a project's
// planning documents and a selected protocol.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hydra-dynamix/erasmus/cmd"
	"github.com/hydra-dynamix/erasmus/internal/core/entities"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date, builtBy)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a tagged domain error, found anywhere in err's wrap
// chain, to the process exit code: 2 for internal I/O failures and content
// that could not be parsed, 1 for user errors (bad input, missing entity,
// unfinished setup). Anything else — including Cobra's own usage errors —
// also exits 1.
func exitCodeFor(err error) int {
	var fsErr *entities.FileSystemError
	var malformedErr *entities.MalformedContentError
	if errors.As(err, &fsErr) || errors.As(err, &malformedErr) {
		return 2
	}
	return 1
}
