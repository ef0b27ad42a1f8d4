// Command pixmaster is the CLI entrypoint for the Pixmaster image optimizer.
//
// It resolves configuration (defaults, YAML file, .env and environment,
// flags), then runs one of the optimize, analyze, check or version
// subcommands.
package main

import (
	"fmt"
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd(newApp())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pixmaster: %v\n", err)
		return 1
	}
	return 0
}
