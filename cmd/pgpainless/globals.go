package main

import (
	"os"

	clilib "github.com/kkpan11/pgpainless/internal/cli"
)

// GlobalOptions holds the global configuration flags
type GlobalOptions struct {
	PolicyPath string
	Silent     bool
}

// globalOpts is the shared global options instance
var globalOpts = &GlobalOptions{}

// createCLI creates a CLI instance from the global flags
func createCLI() (*clilib.CLI, error) {
	return clilib.NewCLI(globalOpts.PolicyPath, globalOpts.Silent, os.Stdin, os.Stdout, os.Stderr)
}

// run creates the CLI and executes one command, exiting on failure
func run(fn func(*clilib.CLI) error) {
	cli, err := createCLI()
	if err != nil {
		os.Exit(int(clilib.PrintError(os.Stderr, err)))
	}
	if err := fn(cli); err != nil {
		os.Exit(int(clilib.PrintError(os.Stderr, err)))
	}
}
