package cmd

import "github.com/spf13/afero"

// Process exit codes. Scripts driving the CLI rely on the distinction
// between bad invocations, failed lookups and runtime failures.
const (
	exitOK             = 0
	exitInvalidOptions = 1
	exitLookupFailed   = 2
	exitFailed         = 3
	exitInvalidEnv     = 4
)

// fs is the filesystem used by the tariff commands; tests swap in a
// memory-backed one.
var fs afero.Fs = afero.NewOsFs()
