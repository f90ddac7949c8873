package main

import (
	"errors"
	"os"

	"github.com/adamwoolhether/printer/content"
	"github.com/adamwoolhether/printer/errs"
)

// Exit codes of the printer CLI.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or arguments
	ExitIO      = 3 // Input or output file errors
	ExitService = 4 // Rendering service unreachable or failing
)

// exitCodeFor returns the exit code for err. Callers must wrap with %w.
// A missing config file is a usage error, not an I/O one.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if _, ok := errors.AsType[*errs.ConnectionError](err); ok {
		return ExitService
	}
	if _, ok := errors.AsType[*errs.UnexpectedStatusError](err); ok {
		return ExitService
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, errs.ErrInvalidArgument) ||
		errors.Is(err, content.ErrInvalidOption) {
		return ExitUsage
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}
