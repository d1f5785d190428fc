package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fwsync/fwsync/cmd/cli"
	"github.com/fwsync/fwsync/internal/koji"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the fwsync command-line application.
// An out-of-sync koji report has already been printed, so only the exit status reports it.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		if !errors.Is(executionError, koji.ErrDistributionMismatch) {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		}
		os.Exit(1)
	}
}
