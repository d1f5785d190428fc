package execshell

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os/exec"
	"slices"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	defaultWaitDelayConstant               = 5 * time.Second
)

// OSCommandRunner executes commands using os/exec.
// WaitDelay bounds how long Run waits for output pipes once a cancelled process has been killed;
// packaging tools leave helper processes behind that keep those pipes open.
type OSCommandRunner struct {
	WaitDelay time.Duration
}

// NewOSCommandRunner constructs a runner with the default wait delay.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{WaitDelay: defaultWaitDelayConstant}
}

// Run executes the supplied command.
// A non-zero exit is reported through ExecutionResult.ExitCode; an error is returned only when the
// process could not be started or the execution context ended before the process did.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := runner.prepareProcess(executionContext, command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	process.Stdout = &standardOutputBuffer
	process.Stderr = &standardErrorBuffer

	runError := process.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	result := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	var exitError *exec.ExitError
	switch {
	case runError == nil:
		return result, nil
	case errors.As(runError, &exitError):
		result.ExitCode = exitError.ExitCode()
		return result, nil
	default:
		return ExecutionResult{}, runError
	}
}

func (runner *OSCommandRunner) prepareProcess(executionContext context.Context, command ShellCommand) *exec.Cmd {
	process := exec.CommandContext(executionContext, string(command.Name), slices.Clone(command.Details.Arguments)...)
	process.Dir = command.Details.WorkingDirectory
	process.WaitDelay = runner.WaitDelay

	if len(command.Details.EnvironmentVariables) > 0 {
		environment := process.Environ()
		for _, variableName := range slices.Sorted(maps.Keys(command.Details.EnvironmentVariables)) {
			environment = append(environment, variableName+environmentAssignmentSeparatorConstant+command.Details.EnvironmentVariables[variableName])
		}
		process.Env = environment
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	return process
}
