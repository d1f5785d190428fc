package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	commandGitNameConstant                  = "git"
	commandFedoraPackagerNameConstant       = "fedpkg"
	commandFusionPackagerNameConstant       = "rfpkg"
	commandSpecToolNameConstant             = "spectool"
	commandRPMNameConstant                  = "rpm"
	loggerNotConfiguredMessageConstant      = "logger not configured"
	runnerNotConfiguredMessageConstant      = "command runner not configured"
	commandFailedTemplateConstant           = "%s exited with code %d"
	commandFailedWithOutputTemplateConstant = "%s exited with code %d: %s"
	commandExecutionTemplateConstant        = "%s could not be executed: %s"
	commandTimeoutTemplateConstant          = "%s did not finish within %s"
	commandLabelSeparatorConstant           = " "
	logFieldCommandConstant                 = "command"
	logFieldArgumentsConstant               = "arguments"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
	logFieldStandardErrorConstant           = "stderr"
	logFieldTimeoutConstant                 = "timeout"
)

// CommandName identifies a supported external executable.
type CommandName string

// Supported executables.
const (
	CommandGit            CommandName = CommandName(commandGitNameConstant)
	CommandFedoraPackager CommandName = CommandName(commandFedoraPackagerNameConstant)
	CommandFusionPackager CommandName = CommandName(commandFusionPackagerNameConstant)
	CommandSpecTool       CommandName = CommandName(commandSpecToolNameConstant)
	CommandRPM            CommandName = CommandName(commandRPMNameConstant)
)

// ErrLoggerNotConfigured indicates a ShellExecutor was requested without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates a ShellExecutor was requested without a runner.
var ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)

// CommandDetails describes a single tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	standardError := strings.TrimSpace(failure.Result.StandardError)
	if len(standardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, failure.Command.Label(), failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithOutputTemplateConstant, failure.Command.Label(), failure.Result.ExitCode, standardError)
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	causeMessage := unknownFailureMessageConstant
	if failure.Cause != nil {
		causeMessage = failure.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionTemplateConstant, failure.Command.Label(), causeMessage)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandTimeoutError reports a command that exceeded the configured deadline.
type CommandTimeoutError struct {
	Command ShellCommand
	Timeout time.Duration
}

// Error describes the expired deadline.
func (failure CommandTimeoutError) Error() string {
	return fmt.Sprintf(commandTimeoutTemplateConstant, failure.Command.Label(), failure.Timeout)
}

// Unwrap allows errors.Is(err, context.DeadlineExceeded).
func (failure CommandTimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// Label renders the command as it would be typed in a shell.
func (command ShellCommand) Label() string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(parts, commandLabelSeparatorConstant)
}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObserver registers an observer notified about every command lifecycle event.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithCommandTimeout bounds every command with the provided deadline. Zero disables the deadline.
func WithCommandTimeout(timeout time.Duration) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if timeout > 0 {
			executor.commandTimeout = timeout
		}
	}
}

// ShellExecutor runs external tools with structured logging.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	observer       CommandEventObserver
	formatter      CommandMessageFormatter
	commandTimeout time.Duration
}

// NewShellExecutor constructs a ShellExecutor from a logger and a runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  noopCommandEventObserver{},
		formatter: CommandMessageFormatter{},
	}
	for _, option := range options {
		option(executor)
	}
	return executor, nil
}

// Execute runs the command and converts non-zero exits, runner failures, and deadline expiry into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	commandContext := executionContext
	if executor.commandTimeout > 0 {
		var cancel context.CancelFunc
		commandContext, cancel = context.WithTimeout(executionContext, executor.commandTimeout)
		defer cancel()
	}

	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.observer.CommandStarted(command)
	executor.logger.Info(executor.formatter.BuildStartedMessage(command), commandFields...)

	result, runError := executor.runner.Run(commandContext, command)
	if runError != nil {
		var failure error = CommandExecutionError{Command: command, Cause: runError}
		if errors.Is(runError, context.DeadlineExceeded) && errors.Is(commandContext.Err(), context.DeadlineExceeded) {
			failure = CommandTimeoutError{Command: command, Timeout: executor.commandTimeout}
			commandFields = append(commandFields, zap.Duration(logFieldTimeoutConstant, executor.commandTimeout))
		}
		executor.observer.CommandExecutionFailed(command, failure)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, failure), append(commandFields, zap.Error(failure))...)
		return ExecutionResult{}, failure
	}

	executor.observer.CommandCompleted(command, result)
	if result.ExitCode != 0 {
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(command, result),
			append(commandFields,
				zap.Int(logFieldExitCodeConstant, result.ExitCode),
				zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
			)...,
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command, result), commandFields...)
	return result, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteFedoraPackager runs fedpkg with the provided details.
func (executor *ShellExecutor) ExecuteFedoraPackager(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandFedoraPackager, Details: details})
}

// ExecuteFusionPackager runs rfpkg with the provided details.
func (executor *ShellExecutor) ExecuteFusionPackager(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandFusionPackager, Details: details})
}

// ExecuteSpecTool runs spectool with the provided details.
func (executor *ShellExecutor) ExecuteSpecTool(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandSpecTool, Details: details})
}

// ExecuteRPM runs rpm with the provided details.
func (executor *ShellExecutor) ExecuteRPM(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandRPM, Details: details})
}
