package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	describedStartTemplateConstant            = "%s in %s"
	describedSuccessTemplateConstant          = "%s in %s"
	describedFailureTemplateConstant          = "Failed to %s in %s (exit code %d%s)"
	describedExecutionFailureTemplateConstant = "Unable to %s in %s: %s"
	genericStartTemplateConstant              = "Running %s"
	genericSuccessTemplateConstant            = "Completed %s"
	genericFailureTemplateConstant            = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant   = "%s failed: %s"
	workingDirectorySuffixTemplateConstant    = " (in %s)"
	standardErrorSuffixTemplateConstant       = ": %s"
	unknownFailureMessageConstant             = "unknown error"
	emptyStringConstant                       = ""
	defaultWorkingDirectoryLabelConstant      = "current directory"
	fallbackUnknownValueLabelConstant         = "unknown"
	flagPrefixConstant                        = "-"
)

const (
	gitCloneSubcommandConstant           = "clone"
	gitFetchSubcommandConstant           = "fetch"
	gitCheckoutSubcommandConstant        = "checkout"
	gitResetSubcommandConstant           = "reset"
	gitCleanSubcommandConstant           = "clean"
	gitMergeSubcommandConstant           = "merge"
	gitCommitSubcommandConstant          = "commit"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteAddSubcommandConstant       = "add"
	gitConfigSubcommandConstant          = "config"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitLsFilesSubcommandConstant         = "ls-files"
	gitAllFlagConstant                   = "--all"
	gitAmendFlagConstant                 = "--amend"
	gitMessageFlagConstant               = "-m"
	gitStrategyOptionFlagConstant        = "-X"
	packagerCloneSubcommandConstant      = "clone"
	packagerSourcesSubcommandConstant    = "sources"
	packagerNewSourcesSubcommandConstant = "new-sources"
	specToolGetFilesFlagConstant         = "-g"
	rpmSpecFileFlagConstant              = "--specfile"
)

// operationDescription holds the human phrasing of a recognized tool operation.
type operationDescription struct {
	inProgress string
	completed  string
	action     string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	var description operationDescription
	var recognized bool

	switch command.Name {
	case CommandGit:
		description, recognized = formatter.describeGit(command.Details.Arguments, result)
	case CommandFedoraPackager, CommandFusionPackager:
		description, recognized = formatter.describePackager(command.Name, command.Details.Arguments)
	case CommandSpecTool:
		description, recognized = formatter.describeSpecTool(command.Details.Arguments)
	case CommandRPM:
		description, recognized = formatter.describeRPM(command.Details.Arguments)
	}

	if !recognized {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(describedStartTemplateConstant, description.inProgress, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(describedSuccessTemplateConstant, description.completed, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(describedFailureTemplateConstant, description.action, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(describedExecutionFailureTemplateConstant, description.action, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGit(arguments []string, result ExecutionResult) (operationDescription, bool) {
	if len(arguments) == 0 {
		return operationDescription{}, false
	}

	positional := positionalArguments(arguments[1:])
	switch strings.TrimSpace(arguments[0]) {
	case gitCloneSubcommandConstant:
		source := ensureValue(argumentAtIndex(positional, 0))
		return operationDescription{
			inProgress: "Cloning " + source,
			completed:  "Cloned " + source,
			action:     "clone " + source,
		}, true
	case gitFetchSubcommandConstant:
		remote := "all remotes"
		if !containsArgument(arguments, gitAllFlagConstant) && len(positional) > 0 {
			remote = positional[0]
		}
		return operationDescription{
			inProgress: "Fetching from " + remote,
			completed:  "Fetched from " + remote,
			action:     "fetch from " + remote,
		}, true
	case gitCheckoutSubcommandConstant:
		branch := ensureValue(argumentAtIndex(positional, 0))
		return operationDescription{
			inProgress: "Switching to " + branch,
			completed:  "Switched to " + branch,
			action:     "switch to " + branch,
		}, true
	case gitResetSubcommandConstant:
		target := ensureValue(argumentAtIndex(positional, 0))
		return operationDescription{
			inProgress: "Resetting working tree to " + target,
			completed:  "Working tree reset to " + target,
			action:     "reset working tree to " + target,
		}, true
	case gitCleanSubcommandConstant:
		return operationDescription{
			inProgress: "Removing untracked files",
			completed:  "Removed untracked files",
			action:     "remove untracked files",
		}, true
	case gitMergeSubcommandConstant:
		reference := ensureValue(formatter.extractMergeReference(arguments[1:]))
		return operationDescription{
			inProgress: "Merging " + reference,
			completed:  "Merged " + reference,
			action:     "merge " + reference,
		}, true
	case gitCommitSubcommandConstant:
		message := ensureValue(findFlagValue(arguments, gitMessageFlagConstant))
		if containsArgument(arguments, gitAmendFlagConstant) {
			return operationDescription{
				inProgress: fmt.Sprintf("Amending commit message to %q", message),
				completed:  fmt.Sprintf("Commit message amended to %q", message),
				action:     fmt.Sprintf("amend commit message to %q", message),
			}, true
		}
		return operationDescription{
			inProgress: fmt.Sprintf("Creating commit %q", message),
			completed:  fmt.Sprintf("Created commit %q", message),
			action:     fmt.Sprintf("create commit %q", message),
		}, true
	case gitRemoteSubcommandConstant:
		if len(positional) >= 3 && positional[0] == gitRemoteAddSubcommandConstant {
			return operationDescription{
				inProgress: fmt.Sprintf("Adding remote %s at %s", positional[1], positional[2]),
				completed:  fmt.Sprintf("Added remote %s at %s", positional[1], positional[2]),
				action:     fmt.Sprintf("add remote %s at %s", positional[1], positional[2]),
			}, true
		}
		return operationDescription{
			inProgress: "Listing remotes",
			completed:  "Listed remotes",
			action:     "list remotes",
		}, true
	case gitConfigSubcommandConstant:
		key := ensureValue(argumentAtIndex(positional, 0))
		return operationDescription{
			inProgress: "Reading " + key,
			completed:  fmt.Sprintf("%s is %s", key, ensureValue(result.StandardOutput)),
			action:     "read " + key,
		}, true
	case gitRevParseSubcommandConstant:
		reference := ensureValue(argumentAtIndex(positional, len(positional)-1))
		return operationDescription{
			inProgress: "Resolving " + reference,
			completed:  fmt.Sprintf("%s resolved to %s", reference, ensureValue(result.StandardOutput)),
			action:     "resolve " + reference,
		}, true
	case gitLsFilesSubcommandConstant:
		return operationDescription{
			inProgress: "Listing untracked files",
			completed:  "Listed untracked files",
			action:     "list untracked files",
		}, true
	default:
		return operationDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describePackager(name CommandName, arguments []string) (operationDescription, bool) {
	positional := positionalArguments(arguments)
	subcommandIndex := -1
	for index, argument := range positional {
		if argument == packagerCloneSubcommandConstant || argument == packagerSourcesSubcommandConstant || argument == packagerNewSourcesSubcommandConstant {
			subcommandIndex = index
			break
		}
	}
	if subcommandIndex < 0 {
		return operationDescription{}, false
	}
	positional = positional[subcommandIndex:]

	tool := string(name)
	switch positional[0] {
	case packagerCloneSubcommandConstant:
		target := ensureValue(argumentAtIndex(positional, 1))
		return operationDescription{
			inProgress: fmt.Sprintf("Cloning %s with %s", target, tool),
			completed:  fmt.Sprintf("Cloned %s with %s", target, tool),
			action:     fmt.Sprintf("clone %s with %s", target, tool),
		}, true
	case packagerSourcesSubcommandConstant:
		return operationDescription{
			inProgress: fmt.Sprintf("Downloading lookaside sources with %s", tool),
			completed:  fmt.Sprintf("Downloaded lookaside sources with %s", tool),
			action:     fmt.Sprintf("download lookaside sources with %s", tool),
		}, true
	case packagerNewSourcesSubcommandConstant:
		files := strings.Join(positional[1:], ", ")
		return operationDescription{
			inProgress: fmt.Sprintf("Uploading new sources %s with %s", files, tool),
			completed:  fmt.Sprintf("Uploaded new sources %s with %s", files, tool),
			action:     fmt.Sprintf("upload new sources %s with %s", files, tool),
		}, true
	default:
		return operationDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describeSpecTool(arguments []string) (operationDescription, bool) {
	if !containsArgument(arguments, specToolGetFilesFlagConstant) {
		return operationDescription{}, false
	}
	specFile := ensureValue(argumentAtIndex(positionalArguments(arguments), 0))
	return operationDescription{
		inProgress: "Downloading sources listed in " + specFile,
		completed:  "Downloaded sources listed in " + specFile,
		action:     "download sources listed in " + specFile,
	}, true
}

func (formatter CommandMessageFormatter) describeRPM(arguments []string) (operationDescription, bool) {
	specFile := findFlagValue(arguments, rpmSpecFileFlagConstant)
	if len(specFile) == 0 {
		return operationDescription{}, false
	}
	return operationDescription{
		inProgress: "Querying " + specFile,
		completed:  "Queried " + specFile,
		action:     "query " + specFile,
	}, true
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := command.Label() + formatter.formatWorkingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, formatter.describeFailure(failure))
	}
}

// extractMergeReference returns the first positional argument that is not the value of -X or -m.
func (formatter CommandMessageFormatter) extractMergeReference(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		argument := strings.TrimSpace(arguments[index])
		if argument == gitStrategyOptionFlagConstant || argument == gitMessageFlagConstant {
			index++
			continue
		}
		if len(argument) == 0 || strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

func argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}
