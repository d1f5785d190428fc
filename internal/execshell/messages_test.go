package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fwsync/fwsync/internal/execshell"
)

const (
	testMessageWorkingDirectoryConstant = "/workspace/scm/chromium-freeworld"
)

func TestCommandMessageFormatterStartedMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedMessage string
	}{
		{
			name:            "git_fetch_all",
			command:         gitCommand("fetch", "--all"),
			expectedMessage: "Fetching from all remotes in " + testMessageWorkingDirectoryConstant,
		},
		{
			name:            "git_merge_skips_option_values",
			command:         gitCommand("merge", "fedora/master", "-X", "ours", "-m", "XXX merge"),
			expectedMessage: "Merging fedora/master in " + testMessageWorkingDirectoryConstant,
		},
		{
			name:            "git_merge_options_first",
			command:         gitCommand("merge", "-X", "ours", "-m", "XXX merge", "0a1b2c3"),
			expectedMessage: "Merging 0a1b2c3 in " + testMessageWorkingDirectoryConstant,
		},
		{
			name:            "git_reset_hard",
			command:         gitCommand("reset", "--hard", "origin/master"),
			expectedMessage: "Resetting working tree to origin/master in " + testMessageWorkingDirectoryConstant,
		},
		{
			name:            "git_commit_amend",
			command:         gitCommand("commit", "--amend", "-m", "Merge Fedora, chromium-120.0-1"),
			expectedMessage: `Amending commit message to "Merge Fedora, chromium-120.0-1" in ` + testMessageWorkingDirectoryConstant,
		},
		{
			name:            "git_remote_add",
			command:         gitCommand("remote", "add", "fedora", "https://src.fedoraproject.org/rpms/chromium.git"),
			expectedMessage: "Adding remote fedora at https://src.fedoraproject.org/rpms/chromium.git in " + testMessageWorkingDirectoryConstant,
		},
		{
			name: "fedpkg_sources_with_name_flag",
			command: execshell.ShellCommand{
				Name:    execshell.CommandFedoraPackager,
				Details: execshell.CommandDetails{Arguments: []string{"--name", "chromium", "sources"}, WorkingDirectory: testMessageWorkingDirectoryConstant},
			},
			expectedMessage: "Downloading lookaside sources with fedpkg in " + testMessageWorkingDirectoryConstant,
		},
		{
			name: "rfpkg_clone_without_working_directory",
			command: execshell.ShellCommand{
				Name:    execshell.CommandFusionPackager,
				Details: execshell.CommandDetails{Arguments: []string{"clone", "free/chromium-freeworld"}},
			},
			expectedMessage: "Cloning free/chromium-freeworld with rfpkg in current directory",
		},
		{
			name: "spectool_download",
			command: execshell.ShellCommand{
				Name:    execshell.CommandSpecTool,
				Details: execshell.CommandDetails{Arguments: []string{"-g", "chromium-freeworld.spec"}, WorkingDirectory: testMessageWorkingDirectoryConstant},
			},
			expectedMessage: "Downloading sources listed in chromium-freeworld.spec in " + testMessageWorkingDirectoryConstant,
		},
		{
			name:            "unrecognized_git_subcommand",
			command:         gitCommand("status", "--porcelain"),
			expectedMessage: "Running git status --porcelain (in " + testMessageWorkingDirectoryConstant + ")",
		},
	}

	formatter := execshell.CommandMessageFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, formatter.BuildStartedMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterCompletionMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	revParse := gitCommand("rev-parse", "--verify", "--quiet", "fedora/master^{commit}")
	require.Equal(testInstance,
		"fedora/master^{commit} resolved to 0a1b2c3 in "+testMessageWorkingDirectoryConstant,
		formatter.BuildSuccessMessage(revParse, execshell.ExecutionResult{StandardOutput: "0a1b2c3\n"}),
	)

	require.Equal(testInstance,
		"Failed to resolve fedora/master^{commit} in "+testMessageWorkingDirectoryConstant+" (exit code 1)",
		formatter.BuildFailureMessage(revParse, execshell.ExecutionResult{ExitCode: 1}),
	)

	checkout := gitCommand("checkout", "master")
	require.Equal(testInstance,
		"Failed to switch to master in "+testMessageWorkingDirectoryConstant+" (exit code 1: error: pathspec 'master' did not match)",
		formatter.BuildFailureMessage(checkout, execshell.ExecutionResult{ExitCode: 1, StandardError: "error: pathspec 'master' did not match\n"}),
	)

	require.Equal(testInstance,
		"Unable to switch to master in "+testMessageWorkingDirectoryConstant+": boom",
		formatter.BuildExecutionFailureMessage(checkout, errors.New("boom")),
	)

	unknown := gitCommand("status")
	require.Equal(testInstance,
		"git status (in "+testMessageWorkingDirectoryConstant+") failed with exit code 128",
		formatter.BuildFailureMessage(unknown, execshell.ExecutionResult{ExitCode: 128}),
	)
}

func gitCommand(arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: testMessageWorkingDirectoryConstant,
		},
	}
}
