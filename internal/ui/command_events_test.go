package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fwsync/fwsync/internal/execshell"
	"github.com/fwsync/fwsync/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant    = "scm/chromium-freeworld"
	testExecutionFailureReasonConstant     = "execution failed"
	testStandardErrorMessageConstant       = "fatal: couldn't find remote ref master"
	testStartMessageExpectationConstant    = "Fetching from fedora in " + testCommandWorkingDirectoryConstant
	testSuccessMessageExpectationConstant  = "Fetched from fedora in " + testCommandWorkingDirectoryConstant
	testFailureMessageExpectationConstant  = "Failed to fetch from fedora in " + testCommandWorkingDirectoryConstant + " (exit code 1: " + testStandardErrorMessageConstant + ")"
	testExecutionFailureMessageExpectation = "Unable to fetch from fedora in " + testCommandWorkingDirectoryConstant + ": " + testExecutionFailureReasonConstant
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"fetch", "fedora"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestStatusPrinterWithoutColor(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	printer := ui.NewStatusPrinter(outputBuffer, false)

	require.NoError(testInstance, printer.PrintHeading("Koji check for chromium and chromium-freeworld"))
	require.NoError(testInstance, printer.PrintStatus("fc40: chromium-124.0-1.fc40 chromium-freeworld-124.0-1.fc40", true))
	require.NoError(testInstance, printer.PrintStatus("fc39: chromium-124.0-1.fc39 missing", false))

	require.Equal(testInstance,
		"Koji check for chromium and chromium-freeworld\n"+
			"fc40: chromium-124.0-1.fc40 chromium-freeworld-124.0-1.fc40\n"+
			"fc39: chromium-124.0-1.fc39 missing\n",
		outputBuffer.String(),
	)
}

func TestStatusPrinterWithColor(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	printer := ui.NewStatusPrinter(outputBuffer, true)

	require.NoError(testInstance, printer.PrintStatus("fc39: chromium-124.0-1.fc39 missing", false))
	require.Contains(testInstance, outputBuffer.String(), "\x1b[31m")
	require.Contains(testInstance, outputBuffer.String(), "fc39: chromium-124.0-1.fc39 missing")
}
