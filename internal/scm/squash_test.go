package scm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fwsync/fwsync/internal/koji"
	"github.com/fwsync/fwsync/internal/scm"
)

func TestFormatMergeMessage(testInstance *testing.T) {
	testCases := []struct {
		name            string
		upstreamName    string
		queryOutput     string
		expectedMessage string
		expectedError   any
	}{
		{
			name:            "strips_architecture_and_dist",
			upstreamName:    testUpstreamNameConstant,
			queryOutput:     testSpecQueryOutputConstant,
			expectedMessage: testExpectedCommitMessage,
		},
		{
			name:            "keeps_epoch",
			upstreamName:    "ffmpeg",
			queryOutput:     "ffmpeg-freeworld-1:6.1.1-3.fc40.x86_64\n",
			expectedMessage: "Merge Fedora, ffmpeg-1:6.1.1-3",
		},
		{
			name:            "dotted_release_keeps_prefix",
			upstreamName:    "mesa",
			queryOutput:     "mesa-freeworld-24.0.5-1.20240411git.fc40.x86_64",
			expectedMessage: "Merge Fedora, mesa-24.0.5-1.20240411git",
		},
		{
			name:            "release_without_dist",
			upstreamName:    "noarch-tool",
			queryOutput:     "noarch-tool-freeworld-2.0-7.noarch",
			expectedMessage: "Merge Fedora, noarch-tool-2.0-7",
		},
		{
			name:          "empty_output",
			upstreamName:  testUpstreamNameConstant,
			queryOutput:   "\n\n",
			expectedError: &scm.SpecQueryError{},
		},
		{
			name:          "missing_architecture",
			upstreamName:  testUpstreamNameConstant,
			queryOutput:   "chromium",
			expectedError: &scm.SpecQueryError{},
		},
		{
			name:          "missing_release",
			upstreamName:  testUpstreamNameConstant,
			queryOutput:   "chromium.x86_64",
			expectedError: &koji.ParseError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			message, formatError := scm.FormatMergeMessage(testCase.upstreamName, testCase.queryOutput)
			if testCase.expectedError != nil {
				require.ErrorAs(testInstance, formatError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, formatError)
			require.Equal(testInstance, testCase.expectedMessage, message)
		})
	}
}

func TestSquashAmendsMergeCommit(testInstance *testing.T) {
	executor := newScriptedExecutor()
	executor.script("rpm --specfile chromium-freeworld.spec", scriptedResponse{output: testSpecQueryOutputConstant})
	service := newTestService(testInstance, executor, "/srv/scm")

	commitMessage, squashError := service.Squash(context.Background(), testOptions())
	require.NoError(testInstance, squashError)
	require.Equal(testInstance, testExpectedCommitMessage, commitMessage)

	require.Len(testInstance, executor.executedCommands, 2)
	require.Equal(testInstance, []string{"commit", "--amend", "-m", testExpectedCommitMessage}, executor.executedCommands[1].details.Arguments)
}

func TestSquashLeavesCommitWhenQueryFails(testInstance *testing.T) {
	executor := newScriptedExecutor()
	executor.script("rpm --specfile chromium-freeworld.spec", scriptedResponse{exitCode: 1})
	service := newTestService(testInstance, executor, "/srv/scm")

	_, squashError := service.Squash(context.Background(), testOptions())
	require.Error(testInstance, squashError)
	require.Len(testInstance, executor.executedCommands, 1)
}
