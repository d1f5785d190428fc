package scm_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fwsync/fwsync/internal/execshell"
	"github.com/fwsync/fwsync/internal/scm"
)

const (
	testUpstreamManifestConstant = "SHA512 (chromium-120.0.6099.71-clean.tar.xz) = 0f1e\n" +
		"SHA512 (node-modules-120.tar.gz) = 9a8b\n"
	testDownstreamManifestConstant = "SHA512 (chromium-freeworld-119.0.6045.199-clean.tar.xz) = 77aa\n" +
		"SHA512 (ffmpeg-headers-6.1.tar.gz) = 88bb\n"
)

func TestParseSourcesManifest(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectedFiles []string
	}{
		{
			name:          "tagged_format",
			content:       testUpstreamManifestConstant,
			expectedFiles: []string{"chromium-120.0.6099.71-clean.tar.xz", "node-modules-120.tar.gz"},
		},
		{
			name:          "legacy_format",
			content:       "5d41402abc4b2a76b9719d911017c592  chromium-freeworld-119.tar.xz\n\n",
			expectedFiles: []string{"chromium-freeworld-119.tar.xz"},
		},
		{
			name:          "mixed_formats",
			content:       "5d41402abc4b2a76  legacy.tar.gz\nSHA512 (tagged.tar.gz) = 00\n",
			expectedFiles: []string{"legacy.tar.gz", "tagged.tar.gz"},
		},
		{
			name:          "malformed_tagged_line_skipped",
			content:       "SHA512 () = 00\n",
			expectedFiles: nil,
		},
		{
			name:          "empty",
			content:       "",
			expectedFiles: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedFiles, scm.ParseSourcesManifest(testCase.content))
		})
	}
}

type reconcileFixture struct {
	executor             *scriptedExecutor
	service              *scm.Service
	manifestPath         string
	manifestSeenByFedpkg string
	mergeCommitRestored  bool
}

func newReconcileFixture(testInstance *testing.T, untrackedOutput string) *reconcileFixture {
	testInstance.Helper()
	scmRoot := testInstance.TempDir()
	repositoryPath := filepath.Join(scmRoot, testDownstreamNameConstant)
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))

	fixture := &reconcileFixture{
		executor:     newScriptedExecutor(),
		manifestPath: filepath.Join(repositoryPath, "sources"),
	}
	fixture.executor.script("git rev-parse HEAD", scriptedResponse{output: testHeadCommitConstant + "\n"})
	fixture.executor.script("git reset --hard fedora/master", scriptedResponse{sideEffect: func() {
		require.NoError(testInstance, os.WriteFile(fixture.manifestPath, []byte(testUpstreamManifestConstant), 0o644))
	}})
	fixture.executor.script("fedpkg --name chromium sources", scriptedResponse{sideEffect: func() {
		content, readError := os.ReadFile(fixture.manifestPath)
		require.NoError(testInstance, readError)
		fixture.manifestSeenByFedpkg = string(content)
	}})
	fixture.executor.script("git reset --hard "+testHeadCommitConstant, scriptedResponse{sideEffect: func() {
		fixture.mergeCommitRestored = true
		require.NoError(testInstance, os.WriteFile(fixture.manifestPath, []byte(testDownstreamManifestConstant), 0o644))
	}})
	fixture.executor.script("git ls-files --others --exclude-standard", scriptedResponse{output: untrackedOutput})
	fixture.service = newTestService(testInstance, fixture.executor, scmRoot)
	return fixture
}

func TestReconcileSourcesRegistersRetainedAndNewSources(testInstance *testing.T) {
	fixture := newReconcileFixture(testInstance, testNewSourceFileNameConstant+"\n")

	sources, reconcileError := fixture.service.ReconcileSources(context.Background(), testOptions(), "fedora/master")
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, []string{"ffmpeg-headers-6.1.tar.gz", testNewSourceFileNameConstant}, sources)

	require.Equal(testInstance, "SHA512 (node-modules-120.tar.gz) = 9a8b\n", fixture.manifestSeenByFedpkg)
	require.True(testInstance, fixture.mergeCommitRestored)
	require.Equal(testInstance, []string{
		"git rev-parse HEAD",
		"git reset --hard fedora/master",
		"fedpkg --name chromium sources",
		"git reset --hard " + testHeadCommitConstant,
		"spectool -g chromium-freeworld.spec",
		"git ls-files --others --exclude-standard",
		"rfpkg new-sources ffmpeg-headers-6.1.tar.gz " + testNewSourceFileNameConstant,
	}, fixture.executor.labels())
}

func TestReconcileSourcesRequiresExactlyOneNewFile(testInstance *testing.T) {
	testCases := []struct {
		name            string
		untrackedOutput string
		expectedFiles   []string
	}{
		{
			name:            "no_new_files",
			untrackedOutput: "",
			expectedFiles:   nil,
		},
		{
			name:            "two_new_files",
			untrackedOutput: "chromium-freeworld-120.tar.xz\nstray.patch\n",
			expectedFiles:   []string{"chromium-freeworld-120.tar.xz", "stray.patch"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newReconcileFixture(testInstance, testCase.untrackedOutput)

			_, reconcileError := fixture.service.ReconcileSources(context.Background(), testOptions(), "fedora/master")
			var reconciliationError scm.ManifestReconciliationError
			require.ErrorAs(testInstance, reconcileError, &reconciliationError)
			require.Equal(testInstance, testCase.expectedFiles, reconciliationError.UntrackedFiles)

			for _, label := range fixture.executor.labels() {
				require.NotContains(testInstance, label, "new-sources")
			}
		})
	}
}

func TestReconcileSourcesRestoresMergeCommitWhenUpstreamFetchFails(testInstance *testing.T) {
	fixture := newReconcileFixture(testInstance, testNewSourceFileNameConstant)
	fixture.executor.script("fedpkg --name chromium sources", scriptedResponse{exitCode: 1})

	_, reconcileError := fixture.service.ReconcileSources(context.Background(), testOptions(), "fedora/master")
	require.ErrorAs(testInstance, reconcileError, &execshell.CommandFailedError{})
	require.True(testInstance, fixture.mergeCommitRestored)
	require.Equal(testInstance, "git reset --hard "+testHeadCommitConstant, fixture.executor.labels()[len(fixture.executor.executedCommands)-1])
}

func TestReconcileSourcesDeduplicatesRegisteredFiles(testInstance *testing.T) {
	fixture := newReconcileFixture(testInstance, "ffmpeg-headers-6.1.tar.gz\n")

	sources, reconcileError := fixture.service.ReconcileSources(context.Background(), testOptions(), "fedora/master")
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, []string{"ffmpeg-headers-6.1.tar.gz"}, sources)
}
