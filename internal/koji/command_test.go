package koji_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/koji"
)

func buildKojiCommand(testInstance *testing.T, upstream koji.BuildSource, downstream koji.BuildSource) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()
	return buildConfiguredKojiCommand(testInstance, koji.DefaultCommandConfiguration(), upstream, downstream)
}

func buildConfiguredKojiCommand(testInstance *testing.T, configuration koji.CommandConfiguration, upstream koji.BuildSource, downstream koji.BuildSource) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()
	builder := koji.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() koji.CommandConfiguration { return configuration },
		UpstreamSource:        upstream,
		DownstreamSource:      downstream,
		ColorEnabledProvider:  func() bool { return false },
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetContext(context.Background())
	return command, outputBuffer
}

func TestKojiCommandRequiresPackageName(testInstance *testing.T) {
	configuration := koji.DefaultCommandConfiguration()
	configuration.PackageName = " "
	upstream := &staticBuildSource{}
	command, _ := buildConfiguredKojiCommand(testInstance, configuration, upstream, &staticBuildSource{})

	runError := command.RunE(command, []string{})
	require.EqualError(testInstance, runError, "package name is required; supply --pkgname or set package in the configuration")
	require.Empty(testInstance, upstream.requested)
}

func TestKojiCommandFallsBackToConfiguredPackage(testInstance *testing.T) {
	configuration := koji.DefaultCommandConfiguration()
	configuration.PackageName = "ffmpeg"
	upstream := &staticBuildSource{pages: map[string]string{
		"ffmpeg": renderListing([]listingRow{{identifier: 6, nevr: "ffmpeg-6.1.1-3.fc40", status: "complete"}}),
	}}
	downstream := &staticBuildSource{pages: map[string]string{
		"ffmpeg-freeworld": renderListing([]listingRow{{identifier: 66, nevr: "ffmpeg-freeworld-6.1.1-3.fc40", status: "complete"}}),
	}}

	command, outputBuffer := buildConfiguredKojiCommand(testInstance, configuration, upstream, downstream)
	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Equal(testInstance,
		"Koji check for ffmpeg and ffmpeg-freeworld\n"+
			"fc40: ffmpeg-6.1.1-3.fc40 ffmpeg-freeworld-6.1.1-3.fc40\n",
		outputBuffer.String(),
	)
	require.Equal(testInstance, "chromium", koji.DefaultCommandConfiguration().PackageName)
}

func TestKojiCommandReportsMismatch(testInstance *testing.T) {
	upstream := &staticBuildSource{pages: map[string]string{
		"chromium": renderListing([]listingRow{
			{identifier: 6, nevr: "chromium-124.0-1.fc40", status: "complete"},
			{identifier: 5, nevr: "chromium-124.0-1.fc39", status: "complete"},
		}),
	}}
	downstream := &staticBuildSource{pages: map[string]string{
		"chromium-freeworld": renderListing([]listingRow{
			{identifier: 66, nevr: "chromium-freeworld-124.0-1.fc40", status: "complete"},
		}),
	}}

	command, outputBuffer := buildKojiCommand(testInstance, upstream, downstream)
	require.NoError(testInstance, command.Flags().Set("pkgname", "chromium"))

	runError := command.RunE(command, []string{})
	require.ErrorIs(testInstance, runError, koji.ErrDistributionMismatch)
	require.Equal(testInstance,
		"Koji check for chromium and chromium-freeworld\n"+
			"fc40: chromium-124.0-1.fc40 chromium-freeworld-124.0-1.fc40\n"+
			"fc39: chromium-124.0-1.fc39 missing\n",
		outputBuffer.String(),
	)
}

func TestKojiCommandUsesExplicitFreeworldName(testInstance *testing.T) {
	upstream := &staticBuildSource{pages: map[string]string{
		"ffmpeg": renderListing([]listingRow{{identifier: 6, nevr: "ffmpeg-free-6.1.1-3.fc40", status: "complete"}}),
	}}
	downstream := &staticBuildSource{pages: map[string]string{
		"ffmpeg-nonfree": renderListing([]listingRow{{identifier: 66, nevr: "ffmpeg-6.1.1-3.fc40", status: "closed"}}),
	}}

	command, outputBuffer := buildKojiCommand(testInstance, upstream, downstream)
	require.NoError(testInstance, command.Flags().Set("pkgname", "ffmpeg"))
	require.NoError(testInstance, command.Flags().Set("freeworldname", "ffmpeg-nonfree"))

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Contains(testInstance, outputBuffer.String(), "Koji check for ffmpeg and ffmpeg-nonfree\n")
	require.Contains(testInstance, outputBuffer.String(), "fc40: ffmpeg-free-6.1.1-3.fc40 ffmpeg-6.1.1-3.fc40\n")
}

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	sanitized := koji.CommandConfiguration{
		UpstreamURL:        "  ",
		DownstreamURL:      " https://koji.example/koji/ ",
		EndOfLifePrefix:    " fc ",
		EndOfLifeThreshold: 30,
		RequestTimeout:     -1,
	}.Sanitize()

	defaults := koji.DefaultCommandConfiguration()
	require.Equal(testInstance, defaults.UpstreamURL, sanitized.UpstreamURL)
	require.Equal(testInstance, "https://koji.example/koji/", sanitized.DownstreamURL)
	require.Equal(testInstance, "-freeworld", sanitized.DownstreamSuffix)
	require.Zero(testInstance, sanitized.RequestTimeout)
	require.Equal(testInstance, koji.EndOfLifePolicy{Prefix: "fc", Threshold: 30}, sanitized.EndOfLifePolicy())
}
