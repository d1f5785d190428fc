package koji

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/ui"
)

const (
	commandUseConstant                       = "koji"
	commandShortDescriptionConstant          = "Compare upstream and freeworld koji builds per distribution"
	commandLongDescriptionConstant           = "koji resolves the latest usable build of the upstream package and of its freeworld counterpart for every distribution and reports whether their versions match. The command exits with status 1 when any distribution is out of sync."
	packageNameFlagNameConstant              = "pkgname"
	packageNameFlagDescriptionConstant       = "Upstream package name (default from the package configuration value)"
	freeworldNameFlagNameConstant            = "freeworldname"
	freeworldNameFlagDescriptionConstant     = "Downstream package name (default <pkgname><suffix>)"
	missingPackageNameMessageConstant        = "package name is required; supply --pkgname or set package in the configuration"
	distributionMismatchErrorMessageConstant = "distributions out of sync"
	reportHeadingTemplateConstant            = "Koji check for %s and %s"
	reportRowTemplateConstant                = "%s: %s %s"
)

// ErrDistributionMismatch indicates that at least one distribution is out of sync.
var ErrDistributionMismatch = errors.New(distributionMismatchErrorMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the koji command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	UpstreamSource        BuildSource
	DownstreamSource      BuildSource
	ColorEnabledProvider  func() bool
}

// Build constructs the koji command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(packageNameFlagNameConstant, "", packageNameFlagDescriptionConstant)
	command.Flags().String(freeworldNameFlagNameConstant, "", freeworldNameFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	packageName, packageNameError := command.Flags().GetString(packageNameFlagNameConstant)
	if packageNameError != nil {
		return packageNameError
	}
	packageName = strings.TrimSpace(packageName)
	if len(packageName) == 0 {
		packageName = configuration.PackageName
	}
	if len(packageName) == 0 {
		_ = command.Help()
		return errors.New(missingPackageNameMessageConstant)
	}

	freeworldName, freeworldNameError := command.Flags().GetString(freeworldNameFlagNameConstant)
	if freeworldNameError != nil {
		return freeworldNameError
	}
	freeworldName = strings.TrimSpace(freeworldName)
	if len(freeworldName) == 0 {
		freeworldName = packageName + configuration.DownstreamSuffix
	}

	httpClient := &http.Client{Timeout: configuration.RequestTimeout}
	upstreamSource := builder.UpstreamSource
	if upstreamSource == nil {
		upstreamSource = NewClient(configuration.UpstreamURL, httpClient)
	}
	downstreamSource := builder.DownstreamSource
	if downstreamSource == nil {
		downstreamSource = NewClient(configuration.DownstreamURL, httpClient)
	}

	comparator, comparatorError := NewComparator(ComparatorDependencies{
		Upstream:   upstreamSource,
		Downstream: downstreamSource,
		Policy:     configuration.EndOfLifePolicy(),
		Logger:     builder.resolveLogger(),
	})
	if comparatorError != nil {
		return comparatorError
	}

	report, compareError := comparator.Compare(command.Context(), packageName, freeworldName)
	if compareError != nil {
		return compareError
	}

	if renderError := RenderReport(ui.NewStatusPrinter(command.OutOrStdout(), builder.resolveColorEnabled(command)), report); renderError != nil {
		return renderError
	}

	if !report.InSync() {
		return ErrDistributionMismatch
	}
	return nil
}

// RenderReport prints the heading followed by one colored line per distribution.
func RenderReport(printer *ui.StatusPrinter, report Report) error {
	if headingError := printer.PrintHeading(fmt.Sprintf(reportHeadingTemplateConstant, report.UpstreamName, report.DownstreamName)); headingError != nil {
		return headingError
	}
	for _, row := range report.Rows {
		line := fmt.Sprintf(reportRowTemplateConstant, row.Distribution, DescribeBuild(row.Upstream), DescribeBuild(row.Downstream))
		if statusError := printer.PrintStatus(line, row.InSync); statusError != nil {
			return statusError
		}
	}
	return nil
}

func (builder *CommandBuilder) resolveColorEnabled(command *cobra.Command) bool {
	if builder.ColorEnabledProvider != nil {
		return builder.ColorEnabledProvider()
	}
	return !color.NoColor && command.OutOrStdout() == os.Stdout
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
