package scm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/execshell"
	"github.com/fwsync/fwsync/internal/ui"
)

const (
	commandUseConstant                    = "git-merge"
	commandShortDescriptionConstant       = "Merge upstream package history into the freeworld repository"
	commandLongDescriptionConstant        = "git-merge clones or resets the freeworld repository below the scm root, merges the upstream reference while keeping downstream files on conflict, reconciles the sources manifest and amends the merge commit. Nothing is pushed; review the result before pushing."
	packageNameFlagNameConstant           = "pkgname"
	packageNameFlagDescriptionConstant    = "Upstream package name (default from the package configuration value)"
	freeworldNameFlagNameConstant         = "freeworldname"
	freeworldNameFlagDescriptionConstant  = "Downstream package name (default <pkgname><suffix>)"
	branchFlagNameConstant                = "branch"
	branchFlagDescriptionConstant         = "Downstream branch receiving the merge"
	mergeReferenceFlagNameConstant        = "merge-ref"
	mergeReferenceFlagDescriptionConstant = "Upstream branch, tag or commit hash to merge (default: the branch)"
	nonfreeFlagNameConstant               = "nonfree"
	nonfreeFlagDescriptionConstant        = "Clone from the nonfree namespace instead of free"
	missingPackageNameMessageConstant     = "package name is required; supply --pkgname or set package in the configuration"
	mergeSummaryTemplateConstant          = "MERGED: %s into %s (%s)\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the git-merge command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     Executor
	FileSystem                   FileSystem
}

// Build constructs the git-merge command.
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
	command.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	command.Flags().String(mergeReferenceFlagNameConstant, "", mergeReferenceFlagDescriptionConstant)
	command.Flags().Bool(nonfreeFlagNameConstant, false, nonfreeFlagDescriptionConstant)

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
	if len(strings.TrimSpace(freeworldName)) == 0 {
		freeworldName = packageName + configuration.DownstreamSuffix
	}

	branch, branchError := command.Flags().GetString(branchFlagNameConstant)
	if branchError != nil {
		return branchError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		branch = configuration.Branch
	}

	mergeReference, mergeReferenceError := command.Flags().GetString(mergeReferenceFlagNameConstant)
	if mergeReferenceError != nil {
		return mergeReferenceError
	}

	nonfreeRequested, nonfreeError := command.Flags().GetBool(nonfreeFlagNameConstant)
	if nonfreeError != nil {
		return nonfreeError
	}
	namespace := configuration.Namespace
	if nonfreeRequested {
		namespace = NamespaceNonfree
	}

	executor, executorError := builder.resolveExecutor(configuration)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(Dependencies{
		Executor:            executor,
		FileSystem:          builder.FileSystem,
		Logger:              builder.resolveLogger(),
		Layout:              Layout{Root: configuration.ScmRoot},
		UpstreamRemoteName:  configuration.UpstreamRemote,
		UpstreamURLTemplate: configuration.UpstreamURLTemplate,
	})
	if serviceError != nil {
		return serviceError
	}

	result, runError := service.Run(command.Context(), Options{
		UpstreamName:   packageName,
		DownstreamName: freeworldName,
		Branch:         branch,
		MergeReference: mergeReference,
		Namespace:      namespace,
	})
	if runError != nil {
		return runError
	}

	fmt.Fprintf(command.OutOrStdout(), mergeSummaryTemplateConstant, result.ResolvedReference, result.RepositoryPath, result.CommitMessage)
	return nil
}

func (builder *CommandBuilder) resolveExecutor(configuration CommandConfiguration) (Executor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	executorOptions := []execshell.ShellExecutorOption{execshell.WithCommandTimeout(configuration.CommandTimeout)}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		consoleLogger := zap.NewNop()
		if builder.ConsoleLoggerProvider != nil {
			consoleLogger = builder.ConsoleLoggerProvider()
		}
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(consoleLogger)))
	}

	return execshell.NewShellExecutor(builder.resolveLogger(), execshell.NewOSCommandRunner(), executorOptions...)
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
