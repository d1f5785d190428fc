package scm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/execshell"
	"github.com/fwsync/fwsync/internal/gitrepo"
)

const (
	scmRootPermissionsConstant                  = 0o755
	namespacedRepositoryTemplateConstant        = "%s/%s"
	remoteURLConfigurationKeyTemplateConstant   = "remote.%s.url"
	packagerCloneSubcommandConstant             = "clone"
	gitRemoteSubcommandConstant                 = "remote"
	gitRemoteAddSubcommandConstant              = "add"
	gitConfigSubcommandConstant                 = "config"
	gitConfigGetFlagConstant                    = "--get"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchAllFlagConstant                     = "--all"
	gitCheckoutSubcommandConstant               = "checkout"
	gitResetSubcommandConstant                  = "reset"
	gitResetHardFlagConstant                    = "--hard"
	gitCleanSubcommandConstant                  = "clean"
	gitCleanForceFlagConstant                   = "-f"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	remoteTrackingBranchTemplateConstant        = "%s/%s"
	repositoryPathIsFileTemplateConstant        = "%s exists and is not a directory"
	cloningRepositoryMessageConstant            = "Cloning downstream repository"
	reusingRepositoryMessageConstant            = "Reusing downstream repository"
	addingUpstreamRemoteMessageConstant         = "Adding upstream remote"
	synchronizingRepositoryMessageConstant      = "Synchronizing repository to a clean state"
	logFieldNamespaceConstant                   = "namespace"
	logFieldRemoteConstant                      = "remote"
	logFieldRemoteURLConstant                   = "remote_url"
)

// EnsureRepository creates the scm root and clones the downstream repository into it unless a clone already exists.
func (service *Service) EnsureRepository(executionContext context.Context, options Options) error {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return normalizeError
	}

	rootPath := service.layout.ResolveRoot()
	if mkdirError := service.fileSystem.MkdirAll(rootPath, scmRootPermissionsConstant); mkdirError != nil {
		return mkdirError
	}

	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)
	repositoryInfo, statError := service.fileSystem.Stat(repositoryPath)
	if statError == nil {
		if !repositoryInfo.IsDir() {
			return fmt.Errorf(repositoryPathIsFileTemplateConstant, repositoryPath)
		}
		service.logger.Info(reusingRepositoryMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
		return nil
	}
	if !errors.Is(statError, fs.ErrNotExist) {
		return statError
	}

	service.logger.Info(cloningRepositoryMessageConstant,
		zap.String(logFieldDownstreamPackageConstant, normalized.DownstreamName),
		zap.String(logFieldNamespaceConstant, string(normalized.Namespace)),
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
	)
	_, cloneError := service.executor.ExecuteFusionPackager(executionContext, execshell.CommandDetails{
		Arguments:        []string{packagerCloneSubcommandConstant, fmt.Sprintf(namespacedRepositoryTemplateConstant, normalized.Namespace, normalized.DownstreamName)},
		WorkingDirectory: rootPath,
	})
	return cloneError
}

// SetupRemotes requires origin to point at the downstream repository and the upstream remote to point at
// the upstream repository, adding the upstream remote when it is missing.
func (service *Service) SetupRemotes(executionContext context.Context, options Options) error {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return normalizeError
	}
	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)

	remoteOutput, remoteError := service.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant)
	if remoteError != nil {
		return remoteError
	}
	configuredRemotes := make(map[string]struct{})
	for _, remoteName := range strings.Fields(remoteOutput) {
		configuredRemotes[remoteName] = struct{}{}
	}

	if _, originConfigured := configuredRemotes[originRemoteNameConstant]; !originConfigured {
		return RemoteMismatchError{RemoteName: originRemoteNameConstant, ExpectedName: normalized.DownstreamName}
	}
	if validationError := service.validateRemote(executionContext, repositoryPath, originRemoteNameConstant, normalized.DownstreamName); validationError != nil {
		return validationError
	}

	if _, upstreamConfigured := configuredRemotes[service.upstreamRemoteName]; upstreamConfigured {
		return service.validateRemote(executionContext, repositoryPath, service.upstreamRemoteName, normalized.UpstreamName)
	}

	upstreamURL := fmt.Sprintf(service.upstreamURLTemplate, normalized.UpstreamName)
	service.logger.Info(addingUpstreamRemoteMessageConstant,
		zap.String(logFieldRemoteConstant, service.upstreamRemoteName),
		zap.String(logFieldRemoteURLConstant, upstreamURL),
	)
	_, addError := service.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, service.upstreamRemoteName, upstreamURL)
	return addError
}

func (service *Service) validateRemote(executionContext context.Context, repositoryPath string, remoteName string, expectedRepository string) error {
	remoteURL, configError := service.runGit(
		executionContext,
		repositoryPath,
		gitConfigSubcommandConstant,
		gitConfigGetFlagConstant,
		fmt.Sprintf(remoteURLConfigurationKeyTemplateConstant, remoteName),
	)
	if configError != nil && !isExitCode(configError, 1) {
		return configError
	}
	if !gitrepo.MatchesRepository(remoteURL, expectedRepository) {
		return RemoteMismatchError{RemoteName: remoteName, ActualURL: remoteURL, ExpectedName: expectedRepository}
	}
	return nil
}

// Synchronize fetches every remote and resets the default branch to its origin counterpart, removing
// untracked files. Running it twice in a row leaves the working tree unchanged the second time.
func (service *Service) Synchronize(executionContext context.Context, options Options) error {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return normalizeError
	}
	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)
	service.logger.Info(synchronizingRepositoryMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))

	if _, fetchError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, gitFetchAllFlagConstant},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	}); fetchError != nil {
		return fetchError
	}

	steps := [][]string{
		{gitCheckoutSubcommandConstant, service.defaultBranch},
		{gitResetSubcommandConstant, gitResetHardFlagConstant, fmt.Sprintf(remoteTrackingBranchTemplateConstant, originRemoteNameConstant, service.defaultBranch)},
		{gitCleanSubcommandConstant, gitCleanForceFlagConstant},
	}
	for _, arguments := range steps {
		if _, stepError := service.runGit(executionContext, repositoryPath, arguments...); stepError != nil {
			return stepError
		}
	}
	return nil
}
