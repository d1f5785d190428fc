package scm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/execshell"
)

const (
	executorMissingMessageConstant          = "tool executor not configured"
	defaultUpstreamRemoteNameConstant       = "fedora"
	defaultUpstreamURLTemplateConstant      = "https://src.fedoraproject.org/rpms/%s.git"
	originRemoteNameConstant                = "origin"
	ensureRepositoryFailureTemplateConstant = "failed to prepare repository %s: %w"
	setupRemotesFailureTemplateConstant     = "failed to validate remotes of %s: %w"
	synchronizeFailureTemplateConstant      = "failed to synchronize %s: %w"
	resolveReferenceFailureTemplateConstant = "failed to resolve %s: %w"
	mergeFailureTemplateConstant            = "failed to merge %s into %s: %w"
	reconcileSourcesFailureTemplateConstant = "failed to reconcile sources of %s: %w"
	squashFailureTemplateConstant           = "failed to amend merge commit of %s: %w"
	runStartedMessageConstant               = "Merging upstream history"
	runCompletedMessageConstant             = "Merge prepared for review"
	logFieldUpstreamPackageConstant         = "package"
	logFieldDownstreamPackageConstant       = "downstream_package"
	logFieldRepositoryPathConstant          = "repository_path"
	logFieldReferenceConstant               = "reference"
	logFieldCommitMessageConstant           = "commit_message"
	logFieldSourcesConstant                 = "sources"
)

// ErrExecutorNotConfigured indicates the service was constructed without a tool executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// Executor runs the external tools the orchestrator depends on.
type Executor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteFedoraPackager(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteFusionPackager(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSpecTool(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteRPM(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies enumerates external collaborators required for merge operations.
type Dependencies struct {
	Executor            Executor
	FileSystem          FileSystem
	Logger              *zap.Logger
	Layout              Layout
	UpstreamRemoteName  string
	UpstreamURLTemplate string
	DefaultBranch       string
}

// Result captures the observable outcomes of a merge run.
type Result struct {
	RepositoryPath    string
	ResolvedReference string
	CommitMessage     string
	Sources           []string
}

// Service orchestrates upstream merges into downstream package clones.
type Service struct {
	executor            Executor
	fileSystem          FileSystem
	logger              *zap.Logger
	layout              Layout
	upstreamRemoteName  string
	upstreamURLTemplate string
	defaultBranch       string
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	service := &Service{
		executor:            dependencies.Executor,
		fileSystem:          dependencies.FileSystem,
		logger:              dependencies.Logger,
		layout:              dependencies.Layout,
		upstreamRemoteName:  strings.TrimSpace(dependencies.UpstreamRemoteName),
		upstreamURLTemplate: strings.TrimSpace(dependencies.UpstreamURLTemplate),
		defaultBranch:       strings.TrimSpace(dependencies.DefaultBranch),
	}
	if service.fileSystem == nil {
		service.fileSystem = OSFileSystem{}
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if len(service.upstreamRemoteName) == 0 {
		service.upstreamRemoteName = defaultUpstreamRemoteNameConstant
	}
	if len(service.upstreamURLTemplate) == 0 {
		service.upstreamURLTemplate = defaultUpstreamURLTemplateConstant
	}
	if len(service.defaultBranch) == 0 {
		service.defaultBranch = defaultBranchConstant
	}
	return service, nil
}

// RepositoryPath returns the clone location for the options.
func (service *Service) RepositoryPath(options Options) (string, error) {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return "", normalizeError
	}
	return service.layout.RepositoryPath(normalized.DownstreamName), nil
}

// Run performs every step in order and stops at the first failure.
// Re-running after a failure starts over from a clean synchronized state.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return Result{}, normalizeError
	}

	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)
	service.logger.Info(runStartedMessageConstant,
		zap.String(logFieldUpstreamPackageConstant, normalized.UpstreamName),
		zap.String(logFieldDownstreamPackageConstant, normalized.DownstreamName),
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldReferenceConstant, normalized.MergeReference),
	)

	if ensureError := service.EnsureRepository(executionContext, normalized); ensureError != nil {
		return Result{}, fmt.Errorf(ensureRepositoryFailureTemplateConstant, repositoryPath, ensureError)
	}
	if remotesError := service.SetupRemotes(executionContext, normalized); remotesError != nil {
		return Result{}, fmt.Errorf(setupRemotesFailureTemplateConstant, repositoryPath, remotesError)
	}
	if synchronizeError := service.Synchronize(executionContext, normalized); synchronizeError != nil {
		return Result{}, fmt.Errorf(synchronizeFailureTemplateConstant, repositoryPath, synchronizeError)
	}

	resolvedReference, resolveError := service.ResolveReference(executionContext, normalized)
	if resolveError != nil {
		return Result{}, fmt.Errorf(resolveReferenceFailureTemplateConstant, normalized.MergeReference, resolveError)
	}
	if mergeError := service.Merge(executionContext, normalized, resolvedReference); mergeError != nil {
		return Result{}, fmt.Errorf(mergeFailureTemplateConstant, resolvedReference, normalized.Branch, mergeError)
	}

	sources, sourcesError := service.ReconcileSources(executionContext, normalized, resolvedReference)
	if sourcesError != nil {
		return Result{}, fmt.Errorf(reconcileSourcesFailureTemplateConstant, normalized.DownstreamName, sourcesError)
	}

	commitMessage, squashError := service.Squash(executionContext, normalized)
	if squashError != nil {
		return Result{}, fmt.Errorf(squashFailureTemplateConstant, normalized.DownstreamName, squashError)
	}

	result := Result{
		RepositoryPath:    repositoryPath,
		ResolvedReference: resolvedReference,
		CommitMessage:     commitMessage,
		Sources:           sources,
	}
	service.logger.Info(runCompletedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldReferenceConstant, resolvedReference),
		zap.String(logFieldCommitMessageConstant, commitMessage),
		zap.Strings(logFieldSourcesConstant, sources),
	)
	return result, nil
}

func (service *Service) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	result, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// isExitCode reports whether err is a tool failure with the given exit code.
func isExitCode(err error, exitCode int) bool {
	var commandFailure execshell.CommandFailedError
	return errors.As(err, &commandFailure) && commandFailure.Result.ExitCode == exitCode
}
