package scm

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const (
	gitRevParseSubcommandConstant     = "rev-parse"
	gitRevParseVerifyFlagConstant     = "--verify"
	gitRevParseQuietFlagConstant      = "--quiet"
	commitPeelSuffixConstant          = "^{commit}"
	upstreamReferenceTemplateConstant = "%s/%s"
	tagReferencePrefixConstant        = "refs/tags/"
	gitMergeSubcommandConstant        = "merge"
	gitStrategyOptionFlagConstant     = "-X"
	gitStrategyOptionOursConstant     = "ours"
	gitMessageFlagConstant            = "-m"
	placeholderMergeMessageConstant   = "XXX merge"
	referenceResolvedMessageConstant  = "Resolved merge reference"
	mergingReferenceMessageConstant   = "Merging upstream reference"
	logFieldResolvedConstant          = "resolved_reference"
	logFieldBranchConstant            = "branch"
)

var commitHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

// ResolveReference returns <upstream remote>/<reference> when that names a commit, then
// refs/tags/<reference> for a fetched tag, and finally the reference itself when it looks like a
// commit hash. A failed lookup other than "not found" is returned as is rather than being mistaken
// for a missing ref.
func (service *Service) ResolveReference(executionContext context.Context, options Options) (string, error) {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return "", normalizeError
	}
	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)

	candidates := []string{
		fmt.Sprintf(upstreamReferenceTemplateConstant, service.upstreamRemoteName, normalized.MergeReference),
		tagReferencePrefixConstant + normalized.MergeReference,
	}
	resolvedReference := ""
	for _, candidate := range candidates {
		found, lookupError := service.commitExists(executionContext, repositoryPath, candidate)
		if lookupError != nil {
			return "", lookupError
		}
		if found {
			resolvedReference = candidate
			break
		}
	}

	if len(resolvedReference) == 0 {
		if !commitHashPattern.MatchString(normalized.MergeReference) {
			return "", UnresolvableReferenceError{Reference: normalized.MergeReference}
		}
		resolvedReference = normalized.MergeReference
	}

	service.logger.Info(referenceResolvedMessageConstant,
		zap.String(logFieldReferenceConstant, normalized.MergeReference),
		zap.String(logFieldResolvedConstant, resolvedReference),
	)
	return resolvedReference, nil
}

// commitExists peels reference to a commit. Exit code 1 means the reference does not exist.
func (service *Service) commitExists(executionContext context.Context, repositoryPath string, reference string) (bool, error) {
	_, lookupError := service.runGit(
		executionContext,
		repositoryPath,
		gitRevParseSubcommandConstant,
		gitRevParseVerifyFlagConstant,
		gitRevParseQuietFlagConstant,
		reference+commitPeelSuffixConstant,
	)
	switch {
	case lookupError == nil:
		return true, nil
	case isExitCode(lookupError, 1):
		return false, nil
	default:
		return false, lookupError
	}
}

// Merge checks out the target branch and merges the resolved reference, keeping the downstream side of
// every conflicting hunk. The placeholder message is replaced by Squash.
func (service *Service) Merge(executionContext context.Context, options Options, resolvedReference string) error {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return normalizeError
	}
	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)
	service.logger.Info(mergingReferenceMessageConstant,
		zap.String(logFieldResolvedConstant, resolvedReference),
		zap.String(logFieldBranchConstant, normalized.Branch),
	)

	if _, checkoutError := service.runGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, normalized.Branch); checkoutError != nil {
		return checkoutError
	}
	_, mergeError := service.runGit(
		executionContext,
		repositoryPath,
		gitMergeSubcommandConstant,
		resolvedReference,
		gitStrategyOptionFlagConstant,
		gitStrategyOptionOursConstant,
		gitMessageFlagConstant,
		placeholderMergeMessageConstant,
	)
	return mergeError
}
