package scm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/execshell"
	"github.com/fwsync/fwsync/internal/koji"
)

const (
	rpmSpecFileFlagConstant               = "--specfile"
	gitCommitSubcommandConstant           = "commit"
	gitAmendFlagConstant                  = "--amend"
	architectureSeparatorConstant         = "."
	mergeMessageTemplateConstant          = "Merge Fedora, %s-%s-%s"
	mergeMessageWithEpochTemplateConstant = "Merge Fedora, %s-%s:%s-%s"
	emptyQueryOutputMessageConstant       = "no package line"
	missingArchitectureMessageConstant    = "missing architecture suffix"
	amendingMergeCommitMessageConstant    = "Amending merge commit"
)

// FormatMergeMessage builds the final merge commit message from the first line of a spec query.
// The line is a name-[epoch:]version-release.arch string; the architecture and the last release
// component, the distribution tag, are dropped and the upstream package name replaces the name.
func FormatMergeMessage(upstreamName string, specQueryOutput string) (string, error) {
	lines := nonEmptyLines(specQueryOutput)
	if len(lines) == 0 {
		return "", SpecQueryError{Output: specQueryOutput, Message: emptyQueryOutputMessageConstant}
	}
	nevra := lines[0]

	architectureIndex := strings.LastIndex(nevra, architectureSeparatorConstant)
	if architectureIndex <= 0 {
		return "", SpecQueryError{Output: nevra, Message: missingArchitectureMessageConstant}
	}
	components, splitError := koji.SplitNEVR(nevra[:architectureIndex])
	if splitError != nil {
		return "", splitError
	}

	release := components.Release
	if distIndex := strings.LastIndex(release, architectureSeparatorConstant); distIndex > 0 {
		release = release[:distIndex]
	}

	if components.HasEpoch {
		return fmt.Sprintf(mergeMessageWithEpochTemplateConstant, upstreamName, components.Epoch, components.Version, release), nil
	}
	return fmt.Sprintf(mergeMessageTemplateConstant, upstreamName, components.Version, release), nil
}

// Squash replaces the placeholder merge message with one naming the merged upstream build and returns it.
func (service *Service) Squash(executionContext context.Context, options Options) (string, error) {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return "", normalizeError
	}
	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)

	queryResult, queryError := service.executor.ExecuteRPM(executionContext, execshell.CommandDetails{
		Arguments:        []string{rpmSpecFileFlagConstant, normalized.DownstreamName + specFileSuffixConstant},
		WorkingDirectory: repositoryPath,
	})
	if queryError != nil {
		return "", queryError
	}

	commitMessage, messageError := FormatMergeMessage(normalized.UpstreamName, queryResult.StandardOutput)
	if messageError != nil {
		return "", messageError
	}

	service.logger.Info(amendingMergeCommitMessageConstant, zap.String(logFieldCommitMessageConstant, commitMessage))
	if _, amendError := service.runGit(executionContext, repositoryPath, gitCommitSubcommandConstant, gitAmendFlagConstant, gitMessageFlagConstant, commitMessage); amendError != nil {
		return "", amendError
	}
	return commitMessage, nil
}
