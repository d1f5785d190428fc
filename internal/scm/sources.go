package scm

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fwsync/fwsync/internal/execshell"
)

const (
	sourcesManifestFileNameConstant        = "sources"
	sourcesManifestPermissionsConstant     = 0o644
	specFileSuffixConstant                 = ".spec"
	packagerNameFlagConstant               = "--name"
	packagerSourcesSubcommandConstant      = "sources"
	packagerNewSourcesSubcommandConstant   = "new-sources"
	specToolGetFilesFlagConstant           = "-g"
	gitLsFilesSubcommandConstant           = "ls-files"
	gitLsFilesOthersFlagConstant           = "--others"
	gitLsFilesExcludeStandardFlagConstant  = "--exclude-standard"
	gitHeadReferenceConstant               = "HEAD"
	taggedEntrySeparatorConstant           = " = "
	taggedEntryOpeningConstant             = "("
	taggedEntryClosingConstant             = ")"
	lineSeparatorConstant                  = "\n"
	expectedSingleNewSourceMessageConstant = "expected exactly one new source file"
	fetchingUpstreamSourcesMessageConstant = "Fetching upstream sources"
	registeringSourcesMessageConstant      = "Registering downstream sources"
	logFieldHeadConstant                   = "head"
)

// ParseSourcesManifest returns the file names listed in a sources manifest. Both the
// "<hash>  <file>" and the "<ALGORITHM> (<file>) = <hash>" line formats are accepted.
func ParseSourcesManifest(content string) []string {
	var fileNames []string
	for _, line := range strings.Split(content, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		if strings.Contains(trimmedLine, taggedEntrySeparatorConstant) {
			if fileName, parsed := parseTaggedEntry(trimmedLine); parsed {
				fileNames = append(fileNames, fileName)
			}
			continue
		}
		fields := strings.Fields(trimmedLine)
		fileNames = append(fileNames, fields[len(fields)-1])
	}
	return fileNames
}

func parseTaggedEntry(line string) (string, bool) {
	descriptor, _, _ := strings.Cut(line, taggedEntrySeparatorConstant)
	openingIndex := strings.Index(descriptor, taggedEntryOpeningConstant)
	closingIndex := strings.LastIndex(descriptor, taggedEntryClosingConstant)
	if openingIndex < 0 || closingIndex <= openingIndex+1 {
		return "", false
	}
	return descriptor[openingIndex+1 : closingIndex], true
}

// ReconcileSources rebuilds the downstream sources manifest after a merge.
//
// Upstream sources are fetched from a temporary hard reset to the resolved reference, with manifest
// lines naming either package removed first; the merge commit is restored afterwards on every path.
// The downstream spec sources are then downloaded, and the new manifest is the previous entries that do
// not belong to either package plus the single file left untracked by the downloads. Any other number of
// untracked files is a ManifestReconciliationError.
func (service *Service) ReconcileSources(executionContext context.Context, options Options, resolvedReference string) ([]string, error) {
	normalized, normalizeError := options.Normalize()
	if normalizeError != nil {
		return nil, normalizeError
	}
	repositoryPath := service.layout.RepositoryPath(normalized.DownstreamName)
	manifestPath := filepath.Join(repositoryPath, sourcesManifestFileNameConstant)
	packageNames := []string{normalized.DownstreamName, normalized.UpstreamName}

	headCommit, headError := service.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if headError != nil {
		return nil, headError
	}

	service.logger.Info(fetchingUpstreamSourcesMessageConstant,
		zap.String(logFieldResolvedConstant, resolvedReference),
		zap.String(logFieldHeadConstant, headCommit),
	)
	upstreamError := service.fetchUpstreamSources(executionContext, normalized, repositoryPath, manifestPath, resolvedReference, packageNames)
	_, restoreError := service.runGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitResetHardFlagConstant, headCommit)
	if upstreamError != nil || restoreError != nil {
		return nil, errors.Join(upstreamError, restoreError)
	}

	if _, specToolError := service.executor.ExecuteSpecTool(executionContext, execshell.CommandDetails{
		Arguments:        []string{specToolGetFilesFlagConstant, normalized.DownstreamName + specFileSuffixConstant},
		WorkingDirectory: repositoryPath,
	}); specToolError != nil {
		return nil, specToolError
	}

	manifestContent, readError := service.readManifest(manifestPath)
	if readError != nil {
		return nil, readError
	}
	var sources []string
	for _, fileName := range ParseSourcesManifest(manifestContent) {
		if !hasAnyPrefix(fileName, packageNames) {
			sources = append(sources, fileName)
		}
	}

	untrackedOutput, untrackedError := service.runGit(
		executionContext,
		repositoryPath,
		gitLsFilesSubcommandConstant,
		gitLsFilesOthersFlagConstant,
		gitLsFilesExcludeStandardFlagConstant,
	)
	if untrackedError != nil {
		return nil, untrackedError
	}
	untrackedFiles := nonEmptyLines(untrackedOutput)
	if len(untrackedFiles) != 1 {
		return nil, ManifestReconciliationError{UntrackedFiles: untrackedFiles, Message: expectedSingleNewSourceMessageConstant}
	}
	sources = deduplicate(append(sources, untrackedFiles[0]))

	service.logger.Info(registeringSourcesMessageConstant, zap.Strings(logFieldSourcesConstant, sources))
	if _, newSourcesError := service.executor.ExecuteFusionPackager(executionContext, execshell.CommandDetails{
		Arguments:        append([]string{packagerNewSourcesSubcommandConstant}, sources...),
		WorkingDirectory: repositoryPath,
	}); newSourcesError != nil {
		return nil, newSourcesError
	}
	return sources, nil
}

func (service *Service) fetchUpstreamSources(executionContext context.Context, options Options, repositoryPath string, manifestPath string, resolvedReference string, packageNames []string) error {
	if _, resetError := service.runGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitResetHardFlagConstant, resolvedReference); resetError != nil {
		return resetError
	}

	manifestContent, readError := service.readManifest(manifestPath)
	if readError != nil {
		return readError
	}
	var retainedLines []string
	for _, line := range nonEmptyLines(manifestContent) {
		if !containsAny(line, packageNames) {
			retainedLines = append(retainedLines, line)
		}
	}
	rewrittenManifest := strings.Join(retainedLines, lineSeparatorConstant)
	if len(retainedLines) > 0 {
		rewrittenManifest += lineSeparatorConstant
	}
	if writeError := service.fileSystem.WriteFile(manifestPath, []byte(rewrittenManifest), sourcesManifestPermissionsConstant); writeError != nil {
		return writeError
	}

	_, sourcesError := service.executor.ExecuteFedoraPackager(executionContext, execshell.CommandDetails{
		Arguments:        []string{packagerNameFlagConstant, options.UpstreamName, packagerSourcesSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	return sourcesError
}

// readManifest returns the manifest content, treating a missing manifest as empty.
func (service *Service) readManifest(manifestPath string) (string, error) {
	content, readError := service.fileSystem.ReadFile(manifestPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", nil
		}
		return "", readError
	}
	return string(content), nil
}

func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) > 0 {
			lines = append(lines, trimmedLine)
		}
	}
	return lines
}

func containsAny(value string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(value, candidate) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func deduplicate(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, duplicate := seen[value]; duplicate {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique
}
