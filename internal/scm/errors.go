package scm

import (
	"fmt"
	"strings"
)

const (
	remoteMismatchTemplateConstant         = "remote %s points at %q, expected a repository named %s"
	missingRemoteTemplateConstant          = "remote %s is not configured, expected a repository named %s"
	manifestReconciliationTemplateConstant = "sources manifest reconciliation failed: %s (untracked files: %s)"
	noUntrackedFilesLabelConstant          = "none"
	unresolvableReferenceTemplateConstant  = "reference %q matches no upstream branch or fetched tag and is not a commit hash"
	invalidInputTemplateConstant           = "invalid %s: %s"
	untrackedFilesSeparatorConstant        = ", "
	specQueryTemplateConstant              = "unexpected spec query output %q: %s"
)

// RemoteMismatchError reports a remote that is missing or does not point at the expected repository.
type RemoteMismatchError struct {
	RemoteName   string
	ActualURL    string
	ExpectedName string
}

// Error describes the mismatch.
func (mismatchError RemoteMismatchError) Error() string {
	if len(mismatchError.ActualURL) == 0 {
		return fmt.Sprintf(missingRemoteTemplateConstant, mismatchError.RemoteName, mismatchError.ExpectedName)
	}
	return fmt.Sprintf(remoteMismatchTemplateConstant, mismatchError.RemoteName, mismatchError.ActualURL, mismatchError.ExpectedName)
}

// ManifestReconciliationError reports that the working tree did not contain exactly one new source file.
type ManifestReconciliationError struct {
	UntrackedFiles []string
	Message        string
}

// Error describes the unexpected working tree state.
func (reconciliationError ManifestReconciliationError) Error() string {
	untrackedFiles := noUntrackedFilesLabelConstant
	if len(reconciliationError.UntrackedFiles) > 0 {
		untrackedFiles = strings.Join(reconciliationError.UntrackedFiles, untrackedFilesSeparatorConstant)
	}
	return fmt.Sprintf(manifestReconciliationTemplateConstant, reconciliationError.Message, untrackedFiles)
}

// UnresolvableReferenceError reports a merge reference that is neither an upstream branch nor a tag and does not look like a commit hash.
type UnresolvableReferenceError struct {
	Reference string
}

// Error describes the reference.
func (referenceError UnresolvableReferenceError) Error() string {
	return fmt.Sprintf(unresolvableReferenceTemplateConstant, referenceError.Reference)
}

// InvalidInputError reports an option that failed validation.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid option.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// SpecQueryError reports spec file query output that does not start with a name-[epoch:]version-release.arch line.
type SpecQueryError struct {
	Output  string
	Message string
}

// Error describes the unexpected output.
func (queryError SpecQueryError) Error() string {
	return fmt.Sprintf(specQueryTemplateConstant, queryError.Output, queryError.Message)
}
