package scm

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	namespaceFreeConstant               = "free"
	namespaceNonfreeConstant            = "nonfree"
	defaultBranchConstant               = "master"
	defaultDownstreamSuffixConstant     = "-freeworld"
	defaultScmRootConstant              = "scm"
	defaultPackageNameConstant          = "chromium"
	homeDirectoryShortcutConstant       = "~"
	upstreamNameFieldConstant           = "upstream package name"
	downstreamNameFieldConstant         = "downstream package name"
	branchFieldConstant                 = "branch"
	mergeReferenceFieldConstant         = "merge reference"
	namespaceFieldConstant              = "namespace"
	requiredValueMessageConstant        = "value required"
	unsupportedNamespaceMessageConstant = "expected free or nonfree"
	pathSeparatorMessageConstant        = "must not contain path separators"
	leadingHyphenMessageConstant        = "must not start with a hyphen"
	pathSeparatorCharactersConstant     = `/\`
	optionPrefixConstant                = "-"
)

// Namespace selects the RPM Fusion repository collection of the downstream package.
type Namespace string

// Supported namespaces.
const (
	NamespaceFree    Namespace = Namespace(namespaceFreeConstant)
	NamespaceNonfree Namespace = Namespace(namespaceNonfreeConstant)
)

// ParseNamespace converts free or nonfree, in any case, into a Namespace.
func ParseNamespace(value string) (Namespace, error) {
	switch Namespace(strings.ToLower(strings.TrimSpace(value))) {
	case NamespaceFree:
		return NamespaceFree, nil
	case NamespaceNonfree:
		return NamespaceNonfree, nil
	default:
		return "", InvalidInputError{FieldName: namespaceFieldConstant, Message: unsupportedNamespaceMessageConstant}
	}
}

// UnmarshalText allows namespaces to be decoded from configuration values.
func (namespace *Namespace) UnmarshalText(text []byte) error {
	parsedNamespace, parseError := ParseNamespace(string(text))
	if parseError != nil {
		return parseError
	}
	*namespace = parsedNamespace
	return nil
}

// Options configures a git merge run.
type Options struct {
	UpstreamName   string
	DownstreamName string
	Branch         string
	MergeReference string
	Namespace      Namespace
}

// Normalize trims values, applies defaults and validates the result.
// The downstream name defaults to <upstream>-freeworld, the branch to master,
// the merge reference to the branch and the namespace to free.
func (options Options) Normalize() (Options, error) {
	normalized := Options{
		UpstreamName:   strings.TrimSpace(options.UpstreamName),
		DownstreamName: strings.TrimSpace(options.DownstreamName),
		Branch:         strings.TrimSpace(options.Branch),
		MergeReference: strings.TrimSpace(options.MergeReference),
		Namespace:      options.Namespace,
	}

	if len(normalized.UpstreamName) == 0 {
		return Options{}, InvalidInputError{FieldName: upstreamNameFieldConstant, Message: requiredValueMessageConstant}
	}
	if len(normalized.DownstreamName) == 0 {
		normalized.DownstreamName = normalized.UpstreamName + defaultDownstreamSuffixConstant
	}
	if len(normalized.Branch) == 0 {
		normalized.Branch = defaultBranchConstant
	}
	if len(normalized.MergeReference) == 0 {
		normalized.MergeReference = normalized.Branch
	}
	if len(normalized.Namespace) == 0 {
		normalized.Namespace = NamespaceFree
	}

	namespace, namespaceError := ParseNamespace(string(normalized.Namespace))
	if namespaceError != nil {
		return Options{}, namespaceError
	}
	normalized.Namespace = namespace

	if strings.ContainsAny(normalized.UpstreamName, pathSeparatorCharactersConstant) {
		return Options{}, InvalidInputError{FieldName: upstreamNameFieldConstant, Message: pathSeparatorMessageConstant}
	}
	if strings.ContainsAny(normalized.DownstreamName, pathSeparatorCharactersConstant) {
		return Options{}, InvalidInputError{FieldName: downstreamNameFieldConstant, Message: pathSeparatorMessageConstant}
	}
	if strings.HasPrefix(normalized.Branch, optionPrefixConstant) {
		return Options{}, InvalidInputError{FieldName: branchFieldConstant, Message: leadingHyphenMessageConstant}
	}
	if strings.HasPrefix(normalized.MergeReference, optionPrefixConstant) {
		return Options{}, InvalidInputError{FieldName: mergeReferenceFieldConstant, Message: leadingHyphenMessageConstant}
	}
	return normalized, nil
}

// Layout locates package clones below a common root directory.
type Layout struct {
	Root string
}

// ResolveRoot expands a leading ~ and defaults an empty root to ./scm.
func (layout Layout) ResolveRoot() string {
	root := strings.TrimSpace(layout.Root)
	if len(root) == 0 {
		return defaultScmRootConstant
	}
	if root == homeDirectoryShortcutConstant || strings.HasPrefix(root, homeDirectoryShortcutConstant+string(filepath.Separator)) || strings.HasPrefix(root, homeDirectoryShortcutConstant+"/") {
		homeDirectory, homeError := os.UserHomeDir()
		if homeError == nil && len(homeDirectory) > 0 {
			return filepath.Join(homeDirectory, strings.TrimPrefix(root, homeDirectoryShortcutConstant))
		}
	}
	return root
}

// RepositoryPath returns <root>/<downstream>.
func (layout Layout) RepositoryPath(downstreamName string) string {
	return filepath.Join(layout.ResolveRoot(), downstreamName)
}
