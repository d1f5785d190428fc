package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitProtocolPrefixConstant           = "git://"
	fileProtocolPrefixConstant          = "file://"
	sshUserDelimiterConstant            = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	missingRepositoryMessageConstant    = "remote url does not name a repository"
)

// RemoteProtocol enumerates the transports a package repository remote may use.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
	RemoteProtocolFile  RemoteProtocol = RemoteProtocol("file")
)

// RemoteURL represents a structured git remote URL.
// Path holds everything after the host, for example "rpms/chromium.git" or "free/chromium-freeworld".
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Path       string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Accepted forms are ssh://, scp-like user@host:path, https://, http://, git://, file:// and local paths.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolSSH, stripUser(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant)))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolHTTP, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitProtocolPrefixConstant):
		return parseHostedRemote(remote, RemoteProtocolGit, strings.TrimPrefix(trimmedRemote, gitProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, fileProtocolPrefixConstant):
		return buildRemote(remote, RemoteProtocolFile, "", strings.TrimPrefix(trimmedRemote, fileProtocolPrefixConstant))
	case isScpLikeRemote(trimmedRemote):
		return parseScpLikeRemote(remote, trimmedRemote)
	default:
		return buildRemote(remote, RemoteProtocolFile, "", trimmedRemote)
	}
}

// MatchesRepository reports whether the remote URL names the repository, with or without a .git suffix.
func MatchesRepository(remote string, repositoryName string) bool {
	trimmedName := strings.TrimSuffix(strings.TrimSpace(repositoryName), gitSuffixConstant)
	if len(trimmedName) == 0 {
		return false
	}
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return false
	}
	return parsedRemote.Repository == trimmedName
}

func parseHostedRemote(originalRemote string, protocol RemoteProtocol, hostAndPath string) (RemoteURL, error) {
	separatorIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if separatorIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemote(originalRemote, protocol, hostAndPath[:separatorIndex], hostAndPath[separatorIndex+1:])
}

func parseScpLikeRemote(originalRemote string, trimmedRemote string) (RemoteURL, error) {
	hostAndPath := stripUser(trimmedRemote)
	delimiterIndex := strings.Index(hostAndPath, scpPathDelimiterConstant)
	if delimiterIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemote(originalRemote, RemoteProtocolSSH, hostAndPath[:delimiterIndex], hostAndPath[delimiterIndex+1:])
}

func buildRemote(originalRemote string, protocol RemoteProtocol, host string, path string) (RemoteURL, error) {
	trimmedPath := strings.TrimRight(path, pathSeparatorConstant)
	lastSeparatorIndex := strings.LastIndex(trimmedPath, pathSeparatorConstant)
	repository := strings.TrimSuffix(trimmedPath[lastSeparatorIndex+1:], gitSuffixConstant)
	if len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: originalRemote, Message: missingRepositoryMessageConstant}
	}
	return RemoteURL{Protocol: protocol, Host: host, Path: trimmedPath, Repository: repository}, nil
}

func stripUser(hostAndPath string) string {
	userSplitIndex := strings.Index(hostAndPath, sshUserDelimiterConstant)
	separatorIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if userSplitIndex == -1 || (separatorIndex != -1 && separatorIndex < userSplitIndex) {
		return hostAndPath
	}
	return hostAndPath[userSplitIndex+1:]
}

// isScpLikeRemote matches user@host:path and host:path, where the colon precedes any slash.
func isScpLikeRemote(remote string) bool {
	delimiterIndex := strings.Index(remote, scpPathDelimiterConstant)
	if delimiterIndex <= 0 {
		return false
	}
	separatorIndex := strings.Index(remote, pathSeparatorConstant)
	return separatorIndex == -1 || delimiterIndex < separatorIndex
}
