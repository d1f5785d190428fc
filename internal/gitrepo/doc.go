// Package gitrepo parses git remote URLs so that package repositories can be
// matched by name regardless of the transport a remote was configured with.
package gitrepo
