// Package scm merges upstream Fedora package history into a local clone of
// the downstream freeworld repository.
//
// Service runs a linear sequence of steps against <root>/<downstream>:
// ensure the clone exists, validate or create remotes, synchronize to a clean
// state, merge the resolved upstream reference keeping downstream files on
// conflict, reconcile the sources manifest, and amend the merge commit with a
// message naming the merged build. Every tool runs with an explicit working
// directory; nothing is pushed.
package scm
