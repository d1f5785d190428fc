// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and deadlines via ShellExecutor, exposes
// OSCommandRunner for default process execution, and defines the abstractions
// used throughout fwsync to run git, fedpkg, rfpkg, spectool, and rpm in a
// testable manner. Every invocation receives an explicit working directory;
// the process working directory is never changed.
package execshell
