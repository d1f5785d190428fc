// Package cli constructs the fwsync command-line interface, wiring the Cobra
// command hierarchy, the layered configuration loader and the zap loggers
// shared by the koji and git-merge commands.
package cli
