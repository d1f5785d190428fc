// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger turns external tool lifecycle events into concise
// messages while detailed telemetry continues to flow through structured
// loggers. StatusPrinter renders colored per-distribution sync lines.
package ui
