// Package ui renders styled terminal output for the CLI with lipgloss.
//
// [Palette] holds the named text styles and [SessionsTable] renders stored sessions as a bordered table.
// Token values never reach this package; it only sees [models.SessionSummary].
package ui
