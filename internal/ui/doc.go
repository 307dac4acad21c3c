// Package ui prints dockers' own commentary to the terminal.
//
// Command results (container ids, tables, log lines) are written to stdout
// by the commands themselves. This package covers everything else:
//   - Fail: ✘ Red X, for the error that ends a command
//   - Warn: ○ Yellow circle, for engine warnings
//
// All output goes to ui.Out (defaults to os.Stderr) so tests can capture it.
// Colors follow fatih/color, which disables them when Out is not a terminal
// or NO_COLOR is set.
package ui
