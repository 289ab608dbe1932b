// Package ui renders terminal output for the CLI with lipgloss styles.
//
// [Palette] holds the named styles; [Startup] and [RouteTable] format the banner the serve command prints.
// Colors are dropped automatically when output is not a terminal.
package ui
