// Package logtail reads the end of Otter's JSON log file for the TUI logs
// pane.
//
// Read returns the last N lines of a file using a ring buffer, so large logs
// are never held in memory whole. Parse decodes one zap JSON line into an
// Entry and Format renders it on a single line:
//
//	{"level":"warn","ts":"2025-03-01T12:00:06.000Z","msg":"refresh failed","error":"timeout"}
//	→ 12:00:06 WARN  refresh failed error=timeout
//
// Lines that are not JSON (a panic trace, say) pass through unchanged.
// Colouring by level is left to the UI.
package logtail
