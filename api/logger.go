// Package api
// Author: momentics
//
// Logger is the pluggable diagnostic seam for this codebase, matching
// the rest of the family's habit of logging through fmt/log call sites
// rather than a structured-logging dependency. Embedders that already
// run a structured logger can redirect output by swapping this func.

package api

import "log"

// Logger matches log.Printf's shape so log.Printf itself is a valid
// Logger with no adapter needed.
type Logger func(format string, args ...any)

// DefaultLogger logs via the standard library's log package.
func DefaultLogger(format string, args ...any) {
	log.Printf(format, args...)
}

// NopLogger discards all output. Useful in tests that assert on
// behavior rather than log lines.
func NopLogger(string, ...any) {}
