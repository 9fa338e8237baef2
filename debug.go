package scenery

import "log"

// SetDebugMode enables or disables debug logging. When enabled, skipped
// subtrees (precomp cycles, matte chain cycles, malformed mask scopes) and
// per-draw stats are logged to stderr.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// debugf logs a debug line with the package prefix. Callers gate on
// globalDebug to keep the hot path free of fmt work.
func debugf(format string, args ...any) {
	log.Printf("scenery: "+format, args...)
}
