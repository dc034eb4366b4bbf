// Package utils provides small shared helpers for logging, text, and vectors.
package utils

// Truncate shortens s to at most max bytes for log output, appending "..."
// when anything was cut. Non-positive max disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
