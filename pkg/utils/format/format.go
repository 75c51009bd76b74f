// Package format renders sizes for user-facing messages.
package format

import (
	"fmt"
	"strings"
)

// Bytes returns a human-readable binary byte size (e.g. "1.5 MB").
func Bytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// Limit formats a size ceiling the way upload messages show it: no space and
// no trailing ".0", e.g. "10MB" or "1.5MB".
func Limit(b int64) string {
	s := strings.ReplaceAll(Bytes(b), " ", "")
	return strings.Replace(s, ".0", "", 1)
}
