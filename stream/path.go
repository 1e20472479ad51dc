package stream

import (
	"path/filepath"
	"strings"
)

// NormalizePath rewrites every separator in p to the host separator.
// The tool mixes forward and back slashes within a single path.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}
