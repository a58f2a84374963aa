package addon

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath unifies separators to the host form and cleans p.
// Both "\" and "/" are accepted regardless of platform.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")
	return filepath.Clean(filepath.FromSlash(p))
}

// ResolveRoot normalizes p and returns its absolute form when it names an
// existing directory. Anything else yields ok=false.
func ResolveRoot(p string) (string, bool) {
	if strings.TrimSpace(p) == "" {
		return "", false
	}
	abs, err := filepath.Abs(NormalizePath(p))
	if err != nil {
		return "", false
	}
	st, err := os.Stat(abs)
	if err != nil || !st.IsDir() {
		return "", false
	}
	return abs, true
}
