package config

import (
	"os"
	"strings"
)

// UnnamedFile replaces names which are empty after cleaning.
const UnnamedFile = "unnamed"

// CleanFileName drops characters not allowed in file names on this platform
// together with leading dots.
func CleanFileName(in string) string {
	reserved := reservedNameRunes + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(r rune) rune {
		if r == 0 || strings.ContainsRune(reserved, r) {
			return -1
		}
		return r
	}, in)
	if out = strings.TrimLeft(out, "."); out == "" {
		return UnnamedFile
	}
	return out
}
