// Package pathutil resolves user-supplied file paths against the platform root.
package pathutil

import (
	"os"
	"regexp"
	"strings"
)

// driveLetterPattern matches Windows absolute paths such as C:\data or d:/data.
var driveLetterPattern = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// IsAbsolute reports whether path is absolute in either POSIX or drive-letter form.
// The check is purely lexical so it behaves the same on every host OS.
func IsAbsolute(path string) bool {
	if strings.HasPrefix(path, "/") {
		return true
	}
	return driveLetterPattern.MatchString(path)
}

// Resolve returns path unchanged when it is already absolute. Otherwise it joins
// rootPath (trailing separators trimmed) and path with the OS path separator.
// No cleaning is performed; malformed input fails later at existence-check time.
func Resolve(path, rootPath string) string {
	if IsAbsolute(path) {
		return path
	}
	return strings.TrimRight(rootPath, `/\`) + string(os.PathSeparator) + path
}
