package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	// "go run" builds into the temp dir.
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}

	// "go test" binaries end in .test
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath determines the actual data dir based on safety rules.
// With forceTemp it re-roots the path into a temporary directory so a dev
// run never touches the user's real map.
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	// Paths already under the temp dir (t.TempDir()) are trusted as is.
	cleanUserPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanUserPath) {
		rel, err := filepath.Rel(os.TempDir(), cleanUserPath)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return cleanUserPath
		}
	}

	baseTemp := filepath.Join(os.TempDir(), "geoarch-dev")
	subName := filepath.Base(cleanUserPath)
	if userPath == "" || subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}
	return filepath.Join(baseTemp, subName)
}
