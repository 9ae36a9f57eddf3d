// Package paths locates probecov state inside a project root.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the per-project state directory.
	StateDirName = ".probecov"
	// ConfigFileName is the config file inside the state directory.
	ConfigFileName = "config.json"
	// LogsSubdir holds the CLI log file.
	LogsSubdir = "logs"
	// LogFileName is the CLI log file.
	LogFileName = "probecov.log"
	// DefaultDatabaseName is the snapshot store file name.
	DefaultDatabaseName = "probecov.db"
)

// StateDir returns <root>/.probecov.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// EnsureStateDir creates the state directory if needed and returns it.
func EnsureStateDir(root string) (string, error) {
	dir := StateDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigPath returns the config file path.
func ConfigPath(root string) string {
	return filepath.Join(StateDir(root), ConfigFileName)
}

// LogsDir returns <root>/.probecov/logs.
func LogsDir(root string) string {
	return filepath.Join(StateDir(root), LogsSubdir)
}

// EnsureLogsDir creates the logs directory if needed and returns it.
func EnsureLogsDir(root string) (string, error) {
	dir := LogsDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// LogPath returns the CLI log file path.
func LogPath(root string) string {
	return filepath.Join(LogsDir(root), LogFileName)
}

// DatabasePath resolves the snapshot store path. Relative names live in the
// state directory; an empty name uses DefaultDatabaseName.
func DatabasePath(root, name string) string {
	if name == "" {
		name = DefaultDatabaseName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(StateDir(root), name)
}

// ResolvePath resolves a user-supplied path against the project root.
func ResolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return JoinRepoPath(root, p)
}

// CanonicalizePath converts an absolute path to a root-relative path with
// forward slashes. Symlinks are resolved when the path exists.
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = root
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRepo checks if a path is within the project root
func IsWithinRepo(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// JoinRepoPath joins a root with a slash-separated relative path
func JoinRepoPath(root string, canonicalPath string) string {
	normalized := strings.ReplaceAll(canonicalPath, "\\", "/")
	return filepath.Join(append([]string{root}, strings.Split(normalized, "/")...)...)
}
