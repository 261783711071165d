package utils

import "path/filepath"

// ResolvePath returns path unchanged when it is absolute or baseDir is
// empty, and joins it onto baseDir otherwise.
func ResolvePath(path, baseDir string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResolvePaths applies ResolvePath to every entry.
func ResolvePaths(paths []string, baseDir string) []string {
	if len(paths) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved = append(resolved, ResolvePath(p, baseDir))
	}
	return resolved
}
