package fileutil

import (
	"path/filepath"
)

// ResolvePath returns path as an absolute, cleaned path with symlinks
// resolved. When path does not exist yet, the nearest existing ancestor is
// resolved and the missing tail is appended unchanged.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var tail []string
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			parts := append([]string{resolved}, tail...)
			return filepath.Join(parts...), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent
	}
}
