package subtitles

import (
	"io/fs"
	"path/filepath"
	"strings"

	"sortdl/internal/fileutil"
	"sortdl/internal/media"
)

// FindSubtitles collects subtitle files related to videoPath. It scans the
// whole subtree of the video's directory, then each ancestor's subtree, and
// stops before scanning sourceRoot itself. Results are unique and ordered by
// discovery: nearer directories first, lexical order within a directory.
//
// Paths are cleaned and made absolute before comparison, so a root given
// with a trailing separator or relative form still terminates the climb.
// The climb also stops if it leaves sourceRoot or reaches the filesystem
// root. Unreadable directories are skipped.
func FindSubtitles(videoPath, sourceRoot string, classifier *media.Classifier) []string {
	if classifier == nil {
		classifier = media.Default()
	}
	root := canonical(sourceRoot)
	dir := filepath.Dir(canonical(videoPath))

	seen := make(map[string]struct{})
	var found []string
	for withinRoot(dir, root) {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if classifier.ClassifyPath(path) != media.CategorySubtitle {
				return nil
			}
			if _, ok := seen[path]; ok {
				return nil
			}
			seen[path] = struct{}{}
			found = append(found, path)
			return nil
		})

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return found
}

// withinRoot reports whether dir is strictly below root.
func withinRoot(dir, root string) bool {
	if dir == root {
		return false
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func canonical(path string) string {
	resolved, err := fileutil.ResolvePath(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return resolved
}
