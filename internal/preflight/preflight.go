package preflight

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"sortdl/internal/fileutil"
	"sortdl/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Path   string
	Passed bool
	Detail string
}

// Roots names the directories a run touches.
type Roots struct {
	Source string
	Movies string
	TV     string
}

// RunAll checks the source and both library roots, plus that no library
// root sits inside the source tree where cleanup could reach it.
func RunAll(roots Roots) []Result {
	results := []Result{
		CheckSourceRoot(roots.Source),
		CheckLibraryRoot("Movies directory", roots.Movies),
		CheckLibraryRoot("TV directory", roots.TV),
	}
	for _, lib := range []struct{ name, path string }{
		{"Movies directory", roots.Movies},
		{"TV directory", roots.TV},
	} {
		if roots.Source != "" && lib.path != "" && nested(roots.Source, lib.path) {
			results = append(results, Result{
				Name:   lib.name,
				Path:   lib.path,
				Detail: fmt.Sprintf("%s (error: inside source directory %s)", lib.path, roots.Source),
			})
		}
	}
	return results
}

// Err folds failed results into a single validation error, or nil when
// everything passed.
func Err(results []Result) error {
	var failures []error
	for _, r := range results {
		if r.Passed {
			continue
		}
		failures = append(failures, fmt.Errorf("%s: %s", r.Name, r.Detail))
	}
	if len(failures) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", "check directories", "", errors.Join(failures...))
}

// nested compares symlink-resolved forms so a library root reached through
// a link into the source tree is still caught.
func nested(root, path string) bool {
	root, errRoot := fileutil.ResolvePath(root)
	path, errPath := fileutil.ResolvePath(path)
	if errRoot != nil || errPath != nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
