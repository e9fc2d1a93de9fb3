package organizer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sortdl/internal/logging"
	"sortdl/internal/services"
)

const defaultMaxPasses = 16

// CleanupResult reports the directories removed (or, in a dry run, that
// would be removed) beneath a root.
type CleanupResult struct {
	Removed  []string
	Declined []string
	Failed   []Result
	Passes   int
}

// PruneEmptyDirectories removes empty directories strictly beneath root,
// deepest first. Passes repeat until one removes nothing so parents emptied
// by their children's removal go too. root itself is never removed.
func (e *Executor) PruneEmptyDirectories(ctx context.Context, root string) CleanupResult {
	var result CleanupResult
	root = filepath.Clean(root)
	logger := logging.WithContext(services.WithStage(ctx, "cleanup"), e.logger)

	skip := make(map[string]struct{})
	for pass := 1; pass <= e.maxPasses; pass++ {
		if ctx.Err() != nil {
			break
		}
		result.Passes = pass
		removed := 0
		for _, dir := range e.listDirectories(root) {
			if ctx.Err() != nil {
				break
			}
			if _, ok := skip[dir]; ok {
				continue
			}
			if !e.isEmptyDir(dir) {
				continue
			}
			action := Action{Kind: ActionRemoveDir, Path: dir}
			if ok, res := e.approve(ctx, action); !ok {
				skip[dir] = struct{}{}
				if res.Outcome == OutcomeSkippedDeclined {
					result.Declined = append(result.Declined, dir)
				} else {
					result.Failed = append(result.Failed, res)
				}
				continue
			}
			if e.mode.DryRun {
				logger.Info("dry run: would remove empty directory", logging.String("directory", dir))
				e.markVanished(dir)
			} else if err := os.Remove(dir); err != nil {
				skip[dir] = struct{}{}
				result.Failed = append(result.Failed, e.failed(logger, action, "remove directory", err))
				continue
			} else {
				logger.Info("removed empty directory", logging.String("directory", dir))
			}
			result.Removed = append(result.Removed, dir)
			removed++
		}
		if removed == 0 {
			break
		}
	}
	if result.Passes == e.maxPasses && len(result.Removed) > 0 {
		logger.Debug("cleanup reached pass limit", logging.Int("passes", result.Passes))
	}
	return result
}

// listDirectories returns every directory strictly beneath root, deepest
// first. Unreadable subtrees are skipped.
func (e *Executor) listDirectories(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == root {
			return nil
		}
		if e.isVanished(path) {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	sort.SliceStable(dirs, func(i, j int) bool {
		di := strings.Count(dirs[i], string(filepath.Separator))
		dj := strings.Count(dirs[j], string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return dirs[i] > dirs[j]
	})
	return dirs
}

// isEmptyDir reports whether dir has no entries, ignoring entries a dry run
// has already accounted for.
func (e *Executor) isEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !e.isVanished(filepath.Join(dir, entry.Name())) {
			return false
		}
	}
	return true
}
