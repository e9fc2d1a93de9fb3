package organizer_test

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"sortdl/internal/organizer"
	"sortdl/internal/placement"
	"sortdl/internal/testsupport"
)

func TestPruneEmptyDirectoriesKeepsRootAndConverges(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "a/b/c/", "a/d/", "keep/file.txt", "keep/empty/")
	exec := organizer.NewExecutor(organizer.Mode{}, nil, nil)

	result := exec.PruneEmptyDirectories(context.Background(), root)

	want := []string{"keep/", "keep/file.txt"}
	if got := testsupport.ListTree(t, root); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
	if len(result.Removed) != 5 {
		t.Fatalf("removed = %v", result.Removed)
	}
	if result.Passes != 2 {
		t.Fatalf("passes = %d, want 2", result.Passes)
	}

	again := exec.PruneEmptyDirectories(context.Background(), root)
	if len(again.Removed) != 0 {
		t.Fatalf("second prune removed %v", again.Removed)
	}
}

func TestPruneEmptyRootIsKept(t *testing.T) {
	root := testsupport.TempDir(t)
	exec := organizer.NewExecutor(organizer.Mode{}, nil, nil)

	result := exec.PruneEmptyDirectories(context.Background(), root)

	if len(result.Removed) != 0 {
		t.Fatalf("removed = %v", result.Removed)
	}
}

func TestPruneDeclinedDirectoryKeepsAncestors(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "a/b/", "c/")
	declined := filepath.Join(root, "a", "b")
	decider := organizer.DeciderFunc(func(_ context.Context, a organizer.Action) (bool, error) {
		return a.Path != declined, nil
	})
	exec := organizer.NewExecutor(organizer.Mode{Confirm: true}, decider, nil)

	result := exec.PruneEmptyDirectories(context.Background(), root)

	want := []string{"a/", "a/b/"}
	if got := testsupport.ListTree(t, root); !slices.Equal(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
	if !slices.Equal(result.Declined, []string{declined}) {
		t.Fatalf("declined = %v", result.Declined)
	}
}

func TestPruneDryRunReportsWithoutRemoving(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "a/b/c/")
	exec := organizer.NewExecutor(organizer.Mode{DryRun: true}, nil, nil)

	result := exec.PruneEmptyDirectories(context.Background(), root)

	if len(result.Removed) != 3 {
		t.Fatalf("removed = %v", result.Removed)
	}
	if got := testsupport.ListTree(t, root); len(got) != 3 {
		t.Fatalf("dry run removed directories: %v", got)
	}
}

func TestDryRunMoveConflictsWithPlannedDestination(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "one.mkv", "two.mkv")
	exec := organizer.NewExecutor(organizer.Mode{DryRun: true}, nil, nil)
	dest := filepath.Join(root, "library", "Film (2000)", "Film (2000).mkv")

	first := exec.Move(context.Background(), placement.Plan{Source: filepath.Join(root, "one.mkv"), Destination: dest, Kind: placement.KindMovie})
	second := exec.Move(context.Background(), placement.Plan{Source: filepath.Join(root, "two.mkv"), Destination: dest, Kind: placement.KindMovie})

	if first.Outcome != organizer.OutcomeMoved {
		t.Fatalf("first outcome = %s", first.Outcome)
	}
	if second.Outcome != organizer.OutcomeError {
		t.Fatalf("second outcome = %s, want error", second.Outcome)
	}
}

func TestDeleteContinuesAfterFailure(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "b.txt")
	exec := organizer.NewExecutor(organizer.Mode{}, nil, nil)

	results := exec.Delete(context.Background(), []string{filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")})

	if results[0].Outcome != organizer.OutcomeError || results[0].Err == nil {
		t.Fatalf("missing file result = %+v", results[0])
	}
	if results[1].Outcome != organizer.OutcomeDeleted {
		t.Fatalf("second result = %+v", results[1])
	}
}

func TestPromptDecider(t *testing.T) {
	var out bytes.Buffer
	decider := organizer.NewPromptDecider(strings.NewReader("maybe\ny\nNO\n"), &out)
	action := organizer.Action{Kind: organizer.ActionDelete, Path: "/tmp/x"}

	ok, err := decider.Confirm(context.Background(), action)
	if err != nil || !ok {
		t.Fatalf("first answer = %v, %v", ok, err)
	}
	ok, err = decider.Confirm(context.Background(), action)
	if err != nil || ok {
		t.Fatalf("second answer = %v, %v", ok, err)
	}
	ok, err = decider.Confirm(context.Background(), action)
	if err != nil || ok {
		t.Fatalf("eof answer = %v, %v", ok, err)
	}
	if got := strings.Count(out.String(), "delete /tmp/x ? [y/n]"); got != 4 {
		t.Fatalf("prompted %d times, output %q", got, out.String())
	}
}
