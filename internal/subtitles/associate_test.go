package subtitles_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"sortdl/internal/subtitles"
	"sortdl/internal/testsupport"
)

func TestFindSubtitlesClimbsToRoot(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root,
		"Movie.2020/Movie.2020.mkv",
		"Movie.2020/Movie.2020.srt",
		"Movie.2020/Subs/English.srt",
		"Movie.2020/Subs/notes.txt",
		"Other.Movie/other.srt",
		"top-level.srt",
	)

	got := subtitles.FindSubtitles(filepath.Join(root, "Movie.2020", "Movie.2020.mkv"), root, nil)
	want := []string{
		filepath.Join(root, "Movie.2020", "Movie.2020.srt"),
		filepath.Join(root, "Movie.2020", "Subs", "English.srt"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected subtitles:\n got %v\nwant %v", got, want)
	}
}

func TestFindSubtitlesIncludesIntermediateAncestors(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root,
		"Pack/Movie/Movie.mkv",
		"Pack/Movie/a.sub",
		"Pack/pack.srt",
		"Pack/Sibling/sibling.stl",
		"root.srt",
	)

	got := subtitles.FindSubtitles(filepath.Join(root, "Pack", "Movie", "Movie.mkv"), root, nil)
	want := []string{
		filepath.Join(root, "Pack", "Movie", "a.sub"),
		filepath.Join(root, "Pack", "Sibling", "sibling.stl"),
		filepath.Join(root, "Pack", "pack.srt"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected subtitles:\n got %v\nwant %v", got, want)
	}
}

func TestFindSubtitlesVideoAtRootScansNothing(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "Movie.mkv", "Movie.srt")

	if got := subtitles.FindSubtitles(filepath.Join(root, "Movie.mkv"), root, nil); len(got) != 0 {
		t.Fatalf("expected no subtitles for video directly under root, got %v", got)
	}
}

func TestFindSubtitlesRootWithTrailingSeparator(t *testing.T) {
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "A/B/video.mkv", "A/B/x.srt", "A/y.srt", "z.srt")
	video := filepath.Join(root, "A", "B", "video.mkv")

	plain := subtitles.FindSubtitles(video, root, nil)
	slashed := subtitles.FindSubtitles(video, root+string(filepath.Separator), nil)
	if !slices.Equal(plain, slashed) {
		t.Fatalf("trailing separator changed results: %v vs %v", plain, slashed)
	}
	if len(plain) != 2 {
		t.Fatalf("expected two subtitles, got %v", plain)
	}
}

func TestFindSubtitlesRelativeRoot(t *testing.T) {
	base := testsupport.TempDir(t)
	testsupport.MkTree(t, base, "dl/Movie/Movie.mkv", "dl/Movie/Movie.srt", "dl/stray.srt")
	t.Chdir(base)

	got := subtitles.FindSubtitles(filepath.Join("dl", "Movie", "Movie.mkv"), "dl", nil)
	if len(got) != 1 || filepath.Base(got[0]) != "Movie.srt" {
		t.Fatalf("unexpected subtitles for relative root: %v", got)
	}
}

func TestFindSubtitlesVideoOutsideRootTerminates(t *testing.T) {
	root := testsupport.TempDir(t)
	other := testsupport.TempDir(t)
	testsupport.MkTree(t, other, "Movie/Movie.mkv", "Movie/Movie.srt")

	if got := subtitles.FindSubtitles(filepath.Join(other, "Movie", "Movie.mkv"), root, nil); len(got) != 0 {
		t.Fatalf("expected no subtitles outside root, got %v", got)
	}
}

func TestFindSubtitlesSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are ineffective as root")
	}
	root := testsupport.TempDir(t)
	testsupport.MkTree(t, root, "Movie/Movie.mkv", "Movie/ok.srt", "Movie/locked/hidden.srt")
	locked := filepath.Join(root, "Movie", "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := subtitles.FindSubtitles(filepath.Join(root, "Movie", "Movie.mkv"), root, nil)
	if len(got) != 1 || filepath.Base(got[0]) != "ok.srt" {
		t.Fatalf("unexpected subtitles: %v", got)
	}
}
