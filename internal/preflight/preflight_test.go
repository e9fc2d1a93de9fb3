package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sortdl/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSourceRoot_Empty(t *testing.T) {
	if CheckSourceRoot("").Passed {
		t.Fatal("expected failure for empty source")
	}
}

func TestCheckLibraryRoot_MissingButCreatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library", "movies")
	result := CheckLibraryRoot("Movies directory", path)
	if !result.Passed {
		t.Fatalf("expected pass for creatable root, got: %s", result.Detail)
	}
}

func TestCheckLibraryRoot_Unconfigured(t *testing.T) {
	if CheckLibraryRoot("TV directory", "").Passed {
		t.Fatal("expected failure for unconfigured root")
	}
}

func TestCheckLibraryRoot_ParentIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckLibraryRoot("Movies directory", filepath.Join(f, "movies")).Passed {
		t.Fatal("expected failure when ancestor is a file")
	}
}

func TestRunAll_Passes(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "downloads")
	if err := os.Mkdir(source, 0o755); err != nil {
		t.Fatal(err)
	}
	results := RunAll(Roots{Source: source, Movies: filepath.Join(base, "movies"), TV: filepath.Join(base, "tv")})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunAll_LibraryInsideSource(t *testing.T) {
	source := t.TempDir()
	results := RunAll(Roots{Source: source, Movies: filepath.Join(source, "movies"), TV: t.TempDir()})
	err := Err(results)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNested(t *testing.T) {
	cases := []struct {
		root, path string
		want       bool
	}{
		{"/a", "/a", true},
		{"/a", "/a/b", true},
		{"/a", "/ab", false},
		{"/a/b", "/a", false},
		{"/a", "/c/..x", false},
	}
	for _, tc := range cases {
		if got := nested(tc.root, tc.path); got != tc.want {
			t.Errorf("nested(%q, %q) = %v, want %v", tc.root, tc.path, got, tc.want)
		}
	}
}

func TestRunAll_LibrarySymlinkedIntoSource(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "downloads")
	if err := os.MkdirAll(filepath.Join(source, "movies"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "movies-link")
	if err := os.Symlink(filepath.Join(source, "movies"), link); err != nil {
		t.Fatal(err)
	}

	results := RunAll(Roots{Source: source, Movies: link, TV: filepath.Join(base, "tv")})
	if err := Err(results); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for symlinked library root, got %v", err)
	}
}
