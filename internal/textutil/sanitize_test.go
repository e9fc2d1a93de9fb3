package textutil_test

import (
	"testing"

	"sortdl/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Star Wars: Episode IV", "Star Wars- Episode IV"},
		{"What If...?", "What If"},
		{"AC/DC", "AC-DC"},
		{`"Quoted" <Name> | x*y`, "Quoted Name x-y"},
		{"  Padded\tTitle  ", "Padded Title"},
		{"Ctrl\x00\x07Chars", "CtrlChars"},
		{"Ends With Dots...", "Ends With Dots"},
		{"", "_"},
		{"???", "_"},
		{"..", "_"},
		{".hidden", ".hidden"},
		{"Amélie", "Amélie"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileNameIsIdempotent(t *testing.T) {
	inputs := []string{
		"Star Wars: Episode IV",
		" a /b\\c:d*e?f\"g<h>i|j ",
		"trailing dot .",
		"x . . .",
		"multi   space\n\nnewline",
		"",
		"\x01",
		"C:\\Windows\\",
	}
	for _, in := range inputs {
		once := textutil.SanitizeFileName(in)
		twice := textutil.SanitizeFileName(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTitleSimilarity(t *testing.T) {
	if got := textutil.TitleSimilarity("The Matrix", "the matrix"); got < 0.999 {
		t.Fatalf("expected identical titles to score 1, got %f", got)
	}
	if got := textutil.TitleSimilarity("The Matrix", "Finding Nemo"); got != 0 {
		t.Fatalf("expected unrelated titles to score 0, got %f", got)
	}
	partial := textutil.TitleSimilarity("Matrix Reloaded", "The Matrix")
	if partial <= 0 || partial >= 1 {
		t.Fatalf("expected partial overlap score, got %f", partial)
	}
	if got := textutil.TitleSimilarity("", "x"); got != 0 {
		t.Fatalf("expected empty title to score 0, got %f", got)
	}
}

func TestTernary(t *testing.T) {
	if textutil.Ternary(true, "a", "b") != "a" || textutil.Ternary(false, 1, 2) != 2 {
		t.Fatal("unexpected ternary result")
	}
}
