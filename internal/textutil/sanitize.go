package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes name safe to use as a single path segment.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control characters are removed. Whitespace runs collapse to
// one space, and leading spaces plus trailing spaces or dots are trimmed. A
// name that ends up empty, "." or ".." becomes "_". Applying the function to
// its own output returns the same string.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimRight(name, " .")
	if name == "" {
		return "_"
	}
	return name
}
