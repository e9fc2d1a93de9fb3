// Package textutil provides filename sanitization and light text comparison
// helpers.
//
// SanitizeFileName produces single path segments safe on common filesystems.
// TitleSimilarity scores how closely a metadata title matches the title parsed
// from a release name.
package textutil
