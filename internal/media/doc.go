// Package media classifies downloaded files by extension into video, audio,
// subtitle, or unrecognized.
package media
