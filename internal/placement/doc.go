// Package placement computes library destinations for movies, TV episodes,
// and movie subtitles. Every function is pure; nothing here touches the
// filesystem.
package placement
