// Package subtitles associates subtitle files found near a movie with that
// movie. The search climbs from the video's directory toward the source root
// and never scans the root's own subtree, so unrelated downloads elsewhere in
// the tree are not picked up.
package subtitles
