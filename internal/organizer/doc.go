// Package organizer sorts a download directory into movie and TV libraries.
//
// A run walks the source root once, classifying every file by extension.
// Videos are parsed, resolved against the metadata resolver, and moved into
// the library layout; a moved movie takes its nearby subtitle files with it.
// Unrecognized files are deleted after the walk, and empty directories left
// behind are pruned. The source root itself is always kept.
//
// Every mutation goes through an Executor, which honors dry-run and confirm
// modes. A dry run performs no filesystem changes but reports the same plan
// a real run would carry out.
package organizer
