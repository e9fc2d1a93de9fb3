// Package preflight provides readiness checks for the filesystem paths an
// organizer run depends on.
//
// The CLI calls RunAll before starting the pipeline. Any failed check makes
// the invocation malformed and the run exits before touching a file.
package preflight
