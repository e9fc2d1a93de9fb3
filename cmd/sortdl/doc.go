// Command sortdl sorts a download directory into movie and TV libraries.
//
//	sortdl [flags] SOURCE [MOVIES_DIR TV_DIR]
//
// Videos are identified through TMDB and moved into "Title (Year)" and
// "Show/Season NN" folders, subtitles travel with their movie, unrecognized
// files are deleted, and empty directories are pruned. Use --dryrun to see
// the plan without touching anything and --confirmation to approve each
// action.
package main
