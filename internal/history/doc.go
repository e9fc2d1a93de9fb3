// Package history keeps a SQLite journal of organizer runs so past moves
// and deletions can be reviewed after the terminal output is gone.
//
// Each run is stored with its per-outcome counts, every report entry, and
// the directories pruned. Dry runs are not recorded.
package history
