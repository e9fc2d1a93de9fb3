package history

import (
	"database/sql"
	"fmt"
	"time"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                          Run
		startedAt                    string
		finishedAt                   sql.NullString
		dryRun, confirm, interrupted int
		moviesRoot, tvRoot           sql.NullString
	)
	if err := row.Scan(
		&run.ID, &startedAt, &finishedAt, &dryRun, &confirm, &interrupted,
		&run.SourceRoot, &moviesRoot, &tvRoot,
		&run.Moved, &run.Deleted, &run.Kept, &run.Skipped, &run.Errors, &run.Pruned,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.DryRun = dryRun != 0
	run.Confirm = confirm != 0
	run.Interrupted = interrupted != 0
	run.MoviesRoot = moviesRoot.String
	run.TVRoot = tvRoot.String
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
