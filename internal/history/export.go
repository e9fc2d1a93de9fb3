package history

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	runsSheet    = "Runs"
	actionsSheet = "Actions"
)

// ExportWorkbook builds a spreadsheet with one row per run and one row per
// recorded action. limit bounds the number of runs as in ListRuns.
func (s *Store) ExportWorkbook(ctx context.Context, limit int) (*excelize.File, error) {
	runs, err := s.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", runsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(actionsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create actions sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	runHeaders := []any{"Run", "Started", "Finished", "Source", "Movies", "TV", "Moved", "Deleted", "Kept", "Skipped", "Errors", "Pruned", "Confirm", "Interrupted"}
	actionHeaders := []any{"Run", "Seq", "Outcome", "Kind", "Path", "Destination", "Reason"}
	if err := writeRow(f, runsSheet, 1, runHeaders); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeRow(f, actionsSheet, 1, actionHeaders); err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.SetRowStyle(runsSheet, 1, 1, headerStyle)
	_ = f.SetRowStyle(actionsSheet, 1, 1, headerStyle)

	actionRow := 2
	for i, run := range runs {
		row := []any{
			run.ID,
			run.StartedAt.Format(time.DateTime),
			run.FinishedAt.Format(time.DateTime),
			run.SourceRoot,
			run.MoviesRoot,
			run.TVRoot,
			run.Moved,
			run.Deleted,
			run.Kept,
			run.Skipped,
			run.Errors,
			run.Pruned,
			run.Confirm,
			run.Interrupted,
		}
		if err := writeRow(f, runsSheet, i+2, row); err != nil {
			_ = f.Close()
			return nil, err
		}

		actions, err := s.Actions(ctx, run.ID)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		for _, a := range actions {
			row := []any{run.ID, a.Seq, string(a.Outcome), a.Kind, a.Path, a.Destination, a.Reason}
			if err := writeRow(f, actionsSheet, actionRow, row); err != nil {
				_ = f.Close()
				return nil, err
			}
			actionRow++
		}
	}

	_ = f.SetColWidth(runsSheet, "A", "A", 38)
	_ = f.SetColWidth(runsSheet, "B", "C", 20)
	_ = f.SetColWidth(runsSheet, "D", "F", 40)
	_ = f.SetColWidth(actionsSheet, "A", "A", 38)
	_ = f.SetColWidth(actionsSheet, "E", "G", 60)
	f.SetActiveSheet(0)
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
