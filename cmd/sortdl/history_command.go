package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sortdl/internal/config"
	"sortdl/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent organizer runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format(time.DateTime),
						run.SourceRoot,
						itoa(run.Moved),
						itoa(run.Deleted),
						itoa(run.Skipped),
						itoa(run.Errors),
						itoa(run.Pruned),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Source", "Moved", "Deleted", "Skipped", "Errors", "Pruned"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
					nil,
				))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print as JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx, &asJSON))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))
	return historyCmd
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Write recorded runs and actions to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve export path: %w", err)
			}
			return withHistory(ctx, func(store *history.Store) error {
				wb, err := store.ExportWorkbook(cmd.Context(), limit)
				if err != nil {
					return err
				}
				defer wb.Close()
				if err := wb.SaveAs(target); err != nil {
					return fmt.Errorf("save workbook: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported history to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of runs to export (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show every action of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				actions, err := store.Actions(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				pruned, err := store.PrunedDirectories(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if *asJSON {
					return writeJSON(cmd, struct {
						Run     *history.Run     `json:"run"`
						Actions []history.Action `json:"actions"`
						Pruned  []string         `json:"pruned_directories"`
					}{run, actions, pruned})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:         %s\n", run.ID)
				fmt.Fprintf(out, "Started:     %s\n", run.StartedAt.Local().Format(time.DateTime))
				fmt.Fprintf(out, "Duration:    %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
				fmt.Fprintf(out, "Source:      %s\n", run.SourceRoot)
				fmt.Fprintf(out, "Confirm:     %s\n", yesNo(run.Confirm))
				fmt.Fprintf(out, "Interrupted: %s\n", yesNo(run.Interrupted))
				rows := make([][]string, 0, len(actions))
				for _, a := range actions {
					detail := a.Destination
					if detail == "" {
						detail = a.Reason
					}
					rows = append(rows, []string{string(a.Outcome), a.Kind, relativeTo(run.SourceRoot, a.Path), detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Outcome", "Kind", "File", "Destination / Reason"}, rows, nil, nil))
				for _, dir := range pruned {
					fmt.Fprintf(out, "  pruned %s\n", relativeTo(run.SourceRoot, dir))
				}
				return nil
			})
		},
	}
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
