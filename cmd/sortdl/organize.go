package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sortdl/internal/config"
	"sortdl/internal/history"
	"sortdl/internal/identification"
	"sortdl/internal/identification/tmdb"
	"sortdl/internal/logging"
	"sortdl/internal/media"
	"sortdl/internal/organizer"
	"sortdl/internal/preflight"
	"sortdl/internal/runlock"
	"sortdl/internal/textutil"
	"sortdl/internal/titleparse"
)

func runOrganize(cmd *cobra.Command, ctx *commandContext, flags runFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	roots := resolveRoots(cfg, args)
	if err := preflight.Err(preflight.RunAll(roots)); err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, err := ctx.logger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds)*time.Second),
		tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
	)
	if err != nil {
		return fmt.Errorf("tmdb client: %w", err)
	}

	var decider organizer.Decider
	if flags.confirm && !flags.dryRun {
		if !stdinIsTerminal(cmd) {
			logging.WarnWithContext(logger, "confirmation requested but stdin is not a terminal", "confirm_non_interactive",
				logging.String(logging.FieldImpact, "answers are read from piped input; end of input declines"),
			)
		}
		decider = organizer.NewPromptDecider(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	org := organizer.New(organizer.Options{
		Classifier:      media.FromConfig(cfg.Media),
		Parser:          titleparse.New(),
		Resolver:        identification.NewTMDBResolver(client, logger),
		Decider:         decider,
		Mode:            organizer.Mode{DryRun: flags.dryRun, Confirm: flags.confirm},
		Overwrite:       cfg.Library.OverwriteExisting,
		DeleteUnmatched: cfg.Organizer.DeleteUnmatched,
		MaxPasses:       cfg.Cleanup.MaxPasses,
		Logger:          logger,
	})

	colorize := shouldColorize(cmd.ErrOrStderr())
	fmt.Fprintln(cmd.ErrOrStderr(), renderBanner(
		textutil.Ternary(flags.dryRun, "DRY RUN: nothing will be moved or deleted", "LIVE RUN: files will be moved and deleted"),
		flags.dryRun,
		colorize,
	))

	report, err := org.Run(cmd.Context(), organizer.Request{
		SourceRoot: roots.Source,
		MoviesRoot: roots.Movies,
		TVRoot:     roots.TV,
	})
	if err != nil {
		return err
	}

	if cfg.History.Enabled && !report.DryRun {
		recordHistory(cmd, cfg, report, logger)
	}

	if flags.json {
		return writeJSON(cmd, struct {
			*organizer.Report
			Summary map[organizer.Outcome]int `json:"summary"`
		}{report, report.Counts()})
	}
	fmt.Fprint(cmd.OutOrStdout(), renderReport(report, shouldColorize(cmd.OutOrStdout())))
	return nil
}

func resolveRoots(cfg *config.Config, args []string) preflight.Roots {
	roots := preflight.Roots{
		Source: args[0],
		Movies: cfg.Library.MoviesDir,
		TV:     cfg.Library.TVDir,
	}
	if len(args) == 3 {
		roots.Movies = args[1]
		roots.TV = args[2]
	}
	for _, p := range []*string{&roots.Source, &roots.Movies, &roots.TV} {
		if *p == "" {
			continue
		}
		if expanded, err := config.ExpandPath(*p); err == nil {
			*p = expanded
		}
	}
	return roots
}

func recordHistory(cmd *cobra.Command, cfg *config.Config, report *organizer.Report, logger *slog.Logger) {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("history journal unavailable", logging.Error(err), logging.String("path", cfg.HistoryPath()))
		return
	}
	defer store.Close()
	if err := store.Record(context.WithoutCancel(cmd.Context()), report); err != nil {
		logger.Warn("failed to record run history", logging.Error(err), logging.String("run_id", report.RunID))
	}
}

func stdinIsTerminal(cmd *cobra.Command) bool {
	file, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
