package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type runFlags struct {
	confirm bool
	dryRun  bool
	json    bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "sortdl [flags] SOURCE [MOVIES_DIR TV_DIR]",
		Short: "Sort a download directory into movie and TV libraries",
		Long: `sortdl walks SOURCE, identifies videos through TMDB, and moves them into
MOVIES_DIR and TV_DIR. Subtitles follow their movie, unrecognized files are
deleted, and empty directories are pruned. MOVIES_DIR and TV_DIR default to
[library] movies_dir and tv_dir from the configuration file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          validateRunArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateLogLevel(logLevelFlag); err != nil {
				return err
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, ctx, flags, args)
		},
	}
	rootCmd.SetVersionTemplate("sortdl {{.Version}}\n")

	rootCmd.Flags().BoolVarP(&flags.confirm, "confirmation", "c", false, "Confirm each move and deletion interactively")
	rootCmd.Flags().BoolVarP(&flags.dryRun, "dryrun", "d", false, "Show what would happen without changing anything")
	rootCmd.Flags().BoolVar(&flags.json, "json", false, "Print the run report as JSON")
	rootCmd.Flags().BoolP("version", "v", false, "Print the version and exit")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

func validateRunArgs(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 1, 3:
		return nil
	case 0:
		return fmt.Errorf("missing SOURCE directory\n\nUsage: %s", cmd.UseLine())
	default:
		return fmt.Errorf("expected SOURCE or SOURCE MOVIES_DIR TV_DIR, got %d arguments\n\nUsage: %s", len(args), cmd.UseLine())
	}
}

func validateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid --log-level %q (want debug, info, warn, or error)", level)
	}
}
