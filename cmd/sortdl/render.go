package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"sortdl/internal/organizer"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderBanner(message string, dryRun, colorize bool) string {
	line := fmt.Sprintf("== %s ==", message)
	if !colorize {
		return line
	}
	color := ansiRed
	if dryRun {
		color = ansiYellow
	}
	return ansiBold + color + line + ansiReset
}

func outcomeColor(outcome organizer.Outcome) string {
	switch outcome {
	case organizer.OutcomeMoved:
		return ansiGreen
	case organizer.OutcomeDeleted:
		return ansiBlue
	case organizer.OutcomeError:
		return ansiRed
	case organizer.OutcomeKept:
		return ""
	default:
		return ansiYellow
	}
}

func colorOutcome(outcome organizer.Outcome, colorize bool) string {
	label := string(outcome)
	if !colorize {
		return label
	}
	if color := outcomeColor(outcome); color != "" {
		return color + label + ansiReset
	}
	return label
}

// relativeTo shortens path for display when it lies under root.
func relativeTo(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func renderReport(report *organizer.Report, colorize bool) string {
	var b strings.Builder

	header := "Run " + report.RunID
	if report.DryRun {
		header += " (dry run: moved and deleted are planned)"
	}
	fmt.Fprintln(&b, header)
	fmt.Fprintf(&b, "Source: %s\nMovies: %s\nTV:     %s\n", report.SourceRoot, report.MoviesRoot, report.TVRoot)

	if len(report.Entries) > 0 {
		rows := make([][]string, 0, len(report.Entries))
		for _, entry := range report.Entries {
			detail := relativeTo(report.MoviesRoot, entry.Destination)
			if detail == entry.Destination {
				detail = relativeTo(report.TVRoot, entry.Destination)
			}
			if detail == "" {
				detail = entry.Reason
			}
			rows = append(rows, []string{
				colorOutcome(entry.Outcome, colorize),
				entry.Kind,
				relativeTo(report.SourceRoot, entry.Path),
				detail,
			})
		}
		fmt.Fprintln(&b, renderTable([]string{"Outcome", "Kind", "File", "Destination / Reason"}, rows, nil, nil))
	}

	if len(report.Pruned) > 0 {
		fmt.Fprintf(&b, "Removed %d empty director%s:\n", len(report.Pruned), pluralSuffix(len(report.Pruned), "y", "ies"))
		for _, dir := range report.Pruned {
			fmt.Fprintf(&b, "  %s\n", relativeTo(report.SourceRoot, dir))
		}
	}

	fmt.Fprintln(&b, renderSummary(report))
	if report.Interrupted {
		fmt.Fprintln(&b, "Run interrupted before completion")
	}
	return b.String()
}

func renderSummary(report *organizer.Report) string {
	counts := report.Counts()
	parts := make([]string, 0, len(organizer.Outcomes))
	for _, outcome := range organizer.Outcomes {
		if n := counts[outcome]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", outcome, n))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no files")
	}
	return fmt.Sprintf("Summary: %s (%s)", strings.Join(parts, " "), report.Duration().Round(time.Millisecond))
}

func pluralSuffix(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func itoa(n int) string { return strconv.Itoa(n) }
