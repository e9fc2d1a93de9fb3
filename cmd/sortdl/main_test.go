package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"sortdl/internal/config"
	"sortdl/internal/organizer"
	"sortdl/internal/runlock"
	"sortdl/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	source     string
}

func newTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "MovieX":
			fmt.Fprint(w, `{"page":1,"results":[{"id":1,"title":"MovieX","release_date":"2020-05-01"}]}`)
		default:
			fmt.Fprint(w, `{"page":1,"results":[]}`)
		}
	})
	mux.HandleFunc("/search/tv", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "Show" {
			fmt.Fprint(w, `{"page":1,"results":[{"id":3,"name":"Show","original_name":"Show"}]}`)
			return
		}
		fmt.Fprint(w, `{"page":1,"results":[]}`)
	})
	mux.HandleFunc("/tv/3/season/1/episode/2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":30,"name":"Pilot","season_number":1,"episode_number":2}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupCLITestEnv(t *testing.T, entries ...string) *cliTestEnv {
	t.Helper()
	return setupCLITestEnvWith(t, nil, entries...)
}

func setupCLITestEnvWith(t *testing.T, opts []testsupport.ConfigOption, entries ...string) *cliTestEnv {
	t.Helper()

	srv := newTMDBServer(t)
	opts = append([]testsupport.ConfigOption{testsupport.WithTMDBBaseURL(srv.URL)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	source := filepath.Join(base, "downloads")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	testsupport.MkTree(t, source, entries...)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, source: source}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
log_dir = %q
state_dir = %q

[tmdb]
api_key = %q
base_url = %q
requests_per_second = 0

[library]
movies_dir = %q
tv_dir = %q

[organizer]
delete_unmatched = %t

[logging]
level = "error"
`,
		cfg.Paths.LogDir,
		cfg.Paths.StateDir,
		cfg.TMDB.APIKey,
		cfg.TMDB.BaseURL,
		cfg.Library.MoviesDir,
		cfg.Library.TVDir,
		cfg.Organizer.DeleteUnmatched,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

var cliTree = []string{
	"MovieX.2020.mkv",
	"movie.nfo",
	"Show.S01E02.mkv",
	"Nothing.Known.1999.mkv",
	"nested/empty/",
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCLI(t, []string{"-v"}, "", "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "sortdl "+version)
}

func TestMalformedInvocation(t *testing.T) {
	env := setupCLITestEnv(t)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"no source", nil, "missing SOURCE"},
		{"two arguments", []string{env.source, "movies"}, "got 2 arguments"},
		{"missing source", []string{filepath.Join(env.source, "nope")}, "does not exist"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args, env.configPath, "")
			if err == nil {
				t.Fatal("expected error")
			}
			requireContains(t, err.Error(), tc.want)
		})
	}
}

func TestDryRunReportsPlanWithoutChanges(t *testing.T) {
	env := setupCLITestEnv(t, cliTree...)
	before := testsupport.ListTree(t, env.source)

	out, stderr, err := runCLI(t, []string{"--dryrun", "--json", env.source}, env.configPath, "")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, stderr, "DRY RUN")

	var report organizer.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if !report.DryRun {
		t.Fatal("expected dry-run report")
	}
	counts := report.Counts()
	if counts[organizer.OutcomeMoved] != 2 || counts[organizer.OutcomeDeleted] != 1 || counts[organizer.OutcomeSkippedNoMatch] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	requireContains(t, out, `"summary"`)
	if after := testsupport.ListTree(t, env.source); !slices.Equal(before, after) {
		t.Fatalf("dry run changed source:\nbefore %v\nafter  %v", before, after)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestDryRunWithConfirmationDoesNotPrompt(t *testing.T) {
	env := setupCLITestEnv(t, cliTree...)

	out, stderr, err := runCLI(t, []string{"-d", "-c", "--json", env.source}, env.configPath, "")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if strings.Contains(stderr, "[y/n]") {
		t.Fatalf("dry run prompted for confirmation:\n%s", stderr)
	}

	var report organizer.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	counts := report.Counts()
	if counts[organizer.OutcomeMoved] != 2 || counts[organizer.OutcomeSkippedDeclined] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestLiveRunMovesFilesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, cliTree...)

	out, _, err := runCLI(t, []string{env.source}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Summary:")

	movie := filepath.Join(env.cfg.Library.MoviesDir, "MovieX (2020)", "MovieX (2020).mkv")
	if _, err := os.Stat(movie); err != nil {
		t.Fatalf("expected movie in library: %v", err)
	}
	episode := filepath.Join(env.cfg.Library.TVDir, "Show", "Season 01", "S01E02 - Pilot.mkv")
	if _, err := os.Stat(episode); err != nil {
		t.Fatalf("expected episode in library: %v", err)
	}
	want := []string{"Nothing.Known.1999.mkv"}
	if got := testsupport.ListTree(t, env.source); !slices.Equal(got, want) {
		t.Fatalf("source tree = %v, want %v", got, want)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []struct{ ID string }
	if err := json.Unmarshal([]byte(out), &runs); err != nil || len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %v (%v)", out, err)
	}

	out, _, err = runCLI(t, []string{"history", "show", runs[0].ID[:8]}, env.configPath, "")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "MovieX (2020).mkv")
	requireContains(t, out, "pruned nested")

	target := filepath.Join(testsupport.TempDir(t), "history.xlsx")
	out, _, err = runCLI(t, []string{"history", "export", target}, env.configPath, "")
	if err != nil {
		t.Fatalf("history export: %v", err)
	}
	requireContains(t, out, "Exported history")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected workbook: %v", err)
	}
}

func TestDeleteUnmatchedFromConfig(t *testing.T) {
	env := setupCLITestEnvWith(t, []testsupport.ConfigOption{testsupport.WithDeleteUnmatched()})
	testsupport.WriteFile(t, filepath.Join(env.source, "Nothing.Known.1999.mkv"), 256*1024)

	out, _, err := runCLI(t, []string{"--json", env.source}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var report organizer.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Entries) != 1 || report.Entries[0].Outcome != organizer.OutcomeDeleted {
		t.Fatalf("unexpected entries: %+v", report.Entries)
	}
	if got := testsupport.ListTree(t, env.source); len(got) != 0 {
		t.Fatalf("expected empty source, got %v", got)
	}
}

func TestConfirmationDeclinedLeavesFiles(t *testing.T) {
	env := setupCLITestEnv(t, "MovieX.2020.mkv", "movie.nfo")

	_, stderr, err := runCLI(t, []string{"-c", env.source}, env.configPath, "n\nn\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stderr, "[y/n]")
	want := []string{"MovieX.2020.mkv", "movie.nfo"}
	if got := testsupport.ListTree(t, env.source); !slices.Equal(got, want) {
		t.Fatalf("source tree = %v, want %v", got, want)
	}
}

func TestRunFailsWhileLockHeld(t *testing.T) {
	env := setupCLITestEnv(t, "MovieX.2020.mkv")
	lock, err := runlock.Acquire(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{env.source}, env.configPath, "")
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected lock error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.source, "MovieX.2020.mkv")); statErr != nil {
		t.Fatalf("file moved despite lock: %v", statErr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(testsupport.TempDir(t), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected error when config exists")
	}
}
