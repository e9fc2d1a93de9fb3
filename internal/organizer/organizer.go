package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sortdl/internal/fileutil"
	"sortdl/internal/identification"
	"sortdl/internal/logging"
	"sortdl/internal/media"
	"sortdl/internal/placement"
	"sortdl/internal/services"
	"sortdl/internal/subtitles"
	"sortdl/internal/titleparse"
)

// Request names the roots for a single run.
type Request struct {
	SourceRoot string
	MoviesRoot string
	TVRoot     string
}

// Options wires an Organizer's collaborators and policy.
type Options struct {
	Classifier *media.Classifier
	Parser     titleparse.Parser
	Resolver   identification.Resolver
	Decider    Decider
	Mode       Mode
	// Overwrite lets moves replace existing library files.
	Overwrite bool
	// DeleteUnmatched sends videos without a metadata match to the deletion set.
	DeleteUnmatched bool
	MaxPasses       int
	Logger          *slog.Logger
}

// Organizer sorts a download directory into movie and TV libraries.
type Organizer struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New creates an organizer. Classifier and Parser default when nil; Resolver
// is required.
func New(opts Options) *Organizer {
	if opts.Classifier == nil {
		opts.Classifier = media.Default()
	}
	if opts.Parser == nil {
		opts.Parser = titleparse.New()
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = defaultMaxPasses
	}
	return &Organizer{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "organizer"),
		now:    time.Now,
	}
}

// run carries the mutable state of one Run call.
type run struct {
	req      Request
	report   *Report
	exec     *Executor
	claimed  map[string]struct{}
	reported map[string]struct{}
	deletion []string
	reasons  map[string]string
	pending  []string
}

// Run walks req.SourceRoot and moves, deletes, and prunes according to the
// organizer's mode. The returned report covers everything attempted, including
// runs cut short by ctx; the error is non-nil only when the run could not
// start.
func (o *Organizer) Run(ctx context.Context, req Request) (*Report, error) {
	if o.opts.Resolver == nil {
		return nil, services.Wrap(services.ErrConfiguration, "organizer", "run", "no metadata resolver configured", nil)
	}
	normalized, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	req = normalized

	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, o.logger)

	r := &run{
		req: req,
		report: &Report{
			RunID:      runID,
			StartedAt:  o.now().UTC(),
			DryRun:     o.opts.Mode.DryRun,
			Confirm:    o.opts.Mode.Confirm,
			SourceRoot: req.SourceRoot,
			MoviesRoot: req.MoviesRoot,
			TVRoot:     req.TVRoot,
		},
		exec: NewExecutor(o.opts.Mode, o.opts.Decider, o.opts.Logger,
			WithOverwrite(o.opts.Overwrite),
			WithMaxPasses(o.opts.MaxPasses),
		),
		claimed:  make(map[string]struct{}),
		reported: make(map[string]struct{}),
		reasons:  make(map[string]string),
	}
	logger.Info("organizer run started",
		logging.String("source_root", req.SourceRoot),
		logging.String("movies_root", req.MoviesRoot),
		logging.String("tv_root", req.TVRoot),
		logging.Bool("dry_run", o.opts.Mode.DryRun),
		logging.Bool("confirm", o.opts.Mode.Confirm),
	)

	files := o.collectFiles(ctx, req)
	for _, path := range files {
		if ctx.Err() != nil {
			r.report.Interrupted = true
			break
		}
		if _, done := r.claimed[path]; done {
			continue
		}
		o.handleFile(ctx, r, path)
	}

	for _, path := range r.pending {
		if _, done := r.reported[path]; done {
			continue
		}
		r.report.add(Entry{Path: path, Kind: string(media.CategorySubtitle), Outcome: OutcomeKept, Reason: "no associated movie"})
	}

	if ctx.Err() == nil {
		o.deleteFiles(ctx, r)
	}
	if ctx.Err() == nil {
		cleanup := r.exec.PruneEmptyDirectories(ctx, req.SourceRoot)
		r.report.Pruned = cleanup.Removed
	}
	if ctx.Err() != nil {
		r.report.Interrupted = true
	}

	r.report.FinishedAt = o.now().UTC()
	counts := r.report.Counts()
	logger.Info("organizer run finished",
		logging.Int("moved", counts[OutcomeMoved]),
		logging.Int("deleted", counts[OutcomeDeleted]),
		logging.Int("kept", counts[OutcomeKept]),
		logging.Int("errors", counts[OutcomeError]),
		logging.Int("pruned", len(r.report.Pruned)),
		logging.Bool("interrupted", r.report.Interrupted),
		logging.Duration("duration", r.report.Duration()),
	)
	return r.report, nil
}

func normalizeRequest(req Request) (Request, error) {
	var err error
	if req.SourceRoot, err = absRoot(req.SourceRoot, "source"); err != nil {
		return req, err
	}
	if req.MoviesRoot, err = absRoot(req.MoviesRoot, "movies"); err != nil {
		return req, err
	}
	if req.TVRoot, err = absRoot(req.TVRoot, "tv"); err != nil {
		return req, err
	}
	info, err := os.Stat(req.SourceRoot)
	if err != nil {
		return req, services.Wrap(services.ErrValidation, "organizer", "source root", req.SourceRoot, err)
	}
	if !info.IsDir() {
		return req, services.Wrap(services.ErrValidation, "organizer", "source root", req.SourceRoot+" is not a directory", nil)
	}
	for _, root := range []*string{&req.SourceRoot, &req.MoviesRoot, &req.TVRoot} {
		if resolved, err := fileutil.ResolvePath(*root); err == nil {
			*root = resolved
		}
	}
	return req, nil
}

func absRoot(path, name string) (string, error) {
	if path == "" {
		return "", services.Wrap(services.ErrValidation, "organizer", name+" root", "path is empty", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "organizer", name+" root", path, err)
	}
	return abs, nil
}

// collectFiles snapshots every non-directory entry under the source root in
// lexical order. Files already inside a library root are left alone.
func (o *Organizer) collectFiles(ctx context.Context, req Request) []string {
	logger := logging.WithContext(ctx, o.logger)
	var files []string
	err := filepath.WalkDir(req.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable path", "walk_error",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
			)
			if d != nil && d.IsDir() && path != req.SourceRoot {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != req.SourceRoot && (path == req.MoviesRoot || path == req.TVRoot) {
				return fs.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		logger.Warn("source walk ended early", logging.Error(err))
	}
	return files
}

func (o *Organizer) handleFile(ctx context.Context, r *run, path string) {
	switch o.opts.Classifier.ClassifyPath(path) {
	case media.CategoryVideo:
		o.handleVideo(ctx, r, path)
	case media.CategorySubtitle:
		r.pending = append(r.pending, path)
	case media.CategoryAudio:
		r.report.add(Entry{Path: path, Kind: string(media.CategoryAudio), Outcome: OutcomeKept})
	default:
		r.queueDeletion(path, "unrecognized extension")
	}
}

func (o *Organizer) handleVideo(ctx context.Context, r *run, path string) {
	ctx = services.WithSourcePath(services.WithStage(ctx, "identify"), path)
	logger := logging.WithContext(ctx, o.logger)

	parsed, err := o.opts.Parser.Parse(filepath.Base(path))
	if err != nil {
		logging.WarnWithContext(logger, "could not parse release name", "parse_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rename the file to include a title"),
		)
		r.report.add(Entry{Path: path, Kind: string(media.CategoryVideo), Outcome: OutcomeSkippedParseFailure, Reason: err.Error()})
		return
	}

	if parsed.IsEpisode() {
		meta, err := o.opts.Resolver.ResolveEpisode(ctx, parsed)
		if err != nil {
			o.unresolved(ctx, r, path, placement.KindEpisode, err)
			return
		}
		plan := placement.PlanEpisode(meta.ShowTitle, meta.Season, meta.Episode, meta.EpisodeTitle, r.req.TVRoot, path)
		r.move(ctx, plan)
		return
	}

	meta, err := o.opts.Resolver.ResolveMovie(ctx, parsed)
	if err != nil {
		o.unresolved(ctx, r, path, placement.KindMovie, err)
		return
	}
	plan := placement.PlanMovie(meta.Title, meta.Year, r.req.MoviesRoot, path)
	if res := r.move(ctx, plan); res.Outcome != OutcomeMoved {
		return
	}
	// A subtitle is offered to the first movie that claims it, once.
	for _, sub := range subtitles.FindSubtitles(path, r.req.SourceRoot, o.opts.Classifier) {
		if _, done := r.reported[sub]; done {
			continue
		}
		r.move(ctx, placement.PlanSubtitle(sub, plan))
	}
}

func (o *Organizer) unresolved(ctx context.Context, r *run, path string, kind placement.Kind, err error) {
	logger := logging.WithContext(ctx, o.logger)
	if errors.Is(err, services.ErrNoMatch) {
		if o.opts.DeleteUnmatched {
			logger.Info("no metadata match, queued for deletion", logging.String("kind", string(kind)))
			r.queueDeletion(path, "no metadata match")
			return
		}
		logging.WarnWithContext(logger, "no metadata match", "no_match",
			logging.String("kind", string(kind)),
			logging.String(logging.FieldErrorHint, "rename the file or add it to the library manually"),
		)
		r.report.add(Entry{Path: path, Kind: string(kind), Outcome: OutcomeSkippedNoMatch, Reason: err.Error()})
		return
	}
	logging.ErrorWithContext(logger, "metadata lookup failed", "lookup_failed",
		logging.String("kind", string(kind)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check network access and the TMDB API key"),
	)
	r.report.add(Entry{Path: path, Kind: string(kind), Outcome: OutcomeError, Reason: err.Error()})
}

func (r *run) move(ctx context.Context, plan placement.Plan) Result {
	res := r.exec.Move(services.WithSourcePath(ctx, plan.Source), plan)
	entry := Entry{
		Path:        plan.Source,
		Kind:        string(plan.Kind),
		Outcome:     res.Outcome,
		Destination: plan.Destination,
	}
	if res.Err != nil {
		entry.Reason = res.Err.Error()
	}
	r.report.add(entry)
	r.reported[plan.Source] = struct{}{}
	if res.Outcome == OutcomeMoved {
		r.claimed[plan.Source] = struct{}{}
	}
	return res
}

func (r *run) queueDeletion(path, reason string) {
	r.deletion = append(r.deletion, path)
	r.reasons[path] = reason
}

func (o *Organizer) deleteFiles(ctx context.Context, r *run) {
	paths := make([]string, 0, len(r.deletion))
	for _, path := range r.deletion {
		if _, moved := r.claimed[path]; moved {
			continue
		}
		paths = append(paths, path)
	}
	ctx = services.WithStage(ctx, "delete")
	for _, res := range r.exec.Delete(ctx, paths) {
		entry := Entry{
			Path:    res.Action.Path,
			Kind:    string(o.opts.Classifier.ClassifyPath(res.Action.Path)),
			Outcome: res.Outcome,
			Reason:  r.reasons[res.Action.Path],
		}
		if res.Err != nil {
			entry.Reason = fmt.Sprintf("%s: %v", entry.Reason, res.Err)
		}
		r.report.add(entry)
	}
}
