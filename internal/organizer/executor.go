package organizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"sortdl/internal/fileutil"
	"sortdl/internal/logging"
	"sortdl/internal/placement"
	"sortdl/internal/services"
)

// Result is the outcome of one executed (or planned) action.
type Result struct {
	Action  Action
	Outcome Outcome
	Err     error
}

// Executor applies moves, deletions, and directory removals under a Mode.
// In dry-run mode nothing is mutated; instead the executor tracks which
// paths would have vanished and which destinations would exist so later
// decisions in the same run match a real run.
type Executor struct {
	mode      Mode
	decider   Decider
	overwrite bool
	maxPasses int
	logger    *slog.Logger

	vanished map[string]struct{}
	planned  map[string]struct{}
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithOverwrite allows moves to replace existing destination files.
func WithOverwrite(overwrite bool) ExecutorOption {
	return func(e *Executor) { e.overwrite = overwrite }
}

// WithMaxPasses caps the number of empty-directory pruning passes.
func WithMaxPasses(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// NewExecutor builds an executor. A nil decider declines every action when
// confirmation is requested.
func NewExecutor(mode Mode, decider Decider, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	if decider == nil {
		decider = StaticDecider(false)
	}
	e := &Executor{
		mode:      mode,
		decider:   decider,
		maxPasses: defaultMaxPasses,
		logger:    logging.NewComponentLogger(logger, "executor"),
		vanished:  make(map[string]struct{}),
		planned:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Move relocates plan.Source to plan.Destination, creating the destination
// directory as needed.
func (e *Executor) Move(ctx context.Context, plan placement.Plan) Result {
	action := Action{Kind: ActionMove, Path: plan.Source, Destination: plan.Destination}
	logger := logging.WithContext(ctx, e.logger).With(
		logging.String("destination", plan.Destination),
		logging.String("kind", string(plan.Kind)),
	)

	if !e.overwrite && e.exists(plan.Destination) {
		err := services.Wrap(services.ErrFilesystem, "organizing", "move", "destination already exists", fileutil.ErrDestinationExists)
		logging.WarnWithContext(logger, "destination already exists", "destination_exists",
			logging.String(logging.FieldErrorHint, "remove the existing file or enable library.overwrite_existing"),
		)
		return Result{Action: action, Outcome: OutcomeError, Err: err}
	}

	if ok, res := e.approve(ctx, action); !ok {
		return res
	}

	if e.mode.DryRun {
		logger.Info("dry run: would move file")
		e.markVanished(plan.Source)
		e.planned[filepath.Clean(plan.Destination)] = struct{}{}
		return Result{Action: action, Outcome: OutcomeMoved}
	}

	if err := os.MkdirAll(plan.Dir(), 0o755); err != nil {
		return e.failed(logger, action, "create destination directory", err)
	}
	if err := fileutil.MoveFile(plan.Source, plan.Destination, e.overwrite); err != nil {
		return e.failed(logger, action, "move file", err)
	}
	logger.Info("moved file")
	return Result{Action: action, Outcome: OutcomeMoved}
}

// Delete removes each path. A failure on one path does not stop the rest.
func (e *Executor) Delete(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, e.deleteOne(ctx, path))
	}
	return results
}

func (e *Executor) deleteOne(ctx context.Context, path string) Result {
	action := Action{Kind: ActionDelete, Path: path}
	logger := logging.WithContext(services.WithSourcePath(ctx, path), e.logger)

	if err := ctx.Err(); err != nil {
		return Result{Action: action, Outcome: OutcomeError, Err: err}
	}
	if ok, res := e.approve(ctx, action); !ok {
		return res
	}
	if e.mode.DryRun {
		logger.Info("dry run: would delete file")
		e.markVanished(path)
		return Result{Action: action, Outcome: OutcomeDeleted}
	}
	if err := os.Remove(path); err != nil {
		return e.failed(logger, action, "delete file", err)
	}
	logger.Info("deleted file")
	return Result{Action: action, Outcome: OutcomeDeleted}
}

// approve consults the decider in confirm mode. A dry run never asks since it
// mutates nothing. The returned Result is only meaningful when approval was
// not granted.
func (e *Executor) approve(ctx context.Context, action Action) (bool, Result) {
	if !e.mode.Confirm || e.mode.DryRun {
		return true, Result{}
	}
	ok, err := e.decider.Confirm(ctx, action)
	if err != nil {
		return false, Result{
			Action:  action,
			Outcome: OutcomeError,
			Err:     services.Wrap(services.ErrValidation, "confirm", string(action.Kind), "confirmation failed", err),
		}
	}
	if !ok {
		e.logger.Debug("action declined",
			logging.Args(logging.DecisionAttrs("confirm", "declined", action.String())...)...,
		)
		return false, Result{Action: action, Outcome: OutcomeSkippedDeclined}
	}
	return true, Result{}
}

func (e *Executor) failed(logger *slog.Logger, action Action, operation string, err error) Result {
	hint := "check permissions and free space on the destination"
	if libraryUnavailable(err) {
		hint = "check that the library mount is available"
	}
	logging.ErrorWithContext(logger, operation+" failed", "filesystem_error",
		logging.String(logging.FieldErrorHint, hint),
		logging.Error(err),
	)
	return Result{
		Action:  action,
		Outcome: OutcomeError,
		Err:     services.Wrap(services.ErrFilesystem, "organizing", operation, action.Path, err),
	}
}

// exists reports whether path exists, taking dry-run bookkeeping into account.
func (e *Executor) exists(path string) bool {
	clean := filepath.Clean(path)
	if e.mode.DryRun {
		if _, ok := e.planned[clean]; ok {
			return true
		}
		if e.isVanished(clean) {
			return false
		}
	}
	_, err := os.Lstat(clean)
	return err == nil
}

func (e *Executor) markVanished(path string) {
	e.vanished[filepath.Clean(path)] = struct{}{}
}

func (e *Executor) isVanished(path string) bool {
	_, ok := e.vanished[filepath.Clean(path)]
	return ok
}

var libraryUnavailableErrors = []error{
	syscall.ENOTCONN,
	syscall.EHOSTDOWN,
	syscall.EHOSTUNREACH,
	syscall.ETIMEDOUT,
	syscall.EIO,
	syscall.ESTALE,
}

func libraryUnavailable(err error) bool {
	for _, target := range libraryUnavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
