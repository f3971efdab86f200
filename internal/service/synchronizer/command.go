package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/hashicorp/go-multierror"

	"github.com/oshokin/version-sync/internal/config"
	"github.com/oshokin/version-sync/internal/domain/versioning"
	"github.com/oshokin/version-sync/internal/logger"
	"github.com/oshokin/version-sync/internal/repository/textfile"
	"github.com/oshokin/version-sync/internal/service/common"
)

// Options contains inputs for the synchronizer entry point.
type Options struct {
	// Config lists the targets; the first one holds the current version.
	Config *config.Config
	// Input supplies the new version number.
	Input LineSource
	// Output receives the prompt.
	Output io.Writer
	// Repository performs file access. Defaults to textfile.NewFileRepository.
	Repository textfile.Repository
	// MarkerPath, when set, is held for the duration of the run.
	MarkerPath string
}

// TargetResult is the outcome of rewriting one target.
type TargetResult struct {
	// Path is the resolved file location.
	Path string
	// Replaced counts the lines that matched and were rewritten.
	Replaced int
	// Err is set when the file could not be rewritten.
	Err error
}

// Result describes a finished synchronization.
type Result struct {
	// Previous is the version read from the primary target.
	Previous versioning.Version
	// Current is the version written, empty when the run was aborted.
	Current versioning.Version
	// Aborted is true when the user left the version unchanged.
	Aborted bool
	// Targets holds one entry per target, in order.
	Targets []TargetResult
	// Err aggregates the per-target failures.
	Err error
}

var (
	// ErrVersionLineNotFound is returned when the primary target has no anchor line.
	ErrVersionLineNotFound = errors.New("version number line not found")
	// ErrInvalidVersionSyntax is returned when the anchor line holds no version number.
	ErrInvalidVersionSyntax = errors.New("invalid version number syntax")

	errInputNotSet = errors.New("input is not set")
)

// synchronizer holds the state of a single run.
// It is unexported—callers should use Run.
type synchronizer struct {
	// cfg is the validated target list.
	cfg *config.Config
	// patterns are the compiled target patterns, index-aligned with cfg.Targets.
	patterns []*regexp.Regexp
	// repo reads and rewrites the files.
	repo textfile.Repository
	// input supplies user answers.
	input LineSource
	// output receives the prompt.
	output io.Writer
}

// Run reads the current version, prompts for a new one and applies it to
// every target. Errors returned by Run are fatal; per-target failures are
// reported in Result.Err.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "version-sync")

	s, err := newSynchronizer(opts)
	if err != nil {
		return nil, err
	}

	if opts.MarkerPath != "" {
		marker, markerErr := common.AcquireMarker(ctx, opts.MarkerPath)
		if markerErr != nil {
			return nil, markerErr
		}

		defer func() {
			if releaseErr := marker.Release(); releaseErr != nil {
				logger.WarnKV(ctx, "Unable to release run marker", "error", releaseErr)
			}
		}()
	}

	return s.Run(ctx)
}

// newSynchronizer validates the options and compiles the target patterns.
func newSynchronizer(opts *Options) (*synchronizer, error) {
	if opts == nil || opts.Input == nil {
		return nil, errInputNotSet
	}

	if err := config.Validate(opts.Config); err != nil {
		return nil, fmt.Errorf("validate targets: %w", err)
	}

	patterns := make([]*regexp.Regexp, 0, len(opts.Config.Targets))

	for _, target := range opts.Config.Targets {
		pattern, err := regexp.Compile(target.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern of %s: %w", target.Path, err)
		}

		patterns = append(patterns, pattern)
	}

	repo := opts.Repository
	if repo == nil {
		repo = textfile.NewFileRepository()
	}

	output := opts.Output
	if output == nil {
		output = io.Discard
	}

	return &synchronizer{
		cfg:      opts.Config,
		patterns: patterns,
		repo:     repo,
		input:    opts.Input,
		output:   output,
	}, nil
}

// Run walks READ_CURRENT, PROMPT and then either aborts or applies the new version.
func (s *synchronizer) Run(ctx context.Context) (*Result, error) {
	previous, err := s.readCurrent(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Previous: previous}

	next, err := s.prompt(ctx, previous)
	if err != nil {
		return nil, err
	}

	if next == "" {
		logger.Info(ctx, "No new version entered, nothing was changed")

		result.Aborted = true

		return result, nil
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	s.logOrdering(ctx, previous, next)

	_, _ = fmt.Fprintf(s.output, "Setting new version to %s\n", next)

	result.Current = next
	result.Targets, result.Err = s.apply(ctx, next)

	return result, nil
}

// readCurrent extracts the version from the anchor line of the primary target.
func (s *synchronizer) readCurrent(ctx context.Context) (versioning.Version, error) {
	path := s.cfg.Resolve(s.cfg.Primary())

	line, err := s.repo.FindFirstLine(ctx, path, s.patterns[0])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVersionLineNotFound, err)
	}

	logger.DebugKV(ctx, "Found version line", "path", path, "line", line)

	current, err := versioning.Extract(line)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidVersionSyntax, err)
	}

	return current, nil
}

// prompt asks for a new version until a valid one or an empty line is given.
// An empty result means the user chose to keep the current version.
func (s *synchronizer) prompt(ctx context.Context, current versioning.Version) (versioning.Version, error) {
	_, _ = fmt.Fprintf(s.output, "Current version number is %s\n", current)
	_, _ = fmt.Fprintln(s.output, "Enter new version number, or enter to keep the current one.")

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, _ = fmt.Fprint(s.output, ">")

		answer, err := s.input.ReadLine()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		if errors.Is(err, io.EOF) {
			return "", nil
		}

		if err != nil {
			return "", fmt.Errorf("read new version: %w", err)
		}

		if answer == "" {
			return "", nil
		}

		next, err := versioning.Parse(answer)
		if err != nil {
			logger.DebugKV(ctx, "Rejected version input", "input", answer)
			continue
		}

		return next, nil
	}
}

// logOrdering notes a downgrade or an unchanged version; neither stops the run.
func (s *synchronizer) logOrdering(ctx context.Context, previous, next versioning.Version) {
	order, ok := next.Compare(previous)
	if !ok {
		return
	}

	switch {
	case order < 0:
		logger.WarnKV(ctx, "New version is lower than the current one", "current", previous, "new", next)
	case order == 0:
		logger.InfoKV(ctx, "New version equals the current one", "version", next)
	}
}

// apply rewrites every target with the rendered template. A failing target is
// recorded and the next one is still processed.
func (s *synchronizer) apply(ctx context.Context, next versioning.Version) ([]TargetResult, error) {
	var (
		results = make([]TargetResult, 0, len(s.cfg.Targets))
		merr    *multierror.Error
	)

	for i, target := range s.cfg.Targets {
		path := s.cfg.Resolve(target)
		targetCtx := logger.WithKV(ctx, "path", filepath.ToSlash(path))

		replaced, err := s.repo.Rewrite(targetCtx, path, s.patterns[i], target.Render(next.String()))
		results = append(results, TargetResult{Path: path, Replaced: replaced, Err: err})

		switch {
		case err != nil:
			logger.ErrorKV(targetCtx, "Unable to update file", "error", err)

			merr = multierror.Append(merr, fmt.Errorf("%s: %w", path, err))
		case replaced == 0:
			logger.Warn(targetCtx, "No version line found, file left unchanged")
		default:
			logger.InfoKV(targetCtx, "Updated file", "lines", replaced)
		}
	}

	return results, merr.ErrorOrNil()
}
