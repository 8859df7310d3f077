// Package pipeline wires every stage (syntax view, frame extraction, input
// mirroring, preamble precompile, build scheduling, diff tracking, output
// selection) into a single run invoked once per compile, and again on
// every debounced file-change event in watch mode.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fbeamer/fbeamer/internal/buildsched"
	"github.com/fbeamer/fbeamer/internal/cachefs"
	"github.com/fbeamer/fbeamer/internal/debug"
	"github.com/fbeamer/fbeamer/internal/difftrack"
	"github.com/fbeamer/fbeamer/internal/ferrors"
	"github.com/fbeamer/fbeamer/internal/frameextract"
	"github.com/fbeamer/fbeamer/internal/output"
	"github.com/fbeamer/fbeamer/internal/preamble"
)

// Options configures one Runner for the lifetime of a process: they are
// derived once from CLI flags and the optional project file, and do not
// change between runs.
type Options struct {
	InputFile   string
	OutputFile  string
	UseTree     bool
	Unite       bool
	ProgressLog func(done, total int)
}

// Runner executes the full compile pipeline repeatedly against the same
// input file, carrying the previous-frames vector across invocations. It
// is not safe for concurrent Run calls; the watch loop and a one-shot
// invocation never run it from more than one goroutine at a time.
type Runner struct {
	opts    Options
	tracker *difftrack.Tracker
}

// NewRunner constructs a Runner with a fresh previous-frames vector,
// as at process start.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts, tracker: difftrack.NewTracker()}
}

// Run executes one full compile: read, extract, mirror inputs, precompile
// the preamble, build every frame, diff against the previous run, and
// publish the output. Failed frame builds are carried in the scheduler's
// per-frame outcomes and reach the caller only through output.Publish: in
// latest-changed mode when the selected frame itself failed, in unite
// mode when any frame failed.
func (r *Runner) Run(ctx context.Context) error {
	source, err := os.ReadFile(r.opts.InputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return ferrors.New(ferrors.InputFileNotExistent, err)
		}
		return ferrors.New(ferrors.CompileError, err)
	}

	result := frameextract.Extract(source, r.opts.UseTree)
	debug.Info("pipeline", "extracted %d frames", len(result.Frames))

	inputDir := filepath.Dir(r.opts.InputFile)
	cacheSubdir, err := cachefs.SubdirFor(inputDir)
	if err != nil {
		return ferrors.New(ferrors.CompileError, err)
	}
	if err := cachefs.EnsureDir(cacheSubdir); err != nil {
		return ferrors.New(ferrors.CompileError, err)
	}
	if err := cachefs.MirrorInputs(inputDir, cacheSubdir); err != nil {
		debug.Error("pipeline", "input mirroring failed, continuing: %v", err)
	}

	preambleName, err := preamble.Ensure(ctx, result.Preamble, r.opts.InputFile)
	if err != nil {
		return err
	}

	outcomes := buildsched.BuildAll(ctx, preambleName, result.Preamble, result.Frames, cacheSubdir, r.opts.ProgressLog)

	firstChanged := r.tracker.Diff(result.Frames)

	mode := output.LatestChanged
	if r.opts.Unite {
		mode = output.Unite
	}
	if err := output.Publish(ctx, mode, outcomes, firstChanged, r.opts.OutputFile); err != nil {
		return err
	}

	r.tracker.Commit(result.Frames)
	return nil
}
