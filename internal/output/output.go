// Package output implements the output selector: either concatenating
// every frame PDF, or publishing the single frame the diff tracker
// identified as first-changed.
package output

import (
	"context"
	"os"

	"github.com/fbeamer/fbeamer/internal/buildsched"
	"github.com/fbeamer/fbeamer/internal/debug"
	"github.com/fbeamer/fbeamer/internal/ferrors"
	"github.com/fbeamer/fbeamer/internal/texproc"
)

// Mode selects how the run's output is published.
type Mode int

const (
	// LatestChanged links outputPath to the first-changed frame's PDF.
	// This is the default mode.
	LatestChanged Mode = iota
	// Unite concatenates every frame PDF into outputPath.
	Unite
)

// Publish writes the run's output according to mode.
//
//   - Unite invokes the external concatenator over every frame PDF in
//     order; a non-zero exit surfaces as ferrors.PdfUniteError.
//   - LatestChanged replaces outputPath with a symlink to
//     frames[firstChanged].Entry.PDFPath, unlinking any previous output
//     first. If firstChanged == len(frames) (nothing changed), the
//     previous output is left untouched. If the selected frame's build
//     failed, this is reported as ferrors.CompileError.
func Publish(ctx context.Context, mode Mode, frames []buildsched.Outcome, firstChanged int, outputPath string) error {
	switch mode {
	case Unite:
		return publishUnite(ctx, frames, outputPath)
	default:
		return publishLatestChanged(frames, firstChanged, outputPath)
	}
}

func publishUnite(ctx context.Context, frames []buildsched.Outcome, outputPath string) error {
	paths := make([]string, 0, len(frames))
	for i, f := range frames {
		if f.Err != nil {
			return ferrors.New(ferrors.PdfUniteError, f.Err).WithFrame(i)
		}
		paths = append(paths, f.Entry.PDFPath)
	}
	if len(paths) == 0 {
		// Nothing to unite; an empty presentation is legal but pdfunite
		// requires at least one input, so there is nothing meaningful to
		// publish.
		return nil
	}

	res, err := texproc.Unite(ctx, paths, outputPath)
	if err != nil {
		return ferrors.New(ferrors.PdfUniteError, err).WithStderr(res.Stderr)
	}
	return nil
}

func publishLatestChanged(frames []buildsched.Outcome, firstChanged int, outputPath string) error {
	if firstChanged >= len(frames) {
		debug.Debug("output", "nothing changed, leaving previous output untouched")
		return nil
	}

	selected := frames[firstChanged]
	if selected.Err != nil {
		return ferrors.New(ferrors.CompileError, selected.Err).WithFrame(firstChanged)
	}

	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return ferrors.New(ferrors.CompileError, err).WithFrame(firstChanged)
	}
	if err := os.Symlink(selected.Entry.PDFPath, outputPath); err != nil {
		return ferrors.New(ferrors.CompileError, err).WithFrame(firstChanged)
	}
	debug.Info("output", "published frame %d -> %s", firstChanged, outputPath)
	return nil
}
