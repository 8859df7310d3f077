// Package buildsched is the frame build scheduler: given a preamble and
// an ordered list of frame bodies, it guarantees that every frame whose
// build did not fail has a valid PDF in the cache, running missing builds
// in parallel across a bounded worker pool.
package buildsched

import (
	"bytes"
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/fbeamer/fbeamer/internal/cachefs"
	"github.com/fbeamer/fbeamer/internal/debug"
	"github.com/fbeamer/fbeamer/internal/ferrors"
	"github.com/fbeamer/fbeamer/internal/fingerprint"
	"github.com/fbeamer/fbeamer/internal/texproc"
)

// CompileSource concatenates the bytes that make up one frame's input to
// the TeX engine, in this exact layout:
//
//	%&{preamble_name}\n ++ preamble ++ "\n\begin{document}\n" ++ frame_body ++ "\n\end{document}\n"
func CompileSource(preambleName string, preamble, frameBody []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("%&")
	buf.WriteString(preambleName)
	buf.WriteByte('\n')
	buf.Write(preamble)
	buf.WriteByte('\n')
	buf.WriteString(`\begin{document}`)
	buf.WriteByte('\n')
	buf.Write(frameBody)
	buf.WriteByte('\n')
	buf.WriteString(`\end{document}`)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// Outcome is one frame's scheduling result: its cache entry, and a non-nil
// Err when the build (not the cache lookup) failed.
type Outcome struct {
	Entry cachefs.Entry
	Err   error
}

// BuildAll ensures every frame in frames has a cached PDF, running missing
// builds across a bounded goroutine pool sized to available parallelism.
// The returned slice preserves frame input order regardless of the
// (unspecified) order builds actually complete in. progress, if non-nil,
// is called once per completed entry (hit or build); calls may arrive out
// of frame order and from multiple goroutines, and it must not block.
func BuildAll(ctx context.Context, preambleName string, preamble []byte, frames [][]byte, cacheSubdir string, progress func(done, total int)) []Outcome {
	outcomes := make([]Outcome, len(frames))
	if len(frames) == 0 {
		return outcomes
	}

	if err := cachefs.EnsureDir(cacheSubdir); err != nil {
		for i := range outcomes {
			outcomes[i] = Outcome{Err: ferrors.New(ferrors.FrameBuildError, err).WithFrame(i)}
		}
		return outcomes
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()))

	var completed int32
	total := len(frames)

	for i, body := range frames {
		i, body := i, body
		g.Go(func() error {
			entry, err := buildOne(gctx, preambleName, preamble, body, cacheSubdir, i)
			outcomes[i] = Outcome{Entry: entry, Err: err}
			if progress != nil {
				done := atomicAddInt32(&completed, 1)
				progress(int(done), total)
			}
			// Per-frame build failures never abort the group: other
			// frames must still get a chance to cache.
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// buildOne performs the idempotent per-entry build: a cache hit
// short-circuits; otherwise the compile source is written and the engine
// invoked with the lazy mirror root as its working directory.
func buildOne(ctx context.Context, preambleName string, preamble, frameBody []byte, cacheSubdir string, frameIndex int) (cachefs.Entry, error) {
	source := CompileSource(preambleName, preamble, frameBody)
	fp := fingerprint.Hash(source)
	entry := cachefs.EntryFor(cacheSubdir, fp)

	if cachefs.Exists(entry.PDFPath) {
		debug.Debug("buildsched", "cache hit for frame %d (%s)", frameIndex, fp.Hex())
		return entry, nil
	}

	if err := writeTexFile(entry.TeXPath, source); err != nil {
		return entry, ferrors.New(ferrors.FrameBuildError, err).WithFrame(frameIndex)
	}

	debug.Info("buildsched", "building frame %d (%s)", frameIndex, fp.Hex())
	res, err := texproc.RunPerFrame(ctx, cacheSubdir, entry.TeXPath)
	if err != nil {
		return entry, ferrors.New(ferrors.FrameBuildError, err).
			WithFrame(frameIndex).
			WithStderr(res.Stderr)
	}
	return entry, nil
}

func writeTexFile(path string, content []byte) error {
	// Two concurrent writers of the same fingerprint write byte-identical
	// content, so racing temp-file renames onto the same path are benign;
	// the file is never read back before the engine itself reads it.
	return writeFileAtomicBestEffort(path, content)
}
