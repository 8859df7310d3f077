// Package preamble ensures a valid precompiled TeX format file exists for
// the current preamble fingerprint.
package preamble

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/fbeamer/fbeamer/internal/cachefs"
	"github.com/fbeamer/fbeamer/internal/debug"
	"github.com/fbeamer/fbeamer/internal/ferrors"
	"github.com/fbeamer/fbeamer/internal/fingerprint"
	"github.com/fbeamer/fbeamer/internal/texproc"
)

// Name builds the format-file name "{hex(hash(preamble))}_{draft_flag}".
// draft_flag is "draft" when the literal substring "draft" occurs anywhere
// in the preamble bytes (not only in the \documentclass options) and
// "final" otherwise, so switching \documentclass[draft]{beamer} on or off
// naturally invalidates the cached format file (see DESIGN.md "Open
// Questions").
func Name(preambleBytes []byte) string {
	return fmt.Sprintf("%s_%s", fingerprint.Hash(preambleBytes).Hex(), draftFlag(preambleBytes))
}

func draftFlag(preambleBytes []byte) string {
	if bytes.Contains(preambleBytes, []byte("draft")) {
		return "draft"
	}
	return "final"
}

// Ensure guarantees a format file exists for preambleBytes next to
// inputFile, precompiling it via the TeX engine's initex mode if
// necessary. Returns the format's name (without extension). A non-zero
// initex exit is fatal for the run and reported as a CompileError; partial
// artefacts are left in place for inspection.
func Ensure(ctx context.Context, preambleBytes []byte, inputFile string) (string, error) {
	name := Name(preambleBytes)
	inputDir := filepath.Dir(inputFile)
	fmtPath := filepath.Join(inputDir, name+".fmt")

	if cachefs.Exists(fmtPath) {
		debug.Debug("preamble", "format file already exists: %s", fmtPath)
		return name, nil
	}

	debug.Info("preamble", "precompiling preamble %s", name)
	res, err := texproc.RunInitex(ctx, inputDir, name, filepath.Base(inputFile))
	if err != nil {
		return "", ferrors.New(ferrors.CompileError, err).WithStderr(res.Stderr)
	}
	return name, nil
}
