// Package ferrors defines the typed error kinds surfaced by the pipeline,
// mirroring each with enough context (frame index, captured child-process
// output) to be logged verbatim and to participate in errors.Is/As.
package ferrors

import "fmt"

// Kind identifies a class of pipeline failure.
type Kind string

const (
	// InputFileNotExistent is reported when the positional input argument
	// is not a regular file at startup.
	InputFileNotExistent Kind = "input_file_not_existent"
	// CompileError covers a failed preamble precompile, or a latest-changed
	// selection whose frame PDF does not exist because its build failed.
	CompileError Kind = "compile_error"
	// PdfUniteError is returned when the external concatenator exits non-zero.
	PdfUniteError Kind = "pdfunite_error"
	// FrameBuildError marks a single frame's typesetter invocation failing;
	// it does not by itself abort the run.
	FrameBuildError Kind = "frame_build_error"
)

// Error is the single error type produced by this module's pipeline.
type Error struct {
	Kind        Kind
	FrameIndex  int // -1 when not applicable
	Stderr      string
	Underlying  error
	Recoverable bool
}

// New creates an Error of the given kind wrapping err.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, FrameIndex: -1, Underlying: err}
}

// WithFrame attaches a frame index to the error.
func (e *Error) WithFrame(i int) *Error {
	e.FrameIndex = i
	return e
}

// WithStderr attaches captured standard error output from a child process.
func (e *Error) WithStderr(s string) *Error {
	e.Stderr = s
	return e
}

// WithRecoverable marks whether the run may continue despite this error.
func (e *Error) WithRecoverable(r bool) *Error {
	e.Recoverable = r
	return e
}

func (e *Error) Error() string {
	if e.FrameIndex >= 0 {
		return fmt.Sprintf("%s: frame %d: %v", e.Kind, e.FrameIndex, e.Underlying)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Underlying)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Underlying
}
