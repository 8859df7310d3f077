// Package texproc holds the exact external process contracts for the TeX
// typesetter and the PDF concatenator. Both are out-of-scope
// collaborators; this package only specifies and invokes their command
// lines and interprets their exit status.
package texproc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/fbeamer/fbeamer/internal/debug"
)

// Result captures a child process's outcome for error reporting.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	debug.Debug("texproc", "exec %s %v (dir=%s)", name, args, dir)
	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
	} else if err == nil {
		res.ExitCode = 0
	}
	return res, err
}

// RunInitex invokes pdflatex in "-ini" mode to precompile a format file
// named jobname, reading input as the preamble document, with dir as the
// working directory:
//
//	pdflatex -shell-escape -ini -jobname="<name>" "&pdflatex" mylatexformat.ltx <input_file>
func RunInitex(ctx context.Context, dir, jobname, input string) (Result, error) {
	return run(ctx, dir, "pdflatex",
		"-shell-escape",
		"-ini",
		fmt.Sprintf("-jobname=%s", jobname),
		"&pdflatex",
		"mylatexformat.ltx",
		input,
	)
}

// RunPerFrame invokes pdflatex to compile a single frame's .tex file
// against its precompiled format:
//
//	pdflatex -shell-escape -interaction=nonstopmode <tex_file>
func RunPerFrame(ctx context.Context, dir, texFile string) (Result, error) {
	return run(ctx, dir, "pdflatex",
		"-shell-escape",
		"-interaction=nonstopmode",
		texFile,
	)
}

// Unite invokes the PDF concatenator over pdfPaths in order, writing
// outputPath:
//
//	pdfunite <pdf1> <pdf2> … <pdfn> <output>
func Unite(ctx context.Context, pdfPaths []string, outputPath string) (Result, error) {
	args := append(append([]string{}, pdfPaths...), outputPath)
	return run(ctx, "", "pdfunite", args...)
}
