package buildsched

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/fbeamer/fbeamer/internal/fingerprint"
)

func TestCompileSourceBitExactLayout(t *testing.T) {
	preamble := []byte(`\documentclass{beamer}`)
	frame := []byte(`\begin{frame}hi\end{frame}`)
	got := CompileSource("abc123_final", preamble, frame)

	want := "%&abc123_final\n" +
		`\documentclass{beamer}` + "\n" +
		`\begin{document}` + "\n" +
		`\begin{frame}hi\end{frame}` + "\n" +
		`\end{document}` + "\n"

	if string(got) != want {
		t.Fatalf("compile source mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func fakePdflatex(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell binaries not supported on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "pdflatex")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	old := os.Getenv("PATH")
	t.Cleanup(func() { os.Setenv("PATH", old) })
	os.Setenv("PATH", dir+string(os.PathListSeparator)+old)
}

// fakePdflatexWritingPDF simulates a successful typeset by writing a PDF
// next to the .tex file it was given, matching the real engine's contract
// (the engine writes pdf_path itself).
func fakePdflatexWritingPDF(t *testing.T) {
	fakeBinary(t, `
tex="$1"
for a in "$@"; do tex="$a"; done
base="${tex%.tex}"
echo "%PDF-1.4 fake" > "${base}.pdf"
exit 0
`)
}

func fakeBinary(t *testing.T, script string) {
	fakePdflatex(t, script)
}

func TestBuildAllPreservesFrameOrder(t *testing.T) {
	fakePdflatexWritingPDF(t)
	cacheDir := t.TempDir()
	frames := [][]byte{
		[]byte(`\begin{frame}1\end{frame}`),
		[]byte(`\begin{frame}2\end{frame}`),
		[]byte(`\begin{frame}3\end{frame}`),
		[]byte(`\begin{frame}4\end{frame}`),
	}

	var progressCalls int32
	outcomes := BuildAll(context.Background(), "preamble_final", []byte(`\documentclass{beamer}`), frames, cacheDir, func(done, total int) {
		atomic.AddInt32(&progressCalls, 1)
	})

	if len(outcomes) != len(frames) {
		t.Fatalf("expected %d outcomes, got %d", len(frames), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("frame %d failed: %v", i, o.Err)
		}
		wantFP := fingerprint.Hash(CompileSource("preamble_final", []byte(`\documentclass{beamer}`), frames[i]))
		if o.Entry.FP != wantFP {
			t.Fatalf("frame %d: order not preserved, fingerprint mismatch", i)
		}
		if _, err := os.Stat(o.Entry.PDFPath); err != nil {
			t.Fatalf("frame %d: expected pdf to exist: %v", i, err)
		}
	}
	if atomic.LoadInt32(&progressCalls) != int32(len(frames)) {
		t.Fatalf("expected %d progress calls, got %d", len(frames), progressCalls)
	}
}

func TestBuildAllCacheHitSkipsEngine(t *testing.T) {
	// No pdflatex on PATH; a pre-populated cache entry must make BuildAll
	// succeed without ever invoking the (absent) engine.
	cacheDir := t.TempDir()
	frame := []byte(`\begin{frame}only\end{frame}`)
	source := CompileSource("preamble_final", []byte(`\documentclass{beamer}`), frame)
	fp := fingerprint.Hash(source)
	pdfPath := filepath.Join(cacheDir, fp.Hex()+".pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 pre-existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcomes := BuildAll(context.Background(), "preamble_final", []byte(`\documentclass{beamer}`), [][]byte{frame}, cacheDir, nil)
	if len(outcomes) != 1 || outcomes[0].Err != nil {
		t.Fatalf("expected cache hit success, got %+v", outcomes)
	}
}

func TestBuildAllOneFrameFailureDoesNotAbortOthers(t *testing.T) {
	fakeBinary(t, `
tex="$1"
for a in "$@"; do tex="$a"; done
if grep -q FAILME "$tex"; then
  echo "boom" 1>&2
  exit 1
fi
base="${tex%.tex}"
echo "%PDF-1.4 fake" > "${base}.pdf"
exit 0
`)
	cacheDir := t.TempDir()
	frames := [][]byte{
		[]byte(`\begin{frame}ok1\end{frame}`),
		[]byte(`\begin{frame}FAILME\end{frame}`),
		[]byte(`\begin{frame}ok2\end{frame}`),
	}

	outcomes := BuildAll(context.Background(), "preamble_final", []byte(`\documentclass{beamer}`), frames, cacheDir, nil)
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Fatalf("expected frames 0 and 2 to succeed: %+v", outcomes)
	}
	if outcomes[1].Err == nil {
		t.Fatal("expected frame 1 to fail")
	}
	if _, err := os.Stat(outcomes[0].Entry.PDFPath); err != nil {
		t.Fatalf("expected frame 0 pdf to exist: %v", err)
	}
	if _, err := os.Stat(outcomes[2].Entry.PDFPath); err != nil {
		t.Fatalf("expected frame 2 pdf to exist: %v", err)
	}
}

func TestBuildAllEmptyFrames(t *testing.T) {
	cacheDir := t.TempDir()
	outcomes := BuildAll(context.Background(), "preamble_final", []byte(`\documentclass{beamer}`), nil, cacheDir, nil)
	if len(outcomes) != 0 {
		t.Fatalf("expected zero outcomes, got %d", len(outcomes))
	}
}

func TestCompileSourceDuplicateFramesSameFingerprint(t *testing.T) {
	preamble := []byte(`\documentclass{beamer}`)
	frame := []byte(`\begin{frame}same\end{frame}`)
	a := fingerprint.Hash(CompileSource("p_final", preamble, frame))
	b := fingerprint.Hash(CompileSource("p_final", preamble, bytes.Clone(frame)))
	if a != b {
		t.Fatal("identical compile sources must fingerprint identically")
	}
}
