package preamble

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNameIsDeterministicAndReflectsDraft(t *testing.T) {
	plain := []byte(`\documentclass{beamer}`)
	draft := []byte(`\documentclass[draft]{beamer}`)

	if Name(plain) != Name(plain) {
		t.Fatal("name not deterministic")
	}
	if Name(plain) == Name(draft) {
		t.Fatal("draft and non-draft preambles must not collide")
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

func TestEnsureSkipsWhenFormatExists(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "deck.tex")
	if err := os.WriteFile(inputFile, []byte("\\documentclass{beamer}"), 0o644); err != nil {
		t.Fatal(err)
	}
	name := Name([]byte("\\documentclass{beamer}"))
	if err := os.WriteFile(filepath.Join(dir, name+".fmt"), []byte("fmt"), 0o644); err != nil {
		t.Fatal(err)
	}

	// No pdflatex on PATH at all; if Ensure tried to invoke it, this would
	// fail with "executable file not found".
	got, err := Ensure(context.Background(), []byte("\\documentclass{beamer}"), inputFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != name {
		t.Fatalf("got %s, want %s", got, name)
	}
}

func TestEnsureInvokesInitexWhenMissing(t *testing.T) {
	fakePdflatex(t, "exit 0")
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "deck.tex")
	if err := os.WriteFile(inputFile, []byte("\\documentclass{beamer}"), 0o644); err != nil {
		t.Fatal(err)
	}

	name, err := Ensure(context.Background(), []byte("\\documentclass{beamer}"), inputFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name == "" {
		t.Fatal("expected a format name")
	}
}

func TestEnsureReturnsCompileErrorOnFailure(t *testing.T) {
	fakePdflatex(t, "echo boom 1>&2; exit 1")
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "deck.tex")
	if err := os.WriteFile(inputFile, []byte("\\documentclass{beamer}"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Ensure(context.Background(), []byte("\\documentclass{beamer}"), inputFile)
	if err == nil {
		t.Fatal("expected error on initex failure")
	}
}
