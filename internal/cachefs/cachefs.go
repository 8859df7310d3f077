// Package cachefs maps frame fingerprints to on-disk cache paths and
// maintains the lazy input mirror that lets the external typesetter
// resolve relative asset paths from inside the cache directory.
package cachefs

import (
	"os"
	"path/filepath"

	"github.com/fbeamer/fbeamer/internal/fingerprint"
)

const appDirName = "faster-beamer"

// Entry describes one frame's cache artefacts.
type Entry struct {
	FP       fingerprint.FP
	PDFPath  string
	TeXPath  string
}

// Root returns <user_cache_dir>/faster-beamer, creating nothing.
func Root() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// SubdirFor returns the cache subtree for a given input directory: the
// cache root with the canonicalized absolute input directory appended as
// path segments (not a single filename), so each source tree gets its own
// subtree.
func SubdirFor(inputDir string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(inputDir)
	if err != nil {
		return "", err
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Input directory need not exist yet under every call site
		// (e.g. tests constructing paths ahead of mkdir); fall back to
		// the absolute, non-symlink-resolved form.
		canonical = abs
	}
	// On POSIX canonical is rooted at "/", so joining it under root nests
	// each of its segments there: it is appended as a path rather than a
	// filename.
	return filepath.Join(root, canonical), nil
}

// EntryFor builds the cache Entry (paths only, no I/O) for a given
// fingerprint within cacheSubdir.
func EntryFor(cacheSubdir string, fp fingerprint.FP) Entry {
	hex := fp.Hex()
	return Entry{
		FP:      fp,
		PDFPath: filepath.Join(cacheSubdir, hex+".pdf"),
		TeXPath: filepath.Join(cacheSubdir, hex+".tex"),
	}
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates cacheSubdir (and parents) if missing.
func EnsureDir(cacheSubdir string) error {
	return os.MkdirAll(cacheSubdir, 0o755)
}
