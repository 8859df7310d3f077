package cachefs

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/fbeamer/fbeamer/internal/debug"
)

// defaultMirrorExclude keeps the mirror walk from descending into the
// cache tree itself (were it nested under the input directory) or into
// version-control metadata that no typesetter needs.
var defaultMirrorExclude = []string{".git", ".git/**", appDirName, appDirName + "/**"}

// MirrorInputs creates, under cacheSubdir, a symlink for every file or
// directory directly reachable from inputDir that does not already have
// one there. Existing entries are left untouched, so the operation is
// idempotent and safe to run concurrently at single-link granularity.
func MirrorInputs(inputDir, cacheSubdir string) error {
	if err := EnsureDir(cacheSubdir); err != nil {
		return err
	}

	conf := &fastwalk.Config{Follow: false}
	return fastwalk.Walk(conf, inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Debug("cachefs", "mirror walk error at %s: %v", path, err)
			return nil
		}
		if path == inputDir {
			return nil
		}
		rel, relErr := filepath.Rel(inputDir, path)
		if relErr != nil {
			return nil
		}
		if shouldSkipMirror(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dest := filepath.Join(cacheSubdir, rel)
		if _, statErr := os.Lstat(dest); statErr == nil {
			// Already mirrored; descending further is still required so
			// nested new entries get linked, so don't skip directories.
			return nil
		}

		if d.IsDir() {
			// Directories are mirrored as a single symlink to the whole
			// subtree, so we don't need to recurse into them ourselves.
			if err := os.Symlink(path, dest); err != nil && !os.IsExist(err) {
				debug.Debug("cachefs", "failed to symlink dir %s -> %s: %v", path, dest, err)
			}
			return filepath.SkipDir
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil
		}
		if err := os.Symlink(path, dest); err != nil && !os.IsExist(err) {
			debug.Debug("cachefs", "failed to symlink file %s -> %s: %v", path, dest, err)
		}
		return nil
	})
}

func shouldSkipMirror(rel string) bool {
	for _, pattern := range defaultMirrorExclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
