package buildsched

import (
	"os"
	"path/filepath"
	"sync/atomic"
)

func atomicAddInt32(addr *int32, delta int32) int32 {
	return atomic.AddInt32(addr, delta)
}

// writeFileAtomicBestEffort writes content to a temp file in the same
// directory and renames it into place, so a reader never observes a
// partially-written file. This is "best-effort": a concurrent writer
// producing identical bytes for the same fingerprint is benign even if
// both renames race.
func writeFileAtomicBestEffort(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		// Fall back to a direct write; content-addressing makes a
		// possible torn write by a concurrent identical writer harmless
		// for this package's purposes (the engine reads the final path).
		return os.WriteFile(path, content, 0o644)
	}
	name := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(name)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(name)
		return closeErr
	}
	return os.Rename(name, path)
}
