//go:build no_treesitter

package syntaxview

// Parse is compiled in builds with the no_treesitter tag, for environments
// where the cgo-backed grammar cannot be linked. It always reports the
// degraded "parser unavailable" mode so callers fall back to regex
// extraction.
func Parse(filename string, src []byte) (*Tree, bool) {
	return unavailable(src), false
}
