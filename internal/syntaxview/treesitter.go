//go:build !no_treesitter

package syntaxview

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_latex "github.com/tree-sitter-grammars/tree-sitter-latex"

	"github.com/fbeamer/fbeamer/internal/debug"
)

var latexLanguage = tree_sitter.NewLanguage(tree_sitter_latex.Language())

// Parse parses src as LaTeX with tree-sitter. ok reports whether the
// grammar could be loaded and the source parsed; on false the returned
// Tree is a degraded empty view and callers should fall back to a
// regex-based strategy.
func Parse(filename string, src []byte) (*Tree, bool) {
	parser := tree_sitter.NewParser()
	if parser == nil {
		debug.Error("syntaxview", "failed to create tree-sitter parser for %s", filename)
		return unavailable(src), false
	}
	defer parser.Close()

	if err := parser.SetLanguage(latexLanguage); err != nil {
		debug.Error("syntaxview", "failed to load latex grammar: %v", err)
		return unavailable(src), false
	}

	tsTree := parser.Parse(src, nil)
	if tsTree == nil {
		debug.Error("syntaxview", "tree-sitter failed to parse %s", filename)
		return unavailable(src), false
	}

	t := &Tree{source: src, available: true}
	t.rootNode = wrapNode(tsTree.RootNode())
	t.children = func(n Node) []Node {
		raw, ok := n.raw.(*tree_sitter.Node)
		if !ok || raw == nil {
			return nil
		}
		count := raw.NamedChildCount()
		out := make([]Node, 0, count)
		for i := uint(0); i < count; i++ {
			child := raw.NamedChild(i)
			if child == nil {
				continue
			}
			out = append(out, wrapNode(child))
		}
		return out
	}
	t.close = func() { tsTree.Close() }
	return t, true
}

func wrapNode(n *tree_sitter.Node) Node {
	return Node{
		Kind:      n.Kind(),
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		raw:       n,
	}
}
