// Package frameextract partitions a Beamer source document into a
// preamble and an ordered list of frame bodies.
package frameextract

import (
	"bytes"
	"regexp"

	"github.com/fbeamer/fbeamer/internal/debug"
	"github.com/fbeamer/fbeamer/internal/syntaxview"
)

// defaultPreamble is substituted when no \begin{document} can be found at
// all.
const defaultPreamble = `\documentclass[aspectratio=43,c,xcolor=dvipsnames]{beamer}`

const beginDocumentLiteral = `\begin{document}`

// frameRegex matches a frame environment body, multi-line, non-greedy,
// anchored to line starts.
var frameRegex = regexp.MustCompile(`(?ms)^\\begin\{frame\}.*?^\\end\{frame\}`)

// Result holds the outcome of Extract: the preamble prefix and the
// ordered list of frame bodies. Both alias the original source buffer,
// except the default preamble substituted when no \begin{document} exists.
type Result struct {
	Preamble []byte
	Frames   [][]byte
}

// Extract partitions source into a preamble and ordered frame bodies.
// When useTree is true it first attempts tree-sitter-based extraction via
// internal/syntaxview, falling back to the regex strategy if the parser is
// unavailable.
func Extract(source []byte, useTree bool) Result {
	if useTree {
		if tree, ok := syntaxview.Parse("input.tex", source); ok {
			defer tree.Close()
			return extractFromTree(tree, source)
		}
		debug.Info("frameextract", "tree-sitter unavailable, falling back to regex extraction")
	}
	return extractFromRegex(source)
}

func extractFromTree(tree *syntaxview.Tree, source []byte) Result {
	frames := collectTreeFrames(tree)
	preamble := preambleFromDocumentNode(tree, source)
	return Result{Preamble: preamble, Frames: frames}
}

// collectTreeFrames finds every text_env node whose descendant set
// contains exactly one begin node carrying the literal "{frame}" in its
// source text, first-only depth-first.
func collectTreeFrames(tree *syntaxview.Tree) [][]byte {
	envs := tree.NodesOfKind("text_env")
	var frames [][]byte
	for _, env := range envs {
		matches := tree.FindDescendants(env, func(n syntaxview.Node) bool {
			return n.Kind == "begin" && bytes.Contains(tree.Text(n), []byte("{frame}"))
		}, true, syntaxview.DepthFirst)
		if len(matches) == 1 {
			frames = append(frames, tree.Text(env))
		}
	}
	return frames
}

// preambleFromDocumentNode locates the unique document_env node (if there
// is exactly one) and slices the preamble up to its start byte; otherwise
// falls back to a byte-literal search.
func preambleFromDocumentNode(tree *syntaxview.Tree, source []byte) []byte {
	docs := tree.NodesOfKind("document_env")
	if len(docs) == 1 {
		return source[:docs[0].StartByte]
	}
	return preambleByLiteralSearch(source)
}

func extractFromRegex(source []byte) Result {
	locs := frameRegex.FindAllIndex(source, -1)
	var frames [][]byte
	for _, loc := range locs {
		frames = append(frames, source[loc[0]:loc[1]])
	}
	return Result{Preamble: preambleByLiteralSearch(source), Frames: frames}
}

// preambleByLiteralSearch finds the literal "\begin{document}" and returns
// everything before it; if absent, substitutes the default class
// declaration.
func preambleByLiteralSearch(source []byte) []byte {
	idx := bytes.Index(source, []byte(beginDocumentLiteral))
	if idx < 0 {
		return []byte(defaultPreamble)
	}
	return source[:idx]
}
