// Package syntaxview provides a narrow, parser-agnostic view over a parsed
// source document: node-type queries and text-range lookups. It is backed
// by tree-sitter when the grammar is available and compiled in, and
// degrades to an empty view (all queries return nothing) otherwise, which
// is what lets internal/frameextract fall back to its regex path.
package syntaxview

// Order controls the traversal discipline used by FindDescendants. Both
// orders walk an explicit stack; they intentionally reproduce the
// traversal of the tool this package's behavior is modeled on, which is
// not textbook breadth-first search for the BreadthFirst case (see
// FindDescendants).
type Order int

const (
	DepthFirst Order = iota
	BreadthFirst
)

// Node is a lightweight handle into a Tree. raw carries the backend's own
// node representation (e.g. *tree_sitter.Node); callers never touch it.
type Node struct {
	Kind      string
	StartByte int
	EndByte   int
	raw       any
}

// Tree is a parsed syntax tree plus the source bytes it was parsed from.
// A Tree with Available()==false answers every query with an empty
// result, modeling a parser-unavailable fallback.
type Tree struct {
	source    []byte
	available bool
	rootNode  Node
	children  func(Node) []Node
	close     func()
}

// Available reports whether this Tree actually holds parsed structure
// (true) or is a degraded empty view (false).
func (t *Tree) Available() bool {
	return t != nil && t.available
}

// Source returns the byte buffer the tree was parsed from. Every Node's
// StartByte/EndByte index into this slice; slices derived from it must
// never outlive it.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.source
}

// Close releases any native resources held by the backend parser/tree.
// Safe to call on a nil or unavailable Tree.
func (t *Tree) Close() {
	if t != nil && t.close != nil {
		t.close()
	}
}

// Text returns the source bytes spanned by n. The returned slice aliases
// Tree's source buffer.
func (t *Tree) Text(n Node) []byte {
	if t == nil || n.StartByte < 0 || n.StartByte > n.EndByte || n.EndByte > len(t.source) {
		return nil
	}
	return t.source[n.StartByte:n.EndByte]
}

// Root returns the root node, or ok==false when the tree is unavailable.
func (t *Tree) Root() (Node, bool) {
	if !t.Available() {
		return Node{}, false
	}
	return t.rootNode, true
}

// NamedChildren returns n's named children in source order.
func (t *Tree) NamedChildren(n Node) []Node {
	if !t.Available() || t.children == nil {
		return nil
	}
	return t.children(n)
}

// NodesOfKind collects every node in the tree whose Kind equals kind, in
// pre-order.
func (t *Tree) NodesOfKind(kind string) []Node {
	if !t.Available() {
		return nil
	}
	var out []Node
	t.WalkPreorder(func(n Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

// WalkPreorder visits every node in depth-first pre-order, calling visit
// for each. Returning false from visit stops the walk early.
func (t *Tree) WalkPreorder(visit func(Node) bool) {
	if !t.Available() {
		return
	}
	root, ok := t.Root()
	if !ok {
		return
	}
	var walk func(Node) bool
	walk = func(n Node) bool {
		if !visit(n) {
			return false
		}
		for _, c := range t.NamedChildren(n) {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// FindDescendants searches root itself and its named descendants for nodes
// matching pred. Both orders use a single explicit stack:
//
//   - DepthFirst pushes a node's children right-to-left, so popping the
//     stack yields left-to-right, standard pre-order.
//   - BreadthFirst pushes a node's children left-to-right onto the *same*
//     stack. This does not produce a textbook breadth-first order (that
//     would require a queue); it reproduces, verbatim, the traversal
//     discipline of the tool this package's contract is modeled on.
//
// firstOnly stops the walk as soon as one match is found.
func (t *Tree) FindDescendants(root Node, pred func(Node) bool, firstOnly bool, order Order) []Node {
	if !t.Available() {
		return nil
	}
	var results []Node
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if pred(n) {
			results = append(results, n)
			if firstOnly {
				return results
			}
		}

		children := t.NamedChildren(n)
		switch order {
		case DepthFirst:
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		case BreadthFirst:
			for i := 0; i < len(children); i++ {
				stack = append(stack, children[i])
			}
		}
	}
	return results
}

// unavailable builds a Tree that answers every query empty, used both as
// the degraded "no parser" mode and as the base for tree construction
// before a backend populates it.
func unavailable(source []byte) *Tree {
	return &Tree{source: source, available: false}
}
