// Package config resolves run options from CLI flags and an optional
// KDL project file, with CLI flags always winning over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

const projectFileName = ".fbeamer.kdl"

// Options holds the CLI surface plus the project-file-settable keys.
type Options struct {
	Watch        bool
	Unite        bool
	Pdfunite     bool
	FrameNumbers bool
	TreeSitter   bool
	Output       string
}

// Defaults returns every option at its default value.
func Defaults() Options {
	return Options{
		Watch:        false,
		Unite:        false,
		Pdfunite:     false,
		FrameNumbers: false,
		TreeSitter:   true,
		Output:       "",
	}
}

// overrideSet tracks which fields were explicitly set by the CLI flag
// layer, so project-file values never clobber an explicit flag.
type overrideSet struct {
	watch, unite, pdfunite, frameNumbers, treeSitter, output bool
}

// Resolve starts from Defaults, applies .fbeamer.kdl next to inputFile if
// present, then re-applies any CLI-set field in cliSet so flags always
// win.
func Resolve(inputFile string, cli Options, cliSet overrideSet) (Options, error) {
	opts := Defaults()

	projectOpts, err := loadProjectFile(filepath.Dir(inputFile))
	if err != nil {
		return Options{}, err
	}
	if projectOpts != nil {
		opts = *projectOpts
	}

	if cliSet.watch {
		opts.Watch = cli.Watch
	}
	if cliSet.unite {
		opts.Unite = cli.Unite
	}
	if cliSet.pdfunite {
		opts.Pdfunite = cli.Pdfunite
	}
	if cliSet.frameNumbers {
		opts.FrameNumbers = cli.FrameNumbers
	}
	if cliSet.treeSitter {
		opts.TreeSitter = cli.TreeSitter
	}
	if cliSet.output {
		opts.Output = cli.Output
	}
	return opts, nil
}

// NewOverrideSet builds the override bookkeeping that Resolve needs from
// cli.Context.IsSet-style booleans; kept as a plain constructor so
// cmd/fbeamer doesn't need to know overrideSet's field layout.
func NewOverrideSet(watch, unite, pdfunite, frameNumbers, treeSitter, output bool) overrideSet {
	return overrideSet{watch, unite, pdfunite, frameNumbers, treeSitter, output}
}

func loadProjectFile(dir string) (*Options, error) {
	path := filepath.Join(dir, projectFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	opts := Defaults()
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "watch":
			if b, ok := firstBoolArg(n); ok {
				opts.Watch = b
			}
		case "unite":
			if b, ok := firstBoolArg(n); ok {
				opts.Unite = b
			}
		case "pdfunite":
			if b, ok := firstBoolArg(n); ok {
				opts.Pdfunite = b
			}
		case "frame-numbers":
			if b, ok := firstBoolArg(n); ok {
				opts.FrameNumbers = b
			}
		case "tree-sitter":
			if b, ok := firstBoolArg(n); ok {
				opts.TreeSitter = b
			}
		case "output":
			if s, ok := firstStringArg(n); ok {
				opts.Output = s
			}
		}
	}
	return &opts, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
