package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/fbeamer/fbeamer/internal/config"
	"github.com/fbeamer/fbeamer/internal/debug"
	"github.com/fbeamer/fbeamer/internal/ferrors"
	"github.com/fbeamer/fbeamer/internal/pipeline"
	"github.com/fbeamer/fbeamer/internal/watch"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	debug.Init()

	app := &cli.App{
		Name:                   "fbeamer",
		Usage:                  "incrementally compile a Beamer presentation",
		Version:                Version,
		UseShortOptionHandling: true,
		ArgsUsage:              "INPUT [OUTPUT]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "rebuild on every save of INPUT"},
			&cli.BoolFlag{Name: "unite", Aliases: []string{"u"}, Usage: "concatenate every frame into OUTPUT instead of publishing only the latest-changed frame"},
			&cli.BoolFlag{Name: "pdfunite", Aliases: []string{"x"}, Usage: "alias of --unite, named for the external tool it drives"},
			&cli.BoolFlag{Name: "frame-numbers", Aliases: []string{"f"}, Usage: "reserved for a future frame-numbering pass"},
			&cli.BoolFlag{Name: "tree-sitter", Aliases: []string{"t"}, Value: true, Usage: "use the tree-sitter grammar for frame extraction, falling back to regex if unavailable"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output PDF path (defaults to output.pdf)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fbeamer:", err)
		if ferr, ok := err.(*ferrors.Error); ok && ferr.Kind == ferrors.InputFileNotExistent {
			os.Exit(-1)
		}
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowAppHelp(c)
	}
	input := c.Args().Get(0)

	if info, err := os.Stat(input); os.IsNotExist(err) {
		return ferrors.New(ferrors.InputFileNotExistent, err)
	} else if err == nil && !info.Mode().IsRegular() {
		return ferrors.New(ferrors.InputFileNotExistent, fmt.Errorf("%s is not a regular file", input))
	}

	cliOpts := config.Options{
		Watch:        c.Bool("watch"),
		Unite:        c.Bool("unite") || c.Bool("pdfunite"),
		Pdfunite:     c.Bool("pdfunite"),
		FrameNumbers: c.Bool("frame-numbers"),
		TreeSitter:   c.Bool("tree-sitter"),
		Output:       c.String("output"),
	}
	overrides := config.NewOverrideSet(
		c.IsSet("watch"),
		c.IsSet("unite") || c.IsSet("pdfunite"),
		c.IsSet("pdfunite"),
		c.IsSet("frame-numbers"),
		c.IsSet("tree-sitter"),
		c.IsSet("output") || c.NArg() > 1,
	)
	if c.NArg() > 1 {
		cliOpts.Output = c.Args().Get(1)
	}

	opts, err := config.Resolve(input, cliOpts, overrides)
	if err != nil {
		return err
	}

	outputPath := opts.Output
	if outputPath == "" {
		outputPath = "output.pdf"
	}

	runner := pipeline.NewRunner(pipeline.Options{
		InputFile:  input,
		OutputFile: outputPath,
		UseTree:    opts.TreeSitter,
		Unite:      opts.Unite,
		ProgressLog: func(done, total int) {
			debug.Debug("fbeamer", "built %d/%d frames", done, total)
		},
	})

	if err := runner.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "fbeamer:", err)
	}

	if !opts.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch.Loop(ctx, input, 50*time.Millisecond, func() {
		if err := runner.Run(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "fbeamer:", err)
		}
	})
}
