package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dkoosis/exnote/internal/app"
	"github.com/dkoosis/exnote/internal/version"
	"github.com/dkoosis/exnote/pkg/sarif"
)

type runFlags struct {
	format  string
	theme   string
	context int
}

func (c *cli) runCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Run the examples of Go test files once",
		Long: `Run the examples of each file and print the annotated listing.

The exit code is 1 when an example fails or panics, or a file cannot be
run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFiles(cmd.Context(), f, args)
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "auto", "output format: auto, terminal, llm, json, sarif")
	cmd.Flags().StringVar(&f.theme, "theme", "default", "terminal theme: default, dim, mono")
	cmd.Flags().IntVar(&f.context, "context", -1, "source lines shown around annotations (-1 shows all)")
	return cmd
}

func (c *cli) runFiles(ctx context.Context, f runFlags, paths []string) error {
	s, err := c.settings()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	checker := app.NewChecker(c.engine(s), s)
	defer checker.End()

	format := resolveFormat(f.format, c.stdout)
	var doc *sarif.Builder
	if format == "sarif" {
		doc = sarif.NewBuilder("exnote", version.Version)
	}
	cwd, _ := os.Getwd()

	failed := false
	for _, path := range paths {
		l, err := checker.Check(ctx, path)
		if err != nil || !l.Summary.OK() {
			failed = true
		}
		if err != nil && len(l.Status) == 0 {
			c.errorf("%v", err)
		}
		if doc != nil {
			for _, msg := range l.Status {
				c.status(msg)
			}
			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				abs = path
			}
			doc.AddAnnotations(abs, cwd, s.CommentMarker, l.Annotations)
			continue
		}
		out := selectRenderer(format, f.theme, s.NoColor, f.context, c.stdout).Render(l)
		if _, err := fmt.Fprint(c.stdout, out); err != nil {
			return err
		}
	}
	if doc != nil {
		if _, err := doc.WriteTo(c.stdout); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}
