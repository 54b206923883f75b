package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dkoosis/exnote/internal/app"
	"github.com/dkoosis/exnote/internal/logging"
	"github.com/dkoosis/exnote/internal/lsp"
	"github.com/dkoosis/exnote/internal/version"
	"github.com/dkoosis/exnote/internal/watch"
)

func (c *cli) watchCommand() *cobra.Command {
	var theme string
	var debounce = watch.DefaultDebounceDelay
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run a file's examples every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			if s.LogFile == "" {
				// stderr shares the screen with the UI
				logging.Configure(logging.Quiet, "")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			checker := app.NewChecker(c.engine(s), s)
			defer checker.End()
			return watch.Run(ctx, checker, watch.Options{
				Path:     args[0],
				Theme:    selectTheme(theme, s.NoColor),
				Debounce: debounce,
				Input:    c.stdin,
				Output:   c.stdout,
			})
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "default", "terminal theme: default, dim, mono")
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "wait this long after a write before re-running")
	return cmd
}

func (c *cli) lspCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server",
		Long: `Start the language server on stdio, or on a TCP address with --addr.

Examples run when a _test.go file is opened or saved and are reported as
diagnostics. Settings sent by the client override the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			srv := lsp.New(c.engine(s), s)
			if addr != "" {
				return srv.RunTCP(addr)
			}
			return srv.RunStdio()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen on this TCP address instead of stdio")
	return cmd
}

func (c *cli) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the compiled test binary cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			e := c.engine(s)
			if err := e.RemoveCache(); err != nil {
				return fmt.Errorf("removing %s: %w", e.CacheDir(), err)
			}
			return nil
		},
	}
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.stdout, version.String())
			return err
		},
	}
}
