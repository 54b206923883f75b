package main

import (
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dkoosis/exnote/internal/config"
	"github.com/dkoosis/exnote/internal/logging"
	"github.com/dkoosis/exnote/pkg/execute"
)

// errFailed marks a run whose examples did not all pass. Its message has
// already been shown.
var errFailed = errors.New("examples failed")

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flags config.Flags
	root  *cobra.Command
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "exnote",
		Short: "Annotate Go example tests with their results",
		Long: `exnote runs the Example functions of a Go test file and reports each
result on the line below its "// Output:" comment.

  exnote run calc_test.go        Run once and print an annotated listing
  exnote watch calc_test.go      Re-run on every save
  exnote lsp                     Serve results as editor diagnostics
  exnote clean                   Remove the compiled test binary cache`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.bindFlags(cmd)
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.ConfigFile, "config", "", "config file (default .exnote.yaml, then the user config dir)")
	pf.BoolVar(&c.flags.TracebackInfo, "traceback-info", true, "append where a panic came from to its summary")
	pf.StringVar(&c.flags.VerboseString, "verbose-string", "", "annotate passing examples with this text")
	pf.BoolVar(&c.flags.RemoveCache, "remove-cache", true, "remove the binary cache on exit")
	pf.StringVar(&c.flags.CommentMarker, "comment-marker", "", `prefix of every annotation (default "# ")`)
	pf.IntVar(&c.flags.Jobs, "jobs", 0, "examples run in parallel (default GOMAXPROCS)")
	pf.BoolVar(&c.flags.NoColor, "no-color", false, "disable colored output")
	pf.CountVarP(&c.flags.Verbosity, "verbose", "v", "log more (repeatable)")
	pf.StringVar(&c.flags.LogFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		c.runCommand(),
		c.watchCommand(),
		c.lspCommand(),
		c.cleanCommand(),
		c.versionCommand(),
	)
	c.root = root
	return c
}

// bindFlags records which flags the user passed explicitly.
func (c *cli) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	c.flags.TracebackInfoSet = f.Changed("traceback-info")
	c.flags.VerboseStringSet = f.Changed("verbose-string")
	c.flags.RemoveCacheSet = f.Changed("remove-cache")
	c.flags.NoColorSet = f.Changed("no-color")
}

func (c *cli) execute(args []string) int {
	c.root.SetArgs(args)
	err := c.root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		c.errorf("%v", err)
		return 2
	}
}

// settings resolves configuration and sets up logging and color output.
func (c *cli) settings() (*config.Settings, error) {
	s, err := config.Resolve(c.flags)
	if err != nil {
		return nil, err
	}
	logging.Configure(s.Verbosity, s.LogFile)
	if s.NoColor {
		color.NoColor = true
	}
	return s, nil
}

func (c *cli) engine(s *config.Settings) *execute.Engine {
	return execute.NewEngine(execute.Options{Jobs: s.Jobs})
}

// status prints a status message to stderr.
func (c *cli) status(msg string) {
	color.New(color.FgYellow).Fprintln(c.stderr, msg)
}

func (c *cli) errorf(format string, args ...any) {
	color.New(color.FgRed, color.Bold).Fprintf(c.stderr, "exnote: "+format+"\n", args...)
}
