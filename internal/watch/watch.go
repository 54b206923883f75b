// Package watch re-runs a file's examples whenever it is saved and shows
// the annotated listing in a full-screen terminal UI.
package watch

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tliron/commonlog"

	"github.com/dkoosis/exnote/pkg/render"
)

var log = commonlog.GetLogger("exnote.watch")

// Options configure Run.
type Options struct {
	Path     string
	Theme    render.Theme
	Debounce time.Duration
	Input    io.Reader // defaults to stdin
	Output   io.Writer // defaults to stdout
}

// Run shows the UI until the user quits or ctx is done.
func Run(ctx context.Context, c Checker, opts Options) error {
	fw, err := NewFileWatcher(opts.Path, opts.Debounce)
	if err != nil {
		return err
	}
	defer fw.Close()

	done := make(chan struct{})
	defer close(done)
	go logErrors(ctx, done, opts.Path, fw.Errors())

	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	program := tea.NewProgram(newModel(ctx, c, fw.Changes(), opts.Path, opts.Theme), progOpts...)
	_, err = program.Run()
	return err
}

// logErrors reports watcher errors until ctx is done, done is closed or
// errs is closed.
func logErrors(ctx context.Context, done <-chan struct{}, path string, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warningf("watching %s: %s", path, err)
		}
	}
}
