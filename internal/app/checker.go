// Package app wires the runner to an in-memory annotation store and turns
// each run cycle into a render.Listing. The run and watch commands share it.
package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dkoosis/exnote/internal/config"
	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/discover"
	"github.com/dkoosis/exnote/pkg/render"
	"github.com/dkoosis/exnote/pkg/runner"
)

// Engine loads and runs packages.
type Engine interface {
	runner.Loader
	runner.Executor
	RemoveCache() error
}

// Checker runs the examples of one file at a time.
type Checker struct {
	Session *runner.Session
	Store   *annotate.Store

	engine   Engine
	settings *config.Settings
	runner   *runner.Runner

	mu     sync.Mutex
	status []string
}

// NewChecker returns a checker using engine with fixed settings.
func NewChecker(engine Engine, settings *config.Settings) *Checker {
	c := &Checker{
		Session:  &runner.Session{},
		Store:    annotate.NewStore(),
		engine:   engine,
		settings: settings,
	}
	c.runner = &runner.Runner{
		Session:    c.Session,
		Loader:     engine,
		Discoverer: discover.Discoverer{},
		Executor:   engine,
		Host:       c.Store,
		Status:     c.addStatus,
		Options:    settings.RunnerOptions,
	}
	return c
}

func (c *Checker) addStatus(msg string) {
	c.mu.Lock()
	c.status = append(c.status, msg)
	c.mu.Unlock()
}

// Check runs one cycle for path. The listing is filled in even when the
// cycle fails; the error has already been added to its status messages.
func (c *Checker) Check(ctx context.Context, path string) (render.Listing, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	c.status = nil
	c.mu.Unlock()

	buf := annotate.Buffer(abs)
	sum, runErr := c.runner.Run(ctx, buf, abs)

	l := render.Listing{Path: path, Summary: sum}
	if data, err := os.ReadFile(abs); err == nil {
		l.Source = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}
	if ns, err := c.Store.CreateNamespace(runner.Tool); err == nil {
		l.Annotations = c.Store.Annotations(buf, ns)
	}
	c.mu.Lock()
	l.Status = append([]string(nil), c.status...)
	c.mu.Unlock()
	return l, runErr
}

// Quit stops all later cycles.
func (c *Checker) Quit() {
	c.Session.Disable()
}

// End removes the binary cache when configured. It is safe to call more
// than once; cleanup errors are ignored.
func (c *Checker) End() {
	_ = c.Session.End(c.settings.RemoveCache, c.engine.RemoveCache)
}
