// Package runner drives one run cycle: load the package holding a file,
// discover its examples, clear the previous annotations, execute, and route
// every outcome to a Reporter.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/example"
)

// Tool prefixes every status message and names the annotation namespace.
const Tool = "exnote"

var log = commonlog.GetLogger("exnote.runner")

// Module is a loaded package, opaque to the runner.
type Module interface {
	File() string
}

// Loader (re)loads the package that holds a file.
type Loader interface {
	Load(ctx context.Context, path string) (Module, error)
}

// Discoverer finds the example groups declared in a module's file.
type Discoverer interface {
	Discover(mod Module) ([]example.Group, error)
}

// Executor runs every example of the given groups. The result holds one
// outcome per example, indexed like groups and their examples.
type Executor interface {
	Execute(ctx context.Context, mod Module, groups []example.Group) ([][]example.Outcome, error)
}

// StatusFunc shows a single-line message to the user.
type StatusFunc func(message string)

// Summary counts the outcomes of one cycle.
type Summary struct {
	Groups   int
	Passed   int
	Failed   int
	Panicked int
}

// OK reports whether every example passed.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Panicked == 0
}

// Runner owns the run cycle. Cycles are serialized.
type Runner struct {
	Session    *Session
	Loader     Loader
	Discoverer Discoverer
	Executor   Executor
	Host       annotate.Host
	Status     StatusFunc
	Options    func() Options
	Dir        string // working directory; defaults to os.Getwd
	Stat       func(path string) (os.FileInfo, error)

	mu sync.Mutex
}

// Run performs one cycle for the file at path, annotating buf. The error
// returned, if any, has already been reported through Status.
func (r *Runner) Run(ctx context.Context, buf annotate.Buffer, path string) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Session != nil && r.Session.Disabled() {
		return Summary{}, nil
	}

	mod, err := r.Loader.Load(ctx, path)
	if err != nil {
		r.reportLoad(path, err)
		return Summary{}, err
	}

	sum, err := r.cycle(ctx, buf, mod)
	if err != nil {
		r.status(fmt.Sprintf("encountered %s while attempting to run tests", ErrorKind(err)))
		log.Errorf("run %s: %v", path, err)
	}
	return sum, err
}

func (r *Runner) cycle(ctx context.Context, buf annotate.Buffer, mod Module) (Summary, error) {
	var sum Summary
	groups, err := r.Discoverer.Discover(mod)
	if err != nil {
		return sum, fmt.Errorf("discovering examples: %w", err)
	}
	sum.Groups = len(groups)

	ns, err := r.Host.CreateNamespace(Tool)
	if err != nil {
		return sum, fmt.Errorf("creating namespace: %w", err)
	}
	if err := r.Host.ClearNamespace(buf, ns, 0, -1); err != nil {
		return sum, fmt.Errorf("clearing namespace: %w", err)
	}
	if len(groups) == 0 {
		log.Debugf("no examples in %s", mod.File())
		return sum, nil
	}

	outcomes, err := r.Executor.Execute(ctx, mod, groups)
	if err != nil {
		return sum, fmt.Errorf("executing examples: %w", err)
	}

	opts := Options{ShowTracebackDetail: true}
	if r.Options != nil {
		opts = r.Options()
	}
	rep := &AnnotationReporter{
		Emitter: annotate.NewEmitter(r.Host, buf, ns, opts.Marker),
		Options: opts,
		File:    mod.File(),
		Dir:     r.dir(),
	}

	for gi, g := range groups {
		for ei, ex := range g.Examples {
			o, ok := outcomeAt(outcomes, gi, ei)
			if !ok {
				return sum, fmt.Errorf("no outcome for %s", ex.Name)
			}
			if err := Dispatch(rep, g, ex, o); err != nil {
				return sum, fmt.Errorf("annotating %s: %w", ex.Name, err)
			}
			switch o.Kind {
			case example.Success:
				sum.Passed++
			case example.Failure:
				sum.Failed++
			case example.UnexpectedException:
				sum.Panicked++
			}
		}
	}
	log.Infof("%s: %d passed, %d failed, %d panicked", mod.File(), sum.Passed, sum.Failed, sum.Panicked)
	return sum, nil
}

// Dispatch routes one outcome to the matching Reporter method.
func Dispatch(rep Reporter, g example.Group, ex example.Example, o example.Outcome) error {
	switch o.Kind {
	case example.Success:
		return rep.OnSuccess(g, ex)
	case example.Failure:
		return rep.OnFailure(g, ex, o.Actual)
	case example.UnexpectedException:
		return rep.OnUnexpectedException(g, ex, o.Exception)
	default:
		return fmt.Errorf("unknown outcome kind %d", o.Kind)
	}
}

func (r *Runner) reportLoad(path string, err error) {
	var resErr *ResolutionError
	var synErr *SyntaxError
	switch {
	case errors.As(err, &synErr):
		r.status("syntax error in file")
	case errors.As(err, &resErr):
		if r.exists(path) {
			r.status("error loading package, path may contain unsupported characters")
		}
	default:
		r.status(fmt.Sprintf("encountered %s while attempting to run tests", ErrorKind(err)))
	}
	log.Debugf("load %s: %v", path, err)
}

func (r *Runner) exists(path string) bool {
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	return err == nil && !info.IsDir()
}

func (r *Runner) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func (r *Runner) status(msg string) {
	if r.Status != nil {
		r.Status(Tool + ": " + msg)
	}
}

func outcomeAt(outcomes [][]example.Outcome, gi, ei int) (example.Outcome, bool) {
	if gi >= len(outcomes) || ei >= len(outcomes[gi]) {
		return example.Outcome{}, false
	}
	return outcomes[gi][ei], true
}
