package runner

import (
	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/example"
	"github.com/dkoosis/exnote/pkg/excerpt"
	"github.com/dkoosis/exnote/pkg/traceback"
)

// Options are fixed for the duration of one run cycle.
type Options struct {
	VerboseMessage      *string // annotate successes with this text when set
	ShowTracebackDetail bool
	Marker              string
}

// Reporter receives the outcome of each example, in source order.
type Reporter interface {
	OnSuccess(g example.Group, ex example.Example) error
	OnFailure(g example.Group, ex example.Example, actual string) error
	OnUnexpectedException(g example.Group, ex example.Example, exc *traceback.Exception) error
}

// AnnotationReporter renders outcomes as annotations below each example.
type AnnotationReporter struct {
	Emitter *annotate.Emitter
	Options Options
	File    string // file under test
	Dir     string // working directory for relative frame paths
}

// OnSuccess writes the verbose message, if one is configured.
func (r *AnnotationReporter) OnSuccess(g example.Group, ex example.Example) error {
	if r.Options.VerboseMessage == nil {
		return nil
	}
	return r.Emitter.Emit(example.Locate(g, ex), annotate.Info, []string{*r.Options.VerboseMessage})
}

// OnFailure writes what the example actually printed, one line each.
func (r *AnnotationReporter) OnFailure(g example.Group, ex example.Example, actual string) error {
	return r.Emitter.Emit(example.Locate(g, ex), annotate.Error, excerpt.Lines(ex.Expected, actual))
}

// OnUnexpectedException writes the collapsed panic as a single line.
func (r *AnnotationReporter) OnUnexpectedException(g example.Group, ex example.Example, exc *traceback.Exception) error {
	line := traceback.Collapse(exc, traceback.Options{
		Detail: r.Options.ShowTracebackDetail,
		File:   r.File,
		Dir:    r.Dir,
		Marker: r.Emitter.Marker(),
	})
	return r.Emitter.Emit(example.Locate(g, ex), annotate.Error, []string{line})
}
