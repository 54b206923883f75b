package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/example"
	"github.com/dkoosis/exnote/pkg/traceback"
)

type fakeModule string

func (m fakeModule) File() string { return string(m) }

type fakeEngine struct {
	loadErr  error
	groups   []example.Group
	outcomes [][]example.Outcome
	execErr  error
	loads    int
}

func (f *fakeEngine) Load(_ context.Context, path string) (Module, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return fakeModule(path), nil
}

func (f *fakeEngine) Discover(Module) ([]example.Group, error) { return f.groups, nil }

func (f *fakeEngine) Execute(context.Context, Module, []example.Group) ([][]example.Outcome, error) {
	return f.outcomes, f.execErr
}

// countingHost wraps a Store and counts writes.
type countingHost struct {
	*annotate.Store
	sets   int
	clears int
	fail   error
}

func (h *countingHost) ClearNamespace(buf annotate.Buffer, ns annotate.Namespace, start, end int) error {
	h.clears++
	return h.Store.ClearNamespace(buf, ns, start, end)
}

func (h *countingHost) SetAnnotation(buf annotate.Buffer, ns annotate.Namespace, line int, segs []annotate.Segment, opts annotate.Options) error {
	if h.fail != nil {
		return h.fail
	}
	h.sets++
	return h.Store.SetAnnotation(buf, ns, line, segs, opts)
}

type harness struct {
	runner   *Runner
	engine   *fakeEngine
	host     *countingHost
	messages []string
}

func newHarness(opts Options) *harness {
	h := &harness{
		engine: &fakeEngine{},
		host:   &countingHost{Store: annotate.NewStore()},
	}
	h.runner = &Runner{
		Session:    &Session{},
		Loader:     h.engine,
		Discoverer: h.engine,
		Executor:   h.engine,
		Host:       h.host,
		Status:     func(msg string) { h.messages = append(h.messages, msg) },
		Options:    func() Options { return opts },
		Dir:        "/w",
		Stat: func(string) (os.FileInfo, error) {
			return nil, fs.ErrNotExist
		},
	}
	return h
}

func (h *harness) annotations(t *testing.T) []annotate.Annotation {
	t.Helper()
	ns, err := h.host.CreateNamespace(Tool)
	require.NoError(t, err)
	return h.host.Annotations("", ns)
}

func twoExamples() example.Group {
	return example.Group{
		Name:     "ExampleAdd",
		BaseLine: 10,
		Examples: []example.Example{
			{Name: "ExampleAdd", RelativeLine: 2, Expected: "3"},
			{Name: "ExampleAdd2", RelativeLine: 6, Expected: "4"},
		},
	}
}

func TestRun_PassThenFail(t *testing.T) {
	h := newHarness(Options{ShowTracebackDetail: true})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.outcomes = [][]example.Outcome{{example.Passed(time.Millisecond), example.Failed("5", 0)}}

	sum, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)
	assert.Equal(t, Summary{Groups: 1, Passed: 1, Failed: 1}, sum)
	assert.False(t, sum.OK())

	got := h.annotations(t)
	require.Len(t, got, 1)
	assert.Equal(t, 17, got[0].Line)
	assert.Equal(t, "# 5", got[0].Text())
	assert.Equal(t, annotate.Error, got[0].Severity())
	assert.Empty(t, h.messages)
}

func TestRun_VerboseSuccess(t *testing.T) {
	msg := "ok"
	h := newHarness(Options{VerboseMessage: &msg})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.outcomes = [][]example.Outcome{{example.Passed(0), example.Passed(0)}}

	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)

	got := h.annotations(t)
	require.Len(t, got, 2)
	assert.Equal(t, 13, got[0].Line)
	assert.Equal(t, "# ok", got[0].Text())
	assert.Equal(t, "Comment", got[0].Severity().Group())
	assert.Equal(t, 17, got[1].Line)
}

func TestRun_ExceptionCollapsesToOneLine(t *testing.T) {
	h := newHarness(Options{ShowTracebackDetail: true})
	h.engine.groups = []example.Group{{BaseLine: 3, Examples: []example.Example{{Name: "ExampleBad", RelativeLine: 4}}}}
	exc := &traceback.Exception{
		Kind:    "panic",
		Message: "bad input",
		Frames:  []traceback.Frame{{File: "/w/m_test.go", Line: 7}},
	}
	h.engine.outcomes = [][]example.Outcome{{example.Raised(exc, 0)}}

	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)

	got := h.annotations(t)
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].Line)
	assert.Equal(t, "# panic: bad input on line 7", got[0].Text())
}

func TestRun_ExceptionWithoutDetail(t *testing.T) {
	h := newHarness(Options{})
	h.engine.groups = []example.Group{{Examples: []example.Example{{Name: "ExampleBad"}}}}
	exc := &traceback.Exception{Kind: "ValueError", Message: "bad input", Frames: []traceback.Frame{{File: "/w/m_test.go", Line: 7}}}
	h.engine.outcomes = [][]example.Outcome{{example.Raised(exc, 0)}}

	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)
	assert.Equal(t, "# ValueError: bad input", h.annotations(t)[0].Text())
}

func TestRun_DisabledSessionDoesNothing(t *testing.T) {
	h := newHarness(Options{})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.outcomes = [][]example.Outcome{{example.Failed("1", 0), example.Failed("2", 0)}}
	h.engine.loadErr = &SyntaxError{Path: "x", Err: errors.New("bad")}

	h.runner.Session.Disable()
	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)

	assert.Zero(t, h.engine.loads)
	assert.Zero(t, h.host.sets)
	assert.Zero(t, h.host.clears)
	assert.Empty(t, h.messages)
}

func TestRun_ClearPrecedesWrite(t *testing.T) {
	h := newHarness(Options{})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.outcomes = [][]example.Outcome{{example.Failed("first", 0), example.Passed(0)}}
	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)
	require.Len(t, h.annotations(t), 1)

	h.engine.outcomes = [][]example.Outcome{{example.Passed(0), example.Failed("second", 0)}}
	_, err = h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.NoError(t, err)

	got := h.annotations(t)
	require.Len(t, got, 1)
	assert.Equal(t, "# second", got[0].Text())
	assert.Equal(t, 2, h.host.clears)
}

func TestRun_ResolutionErrorSilentWhenFileMissing(t *testing.T) {
	h := newHarness(Options{})
	h.engine.loadErr = &ResolutionError{Path: "/w/new.go", Err: errors.New("no package")}

	_, err := h.runner.Run(context.Background(), "", "/w/new.go")
	require.Error(t, err)
	assert.Empty(t, h.messages)
}

func TestRun_ResolutionErrorReportedWhenFileExists(t *testing.T) {
	h := newHarness(Options{})
	path := filepath.Join(t.TempDir(), "odd name.go")
	require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0o644))
	h.runner.Stat = os.Stat
	h.engine.loadErr = &ResolutionError{Path: path, Err: errors.New("no package")}

	_, err := h.runner.Run(context.Background(), "", path)
	require.Error(t, err)
	assert.Equal(t, []string{"exnote: error loading package, path may contain unsupported characters"}, h.messages)
}

func TestRun_SyntaxError(t *testing.T) {
	h := newHarness(Options{})
	h.engine.loadErr = &SyntaxError{Path: "/w/m.go", Err: errors.New("expected ';'")}

	_, err := h.runner.Run(context.Background(), "", "/w/m.go")
	require.Error(t, err)
	assert.Equal(t, []string{"exnote: syntax error in file"}, h.messages)
}

func TestRun_UnexpectedErrorNamesKind(t *testing.T) {
	h := newHarness(Options{})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.execErr = fmt.Errorf("starting example: %w", &fs.PathError{Op: "fork/exec", Path: "go", Err: errors.New("not found")})

	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.Error(t, err)
	assert.Equal(t, []string{"exnote: encountered fs.PathError while attempting to run tests"}, h.messages)
}

func TestRun_HostFailureAbortsCycle(t *testing.T) {
	h := newHarness(Options{})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.outcomes = [][]example.Outcome{{example.Failed("1", 0), example.Failed("2", 0)}}
	h.host.fail = errors.New("buffer gone")

	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.Error(t, err)
	assert.Equal(t, []string{"exnote: encountered error while attempting to run tests"}, h.messages)
}

func TestRun_MissingOutcome(t *testing.T) {
	h := newHarness(Options{})
	h.engine.groups = []example.Group{twoExamples()}
	h.engine.outcomes = [][]example.Outcome{{example.Passed(0)}}

	_, err := h.runner.Run(context.Background(), "", "/w/m_test.go")
	require.Error(t, err)
	assert.Len(t, h.messages, 1)
}

type kindError struct{}

func (kindError) Error() string { return "build failed" }
func (kindError) Kind() string  { return "build failure" }

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "error", ErrorKind(errors.New("x")))
	assert.Equal(t, "build failure", ErrorKind(fmtWrap(kindError{})))
	assert.Equal(t, "fs.PathError", ErrorKind(fmtWrap(&fs.PathError{Op: "open", Path: "x", Err: errors.New("denied")})))
	assert.Equal(t, "no error", ErrorKind(nil))
}

func fmtWrap(err error) error {
	return &ResolutionError{Path: "p", Err: err}
}

func TestSession_EndRunsCleanupOnce(t *testing.T) {
	var s Session
	calls := 0
	cleanup := func() error { calls++; return errors.New("ignored") }

	assert.Error(t, s.End(true, cleanup))
	assert.NoError(t, s.End(true, cleanup))
	assert.Equal(t, 1, calls)

	var off Session
	assert.NoError(t, off.End(false, cleanup))
	assert.Equal(t, 1, calls)
}
