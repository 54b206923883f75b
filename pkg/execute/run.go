package execute

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/exnote/pkg/example"
	"github.com/dkoosis/exnote/pkg/runner"
	"github.com/dkoosis/exnote/pkg/testjson"
	"github.com/dkoosis/exnote/pkg/traceback"
)

var exitStatus = regexp.MustCompile(`^exit status \d+$`)

// Execute implements runner.Executor. Examples run concurrently, bounded by
// the engine's job limit; the result is indexed like groups.
func (e *Engine) Execute(ctx context.Context, mod runner.Module, groups []example.Group) ([][]example.Outcome, error) {
	pkg, ok := mod.(*Package)
	if !ok {
		return nil, fmt.Errorf("execute: unsupported module %T", mod)
	}
	outcomes := make([][]example.Outcome, len(groups))
	for i, g := range groups {
		outcomes[i] = make([]example.Outcome, len(g.Examples))
	}
	if len(groups) == 0 {
		return outcomes, nil
	}
	if pkg.binary == "" {
		return nil, fmt.Errorf("execute: %s has no test binary", pkg.importPath)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.jobs)
	for gi, g := range groups {
		for ei, ex := range g.Examples {
			eg.Go(func() error {
				run, err := e.runExample(ctx, pkg, ex.Name)
				if err != nil {
					return fmt.Errorf("running %s: %w", ex.Name, err)
				}
				outcomes[gi][ei] = classify(ex.Name, run, e.sources)
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runExample runs one example under test2json and collects its events.
func (e *Engine) runExample(ctx context.Context, pkg *Package, name string) (*testjson.Run, error) {
	cmd := exec.CommandContext(ctx, e.goBin, "tool", "test2json", "-t", "-p", pkg.importPath,
		pkg.binary, "-test.v=test2json", "-test.run=^"+regexp.QuoteMeta(name)+"$")
	cmd.Dir = pkg.dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	c := testjson.NewCollector()
	malformed, streamErr := testjson.Stream(ctx, stdout, c.Process)
	waitErr := cmd.Wait()
	if streamErr != nil {
		return nil, streamErr
	}
	if malformed > 0 {
		log.Debugf("%s: skipped %d malformed test2json lines", name, malformed)
	}
	// A non-zero exit is how failing and panicking examples end; only a
	// failure to run the process at all is an error here.
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, waitErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return c.Run(), nil
}

// classify turns the collected events of one example into an outcome.
func classify(name string, run *testjson.Run, src traceback.Sources) example.Outcome {
	res, found := run.Example(name)
	if found && res.Status == testjson.StatusPass {
		return example.Passed(res.Duration)
	}
	lines := res.Output
	if !found {
		lines = run.Output
	}
	// A panicking example never reaches the got/want report, so a report
	// means a mismatch even when the printed text looks like a panic.
	if res.Status == testjson.StatusFail {
		if got, ok := gotSection(lines); ok {
			return example.Failed(got, res.Duration)
		}
	}
	if exc, ok := traceback.Parse(lines, src); ok {
		return example.Raised(exc, res.Duration)
	}
	return example.Raised(exited(lines), res.Duration)
}

// gotSection returns the text between the "got:" line and the last "want:"
// or "want (unordered):" line of a failed example's report.
func gotSection(lines []string) (string, bool) {
	start := -1
	for i, l := range lines {
		if l == "got:" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}
	end := -1
	for i := len(lines) - 1; i >= start; i-- {
		if isWantHeader(lines[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n")), true
}

func isWantHeader(line string) bool {
	return line == "want:" || strings.HasPrefix(line, "want (unordered):")
}

// exited describes a process that ended without a verdict, such as one
// that called os.Exit or log.Fatal.
func exited(lines []string) *traceback.Exception {
	exc := &traceback.Exception{Kind: "exit"}
	for _, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case l == "":
		case exitStatus.MatchString(l):
			exc.Kind = l
		default:
			exc.Message = l
		}
	}
	return exc
}
