package testjson

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
)

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line []byte
	err  error
}

// Stream parses go test -json events line by line and calls fn for each one.
// Stops on EOF or when ctx is cancelled. Returns the number of malformed lines
// skipped and any error.
//
// Cancellation: the scanner runs in a background goroutine. On context cancel,
// Stream closes r (if it implements io.Closer) to unblock the scanner. If r
// does not implement io.Closer (e.g. *bufio.Reader), the caller must close the
// underlying reader externally to prevent a goroutine leak.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			// scanner reuses its buffer
			cp := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- scanResult{line: cp}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	var malformed int
	for {
		select {
		case <-ctx.Done():
			// Attempt to unblock the scanner goroutine.
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case res, ok := <-lines:
			if !ok {
				return malformed, nil
			}
			if res.err != nil {
				return malformed, res.err
			}
			if len(res.line) == 0 {
				continue
			}
			var event TestEvent
			if err := json.Unmarshal(res.line, &event); err != nil {
				malformed++
				continue
			}
			fn(event)
		}
	}
}

// Collector accumulates events of one test binary run.
type Collector struct {
	pkg     string
	status  string
	output  []string
	tests   map[string]*ExampleResult
	order   []string
	current string // last test that reported a verdict or started running
	pending map[string]string // unterminated output per test, keyed by Test
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{tests: make(map[string]*ExampleResult), pending: make(map[string]string)}
}

// Process records one event.
func (c *Collector) Process(e TestEvent) {
	if c.pkg == "" {
		c.pkg = e.Package
	}
	switch e.Action {
	case ActionRun:
		if e.Test != "" {
			c.getOrCreate(e.Test)
			c.current = e.Test
		}

	case StatusPass, StatusFail, StatusSkip:
		if e.Test == "" {
			c.status = e.Action
			return
		}
		ts := c.getOrCreate(e.Test)
		ts.Status = e.Action
		ts.Duration = time.Duration(e.Elapsed * float64(time.Second))
		c.current = e.Test

	case ActionOut:
		// test2json splits long lines into several events; only the last
		// one carries the newline.
		text := c.pending[e.Test] + e.Output
		if !strings.HasSuffix(text, "\n") {
			c.pending[e.Test] = text
			return
		}
		delete(c.pending, e.Test)
		for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
			c.line(e.Test, line)
		}
	}
}

func (c *Collector) line(test, output string) {
	c.output = append(c.output, output)
	if isFraming(output) {
		return
	}
	// test2json attributes the lines printed after a verdict (got/want,
	// panics) to the package; they belong to the last example seen.
	name := test
	if name == "" {
		name = c.current
	}
	if name == "" {
		return
	}
	ts := c.getOrCreate(name)
	ts.Output = append(ts.Output, output)
}

func (c *Collector) getOrCreate(name string) *ExampleResult {
	if ts, ok := c.tests[name]; ok {
		return ts
	}
	ts := &ExampleResult{Name: name}
	c.tests[name] = ts
	c.order = append(c.order, name)
	return ts
}

// Run returns the collected results in the order examples were first seen.
// Output still waiting for its newline is flushed first.
func (c *Collector) Run() *Run {
	for _, test := range slices.Sorted(maps.Keys(c.pending)) {
		for _, line := range strings.Split(c.pending[test], "\n") {
			c.line(test, line)
		}
		delete(c.pending, test)
	}
	r := &Run{Package: c.pkg, Status: c.status, Output: c.output}
	for _, name := range c.order {
		r.Examples = append(r.Examples, *c.tests[name])
	}
	return r
}

// isFraming reports lines the testing package prints around every test.
func isFraming(line string) bool {
	for _, p := range []string{"=== RUN", "=== PAUSE", "=== CONT", "--- PASS:", "--- FAIL:", "--- SKIP:"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	switch {
	case line == "PASS", line == "FAIL":
		return true
	case strings.HasPrefix(line, "ok  \t"), strings.HasPrefix(line, "FAIL\t"):
		return true
	case strings.HasPrefix(line, "testing: warning: no tests to run"):
		return true
	}
	return false
}
