// Package testjson parses go test -json / test2json event streams into
// per-example results.
package testjson

import "time"

// Actions reported by test2json.
const (
	StatusPass = "pass"
	StatusFail = "fail"
	StatusSkip = "skip"
	ActionRun  = "run"
	ActionOut  = "output"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"` // start, run, pass, fail, skip, output, bench, pause, cont
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// ProcessFunc is called once per decoded event.
type ProcessFunc func(TestEvent)

// ExampleResult is what one example reported while running.
type ExampleResult struct {
	Name     string
	Status   string // "pass", "fail", "skip", or "" when the process died first
	Duration time.Duration
	Output   []string // lines attributed to the example, framing lines removed
}

// Run is the collected result of one test binary invocation.
type Run struct {
	Package  string
	Examples []ExampleResult
	Output   []string // every output line, in arrival order
	Status   string   // package verdict; "" when none was reported
}

// Example returns the result recorded for name.
func (r *Run) Example(name string) (ExampleResult, bool) {
	for _, ex := range r.Examples {
		if ex.Name == name {
			return ex, true
		}
	}
	return ExampleResult{}, false
}
