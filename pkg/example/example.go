// Package example holds the data model shared by discovery, execution and
// annotation: groups of runnable examples and the outcome of running one.
package example

import (
	"time"

	"github.com/dkoosis/exnote/pkg/traceback"
)

// Group is the set of examples declared by one example function.
type Group struct {
	Name     string
	BaseLine int // zero-based line of the func keyword
	Examples []Example
}

// Example is one input/expected-output pair.
type Example struct {
	Name         string // function name, used to select the example at run time
	RelativeLine int    // zero-based offset from the group's BaseLine to the output marker
	Expected     string
	Source       string
	Unordered    bool
}

// Locate returns the buffer line an annotation for ex is anchored to: the
// line immediately below the one that declared the example's output.
func Locate(g Group, ex Example) int {
	return g.BaseLine + ex.RelativeLine + 1
}

// Kind classifies an Outcome.
type Kind int

const (
	Success Kind = iota
	Failure
	UnexpectedException
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case UnexpectedException:
		return "exception"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one Example.
type Outcome struct {
	Kind      Kind
	Actual    string               // Failure only
	Exception *traceback.Exception // UnexpectedException only
	Elapsed   time.Duration
}

// Passed returns a success outcome.
func Passed(elapsed time.Duration) Outcome {
	return Outcome{Kind: Success, Elapsed: elapsed}
}

// Failed returns a failure outcome carrying the output the example produced.
func Failed(actual string, elapsed time.Duration) Outcome {
	return Outcome{Kind: Failure, Actual: actual, Elapsed: elapsed}
}

// Raised returns an unexpected-exception outcome.
func Raised(exc *traceback.Exception, elapsed time.Duration) Outcome {
	return Outcome{Kind: UnexpectedException, Exception: exc, Elapsed: elapsed}
}
