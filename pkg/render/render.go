// Package render formats an annotated source file for a terminal, a
// language model or a machine.
package render

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/runner"
)

// Listing is one source file with the annotations written for it.
type Listing struct {
	Path        string
	Source      []string // file content split into lines
	Annotations []annotate.Annotation
	Summary     runner.Summary
	Status      []string // status messages shown during the cycle
}

// Renderer converts a listing to formatted output.
type Renderer interface {
	Render(l Listing) string
}

// ByLine groups the listing's annotations by zero-based line.
func (l Listing) ByLine() map[int][]annotate.Annotation {
	m := make(map[int][]annotate.Annotation, len(l.Annotations))
	for _, a := range l.Annotations {
		m[a.Line] = append(m[a.Line], a)
	}
	return m
}

// Examples returns the number of examples the summary accounts for.
func Examples(s runner.Summary) int {
	return s.Passed + s.Failed + s.Panicked
}

var title = cases.Title(language.English)

// summaryItems returns the non-empty counters, title-cased, e.g. "Passed 3".
func summaryItems(s runner.Summary) []string {
	items := []string{fmt.Sprintf("%s %d", title.String("passed"), s.Passed)}
	if s.Failed > 0 {
		items = append(items, fmt.Sprintf("%s %d", title.String("failed"), s.Failed))
	}
	if s.Panicked > 0 {
		items = append(items, fmt.Sprintf("%s %d", title.String("panicked"), s.Panicked))
	}
	return items
}

// verdict is the one-word outcome of the cycle.
func verdict(s runner.Summary) string {
	switch {
	case Examples(s) == 0:
		return "NONE"
	case s.OK():
		return "PASS"
	default:
		return "FAIL"
	}
}
