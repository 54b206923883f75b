package sarif

import (
	"path/filepath"
	"strings"

	"github.com/dkoosis/exnote/pkg/annotate"
)

// Rule ids written by AddAnnotations.
const (
	RuleFailed = "example-failed"
	RulePassed = "example-passed"
)

// AddAnnotations adds the annotations of one file. Annotations on
// consecutive lines with the same severity form one report and become one
// result; the marker is stripped from each line of the message. Paths are
// written with forward slashes, relative to dir when possible.
func (b *Builder) AddAnnotations(file, dir, marker string, anns []annotate.Annotation) *Builder {
	uri := file
	if dir != "" {
		if rel, err := filepath.Rel(dir, file); err == nil && !strings.HasPrefix(rel, "..") {
			uri = rel
		}
	}
	uri = filepath.ToSlash(uri)

	for _, g := range group(anns) {
		lines := make([]string, len(g))
		for i, a := range g {
			lines[i] = strings.TrimPrefix(a.Text(), marker)
		}
		sev := g[0].Severity()
		rule, level := RulePassed, "note"
		if sev == annotate.Error {
			rule, level = RuleFailed, "error"
			b.AddRule(RuleFailed, "Example output did not match")
		} else {
			b.AddRule(RulePassed, "Example passed")
		}
		b.AddResult(rule, level, strings.Join(lines, "\n"), uri, g[0].Line+1, g[len(g)-1].Line+1)
	}
	return b
}

// group splits line-ordered annotations into runs of consecutive lines
// sharing a severity.
func group(anns []annotate.Annotation) [][]annotate.Annotation {
	var out [][]annotate.Annotation
	for i, a := range anns {
		if i > 0 {
			prev := anns[i-1]
			if a.Line == prev.Line+1 && a.Severity() == prev.Severity() {
				out[len(out)-1] = append(out[len(out)-1], a)
				continue
			}
		}
		out = append(out, []annotate.Annotation{a})
	}
	return out
}
