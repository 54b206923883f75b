// Package annotate defines the boundary to whatever displays annotations
// (an editor, a language client, a terminal listing) and the emitter that
// writes example results through it.
package annotate

import "strings"

// Severity drives how an annotation is displayed.
type Severity int

const (
	Info Severity = iota
	Error
)

// Group returns the display group for the severity.
func (s Severity) Group() string {
	if s == Error {
		return "Error"
	}
	return "Comment"
}

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "info"
}

// Segment is one run of text sharing a severity.
type Segment struct {
	Text     string
	Severity Severity
}

// Annotation is a rendered-only decoration attached to one buffer line.
type Annotation struct {
	Line     int
	Segments []Segment
}

// Text joins the annotation's segments.
func (a Annotation) Text() string {
	var sb strings.Builder
	for _, s := range a.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Severity returns the highest severity among the segments.
func (a Annotation) Severity() Severity {
	sev := Info
	for _, s := range a.Segments {
		if s.Severity > sev {
			sev = s.Severity
		}
	}
	return sev
}

// Buffer identifies an annotated document. Zero means the current one.
type Buffer string

// Namespace is an opaque handle grouping annotations written by one tool.
type Namespace int

// Options is passed through to the host unchanged.
type Options map[string]any

// Host is the annotation API of the displaying side.
type Host interface {
	// CreateNamespace returns the namespace registered under name,
	// creating it on first use.
	CreateNamespace(name string) (Namespace, error)
	// ClearNamespace removes annotations in ns on lines [start, end).
	// An end of -1 means the end of the buffer.
	ClearNamespace(buf Buffer, ns Namespace, start, end int) error
	// SetAnnotation attaches segments to a zero-based line.
	SetAnnotation(buf Buffer, ns Namespace, line int, segments []Segment, opts Options) error
}
