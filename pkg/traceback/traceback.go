// Package traceback reduces a panicking example to one annotation line.
//
// Panic captures are parsed once, at the execution boundary, into an
// Exception with structured frames. Collapse then works on those frames
// only and never re-reads text.
package traceback

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMarker prefixes every collapsed summary.
const DefaultMarker = "# "

// Frame is one entry of a goroutine trace.
type Frame struct {
	Function string
	File     string
	Line     int    // 1-based; 0 when unknown
	Code     string // source text at File:Line, trimmed
}

// Exception is a structured panic capture. Frames are innermost-first,
// the order the Go runtime prints them.
type Exception struct {
	Kind    string
	Message string
	Frames  []Frame
}

// Options control how an Exception is collapsed.
type Options struct {
	Detail bool   // append the provenance chain
	File   string // file under test
	Dir    string // directory other files are shown relative to
	Marker string // defaults to DefaultMarker
}

// Summary returns "Kind: Message", or just the kind when there is no message.
func (e *Exception) Summary() string {
	if e == nil {
		return "panic"
	}
	kind := e.Kind
	if kind == "" {
		kind = "panic"
	}
	if e.Message == "" {
		return kind
	}
	return kind + ": " + e.Message
}

// Collapse renders exc as a single line.
//
// With Detail set, frames are walked outermost-first. Each frame adds its
// location (" on line N" inside the file under test, " in <relative path>"
// elsewhere) followed by "; by `code`" when its source fragment is known.
func Collapse(exc *Exception, opts Options) string {
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	var sb strings.Builder
	sb.WriteString(marker)
	sb.WriteString(exc.Summary())
	if !opts.Detail || exc == nil {
		return sb.String()
	}

	target := cleanPath(opts.File)
	for i := len(exc.Frames) - 1; i >= 0; i-- {
		f := exc.Frames[i]
		switch {
		case f.File == "":
		case target != "" && cleanPath(f.File) == target && f.Line > 0:
			fmt.Fprintf(&sb, " on line %d", f.Line)
		default:
			sb.WriteString(" in ")
			sb.WriteString(relative(opts.Dir, f.File))
		}
		if f.Code != "" {
			sb.WriteString("; by `")
			sb.WriteString(f.Code)
			sb.WriteString("`")
		}
	}
	return sb.String()
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// relative expresses path relative to dir, keeping it unchanged when no
// relative form exists.
func relative(dir, path string) string {
	if dir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return rel
}
