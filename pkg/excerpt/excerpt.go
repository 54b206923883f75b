// Package excerpt turns a failed example's expected and actual output into
// the lines worth showing next to it: what the example actually printed.
package excerpt

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// GotMarker introduces the actual-output section of a report.
	GotMarker = "Got:"

	indent       = "    "
	diffHeader   = "Differences (unified diff with -expected +actual):"
	diffContext  = 2
	minDiffLines = 3
)

// Report builds the difference report for expected vs. actual output.
//
// Short outputs produce "Expected:" and "Got:" blocks; when both sides span
// more than two lines a unified diff is produced instead. Every body line is
// indented by four spaces.
func Report(expected, actual string) string {
	want := splitLines(expected)
	got := splitLines(actual)

	var sb strings.Builder
	switch {
	case len(want) >= minDiffLines && len(got) >= minDiffLines:
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        withNewlines(want),
			B:        withNewlines(got),
			FromFile: "expected",
			ToFile:   "actual",
			Context:  diffContext,
		})
		if err != nil || diff == "" {
			writeBlocks(&sb, want, got)
			break
		}
		sb.WriteString(diffHeader)
		sb.WriteString("\n")
		writeIndented(&sb, dropFileHeaders(splitLines(diff)))
	default:
		writeBlocks(&sb, want, got)
	}
	return sb.String()
}

// Lines returns the display lines for a failure, in report order.
//
// Everything up to and including the "Got:" marker is discarded; each later
// non-empty line is returned with its indentation removed. A unified-diff
// report has no marker, so its added lines are returned instead. Reports
// with neither (nothing was printed) yield no lines.
func Lines(expected, actual string) []string {
	return Extract(Report(expected, actual))
}

// Extract applies the marker scan to an already built report.
func Extract(report string) []string {
	var (
		out      []string
		found    bool
		unified  bool
		addition []string
	)
	for _, line := range strings.Split(report, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case found:
			if text := strip(line); text != "" {
				out = append(out, text)
			}
		case line == GotMarker:
			found = true
		case line == diffHeader:
			unified = true
		case unified:
			body := strings.TrimPrefix(line, indent)
			if strings.HasPrefix(body, "+") {
				if text := strings.TrimRight(body[1:], " \t"); text != "" {
					addition = append(addition, text)
				}
			}
		}
	}
	if !found && unified {
		return addition
	}
	return out
}

func writeBlocks(sb *strings.Builder, want, got []string) {
	if len(want) > 0 {
		sb.WriteString("Expected:\n")
		writeIndented(sb, want)
	} else {
		sb.WriteString("Expected nothing\n")
	}
	if len(got) > 0 {
		sb.WriteString(GotMarker + "\n")
		writeIndented(sb, got)
	} else {
		sb.WriteString("Got nothing\n")
	}
}

func writeIndented(sb *strings.Builder, lines []string) {
	for _, l := range lines {
		sb.WriteString(indent)
		sb.WriteString(l)
		sb.WriteString("\n")
	}
}

func strip(line string) string {
	return strings.TrimRight(strings.TrimPrefix(line, indent), " \t")
}

// splitLines splits s into lines without terminators. Trailing blank lines
// are dropped; an empty string has no lines.
func splitLines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func dropFileHeaders(lines []string) []string {
	if len(lines) >= 2 && strings.HasPrefix(lines[0], "--- ") && strings.HasPrefix(lines[1], "+++ ") {
		return lines[2:]
	}
	return lines
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}
