package render

import (
	"fmt"
	"strings"
)

// LLM renders a listing as terse plain text for AI consumption: no ANSI
// codes, one "path:line: text" entry per annotation in line order, then a
// SCOPE line.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats the listing for LLM consumption.
func (l *LLM) Render(lst Listing) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s: %s\n", verdict(lst.Summary), lst.Path, strings.Join(summaryItems(lst.Summary), ", ")))
	for _, msg := range lst.Status {
		sb.WriteString(msg + "\n")
	}
	for _, a := range lst.Annotations {
		sb.WriteString(fmt.Sprintf("%s:%d: %s", lst.Path, a.Line+1, a.Text()))
		if a.Line < len(lst.Source) {
			if code := strings.TrimSpace(lst.Source[a.Line]); code != "" {
				sb.WriteString("  [" + code + "]")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("SCOPE: %d groups, %d examples, %d annotations\n",
		lst.Summary.Groups, Examples(lst.Summary), len(lst.Annotations)))
	return sb.String()
}
