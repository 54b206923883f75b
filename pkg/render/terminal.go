package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/exnote/pkg/annotate"
)

const tabWidth = 4

// Terminal renders a listing as styled terminal output via lipgloss.
// Annotations are drawn after the source line they are attached to.
type Terminal struct {
	theme   Theme
	width   int
	context int
}

// NewTerminal creates a terminal renderer with the given theme. The whole
// file is shown; see WithContext.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, context: -1}
}

// WithContext limits the listing to n lines around each annotation. A
// negative n shows the whole file.
func (t *Terminal) WithContext(n int) *Terminal {
	c := *t
	c.context = n
	return &c
}

// Render formats the listing for terminal display.
func (t *Terminal) Render(l Listing) string {
	var sb strings.Builder
	sb.WriteString(t.header(l))
	sb.WriteString("\n")
	for _, msg := range l.Status {
		sb.WriteString(t.theme.Error.Render(msg))
		sb.WriteString("\n")
	}

	byLine := l.ByLine()
	last := len(l.Source) - 1
	for line := range byLine {
		if line > last {
			last = line
		}
	}
	gutter := len(strconv.Itoa(last + 1))
	visible := t.visible(l, last)

	gap := false
	for i := 0; i <= last; i++ {
		if !visible(i) {
			if !gap {
				sb.WriteString(t.theme.Muted.Render(padLeft(t.theme.Icons.Gap, gutter)))
				sb.WriteString("\n")
			}
			gap = true
			continue
		}
		gap = false
		var code string
		if i < len(l.Source) {
			code = l.Source[i]
		}
		t.writeLine(&sb, i, gutter, code, byLine[i])
	}
	return sb.String()
}

func (t *Terminal) header(l Listing) string {
	icon, style := t.theme.Icons.Pass, t.theme.Success
	if !l.Summary.OK() {
		icon, style = t.theme.Icons.Fail, t.theme.Error
	} else if Examples(l.Summary) == 0 {
		icon, style = t.theme.Icons.Info, t.theme.Muted
	}
	items := summaryItems(l.Summary)
	sep := " " + t.theme.Icons.Bullet + " "
	return style.Render(icon+" "+verdict(l.Summary)) + " " +
		t.theme.Bold.Render(l.Path) + " " +
		t.theme.Muted.Render(strings.Join(items, sep))
}

func (t *Terminal) visible(l Listing, last int) func(int) bool {
	if t.context < 0 {
		return func(int) bool { return true }
	}
	shown := make(map[int]bool)
	for _, a := range l.Annotations {
		for i := a.Line - t.context; i <= a.Line+t.context; i++ {
			if i >= 0 && i <= last {
				shown[i] = true
			}
		}
	}
	return func(i int) bool { return shown[i] }
}

// writeLine writes one numbered source line and its annotations. An
// annotation that does not fit after the code goes on its own line.
func (t *Terminal) writeLine(sb *strings.Builder, i, gutter int, code string, anns []annotate.Annotation) {
	prefix := t.theme.Muted.Render(fmt.Sprintf("%*d │ ", gutter, i+1))
	blank := strings.Repeat(" ", gutter) + "   "
	budget := t.width - gutter - 3
	if budget < 10 {
		budget = 10
	}

	code = runewidth.Truncate(strings.ReplaceAll(code, "\t", strings.Repeat(" ", tabWidth)), budget, "…")
	sb.WriteString(prefix)
	sb.WriteString(code)
	used := runewidth.StringWidth(code)

	for _, a := range anns {
		text := a.Text()
		style := t.annotationStyle(a.Severity())
		if used > 0 && used+2+runewidth.StringWidth(text) <= budget {
			sb.WriteString("  ")
			sb.WriteString(style.Render(text))
			used += 2 + runewidth.StringWidth(text)
			continue
		}
		if used > 0 {
			sb.WriteString("\n")
			sb.WriteString(blank)
		}
		text = runewidth.Truncate(text, budget, "…")
		sb.WriteString(style.Render(text))
		used = runewidth.StringWidth(text)
	}
	sb.WriteString("\n")
}

func (t *Terminal) annotationStyle(sev annotate.Severity) lipgloss.Style {
	if sev == annotate.Error {
		return t.theme.Error
	}
	return t.theme.Comment
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
