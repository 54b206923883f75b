package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/runner"
)

func errorAnn(line int, text string) annotate.Annotation {
	return annotate.Annotation{Line: line, Segments: []annotate.Segment{{Text: text, Severity: annotate.Error}}}
}

func sampleListing() Listing {
	return Listing{
		Path: "calc_test.go",
		Source: []string{
			"package calc",
			"",
			"func ExampleAdd() {",
			"\tfmt.Println(Add(2, 2))",
			"\t// Output:",
			"\t// 5",
			"}",
		},
		Annotations: []annotate.Annotation{errorAnn(5, "# 4")},
		Summary:     runner.Summary{Groups: 1, Failed: 1},
	}
}

func TestTerminal_AnnotationFollowsLine(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).Render(sampleListing())

	if !strings.Contains(out, "x FAIL") {
		t.Errorf("expected failure verdict in header:\n%s", out)
	}
	var found bool
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "// 5") && strings.HasSuffix(line, "# 4") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected annotation after line 6:\n%s", out)
	}
	if !strings.Contains(out, "Failed 1") {
		t.Errorf("expected title-cased summary:\n%s", out)
	}
}

func TestTerminal_ContextHidesDistantLines(t *testing.T) {
	out := NewTerminal(MonoTheme(), 80).WithContext(1).Render(sampleListing())

	if strings.Contains(out, "package calc") {
		t.Errorf("line 1 should be hidden:\n%s", out)
	}
	var gaps int
	for _, line := range strings.Split(out, "\n") {
		if line == ":" {
			gaps++
		}
	}
	if gaps != 1 {
		t.Errorf("expected one gap marker, got %d:\n%s", gaps, out)
	}
	if !strings.Contains(out, "// Output:") || !strings.Contains(out, "}") {
		t.Errorf("expected neighbouring lines:\n%s", out)
	}
}

func TestTerminal_WrapsAnnotationThatDoesNotFit(t *testing.T) {
	l := sampleListing()
	l.Annotations = []annotate.Annotation{errorAnn(3, "# "+strings.Repeat("z", 40))}
	out := NewTerminal(MonoTheme(), 40).Render(l)

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "fmt.Println") && strings.Contains(line, "zzz") {
			t.Errorf("annotation should wrap onto its own line:\n%s", out)
		}
	}
	if !strings.Contains(out, "…") {
		t.Errorf("expected truncated annotation:\n%s", out)
	}
}

func TestTerminal_AnnotationPastEndOfFile(t *testing.T) {
	l := sampleListing()
	l.Annotations = []annotate.Annotation{errorAnn(9, "# late")}
	out := NewTerminal(MonoTheme(), 80).Render(l)
	if !strings.Contains(out, "10 │ # late") {
		t.Errorf("expected annotation on synthetic line 10:\n%s", out)
	}
}

func TestLLM_Render(t *testing.T) {
	l := sampleListing()
	l.Status = []string{"exnote: syntax error in file"}
	out := NewLLM().Render(l)

	for _, want := range []string{
		"FAIL calc_test.go: Passed 0, Failed 1",
		"exnote: syntax error in file",
		"calc_test.go:6: # 4  [// 5]",
		"SCOPE: 1 groups, 1 examples, 1 annotations",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("LLM output must not contain ANSI codes:\n%s", out)
	}
}

func TestJSON_Render(t *testing.T) {
	out := NewJSON().Render(sampleListing())

	var got jsonOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Verdict != "FAIL" || got.Summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if len(got.Annotations) != 1 || got.Annotations[0].Line != 6 || got.Annotations[0].Severity != "error" {
		t.Errorf("unexpected annotations: %+v", got.Annotations)
	}
}

func TestThemeByName(t *testing.T) {
	for name, want := range map[string]string{"mono": "mono", "dim": "dim", "default": "default", "unknown": "default"} {
		if got := ThemeByName(name).Name; got != want {
			t.Errorf("ThemeByName(%q) = %q, want %q", name, got, want)
		}
	}
	if DimTheme().Icons.Info == DefaultTheme().Icons.Info {
		t.Error("dim theme should use its own info icon")
	}
}
