package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	for _, k := range []string{"EXNOTE_TRACEBACK_INFO", "EXNOTE_VERBOSE_STRING", "EXNOTE_REMOVE_CACHE", "EXNOTE_COMMENT_MARKER", "EXNOTE_JOBS", "NO_COLOR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestVersion(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "exnote dev") {
		t.Errorf("unexpected version line %q", stdout.String())
	}
}

func TestUsageErrors(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{
		{"bogus"},
		{"run"},
		{"watch", "a_test.go", "b_test.go"},
		{"clean", "extra"},
	} {
		var stdout, stderr bytes.Buffer
		if code := run(args, strings.NewReader(""), &stdout, &stderr); code != 2 {
			t.Errorf("%v: expected exit code 2, got %d", args, code)
		}
		if !strings.Contains(stderr.String(), "exnote: ") {
			t.Errorf("%v: missing error message, got %q", args, stderr.String())
		}
	}
}

func TestRun_MissingFile(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "--no-color", "--format", "llm", "nope_test.go"}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "nope_test.go") {
		t.Errorf("error should name the file, got %q", stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "NONE nope_test.go") {
		t.Errorf("unexpected listing:\n%s", stdout.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".exnote.yaml"), []byte("jobs: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"run", "x_test.go"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be written to stdout, got %q", stdout.String())
	}
}

func TestClean(t *testing.T) {
	dir := isolate(t)
	cache := filepath.Join(dir, ".exnote")
	if err := os.MkdirAll(cache, 0o755); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"clean"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}
	if _, err := os.Stat(cache); !os.IsNotExist(err) {
		t.Errorf("cache should be removed, stat err = %v", err)
	}
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	if got := resolveFormat("auto", &buf); got != "llm" {
		t.Errorf("auto on a pipe = %q, want llm", got)
	}
	if got := resolveFormat("json", &buf); got != "json" {
		t.Errorf("explicit format = %q, want json", got)
	}
}

const calcModule = "module example.com/calc\n\ngo 1.21\n"

const calcTest = `package calc

import "fmt"

func ExampleSum() {
	fmt.Println(2 + 2)
	// Output:
	// 5
}

func ExampleOK() {
	fmt.Println("ok")
	// Output: ok
}
`

func writeCalc(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{"go.mod": calcModule, "calc_test.go": calcTest}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func requireGo(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("builds test binaries")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
}

func TestRun_EndToEnd(t *testing.T) {
	requireGo(t)
	dir := isolate(t)
	writeCalc(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "--format", "llm", "--verbose-string", "ok", "calc_test.go"}, strings.NewReader(""), &stdout, &stderr)
	output := stdout.String()

	if code != 1 {
		t.Errorf("expected exit code 1, got %d; stderr: %s", code, stderr.String())
	}
	if !strings.HasPrefix(output, "FAIL calc_test.go: Passed 1, Failed 1") {
		t.Errorf("unexpected verdict line:\n%s", output)
	}
	// Line 8 is the one below "// Output:" in ExampleSum.
	if !strings.Contains(output, "calc_test.go:8: # 4") {
		t.Errorf("missing failure annotation:\n%s", output)
	}
	if !strings.Contains(output, "calc_test.go:14: # ok") {
		t.Errorf("missing verbose success annotation:\n%s", output)
	}
	if strings.Contains(output, "\033[") {
		t.Error("llm output contains ANSI escape codes")
	}
	if _, err := os.Stat(filepath.Join(dir, ".exnote")); !os.IsNotExist(err) {
		t.Errorf("cache should be removed at exit, stat err = %v", err)
	}
}

func TestRun_SARIF(t *testing.T) {
	requireGo(t)
	dir := isolate(t)
	writeCalc(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"run", "--format", "sarif", "calc_test.go"}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d; stderr: %s", code, stderr.String())
	}

	var doc struct {
		Runs []struct {
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, stdout.String())
	}
	if len(doc.Runs) != 1 || len(doc.Runs[0].Results) != 1 {
		t.Fatalf("expected one result, got %+v", doc)
	}
	r := doc.Runs[0].Results[0]
	loc := r.Locations[0].PhysicalLocation
	if r.Level != "error" || loc.ArtifactLocation.URI != "calc_test.go" || loc.Region.StartLine != 8 {
		t.Errorf("unexpected result %+v", r)
	}
}
