package traceback

import (
	"bufio"
	"errors"
	"go/build"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/maruel/panicparse/v2/stack"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("exnote.traceback")

const (
	panicPrefix   = "panic: "
	fatalPrefix   = "fatal error: "
	runtimePrefix = "runtime error: "
)

var recoveredSuffix = regexp.MustCompile(`\s*\[recovered[^\]]*\]\s*$`)

// harness frames are the testing package and runtime machinery that sits
// between the example function and the test binary's entry point.
var harnessPrefixes = []string{"runtime.", "testing.", "main.main"}

var gorootSrc = filepath.ToSlash(filepath.Join(build.Default.GOROOT, "src")) + "/"

// Sources resolves the source text at a file position.
type Sources interface {
	Line(path string, n int) (string, bool)
}

// Parse extracts the first panic from combined example output. It reports
// false when the output contains no panic or fatal error header.
func Parse(output []string, src Sources) (*Exception, bool) {
	exc := &Exception{}
	start := -1
scan:
	for i, line := range output {
		switch {
		case strings.HasPrefix(line, panicPrefix):
			exc.Kind, exc.Message = classify(strings.TrimPrefix(line, panicPrefix))
		case strings.HasPrefix(line, fatalPrefix):
			exc.Kind = "fatal error"
			exc.Message = strings.TrimSpace(strings.TrimPrefix(line, fatalPrefix))
		default:
			continue
		}
		start = i + 1
		break scan
	}
	if start < 0 {
		return nil, false
	}
	exc.Frames = parseFrames(output[start:], src)
	return exc, true
}

func classify(msg string) (kind, message string) {
	msg = strings.TrimSpace(recoveredSuffix.ReplaceAllString(msg, ""))
	if rest, ok := strings.CutPrefix(msg, runtimePrefix); ok {
		return "runtime error", rest
	}
	return "panic", msg
}

// parseFrames reads the frames of the first goroutine in the dump, which is
// the one that panicked, innermost call first.
func parseFrames(lines []string, src Sources) []Frame {
	opts := stack.DefaultOpts()
	opts.GuessPaths = false
	opts.AnalyzeSources = false
	snap, _, err := stack.ScanSnapshot(strings.NewReader(strings.Join(lines, "\n")+"\n"), io.Discard, opts)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Debugf("parsing goroutine dump: %s", err)
		return nil
	}
	if snap == nil || len(snap.Goroutines) == 0 {
		return nil
	}

	var frames []Frame
	for _, call := range snap.Goroutines[0].Stack.Calls {
		fn := call.Func.Complete
		file := call.RemoteSrcPath
		if isHarness(fn) || strings.HasSuffix(file, "_testmain.go") || inGoroot(file) {
			continue
		}
		f := Frame{Function: fn, File: file, Line: call.Line}
		if src != nil && call.Line > 0 {
			if code, ok := src.Line(file, call.Line); ok {
				f.Code = strings.TrimSpace(code)
			}
		}
		frames = append(frames, f)
	}
	return frames
}

func inGoroot(file string) bool {
	return build.Default.GOROOT != "" && strings.HasPrefix(filepath.ToSlash(file), gorootSrc)
}

func isHarness(fn string) bool {
	if fn == "panic" {
		return true
	}
	for _, p := range harnessPrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}

// SourceCache reads and memoizes source files by path.
type SourceCache struct {
	mu    sync.Mutex
	files map[string][]string
}

// NewSourceCache returns an empty cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{files: make(map[string][]string)}
}

// Line returns the 1-based line n of path.
func (c *SourceCache) Line(path string, n int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines, ok := c.files[path]
	if !ok {
		lines = readLines(path)
		c.files[path] = lines
	}
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
