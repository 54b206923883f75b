// Package execute loads the package that holds a test file and runs its
// examples. Loading compiles the package's test binary once; every example
// then runs in its own process so a panic in one cannot take down the rest.
package execute

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gofrs/flock"
	"github.com/tliron/commonlog"

	"github.com/dkoosis/exnote/pkg/runner"
	"github.com/dkoosis/exnote/pkg/traceback"
)

// DefaultCacheDir is where test binaries are written, relative to the
// working directory.
const DefaultCacheDir = ".exnote"

var log = commonlog.GetLogger("exnote.execute")

// Options configure an Engine.
type Options struct {
	GoBin    string // defaults to "go"
	CacheDir string // defaults to DefaultCacheDir
	Jobs     int    // concurrent example processes; defaults to GOMAXPROCS
	Sources  traceback.Sources
}

// Engine implements runner.Loader and runner.Executor with the go command.
type Engine struct {
	goBin    string
	cacheDir string
	jobs     int
	sources  traceback.Sources
}

// NewEngine returns an engine with defaults applied to opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		goBin:    opts.GoBin,
		cacheDir: opts.CacheDir,
		jobs:     opts.Jobs,
		sources:  opts.Sources,
	}
	if e.goBin == "" {
		e.goBin = "go"
	}
	if e.cacheDir == "" {
		e.cacheDir = DefaultCacheDir
	}
	if abs, err := filepath.Abs(e.cacheDir); err == nil {
		e.cacheDir = abs
	}
	if e.jobs <= 0 {
		e.jobs = runtime.GOMAXPROCS(0)
	}
	if e.sources == nil {
		e.sources = traceback.NewSourceCache()
	}
	return e
}

// CacheDir returns the absolute directory holding compiled test binaries.
func (e *Engine) CacheDir() string {
	return e.cacheDir
}

// RemoveCache deletes the cache directory.
func (e *Engine) RemoveCache() error {
	return os.RemoveAll(e.cacheDir)
}

// Package is a loaded package: the file under test and its compiled test
// binary.
type Package struct {
	file       string
	dir        string
	importPath string
	binary     string // empty when the package has no test files
}

// File implements runner.Module.
func (p *Package) File() string { return p.file }

// ImportPath returns the package's import path.
func (p *Package) ImportPath() string { return p.importPath }

// BuildError reports that the package's tests do not compile.
type BuildError struct {
	Package string
	Output  string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building tests for %s: %s", e.Package, firstLine(e.Output))
}

// Kind names the error in status messages.
func (e *BuildError) Kind() string { return "build failure" }

// Load implements runner.Loader.
func (e *Engine) Load(ctx context.Context, path string) (runner.Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &runner.ResolutionError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &runner.ResolutionError{Path: abs, Err: err}
	}
	if info.IsDir() || filepath.Ext(abs) != ".go" {
		return nil, &runner.ResolutionError{Path: abs, Err: errors.New("not a Go source file")}
	}
	if _, err := parser.ParseFile(token.NewFileSet(), abs, nil, parser.AllErrors); err != nil {
		return nil, &runner.SyntaxError{Path: abs, Err: err}
	}

	pkg := &Package{file: abs, dir: filepath.Dir(abs)}
	out, err := e.goCmd(ctx, pkg.dir, "list", "-f", "{{.ImportPath}}", ".")
	if err != nil {
		return nil, &runner.ResolutionError{Path: abs, Err: fmt.Errorf("go list: %w: %s", err, firstLine(out))}
	}
	pkg.importPath = strings.TrimSpace(out)

	if err := e.build(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// build compiles the test binary into the cache directory. The directory is
// locked so concurrent exnote processes do not overwrite each other.
func (e *Engine) build(ctx context.Context, pkg *Package) error {
	if err := os.MkdirAll(e.cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	lock := flock.New(filepath.Join(e.cacheDir, ".lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking cache dir: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	sum := sha256.Sum256([]byte(pkg.importPath))
	bin := filepath.Join(e.cacheDir, hex.EncodeToString(sum[:8])+".test")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	_ = os.Remove(bin)

	out, err := e.goCmd(ctx, pkg.dir, "test", "-c", "-o", bin, ".")
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &BuildError{Package: pkg.importPath, Output: out}
	}
	if _, err := os.Stat(bin); err == nil {
		pkg.binary = bin
	}
	log.Debugf("built %s -> %s", pkg.importPath, bin)
	return nil
}

func (e *Engine) goCmd(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.goBin, args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
