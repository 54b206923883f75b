// Package discover finds runnable examples in a Go test file: functions
// named Example* whose body ends with an output comment.
package discover

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dkoosis/exnote/pkg/example"
	"github.com/dkoosis/exnote/pkg/runner"
)

var outputPrefix = regexp.MustCompile(`(?i)^[[:space:]]*(unordered )?output:`)

// Discoverer reads examples from the module's file on disk.
type Discoverer struct{}

// Discover implements runner.Discoverer.
func (Discoverer) Discover(mod runner.Module) ([]example.Group, error) {
	return File(mod.File())
}

// File parses the file at path and returns its example groups.
func File(path string) ([]example.Group, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Source(path, src)
}

// Source returns the example groups declared in src, in source order.
// Only _test.go files declare runnable examples; any other file has none.
func Source(filename string, src []byte) ([]example.Group, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, &runner.SyntaxError{Path: filename, Err: err}
	}
	if !strings.HasSuffix(filename, "_test.go") {
		return nil, nil
	}

	funcs := make(map[*ast.BlockStmt]*ast.FuncDecl)
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Body != nil {
			funcs[fd.Body] = fd
		}
	}

	var groups []example.Group
	for _, ex := range doc.Examples(f) {
		if ex.Output == "" && !ex.EmptyOutput {
			continue // compiled but never run
		}
		body, ok := ex.Code.(*ast.BlockStmt)
		if !ok {
			continue
		}
		fd, ok := funcs[body]
		if !ok {
			continue
		}
		marker := outputComment(f, body)
		if marker == nil {
			continue
		}
		base := fset.Position(fd.Pos()).Line - 1
		groups = append(groups, example.Group{
			Name:     fd.Name.Name,
			BaseLine: base,
			Examples: []example.Example{{
				Name:         fd.Name.Name,
				RelativeLine: fset.Position(marker.Pos()).Line - 1 - base,
				Expected:     strings.TrimSpace(ex.Output),
				Source:       sourceOf(fset, src, body),
				Unordered:    ex.Unordered,
			}},
		})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].BaseLine < groups[j].BaseLine })
	return groups, nil
}

// outputComment returns the last comment group inside body when it is an
// output marker.
func outputComment(f *ast.File, body *ast.BlockStmt) *ast.CommentGroup {
	var last *ast.CommentGroup
	for _, cg := range f.Comments {
		if cg.Pos() < body.Lbrace {
			continue
		}
		if cg.End() > body.Rbrace {
			break
		}
		last = cg
	}
	if last == nil || !outputPrefix.MatchString(last.Text()) {
		return nil
	}
	return last
}

func sourceOf(fset *token.FileSet, src []byte, body *ast.BlockStmt) string {
	start := fset.Position(body.Lbrace).Offset
	end := fset.Position(body.Rbrace).Offset + 1
	if start < 0 || end > len(src) || start >= end {
		return ""
	}
	return string(src[start:end])
}
