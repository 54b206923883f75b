package runner

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ResolutionError reports that the package holding a file could not be
// located or loaded from its path.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving package for %s: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SyntaxError reports that the file under test does not parse.
type SyntaxError struct {
	Path string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %s: %v", e.Path, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// kinder is implemented by errors that name their own kind for status
// messages.
type kinder interface {
	Kind() string
}

// ErrorKind names err for the user: the Kind of the first error in the
// chain that declares one, or else the type of the innermost error that is
// more than a plain message or wrapper.
func ErrorKind(err error) string {
	if err == nil {
		return "no error"
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	name := "error"
	for e := err; e != nil; e = errors.Unwrap(e) {
		t := reflect.TypeOf(e)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if n := t.String(); !genericErrors[n] {
			name = strings.TrimPrefix(n, "*")
		}
	}
	return name
}

var genericErrors = map[string]bool{
	"errors.errorString": true,
	"fmt.wrapError":      true,
	"fmt.wrapErrors":     true,
}
