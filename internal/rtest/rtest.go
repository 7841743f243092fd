// Package rtest is a small hand-rolled assertion helper set, adapted from
// the teacher's own internal/test package. Kept intentionally tiny and
// stdlib-only: the teacher never reaches for testify or a matcher library
// for this, so neither do we (see DESIGN.md's ambient-stack entry).
package rtest

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/parser"
)

func fatalf(t *testing.T, message string, params ...any) {
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

// Assert fails the test with message if cond is false.
func Assert(t *testing.T, cond bool, message string, params ...any) {
	if !cond {
		fatalf(t, message, params...)
	}
}

// Expect fails the test, reporting expected vs got, if cond is false.
func Expect(t *testing.T, cond bool, expected, got any) {
	if !cond {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

// ExpectBool checks a boolean result.
func ExpectBool(t *testing.T, expected, got bool) {
	Expect(t, expected == got, expected, got)
}

// ExpectInt checks an integer result.
func ExpectInt(t *testing.T, expected, got int) {
	Expect(t, expected == got, expected, got)
}

// ExpectString checks a string result.
func ExpectString(t *testing.T, expected, got string) {
	Expect(t, expected == got, expected, got)
}

// ExpectDefinitionErrorKind checks that err is an *errdef.Aggregate
// containing at least one error of the given kind.
func ExpectDefinitionErrorKind(t *testing.T, expected errdef.Kind, err error) {
	agg, ok := err.(*errdef.Aggregate)
	if ok {
		for _, e := range agg.Errors {
			if e.Kind == expected {
				return
			}
		}
	}
	fatalf(t, "expecting definition error kind %v, got %v", expected, err)
}

// ExpectRecognitionErrorKind checks that errs contains at least one error
// of the given kind.
func ExpectRecognitionErrorKind(t *testing.T, expected parser.RecognitionErrorKind, errs []*parser.RecognitionError) {
	for _, e := range errs {
		if e.Kind == expected {
			return
		}
	}
	fatalf(t, "expecting recognition error kind %v, got %v", expected, errs)
}
