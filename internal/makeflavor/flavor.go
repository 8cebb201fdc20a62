// Package makeflavor probes a make-like driver to find out which makefile
// dialect it expects.
package makeflavor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goplus/usecmake/internal/proc"
)

// Dialect is a CMake makefile generator.
type Dialect string

const (
	MinGW Dialect = "MinGW Makefiles"
	MSYS  Dialect = "MSYS Makefiles"
	Unix  Dialect = "Unix Makefiles"
)

// UnknownError reports a make whose build specification matches no dialect.
type UnknownError struct {
	Line string // second line of "make -v"
	Make string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown make specification %q at path %q", e.Line, e.Make)
}

// Classify maps the "Built for <triple>" line of "make -v" to a dialect.
// The checks run in order: mingw, msys, then nux/nix.
func Classify(line string) (Dialect, bool) {
	l := strings.ToLower(line)
	switch {
	case strings.Contains(l, "mingw"):
		return MinGW, true
	case strings.Contains(l, "msys"):
		return MSYS, true
	case strings.Contains(l, "nux"), strings.Contains(l, "nix"):
		return Unix, true
	}
	return "", false
}

// Detect runs "<make> -v" and classifies the second line of its output.
func Detect(ctx context.Context, runner proc.Runner, makeExe string) (Dialect, error) {
	out, err := runner.Output(ctx, proc.Command{Path: makeExe, Args: []string{"-v"}})
	if err != nil {
		return "", fmt.Errorf("could not execute make at path %q: %w", makeExe, err)
	}
	line := secondLine(out)
	d, ok := Classify(line)
	if !ok {
		return "", &UnknownError{Line: line, Make: makeExe}
	}
	return d, nil
}

func secondLine(out []byte) string {
	s := bufio.NewScanner(bytes.NewReader(out))
	for i := 0; s.Scan(); i++ {
		if i == 1 {
			return strings.TrimRight(s.Text(), "\r")
		}
	}
	return ""
}
