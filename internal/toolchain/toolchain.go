// Package toolchain locates the native compiler toolchain installed for a
// target machine.
//
// A Selection carries exactly one Family. The two families share nothing:
// a *VisualCpp selection is driven through an IDE project generator and only
// needs the installed IDE version, a *Makefile selection needs concrete tool
// paths and the flags the toolchain itself would pass to its compilers.
package toolchain

import (
	"context"
	"fmt"

	"github.com/goplus/usecmake/variant"
)

// Tool is a command line tool a makefile toolchain must provide.
type Tool int

const (
	CCompiler Tool = iota
	CXXCompiler
	Archiver
	SymbolExtractor
	Stripper
)

// RequiredTools lists the tools a makefile toolchain must provide, in the
// order they are checked.
var RequiredTools = []Tool{CCompiler, CXXCompiler, Archiver, SymbolExtractor, Stripper}

func (t Tool) String() string {
	switch t {
	case CCompiler:
		return "C compiler"
	case CXXCompiler:
		return "C++ compiler"
	case Archiver:
		return "AR"
	case SymbolExtractor:
		return "objcopy"
	case Stripper:
		return "strip"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// Language selects the compiler a flag query is about.
type Language int

const (
	C Language = iota
	CXX
)

func (l Language) String() string {
	if l == CXX {
		return "CXX"
	}
	return "C"
}

// Family is implemented by *VisualCpp and *Makefile only.
type Family interface {
	family()
}

// VisualCpp is an installed Visual Studio C++ toolchain.
type VisualCpp struct {
	Version string // installation version, e.g. "16.11.34601.136"
}

func (*VisualCpp) family() {}

// FlagSource reports the extra command line tokens a toolchain passes to
// its compiler for the selected platform.
type FlagSource interface {
	Flags(lang Language) ([]string, error)
}

// Flags is a fixed FlagSource.
type Flags struct {
	C   []string
	CXX []string
}

func (f Flags) Flags(lang Language) ([]string, error) {
	if lang == CXX {
		return f.CXX, nil
	}
	return f.C, nil
}

// Makefile is a GCC/Clang-style toolchain driven through makefiles.
type Makefile struct {
	Tools map[Tool]string // absolute paths; absent when not found
	Flags FlagSource      // nil when the toolchain cannot report its flags
}

func (*Makefile) family() {}

// Locate returns the path of t and whether it was found.
func (m *Makefile) Locate(t Tool) (string, bool) {
	path, ok := m.Tools[t]
	return path, ok && path != ""
}

// Selection is the toolchain chosen for one target machine.
type Selection struct {
	Name      string
	Machine   variant.TargetMachine
	Available bool
	Family    Family
}

// Unavailable returns a Selection reporting that machine has no usable
// toolchain.
func Unavailable(machine variant.TargetMachine) *Selection {
	return &Selection{Name: "none", Machine: machine}
}

// Resolver locates a toolchain for a target machine. An unavailable
// toolchain is not an error: Resolve returns a Selection with Available
// unset.
type Resolver interface {
	Resolve(ctx context.Context, machine variant.TargetMachine) (*Selection, error)
}

// Chain tries each resolver in order and returns the first available
// selection.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, machine variant.TargetMachine) (*Selection, error) {
	for _, r := range c {
		sel, err := r.Resolve(ctx, machine)
		if err != nil {
			return nil, err
		}
		if sel.Available {
			return sel, nil
		}
	}
	return Unavailable(machine), nil
}

// MissingToolError reports a required makefile tool that is absent.
type MissingToolError struct {
	Tool      Tool
	Platform  string
	Toolchain string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("could not find %s for platform %s using toolchain %s", e.Tool, e.Platform, e.Toolchain)
}
