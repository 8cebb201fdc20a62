// Package synth synthesizes the cmake configure command line for a resolved
// toolchain.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goplus/usecmake/internal/makeflavor"
	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/internal/toolchain"
	"github.com/qiniu/x/log"
)

var (
	// ErrNoGenerator is returned for a Visual Studio version without a
	// CMake generator.
	ErrNoGenerator = errors.New("no cmake generator for visual studio version")

	// ErrNoArch is returned for an architecture Visual Studio cannot target.
	ErrNoArch = errors.New("architecture not supported by visual studio")

	// ErrNoFlags is returned when a makefile toolchain cannot report the
	// flags it passes to its compilers.
	ErrNoFlags = errors.New("toolchain does not expose its compiler flags")
)

// ArchiveFinish is the post-archive command template passed for C and C++.
const ArchiveFinish = "<CMAKE_AR> -s <TARGET>"

// Hook edits the argument list before the terminal arguments are appended.
type Hook func(args []string) []string

// Request holds everything needed to synthesize one configure invocation.
type Request struct {
	Selection  *toolchain.Selection
	BuildType  string // CMAKE_BUILD_TYPE
	BuildDir   string // working directory of the configure pass
	ProjectDir string // directory holding the top-level CMakeLists.txt
	CMake      string // cmake executable
	Make       string // make-like driver, makefile family only
	Runner     proc.Runner
	Hook       Hook
}

// Synthesize returns the configure command for req.
func Synthesize(ctx context.Context, req Request) (proc.Command, error) {
	sel := req.Selection
	if sel == nil || !sel.Available {
		return proc.Command{}, errors.New("synth: toolchain is not available")
	}
	log.Infof("Using toolchain %s", sel.Name)

	var args []string
	var err error
	switch f := sel.Family.(type) {
	case *toolchain.VisualCpp:
		args, err = visualCppArgs(sel, f, req)
	case *toolchain.Makefile:
		args, err = makefileArgs(ctx, sel, f, req)
	default:
		err = fmt.Errorf("synth: unsupported toolchain family %T", sel.Family)
	}
	if err != nil {
		return proc.Command{}, err
	}
	if req.Hook != nil {
		args = req.Hook(args)
	}
	args = append(args, "--no-warn-unused-cli", NormalizePath(req.ProjectDir))

	cmd := proc.Command{Dir: req.BuildDir, Path: req.CMake, Args: args}
	log.Debugf("Configure command: %s", cmd)
	return cmd, nil
}

func visualCppArgs(sel *toolchain.Selection, vc *toolchain.VisualCpp, req Request) ([]string, error) {
	major, minor, err := vc.MajorMinor()
	if err != nil {
		return nil, err
	}
	generator := GeneratorString(major, minor)
	if generator == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoGenerator, vc.Version)
	}
	arch := ArchString(sel.Machine.Arch)
	if arch == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoArch, sel.Machine.Arch)
	}
	log.Infof("Using generator %s", generator)
	log.Infof("Using arch %s", arch)
	return []string{
		"-G", generator,
		"-A", arch,
		"-DCMAKE_BUILD_TYPE=" + req.BuildType,
	}, nil
}

func makefileArgs(ctx context.Context, sel *toolchain.Selection, mk *toolchain.Makefile, req Request) ([]string, error) {
	tools := make(map[toolchain.Tool]string, len(toolchain.RequiredTools))
	for _, t := range toolchain.RequiredTools {
		path, ok := mk.Locate(t)
		if !ok {
			return nil, &toolchain.MissingToolError{Tool: t, Platform: sel.Machine.String(), Toolchain: sel.Name}
		}
		log.Infof("Found %s: %s", t, path)
		tools[t] = NormalizePath(path)
	}

	dialect, err := makeflavor.Detect(ctx, req.Runner, req.Make)
	if err != nil {
		return nil, err
	}

	if mk.Flags == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFlags, sel.Name)
	}
	cFlags, err := mk.Flags.Flags(toolchain.C)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFlags, err)
	}
	cxxFlags, err := mk.Flags.Flags(toolchain.CXX)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFlags, err)
	}

	ar := tools[toolchain.Archiver]
	return []string{
		"-G", string(dialect),
		"-DCMAKE_SYSTEM_NAME=" + SystemName(sel.Machine.OS),
		"-DCMAKE_SYSTEM_VERSION=1",
		"-DCMAKE_MAKE_PROGRAM=" + NormalizePath(req.Make),
		"-DCMAKE_AR=" + ar,
		"-DCMAKE_C_COMPILER=" + tools[toolchain.CCompiler],
		"-DCMAKE_C_FLAGS=" + NormalizePath(strings.Join(cFlags, " ")),
		"-DCMAKE_C_COMPILER_AR=" + ar,
		"-DCMAKE_C_ARCHIVE_FINISH=" + ArchiveFinish,
		"-DCMAKE_CXX_COMPILER=" + tools[toolchain.CXXCompiler],
		"-DCMAKE_CXX_FLAGS=" + NormalizePath(strings.Join(cxxFlags, " ")),
		"-DCMAKE_CXX_COMPILER_AR=" + ar,
		"-DCMAKE_CXX_ARCHIVE_FINISH=" + ArchiveFinish,
		"-DCMAKE_OBJCOPY=" + tools[toolchain.SymbolExtractor],
		"-DCMAKE_STRIP=" + tools[toolchain.Stripper],
		"-DCMAKE_BUILD_TYPE=" + req.BuildType,
	}, nil
}
