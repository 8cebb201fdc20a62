package matrixgen

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/x/cmake/fileapi"
	"github.com/goplus/usecmake/x/cmake/fileapi/fileapitest"
)

// fakeCMake answers "cmake --version" and "make -v", and plays a cmake
// configure pass by writing a file-API reply into the build directory.
type fakeCMake struct {
	targets   []fileapi.Target
	failOn    string // configure fails in build dirs containing failOn
	skipReply bool

	mu         sync.Mutex
	configured []proc.Command
}

func (f *fakeCMake) Run(ctx context.Context, cmd proc.Command) error {
	f.mu.Lock()
	f.configured = append(f.configured, cmd)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(cmd.Dir, f.failOn) {
		return errors.New("exit status 1")
	}
	if f.skipReply {
		return nil
	}
	return fileapitest.WriteReply(cmd.Dir, fileapitest.Configuration{
		Name:    buildTypeArg(cmd.Args),
		Targets: f.targets,
	})
}

func (f *fakeCMake) Output(ctx context.Context, cmd proc.Command) ([]byte, error) {
	if len(cmd.Args) > 0 && cmd.Args[0] == "--version" {
		return []byte("cmake version 3.28.1\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).\n"), nil
	}
	return []byte("GNU Make 4.3\nBuilt for x86_64-pc-linux-gnu\n"), nil
}

func (f *fakeCMake) commands() []proc.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]proc.Command(nil), f.configured...)
}

func buildTypeArg(args []string) string {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "-DCMAKE_BUILD_TYPE="); ok {
			return v
		}
	}
	return ""
}
