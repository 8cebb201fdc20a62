// Package proc runs external tools (cmake, make, vswhere).
package proc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Dir  string            // working directory; empty means the current one
	Path string            // executable name or path
	Args []string          // arguments, not including Path
	Env  map[string]string // overrides merged on top of os.Environ()
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Runner executes commands. Success is a zero exit status.
type Runner interface {
	// Run executes cmd, streaming its output.
	Run(ctx context.Context, cmd Command) error
	// Output executes cmd and returns what it wrote to stdout.
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Default streams to the process stdout/stderr.
var Default Runner = &Exec{Stdout: os.Stdout, Stderr: os.Stderr}

func (e *Exec) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}
	return cmd
}

func (e *Exec) Run(ctx context.Context, c Command) error {
	cmd := e.command(ctx, c)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}

func (e *Exec) Output(ctx context.Context, c Command) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := e.command(ctx, c)
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	return stdout.Bytes(), nil
}

// MergeEnv overlays override on base ("KEY=value" entries) and returns the
// result sorted by key.
func MergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
