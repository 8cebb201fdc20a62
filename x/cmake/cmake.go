// Package cmake wraps the cmake configure/build/install workflow.
package cmake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/goplus/usecmake/internal/proc"
	"golang.org/x/mod/semver"
)

// MinFileAPIVersion is the first cmake release with the file-based API.
const MinFileAPIVersion = "v3.14.0"

type defineValue struct {
	value    string
	typeName string
}

// Defines is a set of -D cache entries rendered in key order.
type Defines map[string]defineValue

// Define adds a -D<key>:STRING=<value> definition.
func (d Defines) Define(key, value string) {
	d[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (d Defines) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	d[key] = defineValue{value: v, typeName: "BOOL"}
}

// Clone returns a copy of d. The copy of a nil set is empty, not nil.
func (d Defines) Clone() Defines {
	out := make(Defines, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Args renders the definitions sorted by key.
func (d Defines) Args() []string {
	if len(d) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := d[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}

// CMake drives one cmake executable.
type CMake struct {
	exe    string
	runner proc.Runner
	env    map[string]string
}

// New returns a CMake running exe through runner.
func New(exe string, runner proc.Runner) *CMake {
	return &CMake{exe: exe, runner: runner, env: make(map[string]string)}
}

// Executable returns the cmake binary.
func (c *CMake) Executable() string { return c.exe }

// Env sets key=value for every command spawned later.
func (c *CMake) Env(key, value string) {
	c.env[key] = value
}

// Use points cmake and the compilers at a dependency installed at root:
// its headers, libraries and pkg-config files take precedence over the
// system ones.
func (c *CMake) Use(root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if isDir(pkgconfigDir) {
		c.prependPath("PKG_CONFIG_PATH", pkgconfigDir)
	}
	c.prependPath("CMAKE_PREFIX_PATH", root)
	if isDir(includeDir) {
		c.prependPath("CMAKE_INCLUDE_PATH", includeDir)
	}
	if isDir(libDir) {
		c.prependPath("CMAKE_LIBRARY_PATH", libDir)
	}

	if runtime.GOOS == "windows" {
		if isDir(includeDir) {
			c.prependPath("INCLUDE", includeDir)
		}
		if isDir(libDir) {
			c.prependPath("LIB", libDir)
		}
	} else {
		if isDir(includeDir) {
			c.appendFlag("CPPFLAGS", "-I"+includeDir)
		}
		if isDir(libDir) {
			c.appendFlag("LDFLAGS", "-L"+libDir)
		}
	}
}

// Version returns the cmake version as a canonical semver string.
func (c *CMake) Version(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, proc.Command{Path: c.exe, Args: []string{"--version"}, Env: c.env})
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(string(out), "\n")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return "", fmt.Errorf("cmake: unexpected --version output %q", first)
	}
	v := "v" + strings.TrimSpace(fields[len(fields)-1])
	if !semver.IsValid(v) {
		return "", fmt.Errorf("cmake: unexpected version %q", fields[len(fields)-1])
	}
	return semver.Canonical(v), nil
}

// CheckFileAPI fails when cmake is too old to answer file-API queries.
func (c *CMake) CheckFileAPI(ctx context.Context) error {
	v, err := c.Version(ctx)
	if err != nil {
		return err
	}
	if semver.Compare(v, MinFileAPIVersion) < 0 {
		return fmt.Errorf("cmake %s does not support the file API, need %s or newer", v, MinFileAPIVersion)
	}
	return nil
}

// Configure runs a synthesized configure command inside its build directory.
func (c *CMake) Configure(ctx context.Context, cmd proc.Command) error {
	if cmd.Dir != "" {
		if err := os.MkdirAll(cmd.Dir, 0o755); err != nil {
			return err
		}
	}
	if cmd.Path == "" {
		cmd.Path = c.exe
	}
	cmd.Env = c.mergedEnv(cmd.Env)
	return c.runner.Run(ctx, cmd)
}

// Build runs "cmake --build <buildDir> --config <config>".
func (c *CMake) Build(ctx context.Context, buildDir, config string, args ...string) error {
	cmdArgs := []string{"--build", buildDir}
	if config != "" {
		cmdArgs = append(cmdArgs, "--config", config)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.runner.Run(ctx, proc.Command{Dir: buildDir, Path: c.exe, Args: cmdArgs, Env: c.env})
}

// Install runs "cmake --install <buildDir> --prefix <prefix>".
func (c *CMake) Install(ctx context.Context, buildDir, prefix string, args ...string) error {
	cmdArgs := []string{"--install", buildDir}
	if prefix != "" {
		if err := os.MkdirAll(prefix, 0o755); err != nil {
			return err
		}
		cmdArgs = append(cmdArgs, "--prefix", prefix)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.runner.Run(ctx, proc.Command{Dir: prefix, Path: c.exe, Args: cmdArgs, Env: c.env})
}

func (c *CMake) mergedEnv(extra map[string]string) map[string]string {
	if len(c.env) == 0 {
		return extra
	}
	out := make(map[string]string, len(c.env)+len(extra))
	for k, v := range c.env {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (c *CMake) lookup(key string) string {
	if v, ok := c.env[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// prependPath prepends value to a PATH-style variable.
func (c *CMake) prependPath(key, value string) {
	if cur := c.lookup(key); cur != "" {
		value += string(filepath.ListSeparator) + cur
	}
	c.env[key] = value
}

// appendFlag appends a space-separated flag to a variable.
func (c *CMake) appendFlag(key, flag string) {
	if cur := c.lookup(key); cur != "" {
		flag = strings.TrimSpace(cur + " " + flag)
	}
	c.env[key] = flag
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
