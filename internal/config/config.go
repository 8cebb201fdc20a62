// Package config loads the usecmake project configuration from YAML or HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goplus/usecmake/internal/env"
	"github.com/goplus/usecmake/internal/matrixgen"
	"github.com/goplus/usecmake/internal/toolchain"
	"github.com/goplus/usecmake/variant"
	"github.com/goplus/usecmake/x/cmake"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// Candidates are the config file names looked up in a project directory.
var Candidates = []string{"usecmake.yaml", "usecmake.yml", "usecmake.hcl"}

const (
	defaultBuildDir   = "build/cmake"
	defaultInstallDir = "build/install"
)

// Machine is a target machine entry.
type Machine struct {
	OS   string `yaml:"os" hcl:"os"`
	Arch string `yaml:"arch" hcl:"arch"`
}

// Config is a usecmake project configuration. Relative paths are resolved
// against the directory holding the config file.
type Config struct {
	Project             string            `yaml:"project,omitempty" hcl:"project,optional"`
	BuildDir            string            `yaml:"buildDir,omitempty" hcl:"build_dir,optional"`
	InstallDir          string            `yaml:"installDir,omitempty" hcl:"install_dir,optional"`
	TargetMachines      []Machine         `yaml:"targetMachines,omitempty" hcl:"target_machine,block"`
	BuildTypes          []string          `yaml:"buildTypes,omitempty" hcl:"build_types,optional"`
	Linkages            []string          `yaml:"linkages,omitempty" hcl:"linkages,optional"`
	Jobs                int               `yaml:"jobs,omitempty" hcl:"jobs,optional"`
	QueryTimeout        string            `yaml:"queryTimeout,omitempty" hcl:"query_timeout,optional"`
	ForceReleaseRuntime *bool             `yaml:"forceReleaseRuntime,omitempty" hcl:"force_release_runtime,optional"`
	Arguments           []string          `yaml:"arguments,omitempty" hcl:"arguments,optional"`
	Defines             map[string]string `yaml:"defines,omitempty" hcl:"defines,optional"`
	Use                 []string          `yaml:"use,omitempty" hcl:"use,optional"`
	Toolchains          []toolchain.Spec  `yaml:"toolchains,omitempty" hcl:"toolchain,block"`

	dir string
}

// Find returns the config file of the project in dir: the file named by
// USECMAKE_CONFIG when set, else the first of Candidates present in dir.
// It returns "" when there is none.
func Find(dir string) (string, error) {
	if path := env.ConfigFile(); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%s: %w", env.ConfigVar, err)
		}
		return path, nil
	}
	for _, name := range Candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Default returns the configuration of a project in dir without a config
// file.
func Default(dir string) *Config {
	return &Config{dir: dir}
}

// Load reads the config file at path, as HCL when it has the .hcl
// extension and as YAML otherwise.
func Load(path string) (*Config, error) {
	var cfg *Config
	var err error
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		cfg, err = loadHCL(path)
	} else {
		cfg, err = loadYAML(path)
	}
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.dir = abs
	return cfg, nil
}

// LoadDir loads the config of the project in dir, or its default config.
func LoadDir(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		return Default(abs), nil
	}
	return Load(path)
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

func loadHCL(path string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return &cfg, nil
}

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string { return c.dir }

func (c *Config) resolve(path, def string) string {
	if path == "" {
		path = def
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// ProjectDir returns the directory holding the top-level CMakeLists.txt.
func (c *Config) ProjectDir() string { return c.resolve(c.Project, ".") }

// BuildRoot returns the directory the cell build directories live in.
func (c *Config) BuildRoot() string { return c.resolve(c.BuildDir, defaultBuildDir) }

// InstallRoot returns the directory the cell install prefixes live in.
func (c *Config) InstallRoot() string { return c.resolve(c.InstallDir, defaultInstallDir) }

// UsePrefixes returns the dependency install prefixes, resolved.
func (c *Config) UsePrefixes() []string {
	out := make([]string, 0, len(c.Use))
	for _, p := range c.Use {
		out = append(out, c.resolve(p, ""))
	}
	return out
}

// Matrix returns the configured variant matrix. Without target machines it
// targets the host.
func (c *Config) Matrix() (variant.Matrix, error) {
	var m variant.Matrix
	for _, tm := range c.TargetMachines {
		if tm.OS == "" || tm.Arch == "" {
			return m, fmt.Errorf("target machine %q-%q: os and arch are required", tm.OS, tm.Arch)
		}
		m.Machines = append(m.Machines, variant.Machine(tm.OS, tm.Arch))
	}
	if len(m.Machines) == 0 {
		m.Machines = []variant.TargetMachine{toolchain.Host()}
	}
	for _, name := range c.BuildTypes {
		bt, err := variant.ParseBuildType(name)
		if err != nil {
			return m, err
		}
		m.BuildTypes = append(m.BuildTypes, bt)
	}
	for _, name := range c.Linkages {
		l, err := variant.ParseLinkage(name)
		if err != nil {
			return m, err
		}
		m.Linkages = append(m.Linkages, l)
	}
	return m.Normalize(), nil
}

// Timeout returns the bound on a code-model wait: 10m when unset, no bound
// when set to 0.
func (c *Config) Timeout() (time.Duration, error) {
	switch c.QueryTimeout {
	case "":
		return matrixgen.DefaultQueryTimeout, nil
	case "0":
		return 0, nil
	}
	d, err := time.ParseDuration(c.QueryTimeout)
	if err != nil {
		return 0, fmt.Errorf("queryTimeout: %w", err)
	}
	if d < 0 {
		return 0, errors.New("queryTimeout: must not be negative")
	}
	return d, nil
}

// ForceRelease reports whether every cell is configured as RELEASE. It
// defaults to true.
func (c *Config) ForceRelease() bool {
	return c.ForceReleaseRuntime == nil || *c.ForceReleaseRuntime
}

// CMakeDefines returns the user defines as cmake cache entries.
func (c *Config) CMakeDefines() cmake.Defines {
	defs := make(cmake.Defines, len(c.Defines))
	for k, v := range c.Defines {
		defs.Define(k, v)
	}
	return defs
}
