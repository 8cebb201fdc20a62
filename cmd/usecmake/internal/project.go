package internal

import (
	"fmt"
	"os"

	"github.com/goplus/usecmake/internal/config"
	"github.com/goplus/usecmake/internal/env"
	"github.com/goplus/usecmake/internal/manifest"
	"github.com/goplus/usecmake/internal/matrixgen"
	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/internal/toolchain"
	"github.com/goplus/usecmake/x/cmake"
)

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDir(projectDir)
}

// newCMake returns the cmake wrapper with every dependency prefix of cfg
// in use.
func newCMake(cfg *config.Config, runner proc.Runner) *cmake.CMake {
	c := cmake.New(env.CMakeExecutable(), runner)
	for _, prefix := range cfg.UsePrefixes() {
		c.Use(prefix)
	}
	return c
}

// newResolver prefers the toolchains written in cfg over the ones found on
// PATH.
func newResolver(cfg *config.Config, runner proc.Runner) toolchain.Resolver {
	return toolchain.Chain{
		toolchain.Static(cfg.Toolchains),
		toolchain.NewPath(runner),
	}
}

func newGenerator(cfg *config.Config, runner proc.Runner) (*matrixgen.Generator, error) {
	m, err := cfg.Matrix()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.ProjectDir()); err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}
	return &matrixgen.Generator{
		ProjectDir:          cfg.ProjectDir(),
		BuildRoot:           cfg.BuildRoot(),
		InstallRoot:         cfg.InstallRoot(),
		Matrix:              m,
		Resolver:            newResolver(cfg, runner),
		CMake:               newCMake(cfg, runner),
		Make:                env.MakeExecutable(),
		Runner:              runner,
		Arguments:           cfg.Arguments,
		Defines:             cfg.CMakeDefines(),
		ForceReleaseRuntime: cfg.ForceRelease(),
		Jobs:                cfg.Jobs,
		QueryTimeout:        timeout,
	}, nil
}

func loadManifest(cfg *config.Config) (*manifest.Manifest, error) {
	path := manifest.Path(cfg.BuildRoot())
	m, err := manifest.Load(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no variants generated in %s, run usecmake generate first", cfg.BuildRoot())
	}
	return m, err
}
