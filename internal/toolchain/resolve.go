package toolchain

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/variant"
)

// Host returns the machine usecmake is running on.
func Host() variant.TargetMachine {
	return variant.Machine(runtime.GOOS, runtime.GOARCH)
}

// Spec describes a toolchain explicitly, as written in the project config.
type Spec struct {
	OS           string   `yaml:"os" hcl:"os"`
	Arch         string   `yaml:"arch" hcl:"arch"`
	Name         string   `yaml:"name,omitempty" hcl:"name,optional"`
	VisualStudio string   `yaml:"visualStudio,omitempty" hcl:"visual_studio,optional"`
	CC           string   `yaml:"cc,omitempty" hcl:"cc,optional"`
	CXX          string   `yaml:"cxx,omitempty" hcl:"cxx,optional"`
	AR           string   `yaml:"ar,omitempty" hcl:"ar,optional"`
	Objcopy      string   `yaml:"objcopy,omitempty" hcl:"objcopy,optional"`
	Strip        string   `yaml:"strip,omitempty" hcl:"strip,optional"`
	CFlags       []string `yaml:"cflags,omitempty" hcl:"cflags,optional"`
	CXXFlags     []string `yaml:"cxxflags,omitempty" hcl:"cxxflags,optional"`
}

// Static resolves machines from explicit specs.
type Static []Spec

func (s Static) Resolve(ctx context.Context, machine variant.TargetMachine) (*Selection, error) {
	for _, spec := range s {
		if variant.Machine(spec.OS, spec.Arch) != machine {
			continue
		}
		if spec.VisualStudio != "" {
			return &Selection{
				Name:      nameOr(spec.Name, "Visual Studio "+spec.VisualStudio),
				Machine:   machine,
				Available: true,
				Family:    &VisualCpp{Version: spec.VisualStudio},
			}, nil
		}
		tools := make(map[Tool]string)
		for t, path := range map[Tool]string{
			CCompiler:       spec.CC,
			CXXCompiler:     spec.CXX,
			Archiver:        spec.AR,
			SymbolExtractor: spec.Objcopy,
			Stripper:        spec.Strip,
		} {
			if path != "" {
				tools[t] = path
			}
		}
		return &Selection{
			Name:      nameOr(spec.Name, "configured "+machine.String()),
			Machine:   machine,
			Available: spec.CC != "",
			Family: &Makefile{
				Tools: tools,
				Flags: Flags{C: spec.CFlags, CXX: spec.CXXFlags},
			},
		}, nil
	}
	return Unavailable(machine), nil
}

func nameOr(name, def string) string {
	if name != "" {
		return name
	}
	return def
}

// Path resolves toolchains by searching PATH for GCC, Clang and MinGW
// drivers, and for Visual Studio through vswhere on Windows hosts.
type Path struct {
	Host     variant.TargetMachine
	LookPath func(file string) (string, error)
	Runner   proc.Runner // runs vswhere
}

// NewPath returns a Path resolver for the current host.
func NewPath(runner proc.Runner) *Path {
	return &Path{Host: Host(), LookPath: exec.LookPath, Runner: runner}
}

type driver struct {
	name   string
	prefix string // cross prefix, e.g. "aarch64-linux-gnu-"
	cc     string
	cxx    string
	clang  bool
}

func (p *Path) Resolve(ctx context.Context, machine variant.TargetMachine) (*Selection, error) {
	if machine.OS == variant.Windows && p.Host.OS == variant.Windows {
		if sel, err := p.resolveVisualCpp(ctx, machine); err != nil || sel.Available {
			return sel, err
		}
	}
	for _, d := range p.drivers(machine) {
		cc, err := p.LookPath(d.prefix + d.cc)
		if err != nil {
			continue
		}
		tools := map[Tool]string{CCompiler: cc}
		if cxx, err := p.LookPath(d.prefix + d.cxx); err == nil {
			tools[CXXCompiler] = cxx
		}
		p.lookFirst(tools, Archiver, d, "ar", "llvm-ar")
		p.lookFirst(tools, SymbolExtractor, d, "objcopy", "llvm-objcopy", "dsymutil")
		p.lookFirst(tools, Stripper, d, "strip", "llvm-strip")
		return &Selection{
			Name:      d.name,
			Machine:   machine,
			Available: true,
			Family:    &Makefile{Tools: tools, Flags: archFlags(machine, d.clang)},
		}, nil
	}
	return Unavailable(machine), nil
}

func (p *Path) lookFirst(tools map[Tool]string, t Tool, d driver, names ...string) {
	for _, name := range names {
		if path, err := p.LookPath(d.prefix + name); err == nil {
			tools[t] = path
			return
		}
	}
}

func (p *Path) drivers(machine variant.TargetMachine) []driver {
	native := []driver{
		{name: "gcc", cc: "gcc", cxx: "g++"},
		{name: "clang", cc: "clang", cxx: "clang++", clang: true},
	}
	if machine == p.Host {
		return native
	}
	// x86 on an x86-64 host of the same OS is a multilib build.
	if machine.OS == p.Host.OS && machine.Arch == variant.X86 && p.Host.Arch == variant.X86_64 {
		return native
	}
	if prefix := crossPrefix(machine); prefix != "" {
		return []driver{{name: "gcc (" + prefix[:len(prefix)-1] + ")", prefix: prefix, cc: "gcc", cxx: "g++"}}
	}
	return nil
}

func crossPrefix(machine variant.TargetMachine) string {
	switch machine.OS {
	case variant.Linux:
		switch machine.Arch {
		case variant.Aarch64:
			return "aarch64-linux-gnu-"
		case variant.ArmV7:
			return "arm-linux-gnueabihf-"
		case variant.X86_64:
			return "x86_64-linux-gnu-"
		case variant.X86:
			return "i686-linux-gnu-"
		}
	case variant.Windows:
		switch machine.Arch {
		case variant.X86_64:
			return "x86_64-w64-mingw32-"
		case variant.X86:
			return "i686-w64-mingw32-"
		}
	}
	return ""
}

func archFlags(machine variant.TargetMachine, clang bool) Flags {
	var args []string
	switch {
	case clang && machine.OS == variant.MacOS:
		switch machine.Arch {
		case variant.X86_64:
			args = []string{"-arch", "x86_64"}
		case variant.Aarch64:
			args = []string{"-arch", "arm64"}
		}
	case machine.Arch == variant.X86:
		args = []string{"-m32"}
	case machine.Arch == variant.X86_64:
		args = []string{"-m64"}
	}
	return Flags{C: args, CXX: args}
}
