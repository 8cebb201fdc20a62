package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/variant"
	"golang.org/x/mod/semver"
)

func vswherePath() string {
	root := os.Getenv("ProgramFiles(x86)")
	if root == "" {
		root = `C:\Program Files (x86)`
	}
	return filepath.Join(root, "Microsoft Visual Studio", "Installer", "vswhere.exe")
}

func (p *Path) resolveVisualCpp(ctx context.Context, machine variant.TargetMachine) (*Selection, error) {
	if p.Runner == nil {
		return Unavailable(machine), nil
	}
	out, err := p.Runner.Output(ctx, proc.Command{
		Path: vswherePath(),
		Args: []string{
			"-latest", "-products", "*",
			"-requires", "Microsoft.VisualStudio.Component.VC.Tools.x86.x64",
			"-property", "installationVersion",
		},
	})
	if err != nil {
		// vswhere missing means no Visual Studio, not a failure.
		return Unavailable(machine), nil
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return Unavailable(machine), nil
	}
	return &Selection{
		Name:      "Visual Studio " + version,
		Machine:   machine,
		Available: true,
		Family:    &VisualCpp{Version: version},
	}, nil
}

// MajorMinor parses the installation version into its major and minor
// components. Versions may carry more than three numeric components
// ("16.11.34601.136"); only the first three are considered.
func (v *VisualCpp) MajorMinor() (major, minor int, err error) {
	return ParseVersion(v.Version)
}

// ParseVersion parses a dotted numeric version and returns its major and
// minor components.
func ParseVersion(version string) (major, minor int, err error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(version), "v"), ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v := "v" + strings.Join(parts, ".")
	if !semver.IsValid(v) {
		return 0, 0, fmt.Errorf("invalid version %q", version)
	}
	major, err = strconv.Atoi(strings.TrimPrefix(semver.Major(v), "v"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version %q: %w", version, err)
	}
	mm := semver.MajorMinor(v)
	if _, after, ok := strings.Cut(mm, "."); ok {
		minor, err = strconv.Atoi(after)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid version %q: %w", version, err)
		}
	}
	return major, minor, nil
}
