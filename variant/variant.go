// Package variant describes the build variants a downstream consumer can
// depend on: target machines, build types, linkages and the attributes used
// to match a published output against a consumer's request.
package variant

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------

// Operating system families.
const (
	Linux   = "linux"
	Windows = "windows"
	MacOS   = "macos"
	Android = "android"
	FreeBSD = "freebsd"
)

// Architectures.
const (
	X86     = "x86"
	X86_64  = "x86-64"
	ArmV7   = "arm-v7"
	Aarch64 = "aarch64"
)

var osAliases = map[string]string{
	"linux":   Linux,
	"windows": Windows,
	"win32":   Windows,
	"macos":   MacOS,
	"darwin":  MacOS,
	"osx":     MacOS,
	"android": Android,
	"freebsd": FreeBSD,
}

var archAliases = map[string]string{
	"x86":     X86,
	"i386":    X86,
	"i686":    X86,
	"386":     X86,
	"x86-64":  X86_64,
	"x86_64":  X86_64,
	"amd64":   X86_64,
	"x64":     X86_64,
	"arm-v7":  ArmV7,
	"armv7":   ArmV7,
	"arm":     ArmV7,
	"aarch64": Aarch64,
	"arm64":   Aarch64,
	"arm-v8":  Aarch64,
}

// NormalizeOS maps an operating system alias (e.g. "darwin") to its family
// name. Unknown names are lower-cased and returned as-is.
func NormalizeOS(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if v, ok := osAliases[name]; ok {
		return v
	}
	return name
}

// NormalizeArch maps an architecture alias (e.g. "amd64") to its canonical
// name. Unknown names are lower-cased and returned as-is.
func NormalizeArch(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if v, ok := archAliases[name]; ok {
		return v
	}
	return name
}

// TargetMachine is an operating system family plus a CPU architecture.
type TargetMachine struct {
	OS   string `json:"os" yaml:"os"`
	Arch string `json:"arch" yaml:"arch"`
}

// Machine returns a TargetMachine with both fields normalized.
func Machine(os, arch string) TargetMachine {
	return TargetMachine{OS: NormalizeOS(os), Arch: NormalizeArch(arch)}
}

func (m TargetMachine) String() string {
	return m.OS + "-" + m.Arch
}

// -----------------------------------------------------------------------------

// BuildType is a fixed configuration profile.
type BuildType struct {
	Name       string `json:"name" yaml:"name"`
	Debuggable bool   `json:"debuggable" yaml:"debuggable"`
	Optimized  bool   `json:"optimized" yaml:"optimized"`
}

var (
	Debug          = BuildType{Name: "debug", Debuggable: true}
	Release        = BuildType{Name: "release", Debuggable: true, Optimized: true}
	RelWithDebInfo = BuildType{Name: "relwithdebinfo", Debuggable: true, Optimized: true}
	MinSizeRel     = BuildType{Name: "minsizerel", Optimized: true}
)

// DefaultBuildTypes are the build types enumerated when none are configured.
var DefaultBuildTypes = []BuildType{Debug, Release}

var buildTypes = []BuildType{Debug, Release, RelWithDebInfo, MinSizeRel}

// ParseBuildType looks up a build type of the fixed set by name,
// case-insensitively.
func ParseBuildType(name string) (BuildType, error) {
	for _, bt := range buildTypes {
		if strings.EqualFold(bt.Name, name) {
			return bt, nil
		}
	}
	return BuildType{}, fmt.Errorf("unknown build type %q", name)
}

// CMakeName returns the CMAKE_BUILD_TYPE spelling of the build type.
func (b BuildType) CMakeName() string {
	switch b.Name {
	case RelWithDebInfo.Name:
		return "RelWithDebInfo"
	case MinSizeRel.Name:
		return "MinSizeRel"
	}
	return Capitalize(b.Name)
}

func (b BuildType) String() string { return b.Name }

// -----------------------------------------------------------------------------

// Linkage is how a library is linked.
type Linkage string

const (
	Shared Linkage = "shared"
	Static Linkage = "static"
)

// ParseLinkage parses "shared" or "static", case-insensitively.
func ParseLinkage(name string) (Linkage, error) {
	switch l := Linkage(strings.ToLower(name)); l {
	case Shared, Static:
		return l, nil
	}
	return "", fmt.Errorf("unknown linkage %q", name)
}

// Usage tags carried by published outputs.
const (
	UsageNativeLink    = "native-link"
	UsageNativeRuntime = "native-runtime"
	UsageCppAPI        = "cplusplus-api"
)

// FormatDirectory marks an output whose single artifact is a directory.
const FormatDirectory = "directory"

// Attributes let the host graph match a published output against a
// consumer's request. BuildType keeps build types with equal
// debuggable/optimized flags (release, relwithdebinfo) apart.
type Attributes struct {
	Debuggable      bool    `json:"debuggable" yaml:"debuggable"`
	Optimized       bool    `json:"optimized" yaml:"optimized"`
	BuildType       string  `json:"buildType" yaml:"buildType"`
	Architecture    string  `json:"architecture" yaml:"architecture"`
	OperatingSystem string  `json:"operatingSystem" yaml:"operatingSystem"`
	Linkage         Linkage `json:"linkage,omitempty" yaml:"linkage,omitempty"`
	Usage           string  `json:"usage" yaml:"usage"`
	Format          string  `json:"format,omitempty" yaml:"format,omitempty"`
}

// Variant is one publishable cell of the matrix.
type Variant struct {
	Name         string        `json:"name" yaml:"name"`
	BuildType    BuildType     `json:"buildType" yaml:"buildType"`
	Machine      TargetMachine `json:"machine" yaml:"machine"`
	Linkage      Linkage       `json:"linkage,omitempty" yaml:"linkage,omitempty"` // empty when linkage is not a matrix dimension
	ConfiguredAs string        `json:"configuredAs" yaml:"configuredAs"`           // CMAKE_BUILD_TYPE actually passed to cmake
	BuildDir     string        `json:"buildDir" yaml:"buildDir"`
	InstallDir   string        `json:"installDir" yaml:"installDir"`
}

// Attributes returns the common attribute set of v tagged with usage.
func (v *Variant) Attributes(usage string) Attributes {
	return Attributes{
		Debuggable:      v.BuildType.Debuggable,
		Optimized:       v.BuildType.Optimized,
		BuildType:       v.BuildType.Name,
		Architecture:    v.Machine.Arch,
		OperatingSystem: v.Machine.OS,
		Linkage:         v.Linkage,
		Usage:           usage,
	}
}

// Diverges reports whether cmake was configured with a build type other
// than the one the variant presents.
func (v *Variant) Diverges() bool {
	return !strings.EqualFold(v.ConfiguredAs, v.BuildType.CMakeName())
}

// Capitalize upper-cases the first byte of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Uncapitalize lower-cases the first byte of s.
func Uncapitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
