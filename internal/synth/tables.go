package synth

import (
	"strings"

	"github.com/goplus/usecmake/variant"
)

var generators = map[int]string{
	16: "Visual Studio 16 2019",
	15: "Visual Studio 15 2017",
	14: "Visual Studio 14 2015",
	12: "Visual Studio 12 2013",
	11: "Visual Studio 11 2012",
	10: "Visual Studio 10 2010",
	9:  "Visual Studio 9 2008",
	8:  "Visual Studio 8 2005",
	7:  "Visual Studio 7",
	6:  "Visual Studio 6",
}

// GeneratorString returns the CMake generator for a Visual Studio major
// version, or "" when the version has no generator.
func GeneratorString(major, minor int) string {
	if major == 7 && minor == 1 {
		return "Visual Studio 7 .NET 2003"
	}
	return generators[major]
}

var archs = map[string]string{
	variant.X86_64:  "x64",
	variant.X86:     "Win32",
	variant.ArmV7:   "ARM",
	variant.Aarch64: "ARM64",
}

// ArchString returns the Visual Studio platform name (-A) of an
// architecture, or "" when Visual Studio cannot target it.
func ArchString(arch string) string {
	return archs[variant.NormalizeArch(arch)]
}

// SystemName returns the CMAKE_SYSTEM_NAME of an operating system family.
// Anything not recognized as Android, Windows or Linux is treated as Darwin.
func SystemName(os string) string {
	l := strings.ToLower(os)
	switch {
	case strings.Contains(l, "android"):
		return "Android"
	case strings.Contains(l, "win"):
		return "Windows"
	case strings.Contains(l, "nix"), strings.Contains(l, "nux"):
		return "Linux"
	}
	return "Darwin"
}

// NormalizePath converts backslashes to forward slashes, which CMake
// generators require regardless of the host convention.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
