package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/goplus/usecmake/internal/proc"
	"github.com/goplus/usecmake/variant"
)

// fakePath returns a LookPath that only finds the given names.
func fakePath(names ...string) func(string) (string, error) {
	found := make(map[string]bool)
	for _, n := range names {
		found[n] = true
	}
	return func(file string) (string, error) {
		if found[file] {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}
}

type vswhereRunner struct {
	out string
	err error
}

func (r *vswhereRunner) Run(ctx context.Context, cmd proc.Command) error { return nil }

func (r *vswhereRunner) Output(ctx context.Context, cmd proc.Command) ([]byte, error) {
	return []byte(r.out), r.err
}

func TestPathResolveNative(t *testing.T) {
	host := variant.Machine("linux", "x86-64")
	p := &Path{Host: host, LookPath: fakePath("gcc", "g++", "ar", "objcopy", "strip")}

	sel, err := p.Resolve(context.Background(), host)
	if err != nil {
		t.Fatal(err)
	}
	if !sel.Available || sel.Name != "gcc" {
		t.Fatalf("got %+v, want available gcc", sel)
	}
	mk, ok := sel.Family.(*Makefile)
	if !ok {
		t.Fatalf("family = %T, want *Makefile", sel.Family)
	}
	for _, tool := range RequiredTools {
		if _, ok := mk.Locate(tool); !ok {
			t.Errorf("%s not located", tool)
		}
	}
	flags, err := mk.Flags.Flags(C)
	if err != nil || len(flags) != 1 || flags[0] != "-m64" {
		t.Errorf("C flags = %v, %v", flags, err)
	}
}

func TestPathResolveCross(t *testing.T) {
	host := variant.Machine("linux", "x86-64")
	p := &Path{Host: host, LookPath: fakePath("gcc", "aarch64-linux-gnu-gcc", "aarch64-linux-gnu-g++")}

	sel, err := p.Resolve(context.Background(), variant.Machine("linux", "arm64"))
	if err != nil {
		t.Fatal(err)
	}
	if !sel.Available {
		t.Fatal("aarch64 cross toolchain should be available")
	}
	mk := sel.Family.(*Makefile)
	if cc, _ := mk.Locate(CCompiler); cc != "/usr/bin/aarch64-linux-gnu-gcc" {
		t.Errorf("cc = %q", cc)
	}
	if _, ok := mk.Locate(Archiver); ok {
		t.Error("archiver should be missing")
	}

	sel, err = p.Resolve(context.Background(), variant.Machine("android", "arm-v7"))
	if err != nil {
		t.Fatal(err)
	}
	if sel.Available {
		t.Error("android should be unavailable")
	}
}

func TestPathResolveVisualCpp(t *testing.T) {
	host := variant.Machine("windows", "x86-64")
	p := &Path{Host: host, LookPath: fakePath(), Runner: &vswhereRunner{out: "16.11.34601.136\r\n"}}
	sel, err := p.Resolve(context.Background(), host)
	if err != nil {
		t.Fatal(err)
	}
	vc, ok := sel.Family.(*VisualCpp)
	if !ok || !sel.Available {
		t.Fatalf("got %+v, want available Visual Studio", sel)
	}
	major, minor, err := vc.MajorMinor()
	if err != nil || major != 16 || minor != 11 {
		t.Errorf("MajorMinor() = %d, %d, %v", major, minor, err)
	}

	p.Runner = &vswhereRunner{err: errors.New("not found")}
	sel, err = p.Resolve(context.Background(), host)
	if err != nil {
		t.Fatal(err)
	}
	if sel.Available {
		t.Error("no vswhere and no gcc should be unavailable")
	}
}

func TestStaticAndChain(t *testing.T) {
	static := Static{
		{OS: "linux", Arch: "aarch64", CC: "/opt/cc", CXX: "/opt/cxx", CFlags: []string{"-march=armv8-a"}},
		{OS: "windows", Arch: "x64", VisualStudio: "15.9"},
	}
	chain := Chain{static, &Path{Host: variant.Machine("linux", "x86-64"), LookPath: fakePath("gcc")}}

	sel, err := chain.Resolve(context.Background(), variant.Machine("linux", "arm64"))
	if err != nil {
		t.Fatal(err)
	}
	mk := sel.Family.(*Makefile)
	flags, _ := mk.Flags.Flags(C)
	if len(flags) != 1 || flags[0] != "-march=armv8-a" {
		t.Errorf("flags = %v", flags)
	}

	sel, _ = chain.Resolve(context.Background(), variant.Machine("windows", "amd64"))
	if _, ok := sel.Family.(*VisualCpp); !ok {
		t.Errorf("family = %T, want *VisualCpp", sel.Family)
	}

	sel, _ = chain.Resolve(context.Background(), variant.Machine("linux", "x86-64"))
	if !sel.Available || sel.Name != "gcc" {
		t.Errorf("fallback to PATH failed: %+v", sel)
	}

	sel, _ = chain.Resolve(context.Background(), variant.Machine("freebsd", "x86-64"))
	if sel.Available {
		t.Error("freebsd should be unavailable")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in           string
		major, minor int
		wantErr      bool
	}{
		{"16.11.34601.136", 16, 11, false},
		{"7.1", 7, 1, false},
		{"7", 7, 0, false},
		{"v17.0.1", 17, 0, false},
		{"banana", 0, 0, true},
	}
	for _, tt := range tests {
		major, minor, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) err = %v", tt.in, err)
			continue
		}
		if major != tt.major || minor != tt.minor {
			t.Errorf("ParseVersion(%q) = %d.%d, want %d.%d", tt.in, major, minor, tt.major, tt.minor)
		}
	}
}

func TestMissingToolError(t *testing.T) {
	err := &MissingToolError{Tool: Stripper, Platform: "linux-aarch64", Toolchain: "gcc"}
	want := "could not find strip for platform linux-aarch64 using toolchain gcc"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
