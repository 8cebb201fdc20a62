package cmake

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/goplus/usecmake/internal/proc"
)

func TestUseSetsEnv(t *testing.T) {
	root := t.TempDir()
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")
	for _, d := range []string{includeDir, libDir, pkgconfigDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	for _, key := range []string{
		"PKG_CONFIG_PATH", "CMAKE_PREFIX_PATH", "CMAKE_INCLUDE_PATH",
		"CMAKE_LIBRARY_PATH", "INCLUDE", "LIB", "CPPFLAGS", "LDFLAGS",
	} {
		t.Setenv(key, "")
	}

	c := New("cmake", &recordRunner{})
	c.Use(root)

	for key, want := range map[string]string{
		"PKG_CONFIG_PATH":    pkgconfigDir,
		"CMAKE_PREFIX_PATH":  root,
		"CMAKE_INCLUDE_PATH": includeDir,
		"CMAKE_LIBRARY_PATH": libDir,
	} {
		if got := c.env[key]; got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}

	if runtime.GOOS == "windows" {
		if got := c.env["INCLUDE"]; got != includeDir {
			t.Errorf("INCLUDE = %q, want %q", got, includeDir)
		}
	} else {
		if got := c.env["CPPFLAGS"]; got != "-I"+includeDir {
			t.Errorf("CPPFLAGS = %q, want %q", got, "-I"+includeDir)
		}
		if got := c.env["LDFLAGS"]; got != "-L"+libDir {
			t.Errorf("LDFLAGS = %q, want %q", got, "-L"+libDir)
		}
	}
}

func TestUsePrependsExisting(t *testing.T) {
	t.Setenv("CMAKE_PREFIX_PATH", "/usr/local")
	a, b := t.TempDir(), t.TempDir()

	c := New("cmake", &recordRunner{})
	c.Use(a)
	c.Use(b)

	sep := string(filepath.ListSeparator)
	want := b + sep + a + sep + "/usr/local"
	if got := c.env["CMAKE_PREFIX_PATH"]; got != want {
		t.Errorf("CMAKE_PREFIX_PATH = %q, want %q", got, want)
	}
	if _, ok := c.env["CMAKE_LIBRARY_PATH"]; ok {
		t.Error("CMAKE_LIBRARY_PATH set without a lib dir")
	}
}

func TestDefinesArgs(t *testing.T) {
	d := Defines{}
	d.Define("FOO", "BAR")
	d.DefineBool("ENABLE", true)
	d.DefineBool("DISABLE", false)

	want := []string{
		"-DDISABLE:BOOL=OFF",
		"-DENABLE:BOOL=ON",
		"-DFOO:STRING=BAR",
	}
	if diff := cmp.Diff(want, d.Args()); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
	if args := (Defines{}).Args(); args != nil {
		t.Errorf("Args on empty = %v, want nil", args)
	}
}

func TestVersion(t *testing.T) {
	r := &recordRunner{out: "cmake version 3.28.1\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).\n"}
	c := New("/opt/cmake", r)
	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != "v3.28.1" {
		t.Errorf("Version() = %q", v)
	}
	if err := c.CheckFileAPI(context.Background()); err != nil {
		t.Errorf("CheckFileAPI() = %v", err)
	}

	r.out = "cmake version 3.10.2\n"
	if err := c.CheckFileAPI(context.Background()); err == nil {
		t.Error("cmake 3.10 should not support the file API")
	}

	r.out = "garbage\n"
	if _, err := c.Version(context.Background()); err == nil {
		t.Error("expected error for garbage output")
	}
}

func TestBuildInstallCommands(t *testing.T) {
	r := &recordRunner{}
	c := New("cmake", r)
	c.Env("CC", "clang")
	prefix := filepath.Join(t.TempDir(), "install")

	if err := c.Build(context.Background(), "out", "RELEASE", "--parallel"); err != nil {
		t.Fatal(err)
	}
	if err := c.Install(context.Background(), "out", prefix); err != nil {
		t.Fatal(err)
	}
	if len(r.cmds) != 2 {
		t.Fatalf("got %d commands", len(r.cmds))
	}
	if got := strings.Join(r.cmds[0].Args, " "); got != "--build out --config RELEASE --parallel" {
		t.Errorf("build args = %q", got)
	}
	if got := strings.Join(r.cmds[1].Args, " "); got != "--install out --prefix "+prefix {
		t.Errorf("install args = %q", got)
	}
	if r.cmds[0].Env["CC"] != "clang" {
		t.Error("env not forwarded to build")
	}
	if _, err := os.Stat(prefix); err != nil {
		t.Errorf("prefix not created: %v", err)
	}
}

func TestConfigure(t *testing.T) {
	r := &recordRunner{}
	c := New("cmake", r)
	c.Env("CMAKE_PREFIX_PATH", "/deps")
	buildDir := filepath.Join(t.TempDir(), "build")

	cmd := proc.Command{Dir: buildDir, Args: []string{"--no-warn-unused-cli", "/src"}}
	if err := c.Configure(context.Background(), cmd); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(buildDir); err != nil {
		t.Errorf("build dir not created: %v", err)
	}
	got := r.cmds[0]
	if got.Path != "cmake" || got.Env["CMAKE_PREFIX_PATH"] != "/deps" {
		t.Errorf("unexpected command %+v", got)
	}
}
