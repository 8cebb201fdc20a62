// Package publish classifies the artifacts of configured cmake targets and
// exposes them as attribute-tagged output channels.
package publish

import (
	"path/filepath"
	"strings"

	"github.com/goplus/usecmake/variant"
	"github.com/goplus/usecmake/x/cmake/fileapi"
	"github.com/qiniu/x/log"
)

// Artifact is one file (or directory) of an output channel.
type Artifact struct {
	Path    string `json:"path" yaml:"path"`
	BuiltBy string `json:"builtBy" yaml:"builtBy"`
}

// Output is a named output channel a consumer can depend on.
type Output struct {
	Name       string             `json:"name" yaml:"name"`
	Attributes variant.Attributes `json:"attributes" yaml:"attributes"`
	Artifacts  []Artifact         `json:"artifacts" yaml:"artifacts"`
}

// Dropped is an artifact that fits no output channel.
type Dropped struct {
	Target string `json:"target" yaml:"target"`
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
}

// Groups partitions installable library targets by kind. A target is in at
// most one group.
type Groups struct {
	Shared []*fileapi.Target
	Static []*fileapi.Target
}

// Classify keeps installable targets and partitions the shared and static
// libraries among them. Other target types are not published.
func Classify(targets []*fileapi.Target) Groups {
	var g Groups
	for _, t := range targets {
		if t.Install == nil {
			continue
		}
		switch t.Type {
		case fileapi.SharedLibrary:
			g.Shared = append(g.Shared, t)
		case fileapi.StaticLibrary:
			g.Static = append(g.Static, t)
		}
	}
	return g
}

// IsRuntime reports whether path is a shared library loaded at run time.
func IsRuntime(path string) bool {
	return strings.HasSuffix(path, ".dll") || strings.HasSuffix(path, ".so")
}

// IsLink reports whether path is consumed by the linker.
func IsLink(path string) bool {
	return strings.HasSuffix(path, ".lib") || strings.HasSuffix(path, ".a")
}

// BuildStep returns the name of the step building v.
func BuildStep(v *variant.Variant) string {
	return "cmakeBuild" + variant.Capitalize(v.Name)
}

// InstallStep returns the name of the step installing v.
func InstallStep(v *variant.Variant) string {
	return "cmakeInstall" + variant.Capitalize(v.Name)
}

// Publish returns the output channels of v: shared link and runtime
// elements when there are shared libraries, static link elements when there
// are static libraries, and api elements (the install include directory)
// always. When v has a linkage only the matching group is published.
func Publish(v *variant.Variant, g Groups, includeDir string) ([]Output, []Dropped) {
	var outputs []Output
	var dropped []Dropped
	base := variant.Uncapitalize(v.Name)
	buildStep := BuildStep(v)

	artifact := func(path string) Artifact {
		p := filepath.FromSlash(path)
		if !filepath.IsAbs(p) {
			p = filepath.Join(v.BuildDir, p)
		}
		return Artifact{Path: p, BuiltBy: buildStep}
	}
	drop := func(t *fileapi.Target, path string) {
		log.Warnf("Ignoring artifact exported by target %s (%s): %s", t.Name, t.ID, path)
		dropped = append(dropped, Dropped{Target: t.Name, ID: t.ID, Path: path})
	}

	if len(g.Shared) > 0 && v.Linkage != variant.Static {
		link := Output{Name: base + "SharedLinkElements", Attributes: v.Attributes(variant.UsageNativeLink)}
		runtime := Output{Name: base + "SharedRuntimeElements", Attributes: v.Attributes(variant.UsageNativeRuntime)}
		link.Attributes.Linkage = variant.Shared
		runtime.Attributes.Linkage = variant.Shared
		for _, t := range g.Shared {
			for _, a := range t.Artifacts {
				switch {
				case IsRuntime(a.Path):
					runtime.Artifacts = append(runtime.Artifacts, artifact(a.Path))
				case IsLink(a.Path):
					link.Artifacts = append(link.Artifacts, artifact(a.Path))
				default:
					drop(t, a.Path)
				}
			}
		}
		outputs = append(outputs, link, runtime)
	}

	if len(g.Static) > 0 && v.Linkage != variant.Shared {
		link := Output{Name: base + "StaticLinkElements", Attributes: v.Attributes(variant.UsageNativeLink)}
		link.Attributes.Linkage = variant.Static
		for _, t := range g.Static {
			for _, a := range t.Artifacts {
				if IsLink(a.Path) {
					link.Artifacts = append(link.Artifacts, artifact(a.Path))
				} else {
					drop(t, a.Path)
				}
			}
		}
		outputs = append(outputs, link)
	}

	api := Output{Name: base + "ApiElements", Attributes: v.Attributes(variant.UsageCppAPI)}
	api.Attributes.Format = variant.FormatDirectory
	api.Artifacts = []Artifact{{Path: includeDir, BuiltBy: InstallStep(v)}}
	outputs = append(outputs, api)

	return outputs, dropped
}
