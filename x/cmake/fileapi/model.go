package fileapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Target types reported by cmake.
const (
	SharedLibrary = "SHARED_LIBRARY"
	StaticLibrary = "STATIC_LIBRARY"
	ModuleLibrary = "MODULE_LIBRARY"
	Executable    = "EXECUTABLE"
)

// CodeModel is the "codemodel" reply object.
type CodeModel struct {
	Kind           string          `json:"kind"`
	Paths          Paths           `json:"paths"`
	Configurations []Configuration `json:"configurations"`

	buildDir string
}

// Paths are the top-level source and build directories.
type Paths struct {
	Source string `json:"source"`
	Build  string `json:"build"`
}

// Configuration is one build configuration of the code model.
type Configuration struct {
	Name    string      `json:"name"`
	Targets []TargetRef `json:"targets"`
}

// TargetRef points at the per-target reply record.
type TargetRef struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	JSONFile string `json:"jsonFile"`
}

// Target is a per-target reply record.
type Target struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Install   *Install   `json:"install"`
	Artifacts []Artifact `json:"artifacts"`
}

// Install is present only for targets with install rules.
type Install struct {
	Prefix       InstallPath   `json:"prefix"`
	Destinations []InstallPath `json:"destinations"`
}

// InstallPath is a path object of an install record.
type InstallPath struct {
	Path string `json:"path"`
}

// Artifact is a file produced by a target, relative to the build directory.
type Artifact struct {
	Path string `json:"path"`
}

// MissingConfigurationError reports a code model without the requested
// build type.
type MissingConfigurationError struct {
	BuildType string
	Available []string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("configuration for build type %s could not be found (have %s)",
		e.BuildType, strings.Join(e.Available, ", "))
}

// BuildDir returns the build directory the code model was read from.
func (m *CodeModel) BuildDir() string { return m.buildDir }

// Configuration returns the configuration named buildType, compared
// case-insensitively.
func (m *CodeModel) Configuration(buildType string) (*Configuration, error) {
	names := make([]string, 0, len(m.Configurations))
	for i := range m.Configurations {
		c := &m.Configurations[i]
		if strings.EqualFold(c.Name, buildType) {
			return c, nil
		}
		names = append(names, c.Name)
	}
	return nil, &MissingConfigurationError{BuildType: buildType, Available: names}
}

// Targets reads the reply record of every target of c.
func (m *CodeModel) Targets(c *Configuration) ([]*Target, error) {
	targets := make([]*Target, 0, len(c.Targets))
	for _, ref := range c.Targets {
		t, err := ReadTarget(m.buildDir, ref.JSONFile)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// ReadTarget reads a per-target reply record from buildDir.
func ReadTarget(buildDir, jsonFile string) (*Target, error) {
	var t Target
	if err := readJSON(filepath.Join(ReplyDir(buildDir), jsonFile), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

type replyIndex struct {
	Reply map[string]json.RawMessage `json:"reply"`
}

type replyObject struct {
	Kind     string `json:"kind"`
	JSONFile string `json:"jsonFile"`
	Error    string `json:"error"`
}

// readCodeModel reads the code model answered to client by the latest
// reply index of buildDir.
func readCodeModel(buildDir, client string) (*CodeModel, error) {
	index, err := latestIndex(buildDir)
	if err != nil {
		return nil, err
	}
	var idx replyIndex
	if err := readJSON(index, &idx); err != nil {
		return nil, err
	}
	raw, ok := idx.Reply["client-"+client]
	if !ok {
		return nil, fmt.Errorf("%w: no reply for client %s in %s", ErrNoReply, client, index)
	}
	var responses map[string]replyObject
	if err := json.Unmarshal(raw, &responses); err != nil {
		return nil, fmt.Errorf("%s: %w", index, err)
	}
	obj, ok := responses[codeModelQuery]
	if !ok {
		return nil, fmt.Errorf("%w: no %s for client %s in %s", ErrNoReply, codeModelQuery, client, index)
	}
	if obj.Error != "" {
		return nil, fmt.Errorf("%s: %s", codeModelQuery, obj.Error)
	}
	m := &CodeModel{buildDir: buildDir}
	if err := readJSON(filepath.Join(ReplyDir(buildDir), obj.JSONFile), m); err != nil {
		return nil, err
	}
	return m, nil
}

func latestIndex(buildDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(ReplyDir(buildDir), "index-*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no reply index in %s", ErrNoReply, ReplyDir(buildDir))
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
