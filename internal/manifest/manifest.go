// Package manifest persists the variants of a generation pass for the
// build, install and outputs commands.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/usecmake/internal/matrixgen"
	"github.com/goplus/usecmake/internal/publish"
	"github.com/goplus/usecmake/variant"
)

// Build root layout:
//
//	buildRoot/
//	  .usecmake.json             # manifest of the last generation pass
//	  <bt>-<os>-<arch>[-<link>]/ # cmake build directory of one cell
const FileName = ".usecmake.json"

// Manifest lists the published variants of one generation pass.
type Manifest struct {
	Project     string                  `json:"project"`
	Variants    []*matrixgen.Published  `json:"variants"`
	Skipped     []variant.TargetMachine `json:"skipped,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// New returns the manifest of result.
func New(project string, result *matrixgen.Result) *Manifest {
	return &Manifest{
		Project:     project,
		Variants:    result.Variants,
		Skipped:     result.Skipped,
		GeneratedAt: time.Now(),
	}
}

// Path returns the manifest file of buildRoot.
func Path(buildRoot string) string {
	return filepath.Join(buildRoot, FileName)
}

// Variant returns the published variant named name.
func (m *Manifest) Variant(name string) (*matrixgen.Published, error) {
	for _, p := range m.Variants {
		if p.Variant.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no variant %q in %s", name, m.Project)
}

// Outputs returns every output channel, variant by variant.
func (m *Manifest) Outputs() []publish.Output {
	var outputs []publish.Output
	for _, p := range m.Variants {
		outputs = append(outputs, p.Outputs...)
	}
	return outputs
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// Save writes m to path, creating its directory if needed.
func Save(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
