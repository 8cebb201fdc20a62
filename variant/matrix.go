package variant

import (
	"strings"
)

// Matrix is the configured set of dimension values. Cells enumerates its
// cartesian product.
type Matrix struct {
	Machines   []TargetMachine
	BuildTypes []BuildType
	Linkages   []Linkage // optional dimension
}

// Cell is one element of the matrix cartesian product.
type Cell struct {
	BuildType BuildType
	Machine   TargetMachine
	Linkage   Linkage
}

// Dir returns the per-cell directory key: build type, OS and architecture,
// plus linkage when present. Distinct cells never share a key.
func (c Cell) Dir() string {
	parts := []string{c.BuildType.Name, c.Machine.OS, c.Machine.Arch}
	if c.Linkage != "" {
		parts = append(parts, string(c.Linkage))
	}
	return strings.Join(parts, "-")
}

// Normalize returns a copy of m with duplicate values removed and machines
// normalized. Missing build types fall back to DefaultBuildTypes.
func (m Matrix) Normalize() Matrix {
	out := Matrix{}
	seenM := make(map[TargetMachine]bool)
	for _, tm := range m.Machines {
		tm = Machine(tm.OS, tm.Arch)
		if !seenM[tm] {
			seenM[tm] = true
			out.Machines = append(out.Machines, tm)
		}
	}
	bts := m.BuildTypes
	if len(bts) == 0 {
		bts = DefaultBuildTypes
	}
	seenB := make(map[string]bool)
	for _, bt := range bts {
		if !seenB[bt.Name] {
			seenB[bt.Name] = true
			out.BuildTypes = append(out.BuildTypes, bt)
		}
	}
	seenL := make(map[Linkage]bool)
	for _, l := range m.Linkages {
		if !seenL[l] {
			seenL[l] = true
			out.Linkages = append(out.Linkages, l)
		}
	}
	return out
}

// Cells returns the cartesian product, build type outermost, then machine,
// then linkage.
func (m Matrix) Cells() []Cell {
	linkages := m.Linkages
	if len(linkages) == 0 {
		linkages = []Linkage{""}
	}
	cells := make([]Cell, 0, m.CellCount())
	for _, bt := range m.BuildTypes {
		for _, tm := range m.Machines {
			for _, l := range linkages {
				cells = append(cells, Cell{BuildType: bt, Machine: tm, Linkage: l})
			}
		}
	}
	return cells
}

// CellCount returns the number of cells Cells would return.
func (m Matrix) CellCount() int {
	n := len(m.BuildTypes) * len(m.Machines)
	if len(m.Linkages) > 0 {
		n *= len(m.Linkages)
	}
	return n
}

// Name returns the variant name of c: the build type followed by one token
// per visible dimension (OS, architecture, linkage).
func (m Matrix) Name(c Cell) string {
	oses := make(map[string]bool)
	archs := make(map[string]bool)
	for _, tm := range m.Machines {
		oses[tm.OS] = true
		archs[tm.Arch] = true
	}
	tokens := []string{
		c.BuildType.Name,
		DimensionSuffix(c.Machine.OS, len(oses)),
		DimensionSuffix(c.Machine.Arch, len(archs)),
	}
	if c.Linkage != "" {
		tokens = append(tokens, DimensionSuffix(string(c.Linkage), len(m.Linkages)))
	}
	return Uncapitalize(strings.Join(tokens, ""))
}

// DimensionSuffix returns the name token a dimension value contributes: the
// capitalized, lower-cased value when the dimension has more than one
// distinct value, "" otherwise.
func DimensionSuffix(value string, distinct int) string {
	if distinct > 1 {
		return Capitalize(strings.ToLower(value))
	}
	return ""
}
