package variant

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDimensionSuffix(t *testing.T) {
	tests := []struct {
		value    string
		distinct int
		want     string
	}{
		{"linux", 1, ""},
		{"linux", 2, "Linux"},
		{"MACOS", 3, "Macos"},
		{"x86-64", 2, "X86-64"},
		{"aarch64", 0, ""},
	}
	for _, tt := range tests {
		if got := DimensionSuffix(tt.value, tt.distinct); got != tt.want {
			t.Errorf("DimensionSuffix(%q, %d) = %q, want %q", tt.value, tt.distinct, got, tt.want)
		}
	}
}

func TestMatrix_Name(t *testing.T) {
	tests := []struct {
		name   string
		matrix Matrix
		cell   Cell
		want   string
	}{
		{
			name: "single machine",
			matrix: Matrix{
				Machines:   []TargetMachine{Machine("linux", "amd64")},
				BuildTypes: DefaultBuildTypes,
			},
			cell: Cell{BuildType: Debug, Machine: Machine("linux", "amd64")},
			want: "debug",
		},
		{
			name: "one os two archs",
			matrix: Matrix{
				Machines: []TargetMachine{
					Machine("linux", "x86-64"),
					Machine("linux", "aarch64"),
				},
				BuildTypes: DefaultBuildTypes,
			},
			cell: Cell{BuildType: Release, Machine: Machine("linux", "aarch64")},
			want: "releaseAarch64",
		},
		{
			name: "two os two archs",
			matrix: Matrix{
				Machines: []TargetMachine{
					Machine("linux", "x86-64"),
					Machine("windows", "x86"),
				},
				BuildTypes: DefaultBuildTypes,
			},
			cell: Cell{BuildType: Debug, Machine: Machine("windows", "x86")},
			want: "debugWindowsX86",
		},
		{
			name: "two os one arch",
			matrix: Matrix{
				Machines: []TargetMachine{
					Machine("linux", "x86-64"),
					Machine("macos", "x86-64"),
				},
				BuildTypes: DefaultBuildTypes,
			},
			cell: Cell{BuildType: Release, Machine: Machine("darwin", "amd64")},
			want: "releaseMacos",
		},
		{
			name: "linkage visible",
			matrix: Matrix{
				Machines:   []TargetMachine{Machine("linux", "x86-64")},
				BuildTypes: DefaultBuildTypes,
				Linkages:   []Linkage{Shared, Static},
			},
			cell: Cell{BuildType: Debug, Machine: Machine("linux", "x86-64"), Linkage: Static},
			want: "debugStatic",
		},
		{
			name: "linkage hidden",
			matrix: Matrix{
				Machines:   []TargetMachine{Machine("linux", "x86-64")},
				BuildTypes: DefaultBuildTypes,
				Linkages:   []Linkage{Shared},
			},
			cell: Cell{BuildType: Debug, Machine: Machine("linux", "x86-64"), Linkage: Shared},
			want: "debug",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.matrix.Name(tt.cell); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatrix_NamesUnique(t *testing.T) {
	matrices := []Matrix{
		{
			Machines:   []TargetMachine{Machine("linux", "x86-64")},
			BuildTypes: []BuildType{Release},
		},
		{
			Machines: []TargetMachine{
				Machine("linux", "x86-64"),
				Machine("linux", "aarch64"),
				Machine("windows", "x86-64"),
				Machine("windows", "x86"),
				Machine("android", "arm-v7"),
			},
			BuildTypes: []BuildType{Debug, Release, RelWithDebInfo, MinSizeRel},
			Linkages:   []Linkage{Shared, Static},
		},
		{
			Machines: []TargetMachine{
				Machine("macos", "x86-64"),
				Machine("macos", "aarch64"),
			},
			BuildTypes: DefaultBuildTypes,
			Linkages:   []Linkage{Static},
		},
	}
	for i, m := range matrices {
		m = m.Normalize()
		seen := make(map[string]Cell)
		dirs := make(map[string]bool)
		for _, c := range m.Cells() {
			name := m.Name(c)
			if prev, ok := seen[name]; ok {
				t.Errorf("matrix %d: name %q shared by %+v and %+v", i, name, prev, c)
			}
			seen[name] = c
			if dirs[c.Dir()] {
				t.Errorf("matrix %d: dir %q reused", i, c.Dir())
			}
			dirs[c.Dir()] = true
		}
		if len(seen) != m.CellCount() {
			t.Errorf("matrix %d: %d names, want %d", i, len(seen), m.CellCount())
		}
	}
}

func TestMatrix_Cells(t *testing.T) {
	m := Matrix{
		Machines: []TargetMachine{
			Machine("linux", "x86_64"),
			Machine("linux", "amd64"), // duplicate after normalization
			Machine("windows", "x64"),
		},
		Linkages: []Linkage{Shared, Static},
	}.Normalize()

	if got, want := m.CellCount(), 8; got != want {
		t.Fatalf("CellCount() = %d, want %d", got, want)
	}
	var got []string
	for _, c := range m.Cells() {
		got = append(got, c.Dir())
	}
	want := []string{
		"debug-linux-x86-64-shared",
		"debug-linux-x86-64-static",
		"debug-windows-x86-64-shared",
		"debug-windows-x86-64-static",
		"release-linux-x86-64-shared",
		"release-linux-x86-64-static",
		"release-windows-x86-64-shared",
		"release-windows-x86-64-static",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cells() mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrix_CellsWithoutLinkage(t *testing.T) {
	m := Matrix{Machines: []TargetMachine{Machine("linux", "x86-64")}}.Normalize()
	cells := m.Cells()
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[0].Dir() != "debug-linux-x86-64" || cells[1].Dir() != "release-linux-x86-64" {
		t.Errorf("unexpected cells: %+v", cells)
	}
}

func TestBuildTypes(t *testing.T) {
	bt, err := ParseBuildType("RELEASE")
	if err != nil {
		t.Fatal(err)
	}
	if bt != Release {
		t.Errorf("ParseBuildType(RELEASE) = %+v", bt)
	}
	if _, err := ParseBuildType("profile"); err == nil {
		t.Error("ParseBuildType(profile) should fail")
	}
	for bt, want := range map[BuildType]string{
		Debug:          "Debug",
		Release:        "Release",
		RelWithDebInfo: "RelWithDebInfo",
		MinSizeRel:     "MinSizeRel",
	} {
		if got := bt.CMakeName(); got != want {
			t.Errorf("%s.CMakeName() = %q, want %q", bt.Name, got, want)
		}
	}
}

func TestVariantDiverges(t *testing.T) {
	v := &Variant{BuildType: Debug, ConfiguredAs: "RELEASE"}
	if !v.Diverges() {
		t.Error("debug configured as RELEASE should diverge")
	}
	v = &Variant{BuildType: Release, ConfiguredAs: "RELEASE"}
	if v.Diverges() {
		t.Error("release configured as RELEASE should not diverge")
	}
	attrs := (&Variant{BuildType: Debug, Machine: Machine("linux", "arm64"), Linkage: Static}).Attributes(UsageNativeLink)
	want := Attributes{
		Debuggable:      true,
		BuildType:       "debug",
		Architecture:    Aarch64,
		OperatingSystem: Linux,
		Linkage:         Static,
		Usage:           UsageNativeLink,
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("Attributes mismatch (-want +got):\n%s", diff)
	}
}
