package normals

import (
	stdmath "math"
	"strings"
	"testing"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/scene/scenetest"
	"github.com/Faultbox/fbxport/pkg/math"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Auto, false},
		{"AUTO", Auto, false},
		{"override", Override, false},
		{"external", External, false},
		{"default", Computed, false},
		{"magic", Auto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestComputeCubeFlat(t *testing.T) {
	m := scenetest.CubeMesh()
	n := Compute(m)
	if len(n) != m.LoopCount() {
		t.Fatalf("len(Compute()) = %d, want %d", len(n), m.LoopCount())
	}
	want := []math.Vec3{
		{Z: -1}, {Z: 1}, {Y: -1}, {X: 1}, {Y: 1}, {X: -1},
	}
	for fi := range m.Faces {
		for k := 0; k < 4; k++ {
			got := n[fi*4+k]
			if got.Distance(want[fi]) > 1e-12 {
				t.Errorf("face %d loop %d normal = %v, want %v", fi, k, got, want[fi])
			}
		}
	}
}

func TestComputeCubeSmooth(t *testing.T) {
	m := scenetest.CubeMesh()
	for i := range m.Smooth {
		m.Smooth[i] = true
	}
	n := Compute(m)
	// Corner normals point along the diagonal.
	d := 1 / stdmath.Sqrt(3)
	want := math.Vec3{X: -d, Y: -d, Z: -d}
	if n[0].Distance(want) > 1e-12 {
		t.Errorf("vertex 0 normal = %v, want %v", n[0], want)
	}
}

func TestResolveAuto(t *testing.T) {
	m := scenetest.Triangle()
	up := math.Vec3{Z: 1}
	side := math.Vec3{X: 1}

	tests := []struct {
		name     string
		tables   *scene.NormalTables
		want     math.Vec3
		source   scene.NormalSource
		warnings int
	}{
		{"none", nil, up, scene.NormalsComputed, 0},
		{"per vertex override", &scene.NormalTables{PerVertex: []math.Vec3{side, side, side}}, side, scene.NormalsOverride, 0},
		{"per loop override", &scene.NormalTables{Split: true, PerLoop: [][]math.Vec3{{side, side, side, up}}}, side, scene.NormalsOverride, 0},
		{"external", &scene.NormalTables{External: []math.Vec3{side, side, side}}, side, scene.NormalsExternal, 0},
		{"override beats external", &scene.NormalTables{
			PerVertex: []math.Vec3{side, side, side},
			External:  []math.Vec3{up, up, up},
		}, side, scene.NormalsOverride, 0},
		{"override mismatch", &scene.NormalTables{PerVertex: []math.Vec3{side}}, up, scene.NormalsComputed, 1},
		{"external mismatch", &scene.NormalTables{External: []math.Vec3{side, side}}, up, scene.NormalsComputed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(m, tt.tables, Auto, false)
			if len(res.Normals) != 3 {
				t.Fatalf("len(Normals) = %d, want 3", len(res.Normals))
			}
			if res.Normals[0] != tt.want {
				t.Errorf("Normals[0] = %v, want %v", res.Normals[0], tt.want)
			}
			if res.Source != tt.source {
				t.Errorf("Source = %v, want %v", res.Source, tt.source)
			}
			if len(res.Warnings) != tt.warnings {
				t.Errorf("Warnings = %v, want %d", res.Warnings, tt.warnings)
			}
		})
	}
}

func TestResolveMismatchWarning(t *testing.T) {
	m := scenetest.CubeMesh()
	res := Resolve(m, &scene.NormalTables{Split: true, PerLoop: make([][]math.Vec3, 5)}, Auto, false)
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "List size mismatch") {
		t.Errorf("Warnings = %v, want a size mismatch", res.Warnings)
	}
	if res.Source != scene.NormalsComputed {
		t.Errorf("Source = %v, want computed", res.Source)
	}
}

func TestResolveExplicitMissing(t *testing.T) {
	m := scenetest.Triangle()
	for _, mode := range []Mode{Override, External} {
		res := Resolve(m, nil, mode, false)
		if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "List not found") {
			t.Errorf("Resolve(%v) warnings = %v, want List not found", mode, res.Warnings)
		}
		if res.Source != scene.NormalsComputed {
			t.Errorf("Resolve(%v) source = %v, want computed", mode, res.Source)
		}
	}
}

func TestResolveCollisionIgnoresTables(t *testing.T) {
	m := scenetest.Triangle()
	tables := &scene.NormalTables{PerVertex: []math.Vec3{{X: 1}, {X: 1}, {X: 1}}}
	res := Resolve(m, tables, Override, true)
	if res.Source != scene.NormalsComputed || len(res.Warnings) != 0 {
		t.Errorf("Resolve(collision) = %v, %v, want computed without warnings", res.Source, res.Warnings)
	}
}
