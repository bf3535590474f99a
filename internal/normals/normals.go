// Package normals picks the per-loop normal array written for a mesh.
//
// Normals may come from the normal editor (per loop or per vertex), from a
// third-party per-vertex table, or be computed from topology. Whatever the
// source, the result holds one vector per polygon loop in the same order as
// the polygon vertex index list.
package normals

import (
	"fmt"
	"strings"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// Mode selects where normals come from.
type Mode int

const (
	Auto Mode = iota
	Override
	External
	Computed
)

// String returns the mode name as used in config files.
func (m Mode) String() string {
	switch m {
	case Override:
		return "override"
	case External:
		return "external"
	case Computed:
		return "computed"
	default:
		return "auto"
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "override":
		return Override, nil
	case "external":
		return External, nil
	case "computed", "default":
		return Computed, nil
	}
	return Auto, fmt.Errorf("normals: unknown mode %q", s)
}

// Result is the outcome of Resolve.
type Result struct {
	Normals  []math.Vec3
	Source   scene.NormalSource
	Warnings []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Resolve returns per-loop normals for m. Collision meshes always get
// computed normals. Table problems are reported as warnings and fall back
// to computed normals.
func Resolve(m *scene.Mesh, tables *scene.NormalTables, mode Mode, collision bool) Result {
	var res Result
	if collision {
		mode = Computed
	}

	switch mode {
	case Auto:
		switch {
		case hasOverride(tables):
			res.Normals = fromOverride(m, tables, &res)
		case tables != nil && len(tables.External) > 0:
			res.Normals = fromExternal(m, tables, &res)
		}
	case Override:
		if hasOverride(tables) {
			res.Normals = fromOverride(m, tables, &res)
		} else {
			res.warnf("Normal override: List not found")
		}
	case External:
		if tables != nil && len(tables.External) > 0 {
			res.Normals = fromExternal(m, tables, &res)
		} else {
			res.warnf("External normals: List not found")
		}
	}

	if res.Normals == nil {
		res.Normals = Compute(m)
		res.Source = scene.NormalsComputed
	}
	return res
}

func hasOverride(t *scene.NormalTables) bool {
	if t == nil {
		return false
	}
	if t.Split {
		return len(t.PerLoop) > 0
	}
	return len(t.PerVertex) > 0
}

func fromOverride(m *scene.Mesh, t *scene.NormalTables, res *Result) []math.Vec3 {
	if !t.Split {
		n := perVertex(m, t.PerVertex)
		if n == nil {
			res.warnf("Normal override: List size mismatch (%d vertices, mesh has %d)", len(t.PerVertex), len(m.Positions))
			return nil
		}
		res.Source = scene.NormalsOverride
		return n
	}

	if len(t.PerLoop) != len(m.Faces) {
		res.warnf("Normal override: List size mismatch (%d polygons, mesh has %d)", len(t.PerLoop), len(m.Faces))
		return nil
	}
	out := make([]math.Vec3, 0, m.LoopCount())
	for fi, f := range m.Faces {
		entry := t.PerLoop[fi]
		if len(entry) < len(f) {
			res.warnf("Normal override: List size mismatch (polygon %d has %d normals, needs %d)", fi, len(entry), len(f))
			return nil
		}
		out = append(out, entry[:len(f)]...)
	}
	res.Source = scene.NormalsOverride
	return out
}

func fromExternal(m *scene.Mesh, t *scene.NormalTables, res *Result) []math.Vec3 {
	n := perVertex(m, t.External)
	if n == nil {
		res.warnf("External normals: List size mismatch (%d vertices, mesh has %d)", len(t.External), len(m.Positions))
		return nil
	}
	res.Source = scene.NormalsExternal
	return n
}

// perVertex expands a per-vertex table to loops, or returns nil when the
// table does not match the vertex count.
func perVertex(m *scene.Mesh, table []math.Vec3) []math.Vec3 {
	if len(table) != len(m.Positions) {
		return nil
	}
	out := make([]math.Vec3, 0, m.LoopCount())
	for _, f := range m.Faces {
		for _, vi := range f {
			out = append(out, table[vi])
		}
	}
	return out
}
