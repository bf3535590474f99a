// Package tangent computes per-loop tangents and binormals.
//
// The legacy strategy reproduces the tangent convention of an older external
// renderer: one raw basis per face from its first three vertices, projected
// onto each loop normal, then averaged across loops that share a position
// and a UV island.
package tangent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// Strategy selects how tangents are produced.
type Strategy int

const (
	None Strategy = iota
	Host
	Legacy
)

// String returns the strategy name as used in config files.
func (s Strategy) String() string {
	switch s {
	case Host:
		return "host"
	case Legacy:
		return "legacy"
	default:
		return "none"
	}
}

// ParseStrategy parses a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "host", "default":
		return Host, nil
	case "legacy", "lengyel":
		return Legacy, nil
	}
	return None, fmt.Errorf("tangent: unknown strategy %q", s)
}

var (
	ErrNoUVLayer      = errors.New("tangent: uv layer not found")
	ErrLengthMismatch = errors.New("tangent: uv list length mismatch")
)

// Input is everything a strategy needs for one mesh.
type Input struct {
	Mesh         *scene.Mesh
	Normals      []math.Vec3 // per loop
	NormalSource scene.NormalSource
	UVLayer      int
	Host         scene.HostTangents
	Collision    bool
}

// Result holds per-loop tangents and binormals, or nothing when tangents
// cannot be exported.
type Result struct {
	Tangents  []math.Vec3
	Binormals []math.Vec3
	Warnings  []string
}

// Compute runs the selected strategy. Failures never abort the export; they
// are returned as warnings together with an empty result.
func Compute(s Strategy, in Input) Result {
	var res Result
	if s == None || in.Collision {
		return res
	}
	if in.UVLayer < 0 || in.UVLayer >= len(in.Mesh.UVLayers) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("UV layer %d not found: Tangents will not be calculated.", in.UVLayer))
		return res
	}

	var (
		t, b []math.Vec3
		err  error
	)
	switch s {
	case Host:
		if in.NormalSource != scene.NormalsComputed {
			res.Warnings = append(res.Warnings, "Default Tangents require default normals")
			return res
		}
		if in.Host == nil {
			res.Warnings = append(res.Warnings, "Default Tangents are not available for this mesh")
			return res
		}
		t, b, err = in.Host.Tangents(in.Mesh, in.UVLayer)
		if err == nil && (len(t) != len(in.Normals) || len(b) != len(in.Normals)) {
			err = ErrLengthMismatch
		}
	case Legacy:
		t, b, err = LegacySmoothed(in.Mesh, in.Normals, in.UVLayer)
	}
	if err != nil {
		if errors.Is(err, ErrLengthMismatch) {
			res.Warnings = append(res.Warnings, "UV list length mismatch: Tangents will not be calculated.")
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Tangents will not be calculated: %v", err))
		}
		return res
	}
	res.Tangents, res.Binormals = t, b
	return res
}

// RawBasis returns the unnormalized tangent direction of a triangle.
// The inverse UV area is only taken for positive areas; otherwise the area
// itself scales the basis.
func RawBasis(p0, p1, p2 math.Vec3, uv0, uv1, uv2 math.Vec2) math.Vec3 {
	uvBA := uv1.Sub(uv0)
	uvCA := uv2.Sub(uv0)
	pBA := p1.Sub(p0)
	pCA := p2.Sub(p0)

	area := uvBA.X*uvCA.Y - uvBA.Y*uvCA.X
	if area > 0 {
		area = 1 / area
	}
	return pBA.Scale(uvCA.Y).Sub(pCA.Scale(uvBA.Y)).Scale(area)
}

// Project orthogonalizes raw against n and returns the tangent and binormal.
func Project(raw, n math.Vec3) (math.Vec3, math.Vec3) {
	t := raw.Sub(n.Scale(n.Dot(raw))).Normalize()
	return t, n.Cross(t)
}

// LegacyRaw computes per-loop tangents and binormals without smoothing.
// Only the first three vertices of each face contribute to its basis.
func LegacyRaw(m *scene.Mesh, normals []math.Vec3, uvLayer int) ([]math.Vec3, []math.Vec3, error) {
	if uvLayer < 0 || uvLayer >= len(m.UVLayers) {
		return nil, nil, ErrNoUVLayer
	}
	uv := m.UVLayers[uvLayer].UV
	loops := m.LoopCount()
	if len(uv) != loops || len(normals) != loops {
		return nil, nil, ErrLengthMismatch
	}

	tangents := make([]math.Vec3, loops)
	binormals := make([]math.Vec3, loops)
	l := 0
	for _, f := range m.Faces {
		var raw math.Vec3
		if len(f) >= 3 {
			raw = RawBasis(
				m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]],
				uv[l], uv[l+1], uv[l+2],
			)
		}
		for range f {
			tangents[l], binormals[l] = Project(raw, normals[l])
			l++
		}
	}
	return tangents, binormals, nil
}

// LegacySmoothed is LegacyRaw followed by Smooth.
func LegacySmoothed(m *scene.Mesh, normals []math.Vec3, uvLayer int) ([]math.Vec3, []math.Vec3, error) {
	t, _, err := LegacyRaw(m, normals, uvLayer)
	if err != nil {
		return nil, nil, err
	}
	st, sb := Smooth(m, normals, m.UVLayers[uvLayer].UV, t)
	return st, sb, nil
}
