package normals

import (
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// FaceNormal returns the unit Newell normal of face f.
func FaceNormal(m *scene.Mesh, f []int) math.Vec3 {
	var n math.Vec3
	for i, vi := range f {
		cur := m.Positions[vi]
		next := m.Positions[f[(i+1)%len(f)]]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n.Normalize()
}

// Compute derives per-loop normals from topology. Flat faces use their face
// normal; smooth faces use the normalized sum of the normals of every smooth
// face sharing the vertex.
func Compute(m *scene.Mesh) []math.Vec3 {
	faceN := make([]math.Vec3, len(m.Faces))
	vertN := make([]math.Vec3, len(m.Positions))
	for fi, f := range m.Faces {
		faceN[fi] = FaceNormal(m, f)
		if isSmooth(m, fi) {
			for _, vi := range f {
				vertN[vi] = vertN[vi].Add(faceN[fi])
			}
		}
	}

	out := make([]math.Vec3, 0, m.LoopCount())
	for fi, f := range m.Faces {
		smooth := isSmooth(m, fi)
		for _, vi := range f {
			if smooth && vertN[vi].Length() > 0 {
				out = append(out, vertN[vi].Normalize())
			} else {
				out = append(out, faceN[fi])
			}
		}
	}
	return out
}

func isSmooth(m *scene.Mesh, fi int) bool {
	return fi < len(m.Smooth) && m.Smooth[fi]
}
