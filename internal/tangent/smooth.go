package tangent

import (
	stdmath "math"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

const (
	// PositionTolerance merges vertices that share a position, such as the
	// duplicated vertices along a UV seam.
	PositionTolerance = 1e-4
	// IslandDistance is the UV distance under which two loops share an island.
	IslandDistance = 0.01
	// MaxBuckets caps the islands per position; later islands join the last.
	MaxBuckets = 4
)

type posKey [3]int64

func cell(p math.Vec3) posKey {
	return posKey{
		int64(stdmath.Floor(p.X / PositionTolerance)),
		int64(stdmath.Floor(p.Y / PositionTolerance)),
		int64(stdmath.Floor(p.Z / PositionTolerance)),
	}
}

// Buckets partitions loops into UV islands. A loop joins the first bucket
// whose first member lies within IslandDistance in UV space; otherwise it
// opens a new bucket, or joins the last one once MaxBuckets exist.
func Buckets(loops []int, uv []math.Vec2) [][]int {
	var buckets [][]int
	for _, l := range loops {
		placed := false
		for i, b := range buckets {
			if uv[b[0]].Distance(uv[l]) < IslandDistance {
				buckets[i] = append(b, l)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if len(buckets) < MaxBuckets {
			buckets = append(buckets, []int{l})
		} else {
			buckets[MaxBuckets-1] = append(buckets[MaxBuckets-1], l)
		}
	}
	return buckets
}

// Groups returns loop indices grouped by vertex position, in order of first
// appearance. A loop joins the earliest group whose first position lies
// within PositionTolerance of its own.
func Groups(m *scene.Mesh) [][]int {
	cells := make(map[posKey][]int)
	var (
		groups [][]int
		reps   []math.Vec3
	)
	l := 0
	for _, f := range m.Faces {
		for _, vi := range f {
			p := m.Positions[vi]
			gi := nearGroup(cells, reps, p)
			if gi < 0 {
				gi = len(groups)
				k := cell(p)
				cells[k] = append(cells[k], gi)
				groups = append(groups, nil)
				reps = append(reps, p)
			}
			groups[gi] = append(groups[gi], l)
			l++
		}
	}
	return groups
}

// nearGroup searches the cell of p and its 26 neighbours for the earliest
// group within PositionTolerance, or returns -1.
func nearGroup(cells map[posKey][]int, reps []math.Vec3, p math.Vec3) int {
	c := cell(p)
	best := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, gi := range cells[posKey{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if (best < 0 || gi < best) && reps[gi].Distance(p) <= PositionTolerance {
						best = gi
					}
				}
			}
		}
	}
	return best
}

// Smooth averages tangents across loops that share a position and a UV
// island. The average is not renormalized. Binormals are rebuilt from each
// loop's own normal and the averaged tangent.
func Smooth(m *scene.Mesh, normals []math.Vec3, uv []math.Vec2, tangents []math.Vec3) ([]math.Vec3, []math.Vec3) {
	outT := make([]math.Vec3, len(tangents))
	outB := make([]math.Vec3, len(tangents))
	copy(outT, tangents)
	for l := range tangents {
		outB[l] = normals[l].Cross(tangents[l])
	}

	for _, group := range Groups(m) {
		for _, bucket := range Buckets(group, uv) {
			var sum math.Vec3
			for _, l := range bucket {
				sum = sum.Add(tangents[l])
			}
			n := float64(len(bucket))
			avg := math.Vec3{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
			for _, l := range bucket {
				outT[l] = avg
				outB[l] = normals[l].Cross(avg)
			}
		}
	}
	return outT, outB
}
