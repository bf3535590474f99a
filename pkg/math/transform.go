package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RadToDeg is the factor FBX files use to store rotations in degrees.
const RadToDeg = 57.295779513

var (
	// RotZ90 rotates 90 degrees about Z. Bone matrices are corrected by it.
	RotZ90 = mgl64.HomogRotate3DZ(math.Pi / 2)
	// RotY90 rotates 90 degrees about Y. Root bones get it on top of RotZ90.
	RotY90 = mgl64.HomogRotate3DY(math.Pi / 2)
)

// Decompose splits an affine matrix into translation, a pure rotation and scale.
// A negative determinant is folded into the scale.
func Decompose(m mgl64.Mat4) (loc Vec3, rot mgl64.Mat3, scale Vec3) {
	loc = Vec3{m[12], m[13], m[14]}

	c0 := Vec3{m[0], m[1], m[2]}
	c1 := Vec3{m[4], m[5], m[6]}
	c2 := Vec3{m[8], m[9], m[10]}
	scale = Vec3{c0.Length(), c1.Length(), c2.Length()}

	c0, c1, c2 = c0.Normalize(), c1.Normalize(), c2.Normalize()
	rot = mgl64.Mat3{
		c0.X, c0.Y, c0.Z,
		c1.X, c1.Y, c1.Z,
		c2.X, c2.Y, c2.Z,
	}
	if m.Mat3().Det() < 0 {
		rot = rot.Mul(-1)
		scale = scale.Scale(-1)
	}
	return loc, rot, scale
}

// eulerPair returns both XYZ Euler solutions of a rotation matrix.
// The rotation is interpreted as Rz * Ry * Rx.
func eulerPair(r mgl64.Mat3) (Vec3, Vec3) {
	cy := math.Hypot(r.At(0, 0), r.At(1, 0))
	if cy > 16*1.1920929e-07 {
		e1 := Vec3{
			math.Atan2(r.At(2, 1), r.At(2, 2)),
			math.Atan2(-r.At(2, 0), cy),
			math.Atan2(r.At(1, 0), r.At(0, 0)),
		}
		e2 := Vec3{
			math.Atan2(-r.At(2, 1), -r.At(2, 2)),
			math.Atan2(-r.At(2, 0), -cy),
			math.Atan2(-r.At(1, 0), -r.At(0, 0)),
		}
		return e1, e2
	}
	e := Vec3{
		math.Atan2(-r.At(1, 2), r.At(1, 1)),
		math.Atan2(-r.At(2, 0), cy),
		0,
	}
	return e, e
}

// EulerXYZ converts a rotation matrix to XYZ Euler angles in radians,
// picking the solution with the smallest total magnitude.
func EulerXYZ(r mgl64.Mat3) Vec3 {
	e1, e2 := eulerPair(r)
	if sumAbs(e1) > sumAbs(e2) {
		return e2
	}
	return e1
}

// CompatibleEulerXYZ converts a rotation matrix to XYZ Euler angles that are
// closest to prev, so consecutive frames do not jump by whole turns.
func CompatibleEulerXYZ(r mgl64.Mat3, prev Vec3) Vec3 {
	e1, e2 := eulerPair(r)
	e1 = compatibleEuler(e1, prev)
	e2 = compatibleEuler(e2, prev)
	if sumAbs(e1.Sub(prev)) > sumAbs(e2.Sub(prev)) {
		return e2
	}
	return e1
}

func compatibleEuler(e, prev Vec3) Vec3 {
	const piThresh = 5.1
	const twoPi = 2 * math.Pi

	eul := [3]float64{e.X, e.Y, e.Z}
	old := [3]float64{prev.X, prev.Y, prev.Z}
	var d [3]float64
	for i := range eul {
		d[i] = eul[i] - old[i]
		if d[i] > piThresh {
			eul[i] -= math.Floor(d[i]/twoPi+0.5) * twoPi
			d[i] = eul[i] - old[i]
		} else if d[i] < -piThresh {
			eul[i] += math.Floor(-d[i]/twoPi+0.5) * twoPi
			d[i] = eul[i] - old[i]
		}
	}

	// One axis past 180 degrees while the other two stay small.
	for i := range eul {
		j, k := (i+1)%3, (i+2)%3
		if math.Abs(d[i]) > 3.2 && math.Abs(d[j]) < 1.6 && math.Abs(d[k]) < 1.6 {
			if d[i] > 0 {
				eul[i] -= twoPi
			} else {
				eul[i] += twoPi
			}
		}
	}
	return Vec3{eul[0], eul[1], eul[2]}
}

func sumAbs(v Vec3) float64 {
	return math.Abs(v.X) + math.Abs(v.Y) + math.Abs(v.Z)
}

// Degrees converts radians to degrees per component.
func Degrees(v Vec3) Vec3 {
	return v.Scale(RadToDeg)
}

// EulerMatrix builds the rotation Rz * Ry * Rx from XYZ Euler angles in radians.
func EulerMatrix(e Vec3) mgl64.Mat3 {
	return mgl64.Rotate3DZ(e.Z).Mul3(mgl64.Rotate3DY(e.Y)).Mul3(mgl64.Rotate3DX(e.X))
}

// TransformPoint applies m to p.
func TransformPoint(m mgl64.Mat4, p Vec3) Vec3 {
	return FromMgl(mgl64.TransformCoordinate(p.Mgl(), m))
}
