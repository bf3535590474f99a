package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestVec2Sub(t *testing.T) {
	a := Vec2{1, 0}
	b := Vec2{0, 1}
	got := b.Sub(a)
	want := Vec2{-1, 1}
	if got != want {
		t.Errorf("Vec2.Sub() = %v, want %v", got, want)
	}
}

func TestVec2Distance(t *testing.T) {
	got := Vec2{0, 0}.Distance(Vec2{3, 4})
	if got != 5 {
		t.Errorf("Vec2.Distance() = %v, want 5", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want float64
	}{
		{"unit", Vec3{1, 0, 0}, 1},
		{"long", Vec3{3, 4, 12}, 1},
		{"zero", Vec3{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.in.Normalize().Length()
			if math.Abs(l-tt.want) > 1e-12 {
				t.Errorf("Vec3.Normalize().Length() = %v, want %v", l, tt.want)
			}
		})
	}
}

func TestVec3Component(t *testing.T) {
	v := Vec3{1, 2, 3}
	for i, want := range []float64{1, 2, 3} {
		if got := v.Component(i); got != want {
			t.Errorf("Vec3.Component(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestDecompose(t *testing.T) {
	rot := EulerMatrix(Vec3{0.3, -0.2, 1.1})
	m := mgl64.Translate3D(1, 2, 3).Mul4(rot.Mat4()).Mul4(mgl64.Scale3D(2, 3, 4))

	loc, r, scale := Decompose(m)
	if loc != (Vec3{1, 2, 3}) {
		t.Errorf("Decompose() loc = %v, want {1 2 3}", loc)
	}
	if scale.Distance(Vec3{2, 3, 4}) > 1e-9 {
		t.Errorf("Decompose() scale = %v, want {2 3 4}", scale)
	}
	if !r.ApproxEqualThreshold(rot, 1e-9) {
		t.Errorf("Decompose() rot = %v, want %v", r, rot)
	}
}

func TestDecomposeNegativeScale(t *testing.T) {
	m := mgl64.Scale3D(-1, 1, 1)
	_, r, scale := Decompose(m)
	if scale.X > 0 || scale.Y > 0 || scale.Z > 0 {
		t.Errorf("Decompose() scale = %v, want all negative", scale)
	}
	if r.Det() < 0 {
		t.Errorf("Decompose() rot det = %v, want positive", r.Det())
	}
}

func TestEulerXYZRoundTrip(t *testing.T) {
	tests := []Vec3{
		{0, 0, 0},
		{0.5, 0, 0},
		{0, 0.5, 0},
		{0, 0, 0.5},
		{0.1, -0.7, 2.5},
		{-1.2, 0.4, -3.0},
	}
	for _, e := range tests {
		got := EulerXYZ(EulerMatrix(e))
		if got.Distance(e) > 1e-9 {
			t.Errorf("EulerXYZ(EulerMatrix(%v)) = %v", e, got)
		}
	}
}

func TestCompatibleEulerXYZContinuity(t *testing.T) {
	// Sweep Z through +180 degrees; naive conversion wraps to -180.
	prev := Vec3{}
	for i := 0; i <= 40; i++ {
		angle := float64(i) * 0.1
		got := CompatibleEulerXYZ(EulerMatrix(Vec3{0, 0, angle}), prev)
		if math.Abs(got.Z-prev.Z) > 0.2 {
			t.Fatalf("frame %d: Z jumped from %v to %v", i, prev.Z, got.Z)
		}
		prev = got
	}
	if math.Abs(prev.Z-4.0) > 1e-9 {
		t.Errorf("final Z = %v, want 4.0", prev.Z)
	}
}

func TestDegrees(t *testing.T) {
	got := Degrees(Vec3{math.Pi, 0, 0})
	if math.Abs(got.X-180) > 1e-6 {
		t.Errorf("Degrees(pi) = %v, want 180", got.X)
	}
}

func TestTransformPoint(t *testing.T) {
	m := mgl64.Translate3D(1, 0, 0).Mul4(RotZ90)
	got := TransformPoint(m, Vec3{1, 0, 0})
	if got.Distance(Vec3{1, 1, 0}) > 1e-12 {
		t.Errorf("TransformPoint() = %v, want {1 1 0}", got)
	}
}
