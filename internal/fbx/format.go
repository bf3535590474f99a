package fbx

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/pkg/math"
)

// Items per line for the flat arrays. Continuation lines start with a comma,
// which line-scan readers drop together with the first token.
const (
	perLineVec3    = 16
	perLineNormals = 12
	perLineUV      = 24
	perLineIndex   = 55
	perLinePolygon = 104
	perLineFlags   = 108
	perLineColor   = 7
	perLineWeights = 38
	perLineShape   = 14
)

func appendFloat(b []byte, v float64, prec int) []byte {
	return strconv.AppendFloat(b, v, 'f', prec, 64)
}

func appendVec3(b []byte, v math.Vec3, prec int) []byte {
	b = appendFloat(b, v.X, prec)
	b = append(b, ',')
	b = appendFloat(b, v.Y, prec)
	b = append(b, ',')
	return appendFloat(b, v.Z, prec)
}

func appendVec2(b []byte, v math.Vec2, prec int) []byte {
	b = appendFloat(b, v.X, prec)
	b = append(b, ',')
	return appendFloat(b, v.Y, prec)
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, '1')
	}
	return append(b, '0')
}

// matrixString formats a matrix in storage order, translation last.
func matrixString(m mgl64.Mat4) string {
	b := make([]byte, 0, 16*20)
	for i, v := range m {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendFloat(b, v, 15)
	}
	return string(b)
}

// array writes the "a: " line of an array block: n items, perLine to a line.
func (w *writer) array(indent string, n, perLine int, item func(b []byte, i int) []byte) {
	b := w.buf[:0]
	b = append(b, '\n')
	b = append(b, indent...)
	b = append(b, "a: "...)
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%perLine == 0 {
				b = append(b, '\n')
				b = append(b, indent...)
			}
			b = append(b, ',')
		}
		b = item(b, i)
		if len(b) > 32*1024 {
			w.bytes(b)
			b = b[:0]
		}
	}
	w.bytes(b)
	w.buf = b[:0]
}

// arrayBlock writes `name: *count {`, the values and the closing brace, all
// at the given depth.
func (w *writer) arrayBlock(indent, name string, count, n, perLine int, item func(b []byte, i int) []byte) {
	w.printf("\n%s%s: *%d {", indent, name, count)
	w.array(indent+"\t", n, perLine, item)
	w.printf("\n%s}", indent)
}

func (w *writer) vec3Block(indent, name string, vs []math.Vec3, perLine int) {
	w.arrayBlock(indent, name, 3*len(vs), len(vs), perLine, func(b []byte, i int) []byte {
		return appendVec3(b, vs[i], 6)
	})
}

func (w *writer) intBlock(indent, name string, vs []int, perLine int) {
	w.arrayBlock(indent, name, len(vs), len(vs), perLine, func(b []byte, i int) []byte {
		return strconv.AppendInt(b, int64(vs[i]), 10)
	})
}

func (w *writer) matrixBlock(indent, name string, m mgl64.Mat4) {
	w.printf("\n%s%s: *16 {\n%s\ta: %s\n%s}", indent, name, indent, matrixString(m), indent)
}

// lcl splits a local matrix into the Lcl Translation, Rotation (degrees) and
// Scaling values of a model.
func lcl(m mgl64.Mat4) (loc, rot, scale math.Vec3) {
	loc, r, scale := math.Decompose(m)
	return loc, math.Degrees(math.EulerXYZ(r)), scale
}
