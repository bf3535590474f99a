// Package anim samples transform channels per frame and removes redundant
// keys.
package anim

import "math"

// KTimeSecond is one second in FBX time units.
const KTimeSecond = 46186158000

// DefaultPrecision is the decimation precision in decimal places.
const DefaultPrecision = 6

// FBXTime converts a frame number to FBX time. Frame 1 maps to zero.
func FBXTime(frame int, fps float64) int64 {
	return int64(0.5 + (float64(frame-1)/fps)*KTimeSecond)
}

// Key is one sample of a scalar channel.
type Key struct {
	Frame int
	Value float64
}

// Epsilon returns the decimation tolerance for a precision, 0.1^precision.
func Epsilon(precision int) float64 {
	return math.Pow(0.1, float64(precision))
}

// Decimate removes keys that a linear curve through the remaining keys
// reproduces within Epsilon(precision). It makes a single backward sweep over
// the interior keys; the first and last keys are always kept. A channel that
// ends up as two equal keys collapses to its first key.
//
// The input slice is not modified.
func Decimate(keys []Key, precision int) []Key {
	eps := Epsilon(precision)
	out := append([]Key(nil), keys...)

	j := len(out) - 2
	for j > 0 && len(out) > 2 {
		prev, cur, next := out[j-1], out[j], out[j+1]
		switch {
		case math.Abs(cur.Value-prev.Value) < eps && math.Abs(cur.Value-next.Value) < eps:
			out = append(out[:j], out[j+1:]...)
		default:
			span := float64(next.Frame - prev.Frame)
			fac1 := float64(next.Frame-cur.Frame) / span
			fac2 := 1.0 - fac1
			if math.Abs(prev.Value*fac1+next.Value*fac2-cur.Value) < eps {
				out = append(out[:j], out[j+1:]...)
			} else {
				j--
			}
		}
		if j > len(out)-2 {
			j = len(out) - 2
		}
	}

	if len(out) == 2 && out[0].Value == out[1].Value {
		out = out[:1]
	}
	return out
}
