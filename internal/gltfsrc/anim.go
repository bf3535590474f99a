package gltfsrc

import (
	"fmt"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/fbxport/internal/scene"
)

// channel is one animated property of one node. Vector values use the
// first three components; rotations are x, y, z, w.
type channel struct {
	node   int
	path   gltf.TRSProperty
	interp gltf.Interpolation
	times  []float64
	values [][4]float64
}

// animations resamples every glTF animation into an action. Each armature
// plays the first action that moves one of its joints.
func (c *converter) animations() error {
	for ai, ga := range c.doc.Animations {
		name := ga.Name
		if name == "" {
			name = fmt.Sprintf("Action%d", ai)
		}
		chans, length, err := c.channels(ga)
		if err != nil {
			return fmt.Errorf("animation %q: %w", name, err)
		}
		if len(chans) == 0 {
			c.log.Sugar().Warnf("animation %q has no usable channels, skipped", name)
			continue
		}

		frames := 1 + int(stdmath.Round(length*c.opts.FPS))
		a := &scene.Action{Name: name, Start: 1, End: frames, Poses: make(map[string][]mgl64.Mat4)}
		animated := make(map[int]bool)
		for _, ch := range chans {
			animated[ch.node] = true
		}
		moved := c.moved(animated)

		local := make([]mgl64.Mat4, len(c.local))
		for f := a.Start; f <= a.End; f++ {
			t := float64(f-1) / c.opts.FPS
			copy(local, c.local)
			for node := range animated {
				local[node] = c.pose(node, chans, t)
			}
			for node := range moved {
				obj := c.objects[node]
				if obj != nil && obj.Type == scene.TypeMesh {
					a.Poses[obj.Name] = append(a.Poses[obj.Name], c.worldOf(node, local))
				}
			}
			for _, ar := range c.armatures {
				if ar == nil {
					continue
				}
				toArmature := mgl64.Ident4()
				if ar.root >= 0 {
					toArmature = c.worldOf(ar.root, local).Inv()
				}
				for _, j := range ar.joints {
					if moved[j] {
						a.Poses[c.names[j]] = append(a.Poses[c.names[j]], toArmature.Mul4(c.worldOf(j, local)))
					}
				}
			}
		}

		for _, ar := range c.armatures {
			if ar == nil || ar.obj.Action != "" {
				continue
			}
			for _, j := range ar.joints {
				if moved[j] {
					ar.obj.Action = name
					break
				}
			}
		}
		c.sc.Actions = append(c.sc.Actions, a)
		c.sc.FrameEnd = max(c.sc.FrameEnd, frames)
	}
	return nil
}

// moved returns the animated nodes and all their descendants.
func (c *converter) moved(animated map[int]bool) map[int]bool {
	out := make(map[int]bool)
	for i := range c.doc.Nodes {
		for p := i; p >= 0; p = c.parent[p] {
			if animated[p] {
				out[i] = true
				break
			}
		}
	}
	return out
}

func (c *converter) channels(ga *gltf.Animation) ([]*channel, float64, error) {
	var out []*channel
	length := 0.0
	for _, ch := range ga.Channels {
		if ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
			continue
		}
		node := *ch.Target.Node
		if node < 0 || node >= len(c.doc.Nodes) || ch.Sampler < 0 || ch.Sampler >= len(ga.Samplers) {
			return nil, 0, fmt.Errorf("%w: channel target out of range", ErrBadAccessor)
		}
		s := ga.Samplers[ch.Sampler]
		times, err := c.scalars(s.Input)
		if err != nil {
			return nil, 0, err
		}
		values, err := c.vectors(s.Output)
		if err != nil {
			c.log.Sugar().Warnf("node %q %v channel skipped: %v", c.names[node], ch.Target.Path, err)
			continue
		}
		if s.Interpolation == gltf.InterpolationCubicSpline {
			values = splineValues(values)
		}
		if len(times) == 0 || len(values) < len(times) {
			return nil, 0, fmt.Errorf("%w: %d keys for %d times", ErrBadAccessor, len(values), len(times))
		}
		out = append(out, &channel{node: node, path: ch.Target.Path, interp: s.Interpolation, times: times, values: values})
		length = stdmath.Max(length, times[len(times)-1])
	}
	return out, length, nil
}

// splineValues keeps the value of each in-tangent, value, out-tangent triple.
func splineValues(v [][4]float64) [][4]float64 {
	out := make([][4]float64, 0, len(v)/3)
	for k := 1; k < len(v); k += 3 {
		out = append(out, v[k])
	}
	return out
}

func (c *converter) scalars(i int) ([]float64, error) {
	acr, err := c.accessor(i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(c.doc, acr, nil)
	if err != nil {
		return nil, err
	}
	fs, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: keyframe times are %T", ErrBadAccessor, data)
	}
	out := make([]float64, len(fs))
	for k, f := range fs {
		out[k] = float64(f)
	}
	return out, nil
}

func (c *converter) vectors(i int) ([][4]float64, error) {
	acr, err := c.accessor(i)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(c.doc, acr, nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case [][3]float32:
		out := make([][4]float64, len(v))
		for k, x := range v {
			out[k] = [4]float64{float64(x[0]), float64(x[1]), float64(x[2]), 0}
		}
		return out, nil
	case [][4]float32:
		out := make([][4]float64, len(v))
		for k, x := range v {
			out[k] = [4]float64{float64(x[0]), float64(x[1]), float64(x[2]), float64(x[3])}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: keyframe values are %T", ErrBadAccessor, data)
}

// pose returns a node's local matrix at time t. Properties without a
// channel keep their rest value.
func (c *converter) pose(node int, chans []*channel, t float64) mgl64.Mat4 {
	n := c.doc.Nodes[node]
	tr, rot, sc := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	for _, ch := range chans {
		if ch.node != node {
			continue
		}
		v := ch.sample(t)
		switch ch.path {
		case gltf.TRSTranslation:
			tr = [3]float64{v[0], v[1], v[2]}
		case gltf.TRSRotation:
			rot = v
		case gltf.TRSScale:
			sc = [3]float64{v[0], v[1], v[2]}
		}
	}
	return trs(tr, rot, sc)
}

// sample interpolates the channel at time t, holding the end values
// outside the key range.
func (ch *channel) sample(t float64) [4]float64 {
	keys := ch.times
	if len(keys) == 1 || t <= keys[0] {
		return ch.values[0]
	}

	var prev, next int
	for i := range keys {
		if keys[i] > t {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next || ch.interp == gltf.InterpolationStep {
		return ch.values[prev]
	}

	k := 0.0
	if keys[next] != keys[prev] {
		k = (t - keys[prev]) / (keys[next] - keys[prev])
	}
	v0, v1 := ch.values[prev], ch.values[next]
	if ch.path == gltf.TRSRotation {
		q0 := mgl64.Quat{W: v0[3], V: mgl64.Vec3{v0[0], v0[1], v0[2]}}
		q1 := mgl64.Quat{W: v1[3], V: mgl64.Vec3{v1[0], v1[1], v1[2]}}
		q := mgl64.QuatSlerp(q0, q1, k)
		return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
	}
	var out [4]float64
	for i := range out {
		out[i] = v0[i] + k*(v1[i]-v0[i])
	}
	return out
}
