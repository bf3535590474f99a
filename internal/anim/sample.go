package anim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// DefaultTakeName names the take sampled without an action.
const DefaultTakeName = "Default Take"

// Transform channels, in the order they are written.
const (
	Translation = iota
	Rotation
	Scaling
)

// ChannelNames are the FBX channel letters for Translation, Rotation and Scaling.
var ChannelNames = [3]string{"T", "R", "S"}

// Track holds the nine sampled sub-channels of one model, indexed by
// channel then axis. Rotation values are in degrees.
type Track struct {
	Model  string
	Bone   bool
	Curves [3][3][]Key
}

// Default returns the first sample of a sub-channel.
func (t *Track) Default(channel, axis int) float64 {
	keys := t.Curves[channel][axis]
	if len(keys) == 0 {
		return 0
	}
	return keys[0].Value
}

// Take is one sampled action.
type Take struct {
	Name   string
	Action *scene.Action // nil for the default take
	Start  int
	End    int
	Tracks []*Track
}

// Options controls sampling.
type Options struct {
	FPS          float64
	Optimize     bool
	Precision    int
	AllActions   bool
	DefaultTake  bool
	GlobalMatrix mgl64.Mat4
}

// Result is the set of takes to write plus the name of the current take.
type Result struct {
	Takes    []*Take
	Current  string
	Warnings []string
}

// Sample picks the actions to export and samples every exported bone and
// unskinned mesh over each of them. Take names come from names.
func Sample(sc *scene.Scene, g *scene.Graph, opts Options, names *scene.Namer) Result {
	var res Result
	if len(g.Bones) == 0 && len(g.Meshes) == 0 {
		return res
	}
	if opts.FPS <= 0 {
		opts.FPS = sc.FPS
	}
	if opts.FPS <= 0 {
		opts.FPS = 25
	}
	global := opts.GlobalMatrix
	if global == (mgl64.Mat4{}) {
		global = mgl64.Ident4()
	}

	current := currentAction(sc, g)

	var candidates []*scene.Action
	switch {
	case opts.AllActions:
		candidates = sc.Actions
	case !opts.DefaultTake && current != nil:
		candidates = []*scene.Action{current}
	}

	var actions []*scene.Action
	for _, a := range candidates {
		if touchesExport(a, g) {
			actions = append(actions, a)
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("action %q has no exported object using it, skipping", a.Name))
		}
	}
	if current == nil && len(actions) > 0 {
		current = actions[len(actions)-1]
	}

	s := &sampler{g: g, global: global, opts: opts}
	if opts.DefaultTake || len(actions) == 0 {
		start, end := sc.FrameStart, sc.FrameEnd
		if end < start {
			start, end = end, start
		}
		// The default take plays whatever action is current.
		res.Takes = append(res.Takes, s.take(DefaultTakeName, current, start, end))
	}
	takeNames := make(map[*scene.Action]string)
	for _, a := range actions {
		name := names.Name(a.Name)
		takeNames[a] = name
		res.Takes = append(res.Takes, s.take(name, a, a.Start, a.End))
	}

	res.Current = DefaultTakeName
	if !opts.DefaultTake && current != nil {
		if name, ok := takeNames[current]; ok {
			res.Current = name
		}
	}
	return res
}

// currentAction returns the action of the first exported armature that has one.
func currentAction(sc *scene.Scene, g *scene.Graph) *scene.Action {
	for _, ar := range g.Armatures {
		if ar.Object.Action == "" {
			continue
		}
		for _, a := range sc.Actions {
			if a.Name == ar.Object.Action {
				return a
			}
		}
	}
	return nil
}

func touchesExport(a *scene.Action, g *scene.Graph) bool {
	for _, b := range g.Bones {
		if _, ok := a.Poses[b.SourceName]; ok {
			return true
		}
	}
	for _, m := range g.Meshes {
		if _, ok := a.Poses[m.Object.Name]; ok {
			return true
		}
	}
	return false
}

type sampler struct {
	g      *scene.Graph
	global mgl64.Mat4
	opts   Options
}

func (s *sampler) take(name string, a *scene.Action, start, end int) *Take {
	t := &Take{Name: name, Action: a, Start: start, End: end}
	for _, b := range s.g.Bones {
		t.Tracks = append(t.Tracks, s.track(b.Name, true, start, end, func(f int) mgl64.Mat4 {
			return s.boneMatrix(a, b, f)
		}))
	}
	for _, m := range s.g.Meshes {
		if m.Skinned() {
			continue
		}
		t.Tracks = append(t.Tracks, s.track(m.Name, false, start, end, func(f int) mgl64.Mat4 {
			return s.meshMatrix(a, m, f)
		}))
	}
	return t
}

func (s *sampler) track(model string, bone bool, start, end int, at func(int) mgl64.Mat4) *Track {
	tr := &Track{Model: model, Bone: bone}
	var prev math.Vec3
	for f := start; f <= end; f++ {
		loc, rot, scale := math.Decompose(at(f))
		var eul math.Vec3
		if f == start {
			eul = math.EulerXYZ(rot)
		} else {
			eul = math.CompatibleEulerXYZ(rot, prev)
		}
		prev = eul
		deg := math.Degrees(eul)
		for axis := 0; axis < 3; axis++ {
			tr.Curves[Translation][axis] = append(tr.Curves[Translation][axis], Key{f, loc.Component(axis)})
			tr.Curves[Rotation][axis] = append(tr.Curves[Rotation][axis], Key{f, deg.Component(axis)})
			tr.Curves[Scaling][axis] = append(tr.Curves[Scaling][axis], Key{f, scale.Component(axis)})
		}
	}
	if s.opts.Optimize {
		for c := range tr.Curves {
			for axis := range tr.Curves[c] {
				tr.Curves[c][axis] = Decimate(tr.Curves[c][axis], s.opts.Precision)
			}
		}
	}
	return tr
}

func bonePose(a *scene.Action, b *scene.BoneRecord, f int) mgl64.Mat4 {
	if a != nil {
		if m, ok := a.Pose(b.SourceName, f); ok {
			return m
		}
	}
	return b.Bone.Rest
}

// boneMatrix returns a bone's pose relative to its parent, with the bone
// axis fix applied.
func (s *sampler) boneMatrix(a *scene.Action, b *scene.BoneRecord, f int) mgl64.Mat4 {
	pose := bonePose(a, b, f)
	if b.Parent == nil {
		return pose.Mul4(math.RotZ90).Mul4(math.RotY90)
	}
	parent := bonePose(a, b.Parent, f).Mul4(math.RotZ90)
	return parent.Inv().Mul4(pose.Mul4(math.RotZ90))
}

func objectWorld(a *scene.Action, obj *scene.Object, f int) mgl64.Mat4 {
	if a != nil {
		if m, ok := a.Pose(obj.Name, f); ok {
			return m
		}
	}
	return obj.World
}

// meshMatrix returns a mesh's world matrix relative to its exported parent.
func (s *sampler) meshMatrix(a *scene.Action, m *scene.MeshRecord, f int) mgl64.Mat4 {
	world := s.global.Mul4(objectWorld(a, m.Object, f))
	if m.Parent == nil {
		return world
	}
	parent := s.global.Mul4(objectWorld(a, m.Parent.Object, f))
	return parent.Inv().Mul4(world)
}
