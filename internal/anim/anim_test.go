package anim

import (
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/scene/scenetest"
)

func TestFBXTime(t *testing.T) {
	tests := []struct {
		frame int
		fps   float64
		want  int64
	}{
		{1, 24, 0},
		{25, 24, KTimeSecond},
		{2, 25, KTimeSecond / 25},
		{0, 30, -1539538600 + 1},
	}
	for _, tt := range tests {
		if got := FBXTime(tt.frame, tt.fps); got != tt.want {
			t.Errorf("FBXTime(%d, %v) = %d, want %d", tt.frame, tt.fps, got, tt.want)
		}
	}
}

func keys(values ...float64) []Key {
	out := make([]Key, len(values))
	for i, v := range values {
		out[i] = Key{Frame: i + 1, Value: v}
	}
	return out
}

func TestDecimateConstant(t *testing.T) {
	for _, n := range []int{2, 3, 10, 250} {
		in := make([]float64, n)
		for i := range in {
			in[i] = 0.75
		}
		got := Decimate(keys(in...), DefaultPrecision)
		if len(got) != 1 {
			t.Fatalf("Decimate(constant x%d) = %d keys, want 1", n, len(got))
		}
		if got[0].Frame != 1 || got[0].Value != 0.75 {
			t.Errorf("Decimate(constant x%d) = %v, want {1 0.75}", n, got[0])
		}
	}
}

func TestDecimateRamp(t *testing.T) {
	for _, n := range []int{3, 10, 100} {
		in := make([]float64, n)
		for i := range in {
			in[i] = 0.5 * float64(i)
		}
		got := Decimate(keys(in...), DefaultPrecision)
		if len(got) != 2 {
			t.Fatalf("Decimate(ramp x%d) = %d keys, want 2", n, len(got))
		}
		if got[0].Frame != 1 || got[1].Frame != n {
			t.Errorf("Decimate(ramp x%d) frames = %d, %d, want 1, %d", n, got[0].Frame, got[1].Frame, n)
		}
	}
}

func TestDecimateKeepsCorners(t *testing.T) {
	// Up then flat: the corner at frame 4 must stay.
	got := Decimate(keys(0, 1, 2, 3, 3, 3, 3), DefaultPrecision)
	want := []Key{{1, 0}, {4, 3}, {7, 3}}
	if len(got) != len(want) {
		t.Fatalf("Decimate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Decimate()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecimateDoesNotModifyInput(t *testing.T) {
	in := keys(1, 1, 1, 1)
	Decimate(in, DefaultPrecision)
	if len(in) != 4 || in[3].Frame != 4 {
		t.Errorf("input modified: %v", in)
	}
}

func TestDecimatePrecision(t *testing.T) {
	in := keys(0, 0.001, 0)
	if got := Decimate(in, 6); len(got) != 3 {
		t.Errorf("Decimate(precision 6) = %d keys, want 3", len(got))
	}
	if got := Decimate(in, 2); len(got) != 1 {
		t.Errorf("Decimate(precision 2) = %d keys, want 1", len(got))
	}
}

func buildGraph(t *testing.T, sc *scene.Scene) *scene.Graph {
	t.Helper()
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestSampleDefaultTakeStatic(t *testing.T) {
	cube := scenetest.MeshObject("Cube", scenetest.CubeMesh())
	cube.World = mgl64.Translate3D(1, 2, 3)
	sc := &scene.Scene{Objects: []*scene.Object{cube}, FPS: 24, FrameStart: 1, FrameEnd: 10}
	g := buildGraph(t, sc)

	res := Sample(sc, g, Options{Optimize: true, Precision: DefaultPrecision}, scene.NewNamer())
	if len(res.Takes) != 1 || res.Takes[0].Name != DefaultTakeName {
		t.Fatalf("Takes = %v, want one default take", res.Takes)
	}
	if res.Current != DefaultTakeName {
		t.Errorf("Current = %q, want %q", res.Current, DefaultTakeName)
	}
	tr := res.Takes[0].Tracks[0]
	if tr.Model != "Cube" {
		t.Errorf("Model = %q, want Cube", tr.Model)
	}
	for c := 0; c < 3; c++ {
		for axis := 0; axis < 3; axis++ {
			if n := len(tr.Curves[c][axis]); n != 1 {
				t.Errorf("curve %s%d has %d keys, want 1", ChannelNames[c], axis, n)
			}
		}
	}
	if got := tr.Default(Translation, 1); got != 2 {
		t.Errorf("Default(T, Y) = %v, want 2", got)
	}
	if got := tr.Default(Scaling, 0); stdmath.Abs(got-1) > 1e-12 {
		t.Errorf("Default(S, X) = %v, want 1", got)
	}
}

func TestSampleAction(t *testing.T) {
	rig := scenetest.Rig("Armature")
	rig.Action = "Wave"
	wave := &scene.Action{Name: "Wave", Start: 1, End: 5, Poses: map[string][]mgl64.Mat4{}}
	for f := 1; f <= 5; f++ {
		wave.Poses["Spine"] = append(wave.Poses["Spine"], mgl64.Translate3D(0, 0, 1).Mul4(mgl64.HomogRotate3DX(0.1*float64(f))))
	}
	idle := &scene.Action{Name: "Idle", Start: 1, End: 2, Poses: map[string][]mgl64.Mat4{"Nobody": nil}}

	sc := &scene.Scene{Objects: []*scene.Object{rig}, Actions: []*scene.Action{idle, wave}, FPS: 24, FrameStart: 1, FrameEnd: 3}
	g := buildGraph(t, sc)

	tests := []struct {
		name    string
		opts    Options
		takes   []string
		current string
	}{
		{"current action", Options{}, []string{"Wave"}, "Wave"},
		{"all actions", Options{AllActions: true}, []string{"Wave"}, "Wave"},
		{"default take", Options{DefaultTake: true}, []string{DefaultTakeName}, DefaultTakeName},
		{"default plus all", Options{DefaultTake: true, AllActions: true}, []string{DefaultTakeName, "Wave"}, DefaultTakeName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Sample(sc, g, tt.opts, scene.NewNamer())
			if len(res.Takes) != len(tt.takes) {
				t.Fatalf("len(Takes) = %d, want %d", len(res.Takes), len(tt.takes))
			}
			for i, name := range tt.takes {
				if res.Takes[i].Name != name {
					t.Errorf("Takes[%d].Name = %q, want %q", i, res.Takes[i].Name, name)
				}
			}
			if res.Current != tt.current {
				t.Errorf("Current = %q, want %q", res.Current, tt.current)
			}
		})
	}
}

func TestSampleBoneRotationInDegrees(t *testing.T) {
	rig := scenetest.Rig("Armature")
	rig.Action = "Turn"
	turn := &scene.Action{Name: "Turn", Start: 1, End: 2, Poses: map[string][]mgl64.Mat4{
		"Spine": {
			mgl64.Translate3D(0, 0, 1),
			mgl64.Translate3D(0, 0, 1),
		},
	}}
	sc := &scene.Scene{Objects: []*scene.Object{rig}, Actions: []*scene.Action{turn}, FPS: 24}
	g := buildGraph(t, sc)

	res := Sample(sc, g, Options{}, scene.NewNamer())
	take := res.Takes[0]
	if take.Start != 1 || take.End != 2 {
		t.Errorf("take range = %d..%d, want 1..2", take.Start, take.End)
	}
	// Spine at rest relative to Root: identity apart from the 1 unit offset.
	spine := take.Tracks[1]
	if !spine.Bone || spine.Model != "Spine" {
		t.Fatalf("Tracks[1] = %s, want bone Spine", spine.Model)
	}
	for axis := 0; axis < 3; axis++ {
		if got := spine.Default(Rotation, axis); stdmath.Abs(got) > 1e-9 {
			t.Errorf("Spine rotation[%d] = %v, want 0", axis, got)
		}
	}
	if n := len(spine.Curves[Translation][0]); n != 2 {
		t.Errorf("unoptimized curve has %d keys, want 2", n)
	}

	// Root gets the Z then Y quarter turns: X rotation of -90 degrees.
	root := take.Tracks[0]
	if got := root.Default(Rotation, 0); stdmath.Abs(got+90) > 1e-6 {
		t.Errorf("Root rotation X = %v, want -90", got)
	}
}

func TestSampleSkipsSkinnedMeshes(t *testing.T) {
	rig := scenetest.Rig("Armature")
	body := scenetest.MeshObject("Body", scenetest.CubeMesh())
	body.Deformer = "Armature"
	sc := &scene.Scene{Objects: []*scene.Object{body, rig}, FPS: 24, FrameStart: 1, FrameEnd: 1}
	g := buildGraph(t, sc)

	res := Sample(sc, g, Options{}, scene.NewNamer())
	for _, tr := range res.Takes[0].Tracks {
		if tr.Model == "Body" {
			t.Error("skinned mesh was sampled")
		}
	}
	if len(res.Takes[0].Tracks) != 4 {
		t.Errorf("len(Tracks) = %d, want 4 bones", len(res.Takes[0].Tracks))
	}
}
