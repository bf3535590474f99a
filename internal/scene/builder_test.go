package scene_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/scene/scenetest"
)

func TestBuildNilScene(t *testing.T) {
	if _, err := scene.Build(nil, scene.DefaultBuildOptions()); !errors.Is(err, scene.ErrNoScene) {
		t.Errorf("Build(nil) error = %v, want ErrNoScene", err)
	}
}

func TestBuildNothingToSave(t *testing.T) {
	sc := &scene.Scene{Objects: []*scene.Object{{Name: "Empty", Type: scene.TypeEmpty}}}
	if _, err := scene.Build(sc, scene.DefaultBuildOptions()); !errors.Is(err, scene.ErrNothingToSave) {
		t.Errorf("Build() error = %v, want ErrNothingToSave", err)
	}
}

func TestBuildBadTopology(t *testing.T) {
	bad := scenetest.CubeMesh()
	bad.Faces[5] = []int{0, 1, 99}
	sc := &scene.Scene{Objects: []*scene.Object{
		scenetest.MeshObject("Good", scenetest.CubeMesh()),
		scenetest.MeshObject("Bad", bad),
	}}
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Meshes) != 1 || g.Meshes[0].Name != "Good" {
		t.Errorf("meshes = %d, want only Good", len(g.Meshes))
	}
	want := "Object 'Bad' face 5 references missing vertex 99: mesh skipped"
	if len(g.Warnings) != 1 || g.Warnings[0] != want {
		t.Errorf("warnings = %q, want [%q]", g.Warnings, want)
	}

	// A scene whose only mesh is broken has nothing left to save.
	sc = &scene.Scene{Objects: []*scene.Object{scenetest.MeshObject("Bad", bad)}}
	if _, err := scene.Build(sc, scene.DefaultBuildOptions()); !errors.Is(err, scene.ErrNothingToSave) {
		t.Errorf("Build() error = %v, want ErrNothingToSave", err)
	}
}

func TestBuildParentInsideExportSet(t *testing.T) {
	parent := scenetest.MeshObject("Parent", scenetest.CubeMesh())
	child := scenetest.MeshObject("Child", scenetest.CubeMesh())
	child.Parent = "Parent"
	orphan := scenetest.MeshObject("Orphan", scenetest.CubeMesh())
	orphan.Parent = "Hidden"
	hidden := scenetest.MeshObject("Hidden", scenetest.CubeMesh())

	sc := &scene.Scene{Objects: []*scene.Object{parent, child, orphan, hidden}}
	opts := scene.DefaultBuildOptions()
	opts.Selection = []string{"Parent", "Child", "Orphan"}

	g, err := scene.Build(sc, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Meshes) != 3 {
		t.Fatalf("len(Meshes) = %d, want 3", len(g.Meshes))
	}
	if g.Meshes[1].Parent != g.Meshes[0] {
		t.Errorf("Child.Parent = %v, want Parent", g.Meshes[1].Parent)
	}
	if g.Meshes[2].Parent != nil {
		t.Errorf("Orphan.Parent = %v, want nil", g.Meshes[2].Parent.Name)
	}
}

func TestBuildCollisionFlag(t *testing.T) {
	sc := &scene.Scene{Objects: []*scene.Object{
		scenetest.MeshObject("UCX_Wall", scenetest.CubeMesh()),
		scenetest.MeshObject("Wall", scenetest.CubeMesh()),
	}}
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !g.Meshes[0].Collision || g.Meshes[1].Collision {
		t.Errorf("Collision = %v, %v, want true, false", g.Meshes[0].Collision, g.Meshes[1].Collision)
	}
}

func TestBuildUsesEvaluatedMesh(t *testing.T) {
	obj := scenetest.MeshObject("Cube", scenetest.CubeMesh())
	obj.Evaluated = scenetest.Triangle()
	sc := &scene.Scene{Objects: []*scene.Object{obj}}

	opts := scene.DefaultBuildOptions()
	g, _ := scene.Build(sc, opts)
	if g.Meshes[0].Data != obj.Mesh {
		t.Error("Build() without modifiers used the evaluated mesh")
	}

	opts.UseModifiers = true
	g, _ = scene.Build(sc, opts)
	if g.Meshes[0].Data != obj.Evaluated {
		t.Error("Build() with modifiers ignored the evaluated mesh")
	}
}

func TestBuildDeformBonesOnly(t *testing.T) {
	tests := []struct {
		name       string
		deformOnly bool
		want       []string
	}{
		{"all bones", false, []string{"Root", "Spine", "Head", "Tip"}},
		{"deform only", true, []string{"Root", "Spine", "Head"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &scene.Scene{Objects: []*scene.Object{scenetest.Rig("Armature")}}
			opts := scene.DefaultBuildOptions()
			opts.DeformBonesOnly = tt.deformOnly

			g, err := scene.Build(sc, opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			var got []string
			for _, b := range g.Bones {
				got = append(got, b.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("bones = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildLivenessKeepsAncestors(t *testing.T) {
	rig := scenetest.Rig("Armature")
	for _, b := range rig.Armature.Bones {
		b.Deform = b.Name == "Head"
	}
	sc := &scene.Scene{Objects: []*scene.Object{rig}}
	opts := scene.DefaultBuildOptions()
	opts.DeformBonesOnly = true

	g, err := scene.Build(sc, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Bones) != 3 {
		t.Fatalf("len(Bones) = %d, want 3", len(g.Bones))
	}
	if g.Bones[2].Parent != g.Bones[1] || g.Bones[1].Parent != g.Bones[0] {
		t.Error("bone parent chain not preserved")
	}
}

func skinnedScene() (*scene.Scene, *scene.Object) {
	rig := scenetest.Rig("Armature")
	m := scenetest.CubeMesh()
	m.VertexGroups = []string{"Root", "Spine"}
	m.Weights = make([][]scene.VertexWeight, len(m.Positions))
	for v := range m.Weights {
		if v < 4 {
			m.Weights[v] = []scene.VertexWeight{{Group: 0, Weight: 2}}
		} else {
			m.Weights[v] = []scene.VertexWeight{{Group: 0, Weight: 1}, {Group: 1, Weight: 3}}
		}
	}
	body := scenetest.MeshObject("Body", m)
	body.Deformer = "Armature"
	body.Parent = "Armature"
	return &scene.Scene{Objects: []*scene.Object{body, rig}}, body
}

func TestBuildClusters(t *testing.T) {
	sc, _ := skinnedScene()
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	body := g.Meshes[0]
	if !body.Skinned() {
		t.Fatal("Body is not skinned")
	}
	if body.Parent != nil {
		t.Error("skinned mesh has a parent link")
	}
	// Root, Spine and Head deform; Tip does not.
	if len(body.Clusters) != 3 {
		t.Fatalf("len(Clusters) = %d, want 3", len(body.Clusters))
	}

	root := body.Clusters[0]
	if root.Name != "Body Root" {
		t.Errorf("cluster name = %q, want %q", root.Name, "Body Root")
	}
	if len(root.Indexes) != 8 {
		t.Fatalf("Root cluster has %d indexes, want 8", len(root.Indexes))
	}
	if root.Weights[0] != 1 {
		t.Errorf("Root weight[0] = %v, want 1", root.Weights[0])
	}
	if math.Abs(root.Weights[4]-0.25) > 1e-12 {
		t.Errorf("Root weight[4] = %v, want 0.25", root.Weights[4])
	}

	spine := body.Clusters[1]
	if len(spine.Indexes) != 4 || spine.Indexes[0] != 4 {
		t.Errorf("Spine indexes = %v, want [4 5 6 7]", spine.Indexes)
	}
	if head := body.Clusters[2]; len(head.Indexes) != 0 {
		t.Errorf("Head indexes = %v, want none", head.Indexes)
	}
}

func TestBuildBoneParentedMesh(t *testing.T) {
	rig := scenetest.Rig("Armature")
	hat := scenetest.MeshObject("Hat", scenetest.CubeMesh())
	hat.Parent = "Armature"
	hat.ParentBone = "Head"
	sc := &scene.Scene{Objects: []*scene.Object{hat, rig}}

	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	m := g.Meshes[0]
	if m.ParentBone == nil || m.ParentBone.SourceName != "Head" {
		t.Fatalf("ParentBone = %v, want Head", m.ParentBone)
	}
	for _, c := range m.Clusters {
		want := 0
		if c.Bone.SourceName == "Head" {
			want = 8
		}
		if len(c.Indexes) != want {
			t.Errorf("cluster %s has %d indexes, want %d", c.Name, len(c.Indexes), want)
		}
	}
}

func TestBuildScaleWarning(t *testing.T) {
	sc, body := skinnedScene()
	body.World = mgl64.Scale3D(2, 2, 2)
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Warnings) != 1 || !strings.Contains(g.Warnings[0], "scale") {
		t.Errorf("Warnings = %v, want one scale warning", g.Warnings)
	}
}

func TestBuildMaterialDedup(t *testing.T) {
	red := scenetest.Material("Red")
	blue := scenetest.Material("Blue")
	brick := &scene.Texture{Name: "brick.png", Path: "brick.png"}

	a := scenetest.CubeMesh()
	a.Materials = []*scene.Material{red, blue}
	a.FaceMaterial = []int{0, 0, 1, 1, 0, 0}
	a.FaceTexture = []*scene.Texture{nil, brick, nil, nil, nil, brick}

	b := scenetest.CubeMesh()
	b.Materials = []*scene.Material{red}
	b.FaceTexture = []*scene.Texture{brick, brick, brick, brick, brick, brick}

	sc := &scene.Scene{Objects: []*scene.Object{
		scenetest.MeshObject("A", a),
		scenetest.MeshObject("B", b),
	}}
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var names []string
	for _, m := range g.Materials {
		names = append(names, m.Name)
	}
	if got, want := strings.Join(names, ","), "Blue,Red,Red__brick_png"; got != want {
		t.Errorf("materials = %s, want %s", got, want)
	}
	if len(g.Textures) != 1 {
		t.Errorf("len(Textures) = %d, want 1", len(g.Textures))
	}

	ma := g.Meshes[0]
	if len(ma.Materials) != 3 {
		t.Fatalf("A has %d material pairs, want 3", len(ma.Materials))
	}
	// Local order: Blue, Red, Red #brick.png
	wantFaces := []int{1, 2, 0, 0, 1, 2}
	for i, want := range wantFaces {
		if ma.FaceMaterial[i] != want {
			t.Errorf("A.FaceMaterial[%d] = %d, want %d", i, ma.FaceMaterial[i], want)
		}
	}
	mb := g.Meshes[1]
	if len(mb.Materials) != 1 || mb.Materials[0] != ma.Materials[2] {
		t.Error("B does not share the Red #brick.png pair with A")
	}
}

func TestBuildShapes(t *testing.T) {
	m := scenetest.CubeMesh()
	basis := append(m.Positions[:0:0], m.Positions...)
	raised := append(m.Positions[:0:0], m.Positions...)
	raised[6].Z += 0.5
	m.ShapeKeys = []scene.ShapeKey{
		{Name: "Basis", Positions: basis},
		{Name: "Raise", Positions: raised},
		{Name: "Broken", Positions: basis[:3]},
	}
	sc := &scene.Scene{Objects: []*scene.Object{scenetest.MeshObject("Cube", m)}}

	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Meshes[0].Shapes) != 0 {
		t.Errorf("Shapes = %d, want none for mismatched key", len(g.Meshes[0].Shapes))
	}

	m.ShapeKeys = m.ShapeKeys[:2]
	g, _ = scene.Build(sc, scene.DefaultBuildOptions())
	shapes := g.Meshes[0].Shapes
	if len(shapes) != 1 {
		t.Fatalf("len(Shapes) = %d, want 1", len(shapes))
	}
	if len(shapes[0].Indexes) != 1 || shapes[0].Indexes[0] != 6 {
		t.Errorf("Raise indexes = %v, want [6]", shapes[0].Indexes)
	}
	if shapes[0].Deltas[0].Z != 0.5 {
		t.Errorf("Raise delta = %v, want Z 0.5", shapes[0].Deltas[0])
	}
}

func TestBuildGroups(t *testing.T) {
	sc := &scene.Scene{
		Objects: []*scene.Object{
			scenetest.MeshObject("A", scenetest.CubeMesh()),
			scenetest.MeshObject("B", scenetest.CubeMesh()),
		},
		Groups: []*scene.Group{
			{Name: "Zeta", Objects: []string{"A", "B"}},
			{Name: "Ghost", Objects: []string{"Missing"}},
			{Name: "Alpha", Objects: []string{"B"}},
		},
	}
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(g.Groups))
	}
	if g.Groups[0].Name != "Alpha" || g.Groups[1].Name != "Zeta" {
		t.Errorf("groups = %s, %s, want Alpha, Zeta", g.Groups[0].Name, g.Groups[1].Name)
	}
	if len(g.Meshes[1].Groups) != 2 {
		t.Errorf("B groups = %v, want 2 entries", g.Meshes[1].Groups)
	}
}

func TestBuildNamesAreUnique(t *testing.T) {
	sc := &scene.Scene{Objects: []*scene.Object{
		scenetest.MeshObject("Scene", scenetest.CubeMesh()),
		scenetest.MeshObject("Cube.001", scenetest.CubeMesh()),
		scenetest.MeshObject("Cube_001", scenetest.CubeMesh()),
	}}
	g, err := scene.Build(sc, scene.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []string{"Scene_0", "Cube_001", "Cube_002"}
	for i, m := range g.Meshes {
		if m.Name != want[i] {
			t.Errorf("Meshes[%d].Name = %q, want %q", i, m.Name, want[i])
		}
	}
}
