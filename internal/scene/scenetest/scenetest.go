// Package scenetest builds small scenes for tests.
package scenetest

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// CubeMesh returns a unit cube with 8 vertices, 6 quads and a UV layer
// mapping every face onto the unit square.
func CubeMesh() *scene.Mesh {
	m := &scene.Mesh{
		Positions: []math.Vec3{
			{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
			{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
		},
		Faces: [][]int{
			{0, 3, 2, 1}, // bottom
			{4, 5, 6, 7}, // top
			{0, 1, 5, 4}, // front
			{1, 2, 6, 5}, // right
			{2, 3, 7, 6}, // back
			{3, 0, 4, 7}, // left
		},
		Smooth: make([]bool, 6),
	}
	uv := scene.UVLayer{Name: "UVMap"}
	for range m.Faces {
		uv.UV = append(uv.UV, math.Vec2{X: 0, Y: 0}, math.Vec2{X: 1, Y: 0}, math.Vec2{X: 1, Y: 1}, math.Vec2{X: 0, Y: 1})
	}
	m.UVLayers = []scene.UVLayer{uv}
	return m
}

// Triangle returns a single right triangle in the XY plane whose UVs match
// its positions.
func Triangle() *scene.Mesh {
	return &scene.Mesh{
		Positions: []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Faces:     [][]int{{0, 1, 2}},
		Smooth:    []bool{false},
		UVLayers: []scene.UVLayer{{
			Name: "UVMap",
			UV:   []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		}},
	}
}

// Rig returns an armature object with a three bone chain, Root > Spine > Head,
// plus a non-deforming "Tip" child of Head.
func Rig(name string) *scene.Object {
	bone := func(n, parent string, z float64, deform bool) *scene.Bone {
		return &scene.Bone{
			Name:   n,
			Parent: parent,
			Rest:   mgl64.Translate3D(0, 0, z),
			Head:   math.Vec3{Z: z},
			Tail:   math.Vec3{Z: z + 1},
			Deform: deform,
		}
	}
	return &scene.Object{
		Name:  name,
		Type:  scene.TypeArmature,
		World: mgl64.Ident4(),
		Armature: &scene.Armature{Bones: []*scene.Bone{
			bone("Root", "", 0, true),
			bone("Spine", "Root", 1, true),
			bone("Head", "Spine", 2, true),
			bone("Tip", "Head", 3, false),
		}},
	}
}

// MeshObject wraps a mesh in an object at the origin.
func MeshObject(name string, m *scene.Mesh) *scene.Object {
	return &scene.Object{Name: name, Type: scene.TypeMesh, World: mgl64.Ident4(), Mesh: m}
}

// Material returns a material with common defaults.
func Material(name string) *scene.Material {
	return &scene.Material{
		Name:              name,
		Diffuse:           math.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Specular:          math.Vec3{X: 1, Y: 1, Z: 1},
		DiffuseIntensity:  0.8,
		Ambient:           0.5,
		SpecularIntensity: 0.2,
		Hardness:          20,
		Alpha:             1,
	}
}
