// Package scene holds the host scene model handed to the exporter and the
// builder that turns it into export records.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/pkg/math"
)

// ObjectType classifies host objects.
type ObjectType int

const (
	TypeMesh ObjectType = iota
	TypeArmature
	TypeEmpty
	TypeOther
)

// String returns the type name.
func (t ObjectType) String() string {
	switch t {
	case TypeMesh:
		return "MESH"
	case TypeArmature:
		return "ARMATURE"
	case TypeEmpty:
		return "EMPTY"
	default:
		return "OTHER"
	}
}

// Scene is the host scene as seen by the exporter.
type Scene struct {
	Name       string
	Objects    []*Object
	Groups     []*Group
	Actions    []*Action
	FPS        float64
	FrameStart int
	FrameEnd   int
	Ambient    math.Vec3 // world ambient colour, used by materials
}

// Object is one host object.
type Object struct {
	Name       string
	Type       ObjectType
	Parent     string     // parent object name, empty for none
	World      mgl64.Mat4 // world matrix
	Mesh       *Mesh      // base mesh data (TypeMesh)
	Evaluated  *Mesh      // modifier-evaluated mesh, optional
	Armature   *Armature  // bone data (TypeArmature)
	Deformer   string     // armature object deforming this mesh
	ParentBone string     // bone this mesh is parented to
	Action     string     // active action name (armatures)

	// Normals carries the tables maintained by the normal editor and by
	// third-party tools. Nil means none were supplied.
	Normals *NormalTables

	// Tangents is the host tangent implementation, optional.
	Tangents HostTangents
}

// Group is a named object collection.
type Group struct {
	Name    string
	Objects []string
}

// Mesh is polygon mesh data. Per-loop arrays are ordered face by face,
// vertex by vertex, matching Faces.
type Mesh struct {
	Positions    []math.Vec3
	Faces        [][]int
	Smooth       []bool // per face
	Edges        [][2]int
	SharpEdges   []bool // per edge
	UVLayers     []UVLayer
	ColorLayers  []ColorLayer
	Materials    []*Material // material slots
	FaceMaterial []int       // slot index per face
	FaceTexture  []*Texture  // image per face, nil entries allowed
	ShapeKeys    []ShapeKey  // first entry is the basis
	VertexGroups []string
	Weights      [][]VertexWeight // per vertex
}

// UVLayer holds one UV coordinate per loop.
type UVLayer struct {
	Name string
	UV   []math.Vec2
}

// ColorLayer holds one RGB colour per loop.
type ColorLayer struct {
	Name   string
	Colors []math.Vec3
}

// ShapeKey holds absolute vertex positions for one key block.
type ShapeKey struct {
	Name      string
	Positions []math.Vec3
}

// VertexWeight assigns a vertex to a vertex group.
type VertexWeight struct {
	Group  int
	Weight float64
}

// Material is a host material.
type Material struct {
	Name              string
	Diffuse           math.Vec3
	Specular          math.Vec3
	DiffuseIntensity  float64
	Ambient           float64
	SpecularIntensity float64
	Hardness          int
	Alpha             float64
	Emit              float64
	Shadeless         bool
	Shader            string // "LAMBERT" or anything else for Phong
}

// Texture is an image referenced by faces.
type Texture struct {
	Name   string
	Path   string
	ClampX bool
	ClampY bool
}

// Armature holds bones in parent-before-child order.
type Armature struct {
	Bones []*Bone
}

// Bone is a skeleton bone. Rest is in armature space.
type Bone struct {
	Name   string
	Parent string
	Rest   mgl64.Mat4
	Head   math.Vec3
	Tail   math.Vec3
	Deform bool
}

// Action carries sampled pose matrices. Poses maps an object or bone name to
// one matrix per frame from Start to End. Object tracks are world matrices,
// bone tracks are armature-space pose matrices.
type Action struct {
	Name  string
	Start int
	End   int
	Poses map[string][]mgl64.Mat4
}

// Pose returns the matrix of target at frame, or false if the action has no
// sample for it.
func (a *Action) Pose(target string, frame int) (mgl64.Mat4, bool) {
	track, ok := a.Poses[target]
	if !ok {
		return mgl64.Mat4{}, false
	}
	i := frame - a.Start
	if i < 0 || i >= len(track) {
		return mgl64.Mat4{}, false
	}
	return track[i], true
}

// NormalTables are the normal overrides supplied alongside an object.
type NormalTables struct {
	// Split selects PerLoop over PerVertex for editor overrides.
	Split bool
	// PerLoop holds one entry per polygon with one normal per face vertex.
	PerLoop [][]math.Vec3
	// PerVertex holds one editor normal per vertex.
	PerVertex []math.Vec3
	// External holds one normal per vertex from a third-party tool.
	External []math.Vec3
}

// HostTangents computes tangents with the host's own algorithm.
type HostTangents interface {
	Tangents(m *Mesh, uvLayer int) (tangents, binormals []math.Vec3, err error)
}

// LoopCount returns the number of polygon loops.
func (m *Mesh) LoopCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f)
	}
	return n
}

// FaceLoopStarts returns the first loop index of every face.
func (m *Mesh) FaceLoopStarts() []int {
	starts := make([]int, len(m.Faces))
	n := 0
	for i, f := range m.Faces {
		starts[i] = n
		n += len(f)
	}
	return starts
}
