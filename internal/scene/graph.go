package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/pkg/math"
)

// NormalSource records which normal table a mesh ended up using.
type NormalSource int

const (
	NormalsComputed NormalSource = iota
	NormalsOverride
	NormalsExternal
)

// String returns the source name.
func (s NormalSource) String() string {
	switch s {
	case NormalsOverride:
		return "override"
	case NormalsExternal:
		return "external"
	default:
		return "computed"
	}
}

// Graph is the export-ready view of a scene.
type Graph struct {
	Meshes    []*MeshRecord
	Armatures []*ArmatureRecord
	Bones     []*BoneRecord
	Materials []*MaterialRecord // sorted by name
	Textures  []*TextureRecord  // sorted by name
	Groups    []*GroupRecord    // sorted by name
	Warnings  []string
}

// MeshRecord is an exported mesh object.
type MeshRecord struct {
	Name       string
	Object     *Object
	Data       *Mesh
	World      mgl64.Mat4
	Parent     *MeshRecord     // set only when the parent is exported too
	Armature   *ArmatureRecord // set when skinned
	ParentBone *BoneRecord
	Collision  bool
	Groups     []string

	// Materials lists this mesh's (material, texture) pairs sorted by name;
	// FaceMaterial indexes into it per face.
	Materials    []*MaterialRecord
	FaceMaterial []int

	Clusters []*ClusterRecord
	Shapes   []*ShapeRecord

	// Filled by the normal and tangent passes.
	Normals      []math.Vec3
	NormalSource NormalSource
	Tangents     []math.Vec3
	Binormals    []math.Vec3
}

// HasTangents reports whether tangents and binormals will be written.
func (m *MeshRecord) HasTangents() bool {
	return len(m.Tangents) > 0 && len(m.Tangents) == len(m.Normals)
}

// Skinned reports whether the mesh is deformed by an armature.
func (m *MeshRecord) Skinned() bool {
	return m.Armature != nil
}

// ArmatureRecord is an armature whose bones are exported.
type ArmatureRecord struct {
	Name   string
	Object *Object
	World  mgl64.Mat4
	Bones  []*BoneRecord
}

// BoneRecord is an exported bone.
type BoneRecord struct {
	Name       string // sanitized, unique among models
	SourceName string
	Bone       *Bone
	Armature   *ArmatureRecord
	Parent     *BoneRecord
	Meshes     []*MeshRecord // meshes this bone deforms
}

// LimbLength is the bone's head to tail distance.
func (b *BoneRecord) LimbLength() float64 {
	return b.Bone.Head.Distance(b.Bone.Tail)
}

// ClusterRecord binds one bone to one skinned mesh.
type ClusterRecord struct {
	Name    string // "<mesh> <bone>"
	Mesh    *MeshRecord
	Bone    *BoneRecord
	Indexes []int
	Weights []float64
}

// ShapeRecord is one blend shape target stored as vertex deltas.
type ShapeRecord struct {
	Name    string
	Indexes []int
	Deltas  []math.Vec3
}

// MaterialRecord is a deduplicated (material, texture) pair.
type MaterialRecord struct {
	Name     string
	Material *Material
	Texture  *TextureRecord
}

// TextureRecord is a deduplicated texture.
type TextureRecord struct {
	Name    string
	Texture *Texture
	Width   int
	Height  int
}

// GroupRecord is a group with at least one exported member.
type GroupRecord struct {
	Name    string
	Members []string // model names
}
