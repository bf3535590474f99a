package fbx

import (
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/registry"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

func (w *writer) objects() {
	w.str("\n\n; Object properties\n" + sectionRule + "\nObjects:  {")

	for _, m := range w.g.Meshes {
		w.geometry(m)
	}
	for _, m := range w.g.Meshes {
		for _, s := range m.Shapes {
			w.shapeGeometry(m, s)
		}
	}
	for _, b := range w.g.Bones {
		w.boneAttribute(b)
	}
	for _, m := range w.g.Meshes {
		w.meshModel(m)
	}
	for _, b := range w.g.Bones {
		w.boneModel(b)
	}
	w.bindPose()
	for _, mr := range w.g.Materials {
		w.material(mr)
	}
	for _, t := range w.g.Textures {
		w.video(t)
	}
	for _, t := range w.g.Textures {
		w.texture(t)
	}
	for _, m := range w.g.Meshes {
		if !m.Skinned() {
			continue
		}
		w.skin(m)
		for _, c := range m.Clusters {
			w.cluster(c)
		}
	}
	for _, m := range w.g.Meshes {
		if len(m.Shapes) > 0 {
			w.blendShape(m)
		}
	}
	w.animObjects()
	for _, gr := range w.g.Groups {
		w.group(gr)
	}

	w.str("\n}")
}

// BoneLocal returns a bone's rest matrix relative to its exported parent, with
// the bone axis fix applied. Root bones get an extra quarter turn about Y.
func BoneLocal(b *scene.BoneRecord) mgl64.Mat4 {
	rest := b.Bone.Rest.Mul4(math.RotZ90)
	if b.Parent == nil {
		return rest.Mul4(math.RotY90)
	}
	parent := b.Parent.Bone.Rest.Mul4(math.RotZ90)
	return parent.Inv().Mul4(rest)
}

// BoneGlobal returns a bone's bind matrix in world space.
func BoneGlobal(b *scene.BoneRecord) mgl64.Mat4 {
	return b.Armature.World.Mul4(b.Bone.Rest).Mul4(math.RotZ90)
}

// MeshLocal returns a mesh's world matrix relative to its exported parent.
func MeshLocal(m *scene.MeshRecord) mgl64.Mat4 {
	if m.Parent == nil {
		return m.World
	}
	return m.Parent.World.Inv().Mul4(m.World)
}

func boneType(b *scene.BoneRecord) string {
	if b.Parent == nil {
		return "Root"
	}
	return "LimbNode"
}

func (w *writer) boneAttribute(b *scene.BoneRecord) {
	w.printf("\n\tNodeAttribute: %d, \"NodeAttribute::%s\", %q {", w.id(registry.BoneAttribute, b.Name), b.Name, boneType(b))
	w.printf(`
		Properties70:  {
			P: "Size", "double", "Number", "",1
			P: "LimbLength", "double", "Number", "H",%f
		}
		TypeFlags: "Skeleton"
	}`, b.LimbLength())
}

func (w *writer) modelHeader(id int64, name, kind string, loc math.Vec3) {
	w.printf("\n\tModel: %d, \"Model::%s\", %q {", id, name, kind)
	w.str(`
		Version: 232
		Properties70:  {
			P: "ScalingMin", "Vector3D", "Vector", "",1,1,1
			P: "DefaultAttributeIndex", "int", "Integer", "",0`)
	w.printf("\n\t\t\tP: \"Lcl Translation\", \"Lcl Translation\", \"\", \"A\",%.15f,%.15f,%.15f", loc.X, loc.Y, loc.Z)
}

func (w *writer) modelFooter() {
	w.str("\n\t\tShading: Y\n\t\tCulling: \"CullingOff\"\n\t}")
}

func (w *writer) boneModel(b *scene.BoneRecord) {
	loc, rot, _ := lcl(BoneLocal(b))
	w.modelHeader(w.id(registry.BoneModel, b.Name), b.Name, boneType(b), loc)
	w.str("\n\t\t\tP: \"Lcl Scaling\", \"Lcl Scaling\", \"\", \"A+\",1,1,1")
	w.printf("\n\t\t\tP: \"Lcl Rotation\", \"Lcl Rotation\", \"\", \"A+\",%.15f,%.15f,%.15f", rot.X, rot.Y, rot.Z)
	w.str("\n\t\t}")
	w.modelFooter()
}

func (w *writer) meshModel(m *scene.MeshRecord) {
	loc, rot, scale := lcl(MeshLocal(m))
	w.modelHeader(w.id(registry.MeshModel, m.Name), m.Name, "Mesh", loc)
	w.printf("\n\t\t\tP: \"Lcl Scaling\", \"Lcl Scaling\", \"\", \"A+\",%.15f,%.15f,%.15f", scale.X, scale.Y, scale.Z)
	w.printf("\n\t\t\tP: \"Lcl Rotation\", \"Lcl Rotation\", \"\", \"A+\",%.15f,%.15f,%.15f", rot.X, rot.Y, rot.Z)
	w.str(`
			P: "Size", "double", "Number", "",100
			P: "Look", "enum", "", "",1
		}`)
	w.modelFooter()
}

// bindPose writes one pose node for the scene root and one per model, all
// with world matrices.
func (w *writer) bindPose() {
	w.printf(`
	Pose: %d, "Pose::BIND_POSES", "BindPose" {
		Type: "BindPose"
		Version: 100
		NbPoseNodes: %d
		PoseNode:  {
			Node: %d
			Matrix: *16 {
				a: 1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1
			}
		}`, registry.PoseID, len(w.g.Meshes)+len(w.g.Bones)+1, registry.RootNodeID)
	node := func(id int64, m mgl64.Mat4) {
		w.printf("\n\t\tPoseNode:  {\n\t\t\tNode: %d", id)
		w.matrixBlock("\t\t\t", "Matrix", m)
		w.str("\n\t\t}")
	}
	for _, m := range w.g.Meshes {
		node(w.id(registry.MeshModel, m.Name), m.World)
	}
	for _, b := range w.g.Bones {
		node(w.id(registry.BoneModel, b.Name), BoneGlobal(b))
	}
	w.str("\n\t}")
}

type materialValues struct {
	diffuse, specular, ambient math.Vec3
	dif, emit, spec, hard      float64
	alpha                      float64
	shadeless                  bool
	shader                     string
}

func (w *writer) materialValues(mat *scene.Material) materialValues {
	if mat == nil {
		grey := math.Vec3{X: 0.8, Y: 0.8, Z: 0.8}
		return materialValues{diffuse: grey, specular: grey, dif: 1, hard: 20, spec: 0.2, alpha: 1, shader: "phong"}
	}
	v := materialValues{
		diffuse:   mat.Diffuse,
		specular:  mat.Specular,
		ambient:   w.doc.Ambient,
		dif:       mat.DiffuseIntensity,
		emit:      mat.Emit,
		spec:      mat.SpecularIntensity / 2,
		hard:      (float64(mat.Hardness) - 1) / 5.10,
		alpha:     mat.Alpha,
		shadeless: mat.Shadeless,
		shader:    "phong",
	}
	if mat.Shadeless || strings.EqualFold(mat.Shader, "LAMBERT") {
		v.shader = "lambert"
	}
	return v
}

func (w *writer) material(mr *scene.MaterialRecord) {
	v := w.materialValues(mr.Material)
	w.printf("\n\tMaterial: %d, \"Material::%s\", \"\" {", w.id(registry.Material, mr.Name), mr.Name)
	w.str("\n\t\tVersion: 102")
	w.printf("\n\t\tShadingModel: %q", v.shader)
	w.str("\n\t\tMultiLayer: 0")
	w.str("\n\t\tProperties70:  {")
	w.printf("\n\t\t\tP: \"EmissiveColor\", \"Color\", \"\", \"A\",%.4f,%.4f,%.4f", v.diffuse.X, v.diffuse.Y, v.diffuse.Z)
	w.printf("\n\t\t\tP: \"EmissiveFactor\", \"Number\", \"\", \"A\",%.4f", v.emit)
	w.printf("\n\t\t\tP: \"AmbientColor\", \"Color\", \"\", \"A\",%.4f,%.4f,%.4f", v.ambient.X, v.ambient.Y, v.ambient.Z)
	w.printf("\n\t\t\tP: \"DiffuseFactor\", \"Number\", \"\", \"A\",%.4f", v.dif)
	w.str("\n\t\t\tP: \"TransparentColor\", \"Color\", \"\", \"A\",1,1,1")
	if !v.shadeless {
		w.printf("\n\t\t\tP: \"SpecularColor\", \"ColorRGB\", \"Color\", \"\",%.4f,%.4f,%.4f", v.specular.X, v.specular.Y, v.specular.Z)
		w.printf("\n\t\t\tP: \"SpecularFactor\", \"double\", \"Number\", \"\",%.4f", v.spec)
		w.str("\n\t\t\tP: \"ShininessExponent\", \"double\", \"Number\", \"\",80")
		w.str("\n\t\t\tP: \"ReflectionColor\", \"ColorRGB\", \"Color\", \"\",0,0,0")
		w.str("\n\t\t\tP: \"ReflectionFactor\", \"double\", \"Number\", \"\",1")
	}
	w.str("\n\t\t\tP: \"Emissive\", \"ColorRGB\", \"Color\", \"\",0,0,0")
	w.printf("\n\t\t\tP: \"Ambient\", \"ColorRGB\", \"Color\", \"\",%.1f,%.1f,%.1f", v.ambient.X, v.ambient.Y, v.ambient.Z)
	w.printf("\n\t\t\tP: \"Diffuse\", \"ColorRGB\", \"Color\", \"\",%.1f,%.1f,%.1f", v.diffuse.X, v.diffuse.Y, v.diffuse.Z)
	if !v.shadeless {
		w.printf("\n\t\t\tP: \"Specular\", \"ColorRGB\", \"Color\", \"\",%.1f,%.1f,%.1f", v.specular.X, v.specular.Y, v.specular.Z)
		w.printf("\n\t\t\tP: \"Shininess\", \"double\", \"Number\", \"\",%.1f", v.hard)
	}
	w.printf("\n\t\t\tP: \"Opacity\", \"double\", \"Number\", \"\",%.1f", v.alpha)
	if !v.shadeless {
		w.str("\n\t\t\tP: \"Reflectivity\", \"double\", \"Number\", \"\",0")
	}
	w.str("\n\t\t}\n\t}")
}

// relPath returns p relative to dir, or p unchanged when that is not possible.
func relPath(dir, p string) string {
	if dir == "" || p == "" {
		return p
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

func (w *writer) video(t *scene.TextureRecord) {
	path := t.Texture.Path
	w.printf("\n\tVideo: %d, \"Video::%s\", \"Clip\" {", w.id(registry.Video, t.Name), t.Name)
	w.str("\n\t\tType: \"Clip\"\n\t\tProperties70:  {")
	w.printf("\n\t\t\tP: \"Path\", \"KString\", \"XRefUrl\", \"\", \"%s\"", path)
	w.str("\n\t\t\tP: \"PlaySpeed\", \"double\", \"Number\", \"\",1")
	if t.Width > 0 && t.Height > 0 {
		w.printf("\n\t\t\tP: \"Width\", \"int\", \"Integer\", \"\",%d", t.Width)
		w.printf("\n\t\t\tP: \"Height\", \"int\", \"Integer\", \"\",%d", t.Height)
	}
	w.str("\n\t\t}\n\t\tUseMipMap: 0")
	w.printf("\n\t\tFilename: \"%s\"", path)
	w.printf("\n\t\tRelativeFilename: \"%s\"", relPath(w.opts.Dir, path))
	w.str("\n\t}")
}

func (w *writer) texture(t *scene.TextureRecord) {
	path := t.Texture.Path
	w.printf("\n\tTexture: %d, \"Texture::%s\", \"\" {", w.id(registry.Texture, t.Name), t.Name)
	w.str("\n\t\tType: \"TextureVideoClip\"\n\t\tVersion: 202")
	w.printf("\n\t\tTextureName: \"Texture::%s\"", t.Name)
	w.str("\n\t\tProperties70:  {")
	w.str("\n\t\t\tP: \"Texture alpha\", \"Number\", \"\", \"A+\",1")
	w.str("\n\t\t\tP: \"UVSet\", \"KString\", \"\", \"\", \"default\"")
	w.str("\n\t\t\tP: \"VideoProperty\", \"object\", \"\", \"\"")
	w.str("\n\t\t\tP: \"CurrentMappingType\", \"enum\", \"\", \"\",0")
	w.printf("\n\t\t\tP: \"WrapModeU\", \"enum\", \"\", \"\",%d", boolInt(t.Texture.ClampX))
	w.printf("\n\t\t\tP: \"WrapModeV\", \"enum\", \"\", \"\",%d", boolInt(t.Texture.ClampY))
	w.str("\n\t\t}")
	w.printf("\n\t\tMedia: \"Video::%s\"", t.Name)
	w.printf("\n\t\tFileName: \"%s\"", path)
	w.printf("\n\t\tRelativeFilename: \"%s\"", relPath(w.opts.Dir, path))
	w.str(`
		ModelUVTranslation: 0,0
		ModelUVScaling: 1,1
		Texture_Alpha_Source: "None"
		Cropping: 0,0,0,0
	}`)
}

func (w *writer) skin(m *scene.MeshRecord) {
	w.printf("\n\tDeformer: %d, \"Deformer::Skin %s\", \"Skin\" {", w.id(registry.Skin, m.Name), m.Name)
	w.str("\n\t\tVersion: 101\n\t\tLink_DeformAcuracy: 50\n\t}")
}

func (w *writer) cluster(c *scene.ClusterRecord) {
	w.printf("\n\tDeformer: %d, \"SubDeformer::Cluster %s\", \"Cluster\" {", w.id(registry.Cluster, c.Name), c.Name)
	w.str(`
		Version: 100
		Properties70:  {
			P: "SrcModel", "object", "", ""
		}
		UserData: "", ""`)
	if len(c.Indexes) > 0 {
		w.intBlock("\t\t", "Indexes", c.Indexes, perLinePolygon)
		w.arrayBlock("\t\t", "Weights", len(c.Weights), len(c.Weights), perLineWeights, func(b []byte, i int) []byte {
			return appendFloat(b, c.Weights[i], 8)
		})
	}
	link := BoneGlobal(c.Bone)
	w.matrixBlock("\t\t", "Transform", link.Inv().Mul4(c.Mesh.World))
	w.matrixBlock("\t\t", "TransformLink", link)
	w.str("\n\t}")
}

func (w *writer) shapeGeometry(m *scene.MeshRecord, s *scene.ShapeRecord) {
	w.printf("\n\tGeometry: %d, \"Geometry::%s\", \"Shape\" {", w.id(registry.ShapeGeometry, shapeKey(m, s)), s.Name)
	w.str("\n\t\tVersion: 100")
	w.intBlock("\t\t", "Indexes", s.Indexes, perLineShape)
	w.vec3Block("\t\t", "Vertices", s.Deltas, perLineVec3)
	w.arrayBlock("\t\t", "Normals", 3*len(s.Deltas), len(s.Deltas), perLineVec3, func(b []byte, _ int) []byte {
		return append(b, "0,0,0"...)
	})
	w.str("\n\t}")
}

func (w *writer) blendShape(m *scene.MeshRecord) {
	w.printf("\n\tDeformer: %d, \"Deformer::\", \"BlendShape\" {\n\t\tVersion: 100\n\t}", w.id(registry.BlendShape, m.Name))
	for _, s := range m.Shapes {
		w.printf("\n\tDeformer: %d, \"SubDeformer::%s\", \"BlendShapeChannel\" {", w.id(registry.ShapeChannel, shapeKey(m, s)), s.Name)
		w.str(`
		Version: 100
		DeformPercent: 0
		FullWeights: *1 {
			a: 100
		}
	}`)
	}
}

func (w *writer) group(gr *scene.GroupRecord) {
	w.printf("\n\tGroupSelection: \"GroupSelection::%s\", \"Default\" {", gr.Name)
	w.str(`
		Properties60:  {
			Property: "MultiLayer", "bool", "",0
			Property: "Pickable", "bool", "",1
			Property: "Transformable", "bool", "",1
			Property: "Show", "bool", "",1
		}
		MultiLayer: 0
	}`)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
