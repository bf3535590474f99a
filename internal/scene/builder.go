package scene

import (
	"errors"
	"fmt"
	stdmath "math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/pkg/math"
)

// CollisionPrefix marks collision hulls; they always use computed normals.
const CollisionPrefix = "UCX_"

// shapeDeltaEpsilon is the smallest vertex offset kept in a shape target.
const shapeDeltaEpsilon = 0.000001

// armatureScaleTolerance is the largest scale deviation tolerated on skinned meshes.
const armatureScaleTolerance = 0.05

var (
	ErrNoScene       = errors.New("scene: nil scene")
	ErrNothingToSave = errors.New("scene: no exportable objects")
)

// BuildOptions controls what the builder collects.
type BuildOptions struct {
	Meshes          bool
	Armatures       bool
	UseModifiers    bool
	DeformBonesOnly bool
	Selection       []string   // object names; empty exports everything
	GlobalMatrix    mgl64.Mat4 // zero value means identity
}

// DefaultBuildOptions exports meshes and armatures with all bones.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Meshes:       true,
		Armatures:    true,
		GlobalMatrix: mgl64.Ident4(),
	}
}

type builder struct {
	sc     *Scene
	opts   BuildOptions
	g      *Graph
	global mgl64.Mat4

	objects   map[string]*Object
	objNames  *Namer
	matNames  *Namer
	texNames  *Namer
	grpNames  *Namer
	meshByObj map[string]*MeshRecord
	armByObj  map[string]*ArmatureRecord
	armOrder  []*Object

	pairs    map[pairKey]*MaterialRecord
	textures map[*Texture]*TextureRecord

	pendingArm  map[*MeshRecord]string
	pendingBone map[*MeshRecord]string
}

type pairKey struct {
	mat *Material
	tex *Texture
}

// Build walks the scene and produces export records. Problems that do not
// prevent an export end up in Graph.Warnings.
func Build(sc *Scene, opts BuildOptions) (*Graph, error) {
	if sc == nil {
		return nil, ErrNoScene
	}
	b := &builder{
		sc:          sc,
		opts:        opts,
		g:           &Graph{},
		global:      opts.GlobalMatrix,
		objects:     make(map[string]*Object),
		objNames:    NewNamer(ReservedName),
		matNames:    NewNamer(),
		texNames:    NewNamer(),
		grpNames:    NewNamer(),
		meshByObj:   make(map[string]*MeshRecord),
		armByObj:    make(map[string]*ArmatureRecord),
		pairs:       make(map[pairKey]*MaterialRecord),
		textures:    make(map[*Texture]*TextureRecord),
		pendingArm:  make(map[*MeshRecord]string),
		pendingBone: make(map[*MeshRecord]string),
	}
	if b.global == (mgl64.Mat4{}) {
		b.global = mgl64.Ident4()
	}
	for _, obj := range sc.Objects {
		b.objects[obj.Name] = obj
	}

	if err := b.collectObjects(); err != nil {
		return nil, err
	}
	b.collectBones()
	b.linkMeshes()
	b.collectParents()
	b.collectClusters()
	b.collectShapes()
	b.collectMaterials()
	b.collectGroups()

	if len(b.g.Meshes) == 0 && len(b.g.Bones) == 0 {
		return b.g, ErrNothingToSave
	}
	return b.g, nil
}

func (b *builder) warnf(format string, args ...any) {
	b.g.Warnings = append(b.g.Warnings, fmt.Sprintf(format, args...))
}

func (b *builder) selected() []*Object {
	if len(b.opts.Selection) == 0 {
		return b.sc.Objects
	}
	var out []*Object
	for _, name := range b.opts.Selection {
		if obj, ok := b.objects[name]; ok {
			out = append(out, obj)
		} else {
			b.warnf("Object '%s' is not in the scene", name)
		}
	}
	return out
}

func (b *builder) addArmature(obj *Object) {
	for _, a := range b.armOrder {
		if a == obj {
			return
		}
	}
	b.armOrder = append(b.armOrder, obj)
}

func (b *builder) collectObjects() error {
	for _, obj := range b.selected() {
		switch obj.Type {
		case TypeArmature:
			if b.opts.Armatures {
				b.addArmature(obj)
			}
		case TypeMesh:
			if !b.opts.Meshes {
				continue
			}
			if err := b.addMesh(obj); err != nil {
				return err
			}
		default:
			// Nulls are not written, which also takes them out of the export set.
		}
	}
	return nil
}

func (b *builder) addMesh(obj *Object) error {
	data := obj.Mesh
	if b.opts.UseModifiers && obj.Evaluated != nil {
		data = obj.Evaluated
	}
	if data == nil {
		b.warnf("Object '%s' has no mesh data", obj.Name)
		return nil
	}
	for fi, f := range data.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= len(data.Positions) {
				b.warnf("Object '%s' face %d references missing vertex %d: mesh skipped", obj.Name, fi, vi)
				return nil
			}
		}
		if len(f) < 3 {
			b.warnf("Object '%s' face %d has %d vertices: unsupported topology", obj.Name, fi, len(f))
		}
	}

	rec := &MeshRecord{
		Name:      b.objNames.Name(obj.Name),
		Object:    obj,
		Data:      data,
		World:     b.global.Mul4(obj.World),
		Collision: strings.Contains(obj.Name, CollisionPrefix),
	}
	b.g.Meshes = append(b.g.Meshes, rec)
	b.meshByObj[obj.Name] = rec

	if !b.opts.Armatures {
		return nil
	}
	armName, boneName := obj.Deformer, ""
	if armName == "" && obj.ParentBone != "" {
		if p, ok := b.objects[obj.Parent]; ok && p.Type == TypeArmature {
			armName, boneName = p.Name, obj.ParentBone
		}
	}
	arm, ok := b.objects[armName]
	if !ok || arm.Type != TypeArmature || arm.Armature == nil {
		return nil
	}
	b.addArmature(arm)
	b.pendingArm[rec] = arm.Name
	if boneName != "" {
		b.pendingBone[rec] = boneName
	}

	_, _, scale := math.Decompose(obj.World)
	if stdmath.Abs(scale.X-1) > armatureScaleTolerance ||
		stdmath.Abs(scale.Y-1) > armatureScaleTolerance ||
		stdmath.Abs(scale.Z-1) > armatureScaleTolerance {
		b.warnf("Object '%s' has a scale of (%.3f, %.3f, %.3f), Armature deformation will not work as expected (apply Scale to fix)",
			obj.Name, scale.X, scale.Y, scale.Z)
	}
	return nil
}

// liveBones marks bones that deform or have a deforming descendant.
func liveBones(arm *Armature) map[string]bool {
	parents := make(map[string]string, len(arm.Bones))
	for _, bone := range arm.Bones {
		parents[bone.Name] = bone.Parent
	}
	live := make(map[string]bool, len(arm.Bones))
	for _, bone := range arm.Bones {
		if !bone.Deform {
			continue
		}
		for name := bone.Name; name != "" && !live[name]; name = parents[name] {
			live[name] = true
		}
	}
	return live
}

func (b *builder) collectBones() {
	for _, obj := range b.armOrder {
		if obj.Armature == nil {
			b.warnf("Armature '%s' has no bone data", obj.Name)
			continue
		}
		ar := &ArmatureRecord{
			Name:   b.objNames.Name(obj.Name),
			Object: obj,
			World:  b.global.Mul4(obj.World),
		}
		b.armByObj[obj.Name] = ar
		b.g.Armatures = append(b.g.Armatures, ar)

		var live map[string]bool
		if b.opts.DeformBonesOnly {
			live = liveBones(obj.Armature)
		}
		bySource := make(map[string]*BoneRecord)
		for _, bone := range obj.Armature.Bones {
			if live != nil && !live[bone.Name] {
				continue
			}
			br := &BoneRecord{
				Name:       b.objNames.Name(bone.Name),
				SourceName: bone.Name,
				Bone:       bone,
				Armature:   ar,
			}
			bySource[bone.Name] = br
			ar.Bones = append(ar.Bones, br)
			b.g.Bones = append(b.g.Bones, br)
		}
		for _, br := range ar.Bones {
			if p, ok := bySource[br.Bone.Parent]; ok {
				br.Parent = p
			}
		}
	}
}

func (b *builder) linkMeshes() {
	for _, m := range b.g.Meshes {
		armName, ok := b.pendingArm[m]
		if !ok {
			continue
		}
		ar, ok := b.armByObj[armName]
		if !ok {
			continue
		}
		m.Armature = ar
		boneName := b.pendingBone[m]
		for _, br := range ar.Bones {
			if br.Bone.Deform {
				br.Meshes = append(br.Meshes, m)
			}
			if boneName != "" && br.SourceName == boneName {
				m.ParentBone = br
			}
		}
	}
}

func (b *builder) collectParents() {
	for _, m := range b.g.Meshes {
		if m.Skinned() || m.Object.Parent == "" {
			continue
		}
		if p, ok := b.meshByObj[m.Object.Parent]; ok && p != m {
			m.Parent = p
		}
	}
}

// normalizedWeights returns per-vertex weights indexed by vertex group, each
// vertex summing to one.
func normalizedWeights(data *Mesh) [][]float64 {
	n := len(data.VertexGroups)
	if n == 0 {
		return nil
	}
	out := make([][]float64, len(data.Positions))
	for v := range out {
		w := make([]float64, n)
		if v < len(data.Weights) {
			for _, vw := range data.Weights[v] {
				if vw.Group >= 0 && vw.Group < n {
					w[vw.Group] = vw.Weight
				}
			}
		}
		total := 0.0
		for _, x := range w {
			total += x
		}
		if total != 0 {
			for i := range w {
				w[i] /= total
			}
		}
		out[v] = w
	}
	return out
}

func (b *builder) collectClusters() {
	for _, m := range b.g.Meshes {
		if !m.Skinned() {
			continue
		}
		var weights [][]float64
		if m.ParentBone == nil {
			weights = normalizedWeights(m.Data)
		}
		for _, br := range m.Armature.Bones {
			if !br.Bone.Deform {
				continue
			}
			c := &ClusterRecord{Name: m.Name + " " + br.Name, Mesh: m, Bone: br}
			switch {
			case m.ParentBone != nil:
				if m.ParentBone == br {
					for v := range m.Data.Positions {
						c.Indexes = append(c.Indexes, v)
						c.Weights = append(c.Weights, 1.0)
					}
				}
			default:
				gi := indexOf(m.Data.VertexGroups, br.SourceName)
				if gi >= 0 {
					for v, w := range weights {
						if w[gi] != 0 {
							c.Indexes = append(c.Indexes, v)
							c.Weights = append(c.Weights, w[gi])
						}
					}
				}
			}
			m.Clusters = append(m.Clusters, c)
		}
	}
}

func indexOf(list []string, s string) int {
	for i, x := range list {
		if x == s {
			return i
		}
	}
	return -1
}

func (b *builder) collectShapes() {
	for _, m := range b.g.Meshes {
		keys := m.Data.ShapeKeys
		if len(keys) < 2 {
			continue
		}
		ok := true
		for _, k := range keys {
			if len(k.Positions) != len(m.Data.Positions) {
				ok = false
				break
			}
		}
		if !ok {
			b.warnf("Object '%s' shape keys do not match its vertex count, shapes skipped", m.Object.Name)
			continue
		}
		basis := keys[0].Positions
		for _, k := range keys[1:] {
			s := &ShapeRecord{Name: k.Name}
			for j, p := range k.Positions {
				d := p.Sub(basis[j])
				if d.Length() > shapeDeltaEpsilon {
					s.Indexes = append(s.Indexes, j)
					s.Deltas = append(s.Deltas, d)
				}
			}
			m.Shapes = append(m.Shapes, s)
		}
	}
}

func (b *builder) texture(t *Texture) *TextureRecord {
	if t == nil {
		return nil
	}
	if tr, ok := b.textures[t]; ok {
		return tr
	}
	tr := &TextureRecord{Name: b.texNames.Name(t.Name), Texture: t}
	b.textures[t] = tr
	b.g.Textures = append(b.g.Textures, tr)
	return tr
}

func (b *builder) pair(mat *Material, tex *Texture) *MaterialRecord {
	k := pairKey{mat, tex}
	if mr, ok := b.pairs[k]; ok {
		return mr
	}
	orig := mat.Name
	if tex != nil {
		orig = fmt.Sprintf("%s #%s", mat.Name, tex.Name)
	}
	mr := &MaterialRecord{Name: b.matNames.Name(orig), Material: mat, Texture: b.texture(tex)}
	b.pairs[k] = mr
	b.g.Materials = append(b.g.Materials, mr)
	return mr
}

func pairSortKey(mr *MaterialRecord) (string, string) {
	tex := ""
	if mr.Texture != nil {
		tex = mr.Texture.Texture.Name
	}
	return mr.Material.Name, tex
}

func (b *builder) collectMaterials() {
	for _, m := range b.g.Meshes {
		data := m.Data
		faceRec := make([]*MaterialRecord, len(data.Faces))
		local := make(map[*MaterialRecord]bool)
		for fi := range data.Faces {
			var mat *Material
			if fi < len(data.FaceMaterial) {
				slot := data.FaceMaterial[fi]
				if slot >= 0 && slot < len(data.Materials) {
					mat = data.Materials[slot]
				}
			} else if len(data.Materials) > 0 {
				mat = data.Materials[0]
			}
			if mat == nil {
				continue
			}
			var tex *Texture
			if fi < len(data.FaceTexture) {
				tex = data.FaceTexture[fi]
			}
			mr := b.pair(mat, tex)
			faceRec[fi] = mr
			if !local[mr] {
				local[mr] = true
				m.Materials = append(m.Materials, mr)
			}
		}
		sort.SliceStable(m.Materials, func(i, j int) bool {
			mi, ti := pairSortKey(m.Materials[i])
			mj, tj := pairSortKey(m.Materials[j])
			if mi != mj {
				return mi < mj
			}
			return ti < tj
		})
		index := make(map[*MaterialRecord]int, len(m.Materials))
		for i, mr := range m.Materials {
			index[mr] = i
		}
		if len(m.Materials) > 0 {
			m.FaceMaterial = make([]int, len(data.Faces))
			for fi, mr := range faceRec {
				if mr != nil {
					m.FaceMaterial[fi] = index[mr]
				}
			}
		}
	}
	sort.SliceStable(b.g.Materials, func(i, j int) bool { return b.g.Materials[i].Name < b.g.Materials[j].Name })
	sort.SliceStable(b.g.Textures, func(i, j int) bool { return b.g.Textures[i].Name < b.g.Textures[j].Name })
}

func (b *builder) collectGroups() {
	for _, grp := range b.sc.Groups {
		var members []*MeshRecord
		for _, name := range grp.Objects {
			if m, ok := b.meshByObj[name]; ok {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			continue
		}
		gr := &GroupRecord{Name: b.grpNames.Name(grp.Name)}
		for _, m := range members {
			gr.Members = append(gr.Members, m.Name)
			m.Groups = append(m.Groups, gr.Name)
		}
		b.g.Groups = append(b.g.Groups, gr)
	}
	sort.SliceStable(b.g.Groups, func(i, j int) bool { return b.g.Groups[i].Name < b.g.Groups[j].Name })
}
