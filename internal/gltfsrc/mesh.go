package gltfsrc

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// uvAttributes are the texture coordinate sets read, one UV layer each.
var uvAttributes = []string{gltf.TEXCOORD_0, gltf.TEXCOORD_1}

// meshObject converts a mesh node. Primitives are merged into one mesh with
// one material slot per distinct material.
func (c *converter) meshObject(i int, n *gltf.Node) error {
	if *n.Mesh < 0 || *n.Mesh >= len(c.doc.Meshes) {
		return fmt.Errorf("node %q: mesh %d out of range", c.names[i], *n.Mesh)
	}
	gm := c.doc.Meshes[*n.Mesh]
	obj := &scene.Object{Name: c.names[i], Type: scene.TypeMesh, World: c.world[i]}
	if p := c.parent[i]; p >= 0 {
		obj.Parent = c.names[p]
	}

	var skin *armature
	if n.Skin != nil && *n.Skin >= 0 && *n.Skin < len(c.armatures) {
		skin = c.armatures[*n.Skin]
	}
	if skin != nil {
		obj.Deformer = skin.obj.Name
	}

	b := &meshBuilder{c: c, name: obj.Name, mesh: &scene.Mesh{}, slots: make(map[int]int), skin: skin}
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			c.log.Sugar().Warnf("mesh %q primitive %d is not a triangle list, skipped", gm.Name, pi)
			continue
		}
		if err := b.primitive(prim); err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
		}
	}
	if len(b.mesh.Faces) == 0 {
		c.log.Sugar().Warnf("mesh %q has no triangles", gm.Name)
	}
	b.finish()
	obj.Mesh = b.mesh
	if len(b.normals) == len(b.mesh.Positions) && len(b.normals) > 0 {
		obj.Normals = &scene.NormalTables{External: b.normals}
	}

	c.objects[i] = obj
	c.sc.Objects = append(c.sc.Objects, obj)
	return nil
}

type meshBuilder struct {
	c       *converter
	name    string
	mesh    *scene.Mesh
	normals []math.Vec3
	slots   map[int]int // material index to slot
	skin    *armature

	targets  int // morph target count, -1 once primitives disagree
	shapes   [][]math.Vec3
	hasShape bool
}

func (b *meshBuilder) primitive(prim *gltf.Primitive) error {
	doc := b.c.doc
	m := b.mesh
	base := len(m.Positions)

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("%w: no POSITION attribute", ErrBadAccessor)
	}
	acr, err := b.c.accessor(posIdx)
	if err != nil {
		return err
	}
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return err
	}
	for _, p := range pos {
		m.Positions = append(m.Positions, vec3(p))
	}
	count := len(pos)

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := b.c.accessor(idx)
		if err == nil {
			normals, err = modeler.ReadNormal(doc, acr, nil)
		}
		if err != nil {
			b.c.log.Warn("normals unreadable, computed normals will be used",
				zap.String("mesh", b.name), zap.Error(err))
		}
	}
	if len(normals) == count && len(b.normals) == base {
		for _, n := range normals {
			b.normals = append(b.normals, vec3(n).Normalize())
		}
	} else {
		b.normals = nil
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := b.c.accessor(*prim.Indices)
		if err != nil {
			return err
		}
		if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return err
		}
	} else {
		indices = make([]uint32, count)
		for k := range indices {
			indices[k] = uint32(k)
		}
	}

	first := len(m.Faces)
	for k := 0; k+2 < len(indices); k += 3 {
		m.Faces = append(m.Faces, []int{base + int(indices[k]), base + int(indices[k+1]), base + int(indices[k+2])})
		m.Smooth = append(m.Smooth, true)
	}
	faces := len(m.Faces) - first

	if err := b.uvs(prim, indices, faces, first); err != nil {
		return err
	}
	if err := b.colors(prim, indices, faces, first); err != nil {
		return err
	}
	b.material(prim, faces)
	if err := b.weights(prim, count); err != nil {
		return err
	}
	return b.morphs(prim, count)
}

// loopIndices returns the primitive-local vertex index of every loop of the
// primitive's faces.
func loopIndices(indices []uint32, faces int) []uint32 {
	return indices[:3*faces]
}

func (b *meshBuilder) uvs(prim *gltf.Primitive, indices []uint32, faces, first int) error {
	m := b.mesh
	loopsBefore := 3 * first
	for layer, attr := range uvAttributes {
		idx, ok := prim.Attributes[attr]
		if layer > len(m.UVLayers) {
			break
		}
		if layer == len(m.UVLayers) {
			if !ok {
				continue
			}
			// A layer missing from earlier primitives is padded with zeros.
			m.UVLayers = append(m.UVLayers, scene.UVLayer{Name: fmt.Sprintf("UVMap%d", layer), UV: make([]math.Vec2, loopsBefore)})
			if layer == 0 {
				m.UVLayers[0].Name = "UVMap"
			}
		}
		uvs := &m.UVLayers[layer]
		var coords [][2]float32
		if ok {
			acr, err := b.c.accessor(idx)
			if err != nil {
				return err
			}
			if coords, err = modeler.ReadTextureCoord(b.c.doc, acr, nil); err != nil {
				return err
			}
		}
		for _, v := range loopIndices(indices, faces) {
			var uv math.Vec2
			if int(v) < len(coords) {
				// glTF puts the V origin at the top of the image.
				uv = math.Vec2{X: float64(coords[v][0]), Y: 1 - float64(coords[v][1])}
			}
			uvs.UV = append(uvs.UV, uv)
		}
	}
	return nil
}

func (b *meshBuilder) colors(prim *gltf.Primitive, indices []uint32, faces, first int) error {
	m := b.mesh
	idx, ok := prim.Attributes[gltf.COLOR_0]
	if !ok {
		if len(m.ColorLayers) > 0 {
			for range loopIndices(indices, faces) {
				m.ColorLayers[0].Colors = append(m.ColorLayers[0].Colors, math.Vec3{X: 1, Y: 1, Z: 1})
			}
		}
		return nil
	}
	if len(m.ColorLayers) == 0 {
		pad := make([]math.Vec3, 3*first)
		for k := range pad {
			pad[k] = math.Vec3{X: 1, Y: 1, Z: 1}
		}
		m.ColorLayers = []scene.ColorLayer{{Name: "Col", Colors: pad}}
	}
	acr, err := b.c.accessor(idx)
	if err != nil {
		return err
	}
	rgba, err := modeler.ReadColor(b.c.doc, acr, nil)
	if err != nil {
		return err
	}
	for _, v := range loopIndices(indices, faces) {
		col := math.Vec3{X: 1, Y: 1, Z: 1}
		if int(v) < len(rgba) {
			col = math.Vec3{X: float64(rgba[v][0]) / 255, Y: float64(rgba[v][1]) / 255, Z: float64(rgba[v][2]) / 255}
		}
		m.ColorLayers[0].Colors = append(m.ColorLayers[0].Colors, col)
	}
	return nil
}

func (b *meshBuilder) material(prim *gltf.Primitive, faces int) {
	m := b.mesh
	slot := -1
	var tex *scene.Texture
	if prim.Material != nil {
		mi := *prim.Material
		if mat := b.c.material(mi); mat != nil {
			s, ok := b.slots[mi]
			if !ok {
				s = len(m.Materials)
				b.slots[mi] = s
				m.Materials = append(m.Materials, mat)
			}
			slot = s
			tex = b.c.baseColorTexture(mi)
		}
	}
	for k := 0; k < faces; k++ {
		m.FaceMaterial = append(m.FaceMaterial, slot)
		m.FaceTexture = append(m.FaceTexture, tex)
	}
}

func (b *meshBuilder) weights(prim *gltf.Primitive, count int) error {
	m := b.mesh
	if b.skin == nil {
		return nil
	}
	if m.VertexGroups == nil {
		for _, bone := range b.skin.obj.Armature.Bones {
			m.VertexGroups = append(m.VertexGroups, bone.Name)
		}
	}
	weights := make([][]scene.VertexWeight, count)
	jIdx, hasJ := prim.Attributes[gltf.JOINTS_0]
	wIdx, hasW := prim.Attributes[gltf.WEIGHTS_0]
	if hasJ && hasW {
		jAcr, err := b.c.accessor(jIdx)
		if err != nil {
			return err
		}
		wAcr, err := b.c.accessor(wIdx)
		if err != nil {
			return err
		}
		joints, err := modeler.ReadJoints(b.c.doc, jAcr, nil)
		if err != nil {
			return err
		}
		ws, err := modeler.ReadWeights(b.c.doc, wAcr, nil)
		if err != nil {
			return err
		}
		skin := b.c.doc.Skins[b.skinIndex()]
		for v := 0; v < count && v < len(joints) && v < len(ws); v++ {
			for k := 0; k < 4; k++ {
				if ws[v][k] == 0 || int(joints[v][k]) >= len(skin.Joints) {
					continue
				}
				group := b.group(skin.Joints[joints[v][k]])
				if group < 0 {
					continue
				}
				weights[v] = append(weights[v], scene.VertexWeight{Group: group, Weight: float64(ws[v][k])})
			}
		}
	}
	m.Weights = append(m.Weights, weights...)
	return nil
}

func (b *meshBuilder) skinIndex() int {
	for i, ar := range b.c.armatures {
		if ar == b.skin {
			return i
		}
	}
	return -1
}

// group maps a joint node to its vertex group.
func (b *meshBuilder) group(node int) int {
	for k, j := range b.skin.joints {
		if j == node {
			return k
		}
	}
	return -1
}

// morphs accumulates morph target positions. Targets are only kept when
// every primitive has the same number of them.
func (b *meshBuilder) morphs(prim *gltf.Primitive, count int) error {
	n := len(prim.Targets)
	switch {
	case !b.hasShape:
		b.hasShape = true
		b.targets = n
		b.shapes = make([][]math.Vec3, n)
	case b.targets != n:
		b.targets = -1
	}
	if b.targets <= 0 {
		return nil
	}
	base := b.mesh.Positions[len(b.mesh.Positions)-count:]
	for t, target := range prim.Targets {
		delta := make([][3]float32, 0)
		if idx, ok := target[gltf.POSITION]; ok {
			acr, err := b.c.accessor(idx)
			if err != nil {
				return err
			}
			if delta, err = modeler.ReadPosition(b.c.doc, acr, nil); err != nil {
				return err
			}
		}
		for v, p := range base {
			if v < len(delta) {
				p = p.Add(vec3(delta[v]))
			}
			b.shapes[t] = append(b.shapes[t], p)
		}
	}
	return nil
}

// finish derives edges and shape keys once every primitive is in.
func (b *meshBuilder) finish() {
	m := b.mesh
	seen := make(map[[2]int]bool)
	for _, f := range m.Faces {
		for k := range f {
			a, c := f[k], f[(k+1)%len(f)]
			if a > c {
				a, c = c, a
			}
			e := [2]int{a, c}
			if !seen[e] {
				seen[e] = true
				m.Edges = append(m.Edges, e)
			}
		}
	}
	m.SharpEdges = make([]bool, len(m.Edges))

	if b.targets > 0 {
		m.ShapeKeys = append(m.ShapeKeys, scene.ShapeKey{Name: "Basis", Positions: m.Positions})
		for t, pos := range b.shapes {
			if len(pos) == len(m.Positions) {
				m.ShapeKeys = append(m.ShapeKeys, scene.ShapeKey{Name: fmt.Sprintf("Key %d", t+1), Positions: pos})
			}
		}
	}
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}
