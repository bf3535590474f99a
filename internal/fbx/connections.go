package fbx

import "github.com/Faultbox/fbxport/internal/registry"

// edge writes one connection preceded by its comment line. prop is only
// written for object to property ("OP") connections.
func (w *writer) edge(childName, parentName, kind string, child, parent int64, prop string) {
	w.printf("\n\t;%s, %s\n\tC: \"%s\",%d,%d", childName, parentName, kind, child, parent)
	if prop != "" {
		w.printf(", \"%s\"", prop)
	}
	w.str("\n\t")
}

// connections writes the object graph. Some importers depend on the order:
// model parents come first and group membership last.
func (w *writer) connections() {
	w.str("\n\n; Object connections\n" + sectionRule + "\nConnections:  {")

	for _, m := range w.g.Meshes {
		id := w.id(registry.MeshModel, m.Name)
		if m.Parent != nil {
			w.edge("Model::"+m.Name, "Model::"+m.Parent.Name, "OO", id, w.id(registry.MeshModel, m.Parent.Name), "")
		} else {
			w.edge("Model::"+m.Name, "Model::RootNode", "OO", id, registry.RootNodeID, "")
		}
	}
	for _, b := range w.g.Bones {
		if b.Parent == nil {
			w.edge("Model::"+b.Name, "Model::RootNode", "OO", w.id(registry.BoneModel, b.Name), registry.RootNodeID, "")
		}
	}
	for _, m := range w.g.Meshes {
		w.edge("Geometry::"+m.Name, "Model::"+m.Name, "OO", w.id(registry.Geometry, m.Name), w.id(registry.MeshModel, m.Name), "")
	}
	for _, m := range w.g.Meshes {
		for _, mr := range m.Materials {
			w.edge("Material::"+mr.Name, "Model::"+m.Name, "OO", w.id(registry.Material, mr.Name), w.id(registry.MeshModel, m.Name), "")
		}
	}

	for _, m := range w.g.Meshes {
		if len(m.Shapes) > 0 {
			w.edge("Deformer::", "Geometry::"+m.Name, "OO", w.id(registry.BlendShape, m.Name), w.id(registry.Geometry, m.Name), "")
		}
	}
	for _, m := range w.g.Meshes {
		if m.Skinned() {
			w.edge("Deformer::Skin "+m.Name, "Geometry::"+m.Name, "OO", w.id(registry.Skin, m.Name), w.id(registry.Geometry, m.Name), "")
		}
	}
	for _, m := range w.g.Meshes {
		for _, s := range m.Shapes {
			w.edge("SubDeformer::"+s.Name, "Deformer::", "OO", w.id(registry.ShapeChannel, shapeKey(m, s)), w.id(registry.BlendShape, m.Name), "")
		}
	}
	for _, m := range w.g.Meshes {
		for _, s := range m.Shapes {
			key := shapeKey(m, s)
			w.edge("Geometry::"+s.Name, "SubDeformer::"+s.Name, "OO", w.id(registry.ShapeGeometry, key), w.id(registry.ShapeChannel, key), "")
		}
	}
	for _, m := range w.g.Meshes {
		if !m.Skinned() {
			continue
		}
		for _, c := range m.Clusters {
			w.edge("SubDeformer::Cluster "+c.Name, "Deformer::Skin "+m.Name, "OO", w.id(registry.Cluster, c.Name), w.id(registry.Skin, m.Name), "")
		}
	}
	for _, m := range w.g.Meshes {
		if !m.Skinned() {
			continue
		}
		for _, c := range m.Clusters {
			w.edge("Model::"+c.Bone.Name, "SubDeformer::Cluster "+c.Name, "OO", w.id(registry.BoneModel, c.Bone.Name), w.id(registry.Cluster, c.Name), "")
		}
	}

	for _, b := range w.g.Bones {
		if b.Parent != nil {
			w.edge("Model::"+b.Name, "Model::"+b.Parent.Name, "OO", w.id(registry.BoneModel, b.Name), w.id(registry.BoneModel, b.Parent.Name), "")
		}
	}
	for _, b := range w.g.Bones {
		w.edge("NodeAttribute::"+b.Name, "Model::"+b.Name, "OO", w.id(registry.BoneAttribute, b.Name), w.id(registry.BoneModel, b.Name), "")
	}

	for _, mr := range w.g.Materials {
		if mr.Texture != nil {
			w.edge("Texture::"+mr.Texture.Name, "Material::"+mr.Name, "OO", w.id(registry.Texture, mr.Texture.Name), w.id(registry.Material, mr.Name), "")
		}
	}
	for _, t := range w.g.Textures {
		w.edge("Video::"+t.Name, "Texture::"+t.Name, "OO", w.id(registry.Video, t.Name), w.id(registry.Texture, t.Name), "")
	}

	w.animConnections()

	for _, m := range w.g.Meshes {
		for _, name := range m.Groups {
			w.printf("\n\tConnect: \"OO\", \"Model::%s\", \"GroupSelection::%s\"", m.Name, name)
		}
	}
	w.str("\n}")
}
