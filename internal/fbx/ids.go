package fbx

import (
	"errors"
	"fmt"

	"github.com/Faultbox/fbxport/internal/anim"
	"github.com/Faultbox/fbxport/internal/registry"
	"github.com/Faultbox/fbxport/internal/scene"
)

var ErrNoGraph = errors.New("fbx: nothing to write")

var axisNames = [3]string{"X", "Y", "Z"}

func shapeKey(m *scene.MeshRecord, s *scene.ShapeRecord) string {
	return m.Name + "|" + s.Name
}

func curveNodeKey(take *anim.Take, tr *anim.Track, channel int) string {
	return take.Name + "|" + tr.Model + "|" + anim.ChannelNames[channel]
}

func curveKey(take *anim.Take, tr *anim.Track, channel, axis int) string {
	return curveNodeKey(take, tr, channel) + "|" + axisNames[axis]
}

// assign registers an id for every object that will be written.
func (w *writer) assign() error {
	var err error
	reg := func(cat registry.Category, name string) {
		if err != nil {
			return
		}
		if _, e := w.ids.Register(cat, name); e != nil {
			err = fmt.Errorf("assigning id to %s %q: %w", cat, name, e)
		}
	}

	for _, m := range w.g.Meshes {
		reg(registry.Geometry, m.Name)
	}
	for _, m := range w.g.Meshes {
		for _, s := range m.Shapes {
			reg(registry.ShapeGeometry, shapeKey(m, s))
		}
	}
	for _, b := range w.g.Bones {
		reg(registry.BoneAttribute, b.Name)
	}
	for _, m := range w.g.Meshes {
		reg(registry.MeshModel, m.Name)
	}
	for _, b := range w.g.Bones {
		reg(registry.BoneModel, b.Name)
	}
	for _, mr := range w.g.Materials {
		reg(registry.Material, mr.Name)
	}
	for _, t := range w.g.Textures {
		reg(registry.Video, t.Name)
	}
	for _, t := range w.g.Textures {
		reg(registry.Texture, t.Name)
	}
	for _, m := range w.g.Meshes {
		if !m.Skinned() {
			continue
		}
		reg(registry.Skin, m.Name)
		for _, c := range m.Clusters {
			reg(registry.Cluster, c.Name)
		}
	}
	for _, m := range w.g.Meshes {
		if len(m.Shapes) == 0 {
			continue
		}
		reg(registry.BlendShape, m.Name)
		for _, s := range m.Shapes {
			reg(registry.ShapeChannel, shapeKey(m, s))
		}
	}
	for _, take := range w.doc.Anim.Takes {
		reg(registry.AnimStack, take.Name)
		reg(registry.AnimLayer, take.Name)
		for _, tr := range take.Tracks {
			for c := range tr.Curves {
				reg(registry.AnimCurveNode, curveNodeKey(take, tr, c))
				for axis := range tr.Curves[c] {
					reg(registry.AnimCurve, curveKey(take, tr, c, axis))
				}
			}
		}
	}
	return err
}

// id returns a registered id. Every object is registered by assign before
// anything is written, so a miss is a programming error.
func (w *writer) id(cat registry.Category, name string) int64 {
	id, ok := w.ids.Resolve(cat, name)
	if !ok {
		panic(fmt.Sprintf("fbx: %s %q has no id", cat, name))
	}
	return id
}

// modelID resolves a model name to its mesh or bone id.
func (w *writer) modelID(name string) int64 {
	if id, ok := w.ids.Resolve(registry.MeshModel, name); ok {
		return id
	}
	return w.id(registry.BoneModel, name)
}

// counts is the number of objects of each Definitions type.
type counts struct {
	Models, Geometries, Attributes int
	Materials, Textures, Videos    int
	Deformers, Poses               int
	Stacks, Layers, Nodes, Curves  int
	Groups                         int
}

func (c counts) total() int {
	return 1 + c.Models + c.Geometries + c.Attributes + c.Materials + c.Textures + c.Videos +
		c.Deformers + c.Poses + c.Stacks + c.Layers + c.Nodes + c.Curves + c.Groups
}

func countObjects(g *scene.Graph, res anim.Result) counts {
	c := counts{
		Models:     len(g.Meshes) + len(g.Bones),
		Geometries: len(g.Meshes),
		Attributes: len(g.Bones),
		Materials:  len(g.Materials),
		Textures:   len(g.Textures),
		Videos:     len(g.Textures),
		Poses:      1,
		Groups:     len(g.Groups),
	}
	for _, m := range g.Meshes {
		c.Geometries += len(m.Shapes)
		if m.Skinned() {
			c.Deformers += 1 + len(m.Clusters)
		}
		if len(m.Shapes) > 0 {
			c.Deformers += 1 + len(m.Shapes)
		}
	}
	for _, take := range res.Takes {
		c.Stacks++
		c.Layers++
		c.Nodes += 3 * len(take.Tracks)
		c.Curves += 9 * len(take.Tracks)
	}
	return c
}
