package gltfsrc

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// minBoneLength is the length given to a leaf joint with nothing to measure.
const minBoneLength = 0.1

type armature struct {
	obj    *scene.Object
	root   int // node whose space is armature space, -1 for the scene root
	joints []int
}

// skins builds one armature object per skin. A joint listed by several
// skins belongs to the first.
func (c *converter) skins() error {
	c.joint = make([]int, len(c.doc.Nodes))
	for i := range c.joint {
		c.joint[i] = -1
	}
	for si, skin := range c.doc.Skins {
		for _, j := range skin.Joints {
			if j >= 0 && j < len(c.joint) && c.joint[j] < 0 {
				c.joint[j] = si
			}
		}
	}

	for si, skin := range c.doc.Skins {
		var joints []int
		for _, j := range skin.Joints {
			if j >= 0 && j < len(c.joint) && c.joint[j] == si {
				joints = append(joints, j)
			}
		}
		if len(joints) == 0 {
			c.log.Sugar().Warnf("skin %d has no joints, skipped", si)
			c.armatures = append(c.armatures, nil)
			continue
		}
		sort.SliceStable(joints, func(a, b int) bool { return c.depth(joints[a]) < c.depth(joints[b]) })

		ar := &armature{root: c.parent[joints[0]], joints: joints}
		armWorld := mgl64.Ident4()
		if ar.root >= 0 {
			armWorld = c.world[ar.root]
		}

		var name string
		// An empty holding the joints is the armature itself.
		if r := ar.root; r >= 0 && c.doc.Nodes[r].Mesh == nil && c.joint[r] < 0 && c.objects[r] == nil {
			name = c.names[r]
		} else {
			name = skin.Name
			if name == "" {
				name = "Armature"
			}
			name = c.unique(name)
		}

		ar.obj = &scene.Object{
			Name:     name,
			Type:     scene.TypeArmature,
			World:    armWorld,
			Armature: &scene.Armature{Bones: c.bones(si, joints, armWorld.Inv())},
		}
		if r := ar.root; r >= 0 && c.names[r] == name {
			c.objects[r] = ar.obj
			if p := c.parent[r]; p >= 0 {
				ar.obj.Parent = c.names[p]
			}
		}
		c.armatures = append(c.armatures, ar)
		c.sc.Objects = append(c.sc.Objects, ar.obj)
	}
	return nil
}

func (c *converter) depth(i int) int {
	d := 0
	for p := c.parent[i]; p >= 0; p = c.parent[p] {
		d++
	}
	return d
}

// bones converts joints, already ordered parents first, to armature space.
// Bones point along their local Y axis up to their first child joint.
func (c *converter) bones(skin int, joints []int, toArmature mgl64.Mat4) []*scene.Bone {
	bones := make([]*scene.Bone, len(joints))
	byNode := make(map[int]*scene.Bone, len(joints))
	for k, j := range joints {
		rest := toArmature.Mul4(c.world[j])
		b := &scene.Bone{
			Name:   c.names[j],
			Rest:   rest,
			Head:   math.Vec3{X: rest[12], Y: rest[13], Z: rest[14]},
			Deform: true,
		}
		if p := c.parent[j]; p >= 0 && c.joint[p] == skin {
			b.Parent = c.names[p]
		}
		bones[k] = b
		byNode[j] = b
	}
	for _, j := range joints {
		b := byNode[j]
		length := 0.0
		for _, child := range c.doc.Nodes[j].Children {
			if cb, ok := byNode[child]; ok {
				length = b.Head.Distance(cb.Head)
				break
			}
		}
		if length == 0 {
			length = minBoneLength
		}
		axis := math.FromMgl(b.Rest.Col(1).Vec3()).Normalize()
		b.Tail = b.Head.Add(axis.Scale(length))
	}
	return bones
}
