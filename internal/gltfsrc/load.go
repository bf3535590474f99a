// Package gltfsrc loads glTF 2.0 files into the exporter's scene model.
//
// Nodes carrying a mesh become mesh objects, every skin becomes an armature
// whose joints are its bones, and animations are resampled at a fixed frame
// rate into the pose tracks the exporter samples from.
package gltfsrc

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/fbxport/internal/scene"
)

// DefaultFPS is the frame rate animations are resampled at.
const DefaultFPS = 24

var (
	ErrNoNodes     = errors.New("gltfsrc: document has no nodes")
	ErrBadAccessor = errors.New("gltfsrc: unexpected accessor layout")
)

// Options controls the conversion.
type Options struct {
	FPS    float64
	Logger *zap.Logger
}

// Load opens a .gltf or .glb file and converts it. Relative image URIs are
// resolved against the file's directory.
func Load(path string, opts Options) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	sc, err := Convert(doc, filepath.Dir(path), opts)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return sc, nil
}

type converter struct {
	doc  *gltf.Document
	dir  string
	opts Options
	log  *zap.Logger
	sc   *scene.Scene

	parent  []int        // node index to parent index, -1 for roots
	local   []mgl64.Mat4 // rest local matrices
	world   []mgl64.Mat4 // rest world matrices
	names   []string     // unique object or bone name per node
	used    map[string]bool
	joint   []int        // node index to skin index, -1 for non-joints
	objects map[int]*scene.Object

	armatures []*armature
	materials map[int]*scene.Material
	textures  map[int]*scene.Texture
}

// Convert turns a decoded document into a scene. dir resolves relative
// image URIs.
func Convert(doc *gltf.Document, dir string, opts Options) (*scene.Scene, error) {
	if len(doc.Nodes) == 0 {
		return nil, ErrNoNodes
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	c := &converter{
		doc:       doc,
		dir:       dir,
		opts:      opts,
		log:       opts.Logger,
		sc:        &scene.Scene{FPS: opts.FPS, FrameStart: 1, FrameEnd: 1},
		objects:   make(map[int]*scene.Object),
		materials: make(map[int]*scene.Material),
		textures:  make(map[int]*scene.Texture),
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if len(doc.Scenes) > 0 {
		i := 0
		if doc.Scene != nil {
			i = *doc.Scene
		}
		if i >= 0 && i < len(doc.Scenes) {
			c.sc.Name = doc.Scenes[i].Name
		}
	}

	c.hierarchy()
	c.nameNodes()
	if err := c.skins(); err != nil {
		return nil, err
	}
	for i, n := range doc.Nodes {
		if n.Mesh == nil {
			continue
		}
		if err := c.meshObject(i, n); err != nil {
			return nil, err
		}
	}
	c.emptyObjects()
	c.groups()
	if err := c.animations(); err != nil {
		return nil, err
	}
	return c.sc, nil
}

// hierarchy records parents and rest matrices of every node.
func (c *converter) hierarchy() {
	n := len(c.doc.Nodes)
	c.parent = make([]int, n)
	c.local = make([]mgl64.Mat4, n)
	c.world = make([]mgl64.Mat4, n)
	for i := range c.parent {
		c.parent[i] = -1
	}
	for i, node := range c.doc.Nodes {
		for _, child := range node.Children {
			if child >= 0 && child < n {
				c.parent[child] = i
			}
		}
		c.local[i] = restMatrix(node)
	}
	for i := range c.doc.Nodes {
		c.world[i] = c.worldOf(i, c.local)
	}
}

// worldOf composes local matrices up the parent chain.
func (c *converter) worldOf(i int, local []mgl64.Mat4) mgl64.Mat4 {
	m := local[i]
	for p := c.parent[i]; p >= 0; p = c.parent[p] {
		m = local[p].Mul4(m)
	}
	return m
}

// restMatrix returns a node's local matrix. An explicit matrix wins over
// the TRS properties.
func restMatrix(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != ([16]float64{}) && n.Matrix != [16]float64(mgl64.Ident4()) {
		return mgl64.Mat4(n.Matrix)
	}
	return trs(n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault())
}

func trs(t [3]float64, r [4]float64, s [3]float64) mgl64.Mat4 {
	rot := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize().Mat4()
	return mgl64.Translate3D(t[0], t[1], t[2]).Mul4(rot).Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// nameNodes gives every node a unique name. Objects and bones share one
// namespace in the scene model, so duplicates get a numeric suffix.
func (c *converter) nameNodes() {
	c.used = make(map[string]bool)
	c.names = make([]string, len(c.doc.Nodes))
	for i, n := range c.doc.Nodes {
		name := n.Name
		if name == "" && n.Mesh != nil && *n.Mesh < len(c.doc.Meshes) {
			name = c.doc.Meshes[*n.Mesh].Name
		}
		if name == "" {
			name = fmt.Sprintf("Node%d", i)
		}
		c.names[i] = c.unique(name)
	}
}

func (c *converter) unique(name string) string {
	for c.used[name] {
		name = scene.IncrementName(name)
	}
	c.used[name] = true
	return name
}

// emptyObjects adds the nodes that are neither meshes nor joints so that
// mesh parent links through them stay resolvable.
func (c *converter) emptyObjects() {
	for i := range c.doc.Nodes {
		if _, ok := c.objects[i]; ok || c.joint[i] >= 0 {
			continue
		}
		obj := &scene.Object{Name: c.names[i], Type: scene.TypeEmpty, World: c.world[i]}
		if p := c.parent[i]; p >= 0 {
			obj.Parent = c.names[p]
		}
		c.objects[i] = obj
		c.sc.Objects = append(c.sc.Objects, obj)
	}
}

// groups turns every named empty with mesh descendants into a group.
func (c *converter) groups() {
	for i, n := range c.doc.Nodes {
		obj := c.objects[i]
		if obj == nil || obj.Type != scene.TypeEmpty || n.Name == "" || len(n.Children) == 0 {
			continue
		}
		var members []string
		var walk func(int)
		walk = func(j int) {
			for _, child := range c.doc.Nodes[j].Children {
				if o := c.objects[child]; o != nil && o.Type == scene.TypeMesh {
					members = append(members, o.Name)
				}
				walk(child)
			}
		}
		walk(i)
		if len(members) > 0 {
			c.sc.Groups = append(c.sc.Groups, &scene.Group{Name: n.Name, Objects: members})
		}
	}
}

func (c *converter) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(c.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrBadAccessor, i)
	}
	return c.doc.Accessors[i], nil
}
