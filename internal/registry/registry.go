// Package registry assigns the numeric object ids written to FBX files.
//
// Every category owns a disjoint id range, so an id can be classified by its
// magnitude alone. A Registry is scoped to one export; nothing is shared
// between exports.
package registry

import (
	"errors"
	"fmt"
)

// Fixed ids that do not belong to a category.
const (
	RootNodeID int64 = 0
	DocumentID int64 = 10
	PoseID     int64 = 100
)

// Category partitions the id space.
type Category int

const (
	Geometry Category = iota
	ShapeGeometry
	MeshModel
	BoneModel
	BoneAttribute
	Material
	Texture
	Video
	Skin
	Cluster
	BlendShape
	ShapeChannel
	AnimStack
	AnimLayer
	AnimCurveNode
	AnimCurve
	numCategories
)

// Range is the id interval [Base, Base+Width) owned by a category.
type Range struct {
	Base  int64
	Width int64
}

var ranges = [numCategories]Range{
	Geometry:      {100000, 10000},
	ShapeGeometry: {110000, 10000},
	MeshModel:     {200000, 10000},
	BoneModel:     {300000, 10000},
	BoneAttribute: {310000, 10000},
	Material:      {400000, 10000},
	Texture:       {410000, 10000},
	Video:         {420000, 10000},
	Skin:          {500000, 10000},
	Cluster:       {510000, 10000},
	BlendShape:    {600000, 10000},
	ShapeChannel:  {610000, 10000},
	AnimStack:     {700000, 10000},
	AnimLayer:     {710000, 10000},
	AnimCurveNode: {800000, 100000},
	AnimCurve:     {1000000, 1000000},
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Geometry:
		return "Geometry"
	case ShapeGeometry:
		return "ShapeGeometry"
	case MeshModel:
		return "MeshModel"
	case BoneModel:
		return "BoneModel"
	case BoneAttribute:
		return "BoneAttribute"
	case Material:
		return "Material"
	case Texture:
		return "Texture"
	case Video:
		return "Video"
	case Skin:
		return "Skin"
	case Cluster:
		return "Cluster"
	case BlendShape:
		return "BlendShape"
	case ShapeChannel:
		return "ShapeChannel"
	case AnimStack:
		return "AnimStack"
	case AnimLayer:
		return "AnimLayer"
	case AnimCurveNode:
		return "AnimCurveNode"
	case AnimCurve:
		return "AnimCurve"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// RangeOf returns the id range of a category.
func RangeOf(c Category) Range {
	return ranges[c]
}

var (
	ErrCategoryFull    = errors.New("registry: category id range exhausted")
	ErrUnknownCategory = errors.New("registry: unknown category")
)

type key struct {
	cat  Category
	name string
}

// Registry maps (category, name) pairs to ids.
//
// Registering a pair that is already present returns the id it was first
// given and does not consume an ordinal.
type Registry struct {
	ids   map[key]int64
	count [numCategories]int64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{ids: make(map[key]int64)}
}

// Register returns the id of (cat, name), assigning base+ordinal on first use.
func (r *Registry) Register(cat Category, name string) (int64, error) {
	if cat < 0 || cat >= numCategories {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, int(cat))
	}
	k := key{cat, name}
	if id, ok := r.ids[k]; ok {
		return id, nil
	}
	rg := ranges[cat]
	if r.count[cat] >= rg.Width {
		return 0, fmt.Errorf("%w: %s (%d entries)", ErrCategoryFull, cat, rg.Width)
	}
	id := rg.Base + r.count[cat]
	r.count[cat]++
	r.ids[k] = id
	return id, nil
}

// Resolve looks up a registered id. ok is false for unknown names.
func (r *Registry) Resolve(cat Category, name string) (id int64, ok bool) {
	id, ok = r.ids[key{cat, name}]
	return id, ok
}

// Count returns how many distinct names were registered in a category.
func (r *Registry) Count(cat Category) int {
	if cat < 0 || cat >= numCategories {
		return 0
	}
	return int(r.count[cat])
}

// Reset drops every entry.
func (r *Registry) Reset() {
	r.ids = make(map[key]int64)
	r.count = [numCategories]int64{}
}

// CategoryOf classifies an id by magnitude.
func CategoryOf(id int64) (Category, bool) {
	for c := Category(0); c < numCategories; c++ {
		rg := ranges[c]
		if id >= rg.Base && id < rg.Base+rg.Width {
			return c, true
		}
	}
	return 0, false
}
