package gltfsrc

import (
	stdmath "math"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

const unlitExtension = "KHR_materials_unlit"

// material converts a glTF material once and returns the shared value.
func (c *converter) material(i int) *scene.Material {
	if i < 0 || i >= len(c.doc.Materials) {
		return nil
	}
	if m, ok := c.materials[i]; ok {
		return m
	}
	gm := c.doc.Materials[i]
	name := gm.Name
	if name == "" {
		name = "Material"
	}

	color := [4]float64{1, 1, 1, 1}
	roughness := 1.0
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		color = pbr.BaseColorFactorOrDefault()
		roughness = pbr.RoughnessFactorOrDefault()
	}
	_, unlit := gm.Extensions[unlitExtension]

	m := &scene.Material{
		Name:              name,
		Diffuse:           math.Vec3{X: color[0], Y: color[1], Z: color[2]},
		Specular:          math.Vec3{X: 1, Y: 1, Z: 1},
		DiffuseIntensity:  1,
		Ambient:           1,
		SpecularIntensity: 1 - roughness,
		Hardness:          1 + int(stdmath.Round((1-roughness)*510)),
		Alpha:             color[3],
		Emit:              stdmath.Max(gm.EmissiveFactor[0], stdmath.Max(gm.EmissiveFactor[1], gm.EmissiveFactor[2])),
		Shadeless:         unlit,
	}
	c.materials[i] = m
	return m
}

// baseColorTexture returns the image behind a material's base colour.
func (c *converter) baseColorTexture(i int) *scene.Texture {
	gm := c.doc.Materials[i]
	if gm.PBRMetallicRoughness == nil || gm.PBRMetallicRoughness.BaseColorTexture == nil {
		return nil
	}
	return c.texture(gm.PBRMetallicRoughness.BaseColorTexture.Index)
}

func (c *converter) texture(i int) *scene.Texture {
	if i < 0 || i >= len(c.doc.Textures) {
		return nil
	}
	if t, ok := c.textures[i]; ok {
		return t
	}
	gt := c.doc.Textures[i]
	t := &scene.Texture{Name: gt.Name}
	if gt.Source != nil && *gt.Source >= 0 && *gt.Source < len(c.doc.Images) {
		img := c.doc.Images[*gt.Source]
		if t.Name == "" {
			t.Name = img.Name
		}
		if img.URI != "" && !img.IsEmbeddedResource() {
			if p, err := url.PathUnescape(img.URI); err == nil {
				t.Path = filepath.Join(c.dir, filepath.FromSlash(p))
				if t.Name == "" {
					t.Name = path.Base(p)
				}
			}
		}
	}
	if t.Name == "" {
		t.Name = "Texture"
	}
	if gt.Sampler != nil && *gt.Sampler >= 0 && *gt.Sampler < len(c.doc.Samplers) {
		s := c.doc.Samplers[*gt.Sampler]
		t.ClampX = s.WrapS == gltf.WrapClampToEdge
		t.ClampY = s.WrapT == gltf.WrapClampToEdge
	}
	if t.Path == "" {
		c.log.Sugar().Warnf("texture %q is embedded, it is exported without a file", strings.TrimSpace(t.Name))
	}
	c.textures[i] = t
	return t
}
