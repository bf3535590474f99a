package fbx

import (
	"strconv"

	"github.com/Faultbox/fbxport/internal/registry"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// colorLayers returns the colour layers to write. Merging sums every layer
// into a single one named "colscombined".
func colorLayers(m *scene.Mesh, merge bool) []scene.ColorLayer {
	if !merge || len(m.ColorLayers) == 0 {
		return m.ColorLayers
	}
	sum := make([]math.Vec3, len(m.ColorLayers[0].Colors))
	for _, layer := range m.ColorLayers {
		for i := range sum {
			if i < len(layer.Colors) {
				sum[i] = sum[i].Add(layer.Colors[i])
			}
		}
	}
	return []scene.ColorLayer{{Name: "colscombined", Colors: sum}}
}

func (w *writer) geometry(m *scene.MeshRecord) {
	data := m.Data
	w.printf("\n\t;Model::%s, Geometry::%s", m.Name, m.Name)
	w.printf("\n\tGeometry: %d, \"Geometry::%s\", \"Mesh\" {", w.id(registry.Geometry, m.Name), m.Name)

	if len(m.Shapes) > 0 {
		w.str("\n\t\tProperties70:  {")
		for _, s := range m.Shapes {
			w.printf("\n\t\t\tP: \"%s\", \"Number\", \"\", \"A\",0", s.Name)
		}
		w.str("\n\t\t}")
	}

	w.vec3Block("\t\t", "Vertices", data.Positions, perLineVec3)

	var loops []int
	for _, f := range data.Faces {
		for i, v := range f {
			if i == len(f)-1 {
				v = ^v
			}
			loops = append(loops, v)
		}
	}
	w.intBlock("\t\t", "PolygonVertexIndex", loops, perLinePolygon)

	if w.opts.Edges && len(data.Edges) > 0 {
		w.arrayBlock("\t\t", "Edges", 2*len(data.Edges), len(data.Edges), perLineVec3, func(b []byte, i int) []byte {
			b = strconv.AppendInt(b, int64(data.Edges[i][0]), 10)
			b = append(b, ',')
			return strconv.AppendInt(b, int64(data.Edges[i][1]), 10)
		})
	}
	w.str("\n\t\tGeometryVersion: 124")

	w.layerVectors("LayerElementNormal", "Normals", m.Normals)
	if m.HasTangents() {
		w.layerVectors("LayerElementBinormal", "Binormals", m.Binormals)
		w.layerVectors("LayerElementTangent", "Tangents", m.Tangents)
	}

	smoothing := w.smoothing(m)

	colors := colorLayers(data, w.opts.MergeColors)
	for i, layer := range colors {
		w.colorLayer(i, layer)
	}
	for i, layer := range data.UVLayers {
		w.uvLayer(i, layer)
	}
	if len(m.Materials) > 0 {
		w.materialLayer(m)
	}

	w.str("\n\t\tLayer: 0 {\n\t\t\tVersion: 100")
	w.layerElement("LayerElementNormal", 0)
	if m.HasTangents() {
		w.layerElement("LayerElementBinormal", 0)
		w.layerElement("LayerElementTangent", 0)
	}
	if len(m.Materials) > 0 {
		w.layerElement("LayerElementMaterial", 0)
	}
	if smoothing {
		w.layerElement("LayerElementSmoothing", 0)
	}
	if len(colors) > 0 {
		w.layerElement("LayerElementColor", 0)
	}
	if len(data.UVLayers) > 0 {
		w.layerElement("LayerElementUV", 0)
	}
	w.str("\n\t\t}")

	layers := max(len(data.UVLayers), len(colors))
	for l := 1; l < layers; l++ {
		w.printf("\n\t\tLayer: %d {\n\t\t\tVersion: 100", l)
		if l < len(data.UVLayers) {
			w.layerElement("LayerElementUV", l)
		}
		if l < len(colors) {
			w.layerElement("LayerElementColor", l)
		}
		w.str("\n\t\t}")
	}
	w.str("\n\t}")
}

func (w *writer) layerElement(typ string, index int) {
	w.printf("\n\t\t\tLayerElement:  {\n\t\t\t\tType: %q\n\t\t\t\tTypedIndex: %d\n\t\t\t}", typ, index)
}

func (w *writer) layerHeader(element string, index, version int, name, mapping, reference string) {
	w.printf("\n\t\t%s: %d {\n\t\t\tVersion: %d\n\t\t\tName: \"%s\"", element, index, version, name)
	w.printf("\n\t\t\tMappingInformationType: %q\n\t\t\tReferenceInformationType: %q", mapping, reference)
}

func (w *writer) layerVectors(element, name string, vs []math.Vec3) {
	w.layerHeader(element, 0, 101, "", "ByPolygonVertex", "Direct")
	w.vec3Block("\t\t\t", name, vs, perLineNormals)
	w.str("\n\t\t}")
}

// smoothing writes the smoothing layer and reports whether it wrote one.
// Collision meshes always get per-face smoothing.
func (w *writer) smoothing(m *scene.MeshRecord) bool {
	data := m.Data
	mode := w.opts.Smoothing
	if m.Collision {
		mode = SmoothFace
	}
	switch mode {
	case SmoothFace:
		w.layerHeader("LayerElementSmoothing", 0, 102, "", "ByPolygon", "Direct")
		n := len(data.Faces)
		w.arrayBlock("\t\t\t", "Smoothing", n, n, perLineFlags, func(b []byte, i int) []byte {
			return appendBool(b, i < len(data.Smooth) && data.Smooth[i])
		})
	case SmoothEdge:
		w.layerHeader("LayerElementSmoothing", 0, 101, "", "ByEdge", "Direct")
		n := len(data.Edges)
		w.arrayBlock("\t\t\t", "Smoothing", n, n, perLineFlags, func(b []byte, i int) []byte {
			return appendBool(b, i < len(data.SharpEdges) && data.SharpEdges[i])
		})
	default:
		return false
	}
	w.str("\n\t\t}")
	return true
}

func (w *writer) colorLayer(index int, layer scene.ColorLayer) {
	n := len(layer.Colors)
	w.layerHeader("LayerElementColor", index, 101, layer.Name, "ByPolygonVertex", "IndexToDirect")
	w.arrayBlock("\t\t\t", "Colors", 4*n, n, perLineColor, func(b []byte, i int) []byte {
		b = appendVec3(b, layer.Colors[i], 4)
		return append(b, ",1"...)
	})
	w.arrayBlock("\t\t\t", "ColorIndex", n, n, perLineIndex, func(b []byte, i int) []byte {
		return strconv.AppendInt(b, int64(i), 10)
	})
	w.str("\n\t\t}")
}

func (w *writer) uvLayer(index int, layer scene.UVLayer) {
	n := len(layer.UV)
	w.layerHeader("LayerElementUV", index, 101, layer.Name, "ByPolygonVertex", "IndexToDirect")
	w.arrayBlock("\t\t\t", "UV", 2*n, n, perLineUV, func(b []byte, i int) []byte {
		return appendVec2(b, layer.UV[i], 6)
	})
	w.arrayBlock("\t\t\t", "UVIndex", n, n, perLineIndex, func(b []byte, i int) []byte {
		return strconv.AppendInt(b, int64(i), 10)
	})
	w.str("\n\t\t}")
}

func (w *writer) materialLayer(m *scene.MeshRecord) {
	if len(m.Materials) == 1 {
		w.layerHeader("LayerElementMaterial", 0, 101, "", "AllSame", "IndexToDirect")
		w.str("\n\t\t\tMaterials: *1 {\n\t\t\t\ta: 0\n\t\t\t}\n\t\t}")
		return
	}
	w.layerHeader("LayerElementMaterial", 0, 101, "", "ByPolygon", "IndexToDirect")
	w.intBlock("\t\t\t", "Materials", m.FaceMaterial, perLineIndex)
	w.str("\n\t\t}")
}
