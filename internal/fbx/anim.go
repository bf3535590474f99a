package fbx

import (
	"strconv"
	"strings"

	"github.com/Faultbox/fbxport/internal/anim"
	"github.com/Faultbox/fbxport/internal/registry"
)

// channelProperty is the model property each transform channel animates.
var channelProperty = [3]string{"Lcl Translation", "Lcl Rotation", "Lcl Scaling"}

var channelColor = [3]string{"1,0,0", "0,1,0", "0,0,1"}

const baseLayer = "BaseLayer"

func (w *writer) time(frame int) int64 {
	return anim.FBXTime(frame, w.opts.FPS)
}

// animObjects writes the stack, layer, curve node and curve objects of every
// take.
func (w *writer) animObjects() {
	for _, take := range w.doc.Anim.Takes {
		start, stop := w.time(take.Start), w.time(take.End)
		w.printf("\n\tAnimationStack: %d, \"AnimStack::%s\", \"\" {", w.id(registry.AnimStack, take.Name), take.Name)
		w.printf(`
		Properties70:  {
			P: "LocalStart", "KTime", "Time", "",%d
			P: "LocalStop", "KTime", "Time", "",%d
			P: "ReferenceStart", "KTime", "Time", "",%d
			P: "ReferenceStop", "KTime", "Time", "",%d
		}
	}`, start, stop, start, stop)
		w.printf("\n\tAnimationLayer: %d, \"AnimLayer::%s\", \"\" {\n\t}", w.id(registry.AnimLayer, take.Name), baseLayer)

		for _, tr := range take.Tracks {
			for c := range tr.Curves {
				w.curveNode(take, tr, c)
			}
		}
	}
}

func (w *writer) curveNode(take *anim.Take, tr *anim.Track, c int) {
	w.printf("\n\tAnimationCurveNode: %d, \"AnimCurveNode::%s\", \"\" {", w.id(registry.AnimCurveNode, curveNodeKey(take, tr, c)), anim.ChannelNames[c])
	w.str("\n\t\tProperties70:  {")
	for axis := range tr.Curves[c] {
		w.printf("\n\t\t\tP: \"d|%s\", \"Number\", \"\", \"A\",%.15f", axisNames[axis], tr.Default(c, axis))
	}
	w.str("\n\t\t}\n\t}")

	for axis, keys := range tr.Curves[c] {
		w.printf("\n\tAnimationCurve: %d, \"AnimCurve::\", \"\" {", w.id(registry.AnimCurve, curveKey(take, tr, c, axis)))
		w.printf("\n\t\tDefault: %.15f\n\t\tKeyVer: 4008", tr.Default(c, axis))
		w.arrayBlock("\t\t", "KeyTime", len(keys), len(keys), perLineIndex, func(b []byte, i int) []byte {
			return strconv.AppendInt(b, w.time(keys[i].Frame), 10)
		})
		w.arrayBlock("\t\t", "KeyValueFloat", len(keys), len(keys), perLineNormals, func(b []byte, i int) []byte {
			return appendFloat(b, keys[i].Value, 15)
		})
		w.str("\n\t\tKeyAttrFlags: *1 {\n\t\t\ta: 4\n\t\t}")
		w.str("\n\t\tKeyAttrDataFloat: *4 {\n\t\t\ta: 0,0,255790911,0\n\t\t}")
		w.printf("\n\t\tKeyAttrRefCount: *1 {\n\t\t\ta: %d\n\t\t}", len(keys))
		w.str("\n\t}")
	}
}

func (w *writer) animConnections() {
	for _, take := range w.doc.Anim.Takes {
		layer := w.id(registry.AnimLayer, take.Name)
		w.edge("AnimLayer::"+baseLayer, "AnimStack::"+take.Name, "OO", layer, w.id(registry.AnimStack, take.Name), "")
		for _, tr := range take.Tracks {
			model := w.modelID(tr.Model)
			for c := range tr.Curves {
				node := w.id(registry.AnimCurveNode, curveNodeKey(take, tr, c))
				nodeName := "AnimCurveNode::" + anim.ChannelNames[c]
				w.edge(nodeName, "AnimLayer::"+baseLayer, "OO", node, layer, "")
				w.edge(nodeName, "Model::"+tr.Model, "OP", node, model, channelProperty[c])
				for axis := range tr.Curves[c] {
					curve := w.id(registry.AnimCurve, curveKey(take, tr, c, axis))
					w.edge("AnimCurve::", nodeName, "OP", curve, node, "d|"+axisNames[axis])
				}
			}
		}
	}
}

// takes writes the legacy Takes section with one Take per sampled action.
func (w *writer) takes() {
	res := w.doc.Anim
	if len(res.Takes) == 0 {
		w.str("\n;Takes and animation section\n;----------------------------------------------------\n\nTakes:  {\n\tCurrent: \"\"\n}")
		return
	}
	w.str("\n;Takes and animation section\n;----------------------------------------------------\n\nTakes:  {")
	w.printf("\n\tCurrent: \"%s\"", res.Current)
	for _, take := range res.Takes {
		start, stop := w.time(take.Start), w.time(take.End)
		w.printf("\n\tTake: \"%s\" {", take.Name)
		w.printf("\n\t\tFileName: \"%s.tak\"", strings.ReplaceAll(take.Name, " ", "_"))
		w.printf("\n\t\tLocalTime: %d,%d", start, stop)
		w.printf("\n\t\tReferenceTime: %d,%d", start, stop)
		w.str("\n\n\t\t;Models animation\n\t\t;----------------------------------------------------")
		for _, tr := range take.Tracks {
			w.takeModel(tr)
		}
		w.str("\n\t}")
	}
	w.str("\n}")
}

func (w *writer) takeModel(tr *anim.Track) {
	w.printf("\n\t\tModel: \"Model::%s\" {", tr.Model)
	w.str("\n\t\t\tVersion: 1.1\n\t\t\tChannel: \"Transform\" {")
	for c, name := range anim.ChannelNames {
		w.printf("\n\t\t\t\tChannel: %q {", name)
		for axis, keys := range tr.Curves[c] {
			w.printf("\n\t\t\t\t\tChannel: %q {", axisNames[axis])
			w.printf("\n\t\t\t\t\t\tDefault: %.15f", tr.Default(c, axis))
			w.str("\n\t\t\t\t\t\tKeyVer: 4005")
			w.printf("\n\t\t\t\t\t\tKeyCount: %d", len(keys))
			w.str("\n\t\t\t\t\t\tKey: ")
			for i, k := range keys {
				if i > 0 {
					w.str(",")
				}
				w.printf("\n\t\t\t\t\t\t\t%d,%.15f,L", w.time(k.Frame), k.Value)
			}
			w.printf("\n\t\t\t\t\t\tColor: %s", channelColor[axis])
			w.str("\n\t\t\t\t\t}")
		}
		w.printf("\n\t\t\t\t\tLayerType: %d", c+1)
		w.str("\n\t\t\t\t}")
	}
	w.str("\n\t\t\t}\n\t\t}")
}
