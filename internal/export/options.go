package export

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/fbxport/internal/anim"
	"github.com/Faultbox/fbxport/internal/config"
	"github.com/Faultbox/fbxport/internal/fbx"
	"github.com/Faultbox/fbxport/internal/normals"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/tangent"
)

// OptionsFromConfig turns a loaded preset into export options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	// Validate has already rejected unknown names.
	smoothing, _ := fbx.ParseSmoothing(cfg.Mesh.Smoothing)
	mode, _ := normals.ParseMode(cfg.Mesh.Normals)
	strategy, _ := tangent.ParseStrategy(cfg.Mesh.Tangents)

	s := cfg.Export.GlobalScale
	global := mgl64.Scale3D(s, s, s)

	return Options{
		Build: scene.BuildOptions{
			Meshes:          cfg.Export.Meshes,
			Armatures:       cfg.Export.Armatures,
			UseModifiers:    cfg.Mesh.UseModifiers,
			DeformBonesOnly: cfg.Export.DeformBonesOnly,
			Selection:       cfg.Export.Selection,
			GlobalMatrix:    global,
		},
		Normals:        mode,
		Tangents:       strategy,
		TangentUVLayer: cfg.Mesh.TangentUVLayer,
		ProbeTextures:  cfg.Export.ProbeTextures,
		Animation:      cfg.Anim.Enabled,
		Anim: anim.Options{
			FPS:          cfg.Anim.FPS,
			Optimize:     cfg.Anim.Optimize,
			Precision:    cfg.Anim.Precision,
			AllActions:   cfg.Anim.AllActions,
			DefaultTake:  cfg.Anim.DefaultTake,
			GlobalMatrix: global,
		},
		Writer: fbx.Options{
			Smoothing:   smoothing,
			Edges:       cfg.Mesh.Edges,
			MergeColors: cfg.Mesh.MergeColors,
			FPS:         cfg.Anim.FPS,
		},
	}, nil
}
