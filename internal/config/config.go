// Package config handles export preset loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/fbxport/internal/fbx"
	"github.com/Faultbox/fbxport/internal/normals"
	"github.com/Faultbox/fbxport/internal/tangent"
)

// Config holds all export settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Anim    AnimConfig    `yaml:"anim"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig selects what is exported.
type ExportConfig struct {
	Meshes          bool     `yaml:"meshes"`
	Armatures       bool     `yaml:"armatures"`
	DeformBonesOnly bool     `yaml:"deform_bones_only"`
	Selection       []string `yaml:"selection"` // object names; empty exports everything
	GlobalScale     float64  `yaml:"global_scale"`
	ProbeTextures   bool     `yaml:"probe_textures"`
}

// MeshConfig holds per-mesh output settings.
type MeshConfig struct {
	UseModifiers   bool   `yaml:"use_mesh_modifiers"`
	Smoothing      string `yaml:"smoothing"` // face, edge or off
	Edges          bool   `yaml:"edges"`
	MergeColors    bool   `yaml:"merge_colors"`
	Normals        string `yaml:"normals"`  // auto, override, external or computed
	Tangents       string `yaml:"tangents"` // none, host or legacy
	TangentUVLayer int    `yaml:"tangent_uv_layer"`
}

// AnimConfig holds animation sampling settings.
type AnimConfig struct {
	Enabled     bool    `yaml:"enabled"`
	AllActions  bool    `yaml:"all_actions"`
	DefaultTake bool    `yaml:"default_take"`
	Optimize    bool    `yaml:"optimize"`
	Precision   int     `yaml:"precision"`
	FPS         float64 `yaml:"fps"` // 0 uses the scene rate
}

// BatchConfig holds settings of the batch command.
type BatchConfig struct {
	Jobs int `yaml:"jobs"` // concurrent exports, 0 uses the CPU count
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the exporter's default preset.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Meshes:      true,
			Armatures:   true,
			GlobalScale: 1,
		},
		Mesh: MeshConfig{
			UseModifiers: true,
			Smoothing:    "face",
			Normals:      "auto",
			Tangents:     "none",
		},
		Anim: AnimConfig{
			Enabled:   true,
			Optimize:  true,
			Precision: 6,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every enumerated setting and reports all problems at once.
func (c *Config) Validate() error {
	var err error
	if _, e := fbx.ParseSmoothing(c.Mesh.Smoothing); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := normals.ParseMode(c.Mesh.Normals); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := tangent.ParseStrategy(c.Mesh.Tangents); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Mesh.TangentUVLayer < 0 {
		err = multierr.Append(err, fmt.Errorf("config: tangent_uv_layer %d is negative", c.Mesh.TangentUVLayer))
	}
	if c.Export.GlobalScale <= 0 {
		err = multierr.Append(err, fmt.Errorf("config: global_scale %g must be positive", c.Export.GlobalScale))
	}
	if c.Anim.Precision < 0 || c.Anim.Precision > 15 {
		err = multierr.Append(err, fmt.Errorf("config: anim precision %d out of range 0..15", c.Anim.Precision))
	}
	if c.Anim.FPS < 0 {
		err = multierr.Append(err, fmt.Errorf("config: anim fps %g is negative", c.Anim.FPS))
	}
	if c.Batch.Jobs < 0 {
		err = multierr.Append(err, fmt.Errorf("config: batch jobs %d is negative", c.Batch.Jobs))
	}
	return err
}
