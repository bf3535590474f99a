package config

import (
	"flag"
	"strings"
)

// Flags are the command-line overrides of a Config. Only flags that were set
// on the command line override the file.
type Flags struct {
	fs *flag.FlagSet

	config      *string
	debug       *bool
	logFile     *string
	scale       *float64
	selection   *string
	deformOnly  *bool
	probe       *bool
	smoothing   *string
	edges       *bool
	mergeColors *bool
	normals     *string
	tangents    *string
	uvLayer     *int
	noAnim      *bool
	allActions  *bool
	defaultTake *bool
	noOptimize  *bool
	precision   *int
	fps         *float64
	jobs        *int
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:          fs,
		config:      fs.String("config", "", "Path to config file"),
		debug:       fs.Bool("debug", false, "Enable debug logging"),
		logFile:     fs.String("log-file", "", "Also log to this file"),
		scale:       fs.Float64("scale", 0, "Global scale"),
		selection:   fs.String("select", "", "Comma separated object names to export"),
		deformOnly:  fs.Bool("deform-only", false, "Export deforming bones and their parents only"),
		probe:       fs.Bool("probe-textures", false, "Read image sizes for texture records"),
		smoothing:   fs.String("smoothing", "", "Smoothing: face, edge or off"),
		edges:       fs.Bool("edges", false, "Write the Edges array"),
		mergeColors: fs.Bool("merge-colors", false, "Merge vertex colour layers"),
		normals:     fs.String("normals", "", "Normals: auto, override, external or computed"),
		tangents:    fs.String("tangents", "", "Tangents: none, host or legacy"),
		uvLayer:     fs.Int("tangent-uv", 0, "UV layer used for tangents"),
		noAnim:      fs.Bool("no-anim", false, "Do not export animation"),
		allActions:  fs.Bool("all-actions", false, "Export every action as a take"),
		defaultTake: fs.Bool("default-take", false, "Export a single Default Take"),
		noOptimize:  fs.Bool("no-optimize", false, "Keep every sampled key"),
		precision:   fs.Int("precision", 0, "Key decimation precision in decimal places"),
		fps:         fs.Float64("fps", 0, "Animation frame rate"),
		jobs:        fs.Int("jobs", 0, "Concurrent exports in batch mode"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply copies the flags that were set onto cfg.
func (f *Flags) apply(cfg *Config) {
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["debug"] && *f.debug {
		cfg.Logging.Level = "debug"
	}
	if set["log-file"] {
		cfg.Logging.LogFile = *f.logFile
	}
	if set["scale"] {
		cfg.Export.GlobalScale = *f.scale
	}
	if set["select"] {
		cfg.Export.Selection = splitList(*f.selection)
	}
	if set["deform-only"] {
		cfg.Export.DeformBonesOnly = *f.deformOnly
	}
	if set["probe-textures"] {
		cfg.Export.ProbeTextures = *f.probe
	}
	if set["smoothing"] {
		cfg.Mesh.Smoothing = *f.smoothing
	}
	if set["edges"] {
		cfg.Mesh.Edges = *f.edges
	}
	if set["merge-colors"] {
		cfg.Mesh.MergeColors = *f.mergeColors
	}
	if set["normals"] {
		cfg.Mesh.Normals = *f.normals
	}
	if set["tangents"] {
		cfg.Mesh.Tangents = *f.tangents
	}
	if set["tangent-uv"] {
		cfg.Mesh.TangentUVLayer = *f.uvLayer
	}
	if set["no-anim"] {
		cfg.Anim.Enabled = !*f.noAnim
	}
	if set["all-actions"] {
		cfg.Anim.AllActions = *f.allActions
	}
	if set["default-take"] {
		cfg.Anim.DefaultTake = *f.defaultTake
	}
	if set["no-optimize"] {
		cfg.Anim.Optimize = !*f.noOptimize
	}
	if set["precision"] {
		cfg.Anim.Precision = *f.precision
	}
	if set["fps"] {
		cfg.Anim.FPS = *f.fps
	}
	if set["jobs"] {
		cfg.Batch.Jobs = *f.jobs
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
