// Package export runs one scene through the builder, the normal and tangent
// passes, the animation sampler and the FBX writer.
//
// All per-export state lives in a Context, so independent exports may run in
// parallel as long as each has its own Context.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/fbxport/internal/anim"
	"github.com/Faultbox/fbxport/internal/fbx"
	"github.com/Faultbox/fbxport/internal/normals"
	"github.com/Faultbox/fbxport/internal/registry"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/tangent"
	"github.com/Faultbox/fbxport/internal/texture"
)

// ErrOpenDestination is returned when the output file cannot be created.
var ErrOpenDestination = errors.New("export: cannot open destination")

// Options controls one export.
type Options struct {
	Build          scene.BuildOptions
	Normals        normals.Mode
	Tangents       tangent.Strategy
	TangentUVLayer int
	ProbeTextures  bool
	Animation      bool
	Anim           anim.Options
	Writer         fbx.Options
}

// DefaultOptions exports meshes and armatures with computed-or-supplied
// normals, no tangents and the current action.
func DefaultOptions() Options {
	return Options{
		Build:     scene.DefaultBuildOptions(),
		Animation: true,
		Anim: anim.Options{
			Optimize:  true,
			Precision: anim.DefaultPrecision,
		},
	}
}

// Report summarizes a finished export.
type Report struct {
	Path      string
	Meshes    int
	Bones     int
	Materials int
	Textures  int
	Takes     int
	Warnings  []string
}

// Context holds the state of one export: the id registry, the take namer,
// the texture size cache and the logger warnings go to.
type Context struct {
	IDs      *registry.Registry
	Takes    *scene.Namer
	Textures *texture.Cache
	Log      *zap.Logger

	report Report
}

// NewContext creates a Context logging to log. A nil logger discards output.
func NewContext(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		IDs:      registry.New(),
		Takes:    scene.NewNamer(),
		Textures: texture.NewCache(),
		Log:      log,
	}
}

// reset clears the id registry and take names so that every export
// through a Context numbers and names its objects from scratch. The texture
// cache is kept; it only holds image sizes.
func (c *Context) reset() {
	if c.IDs == nil {
		c.IDs = registry.New()
	} else {
		c.IDs.Reset()
	}
	c.Takes = scene.NewNamer()
	if c.Textures == nil {
		c.Textures = texture.NewCache()
	}
	if c.Log == nil {
		c.Log = zap.NewNop()
	}
}

// warn records a warning in the report and logs it.
func (c *Context) warn(object string, msgs ...string) {
	for _, msg := range msgs {
		if object != "" {
			c.report.Warnings = append(c.report.Warnings, object+": "+msg)
			c.Log.Warn(msg, zap.String("object", object))
			continue
		}
		c.report.Warnings = append(c.report.Warnings, msg)
		c.Log.Warn(msg)
	}
}

// Export writes sc to path. The file is written to a temporary file in the
// destination directory and renamed over path once complete; on failure no
// partial output is left behind. Problems that do not stop the export are
// returned as warnings in the report.
func Export(c *Context, sc *scene.Scene, opts Options, path string) (*Report, error) {
	if c == nil {
		c = NewContext(nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenDestination, path, err)
	}
	c.reset()
	defer c.reset()
	c.report = Report{Path: abs}

	g, err := scene.Build(sc, opts.Build)
	switch {
	case errors.Is(err, scene.ErrNothingToSave):
		c.warn("", "Nothing to export: the file will only hold an empty scene")
	case err != nil:
		return nil, fmt.Errorf("building scene: %w", err)
	}
	c.warn("", g.Warnings...)
	c.Log.Debug("scene built",
		zap.String("scene", sc.Name),
		zap.Int("meshes", len(g.Meshes)),
		zap.Int("bones", len(g.Bones)))

	for _, m := range g.Meshes {
		c.meshAttributes(m, opts)
	}
	if opts.ProbeTextures {
		c.warn("", c.Textures.Fill(g)...)
	}

	doc := &fbx.Document{Graph: g, IDs: c.IDs, Ambient: sc.Ambient}
	if opts.Animation {
		ao := opts.Anim
		if ao.GlobalMatrix == (mgl64.Mat4{}) {
			ao.GlobalMatrix = opts.Build.GlobalMatrix
		}
		doc.Anim = anim.Sample(sc, g, ao, c.Takes)
		c.warn("", doc.Anim.Warnings...)
	}

	wopts := opts.Writer
	wopts.Path = abs
	wopts.Dir = filepath.Dir(abs)
	if wopts.FPS <= 0 {
		wopts.FPS = opts.Anim.FPS
	}
	if wopts.FPS <= 0 {
		wopts.FPS = sc.FPS
	}

	if err := writeFile(abs, func(f *os.File) error {
		return fbx.Write(f, doc, wopts)
	}); err != nil {
		return nil, err
	}

	c.report.Meshes = len(g.Meshes)
	c.report.Bones = len(g.Bones)
	c.report.Materials = len(g.Materials)
	c.report.Textures = len(g.Textures)
	c.report.Takes = len(doc.Anim.Takes)
	c.Log.Info("export finished",
		zap.String("path", abs),
		zap.Int("meshes", c.report.Meshes),
		zap.Int("warnings", len(c.report.Warnings)))

	report := c.report
	return &report, nil
}

// meshAttributes fills the normals and tangents of one mesh record.
func (c *Context) meshAttributes(m *scene.MeshRecord, opts Options) {
	nr := normals.Resolve(m.Data, m.Object.Normals, opts.Normals, m.Collision)
	m.Normals, m.NormalSource = nr.Normals, nr.Source
	c.warn(m.Name, nr.Warnings...)

	tr := tangent.Compute(opts.Tangents, tangent.Input{
		Mesh:         m.Data,
		Normals:      m.Normals,
		NormalSource: m.NormalSource,
		UVLayer:      opts.TangentUVLayer,
		Host:         m.Object.Tangents,
		Collision:    m.Collision,
	})
	m.Tangents, m.Binormals = tr.Tangents, tr.Binormals
	c.warn(m.Name, tr.Warnings...)
}
