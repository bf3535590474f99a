package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/fbxport/internal/config"
	"github.com/Faultbox/fbxport/internal/fbx"
	"github.com/Faultbox/fbxport/internal/registry"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/scene/scenetest"
	"github.com/Faultbox/fbxport/internal/tangent"
)

func cubeScene() *scene.Scene {
	return &scene.Scene{
		Name: "Scene",
		FPS:  24,
		Objects: []*scene.Object{
			scenetest.MeshObject("Cube", scenetest.CubeMesh()),
			scenetest.MeshObject("UCX_Box", scenetest.CubeMesh()),
		},
	}
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// onlyFile fails unless dir holds exactly the named file.
func onlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 1 || names[0] != name {
		t.Errorf("directory holds %v, want only %s", names, name)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.fbx")

	opts := DefaultOptions()
	opts.Tangents = tangent.Legacy
	report, err := Export(NewContext(nil), cubeScene(), opts, path)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if report.Path != path || report.Meshes != 2 {
		t.Errorf("report = %+v, want 2 meshes written to %s", report, path)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", report.Warnings)
	}
	onlyFile(t, dir, "cube.fbx")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "; FBX 7.3.0 project file") {
		t.Errorf("file starts with %q", out[:min(40, len(out))])
	}
	// The collision hull gets no tangents.
	if n := strings.Count(out, "LayerElementTangent: 0"); n != 1 {
		t.Errorf("found %d tangent layers, want 1", n)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	got, err := fbx.ReadNormals(f, "Cube")
	if err != nil {
		t.Fatalf("ReadNormals() error = %v", err)
	}
	if len(got) != 24 {
		t.Errorf("read %d normals, want 24", len(got))
	}
}

func riggedScene() *scene.Scene {
	rig := scenetest.Rig("Armature")
	rig.Action = "Wave"
	return &scene.Scene{
		Name:       "Scene",
		FPS:        24,
		FrameStart: 1,
		FrameEnd:   2,
		Objects:    []*scene.Object{rig},
		Actions: []*scene.Action{{
			Name:  "Wave",
			Start: 1,
			End:   2,
			Poses: map[string][]mgl64.Mat4{
				"Spine": {mgl64.Translate3D(0, 0, 1), mgl64.Translate3D(0, 0.5, 1)},
			},
		}},
	}
}

func TestExportReusesContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.fbx")
	opts := DefaultOptions()
	opts.Writer.Time = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	c := NewContext(nil)

	var outputs [2]string
	for i := range outputs {
		if _, err := Export(c, riggedScene(), opts, path); err != nil {
			t.Fatalf("Export() #%d error = %v", i+1, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		outputs[i] = string(data)
	}
	if !strings.Contains(outputs[1], `Take: "Wave"`) {
		t.Error(`second export does not hold Take: "Wave"`)
	}
	if outputs[0] != outputs[1] {
		t.Error("exporting the same scene twice through one context gave different files")
	}
	if n := c.IDs.Count(registry.BoneModel); n != 0 {
		t.Errorf("registry holds %d bone ids after export, want 0", n)
	}
}

func TestExportWarnings(t *testing.T) {
	log, logs := observed()
	opts := DefaultOptions()
	opts.Tangents = tangent.Legacy
	opts.TangentUVLayer = 3

	report, err := Export(NewContext(log), cubeScene(), opts, filepath.Join(t.TempDir(), "cube.fbx"))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := "Cube: UV layer 3 not found: Tangents will not be calculated."
	if len(report.Warnings) != 1 || report.Warnings[0] != want {
		t.Errorf("warnings = %q, want [%q]", report.Warnings, want)
	}

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warns) != 1 {
		t.Fatalf("logged %d warnings, want 1", len(warns))
	}
	if obj := warns[0].ContextMap()["object"]; obj != "Cube" {
		t.Errorf("warning object field = %v, want Cube", obj)
	}
	if logs.FilterMessage("export finished").Len() != 1 {
		t.Error("export finished was not logged")
	}
}

func TestExportEmptyScene(t *testing.T) {
	dir := t.TempDir()
	report, err := Export(NewContext(nil), &scene.Scene{Name: "Empty"}, DefaultOptions(), filepath.Join(dir, "empty.fbx"))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(report.Warnings) == 0 || !strings.HasPrefix(report.Warnings[0], "Nothing to export") {
		t.Errorf("warnings = %v, want a nothing to export warning", report.Warnings)
	}
	onlyFile(t, dir, "empty.fbx")
}

func TestExportSkipsBrokenMesh(t *testing.T) {
	dir := t.TempDir()
	bad := scenetest.CubeMesh()
	bad.Faces[5] = []int{0, 1, 99}
	sc := &scene.Scene{Name: "Scene", Objects: []*scene.Object{
		scenetest.MeshObject("Good", scenetest.CubeMesh()),
		scenetest.MeshObject("Bad", bad),
	}}

	report, err := Export(NewContext(nil), sc, DefaultOptions(), filepath.Join(dir, "mixed.fbx"))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if report.Meshes != 1 {
		t.Errorf("report.Meshes = %d, want 1", report.Meshes)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "mesh skipped") {
		t.Errorf("warnings = %v, want the skipped mesh", report.Warnings)
	}
	onlyFile(t, dir, "mixed.fbx")
}

func TestExportOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "cube.fbx")
	_, err := Export(NewContext(nil), cubeScene(), DefaultOptions(), path)
	if !errors.Is(err, ErrOpenDestination) {
		t.Errorf("Export() error = %v, want ErrOpenDestination", err)
	}
	if err != nil && !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the path", err)
	}
}

func TestExportNilScene(t *testing.T) {
	dir := t.TempDir()
	if _, err := Export(nil, nil, DefaultOptions(), filepath.Join(dir, "x.fbx")); !errors.Is(err, scene.ErrNoScene) {
		t.Errorf("Export(nil) error = %v, want ErrNoScene", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("nil scene left %d files behind", len(entries))
	}
}

func TestWriteFileRollback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fbx")
	boom := errors.New("disk full")

	err := writeFile(path, func(f *os.File) error {
		if _, err := f.WriteString("; FBX 7.3.0 project file\n"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("writeFile() error = %v, want %v", err, boom)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("partial output left behind: %d files", len(entries))
	}
}

func TestWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fbx")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	// A failed write keeps the previous file.
	_ = writeFile(path, func(f *os.File) error { return errors.New("fail") })
	if got, _ := os.ReadFile(path); string(got) != "old" {
		t.Errorf("after failed write file = %q, want old", got)
	}

	if err := writeFile(path, func(f *os.File) error {
		_, err := f.WriteString("new")
		return err
	}); err != nil {
		t.Fatalf("writeFile() error = %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "new" {
		t.Errorf("file = %q, want new", got)
	}
	onlyFile(t, dir, "out.fbx")
}

func TestParallelExports(t *testing.T) {
	dir := t.TempDir()
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func(i int) {
			path := filepath.Join(dir, "cube"+string(rune('a'+i))+".fbx")
			_, err := Export(NewContext(nil), cubeScene(), DefaultOptions(), path)
			errs <- err
		}(i)
	}
	for i := 0; i < 4; i++ {
		if err := <-errs; err != nil {
			t.Errorf("Export() error = %v", err)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Export.GlobalScale = 0.01
	cfg.Export.Selection = []string{"Cube"}
	cfg.Mesh.Tangents = "legacy"
	cfg.Mesh.Smoothing = "edge"
	cfg.Anim.AllActions = true

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig() error = %v", err)
	}
	if opts.Build.GlobalMatrix[0] != 0.01 || opts.Anim.GlobalMatrix[10] != 0.01 {
		t.Errorf("global matrix = %v, want a 0.01 scale", opts.Build.GlobalMatrix)
	}
	if opts.Tangents != tangent.Legacy || opts.Writer.Smoothing != fbx.SmoothEdge {
		t.Errorf("Tangents = %v, Smoothing = %v, want legacy, edge", opts.Tangents, opts.Writer.Smoothing)
	}
	if !opts.Anim.AllActions || !opts.Animation || len(opts.Build.Selection) != 1 {
		t.Errorf("options = %+v, want all actions and the selection carried over", opts)
	}

	cfg.Mesh.Normals = "guess"
	if _, err := OptionsFromConfig(cfg); err == nil {
		t.Error("OptionsFromConfig() with an unknown normal mode error = nil, want error")
	}
}
