// fbxport converts glTF scenes to FBX 7.3 ASCII files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/fbxport/internal/config"
	"github.com/Faultbox/fbxport/internal/export"
	"github.com/Faultbox/fbxport/internal/fbx"
	"github.com/Faultbox/fbxport/internal/gltfsrc"
	"github.com/Faultbox/fbxport/internal/logger"
	"github.com/Faultbox/fbxport/internal/normals"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/internal/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export", "x":
		cmdExport(args)
	case "batch":
		cmdBatch(args)
	case "normals":
		cmdNormals(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fbxport - glTF to FBX 7.3 ASCII exporter

Usage:
  fbxport <command> [options]

Commands:
  export <in.gltf> [out.fbx]          Export one scene
  batch <out-dir> <in.gltf>...        Export several scenes concurrently
  normals <file.fbx> <model>          Read the normals written for a model
  config                              Print or save the effective preset

Examples:
  fbxport export -tangents legacy hero.glb
  fbxport batch -jobs 4 ./fbx assets/*.gltf
  fbxport normals -scene hero.glb -o hero_fixed.fbx hero.fbx Body
  fbxport config -scale 0.01 -save`)
}

func fatal(err error) {
	logger.Error("fatal", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// setup parses args, loads the preset and installs the logger.
func setup(fs *flag.FlagSet, args []string) *config.Config {
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.Init(cfg.Logging.Level, fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func loadScene(path string, cfg *config.Config) (*scene.Scene, error) {
	return gltfsrc.Load(path, gltfsrc.Options{FPS: cfg.Anim.FPS, Logger: logger.Log})
}

func outputPath(in, dir string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".fbx"
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, base)
}

func printReport(r *export.Report) {
	fmt.Printf("%s: %d meshes, %d bones, %d materials, %d textures, %d takes\n",
		r.Path, r.Meshes, r.Bones, r.Materials, r.Textures, r.Takes)
	for _, w := range r.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fbxport export [options] <in.gltf> [out.fbx]")
		os.Exit(1)
	}
	in := fs.Arg(0)
	out := outputPath(in, "")
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}

	opts, err := export.OptionsFromConfig(cfg)
	if err != nil {
		fatal(err)
	}
	sc, err := loadScene(in, cfg)
	if err != nil {
		fatal(err)
	}
	report, err := export.Export(export.NewContext(logger.Log), sc, opts, out)
	if err != nil {
		fatal(err)
	}
	printReport(report)
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: fbxport batch [options] <out-dir> <in.gltf>...")
		os.Exit(1)
	}
	outDir := fs.Arg(0)
	inputs := fs.Args()[1:]

	opts, err := export.OptionsFromConfig(cfg)
	if err != nil {
		fatal(err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fatal(err)
	}

	jobs := cfg.Batch.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Images shared between scenes are probed once.
	textures := texture.NewCache()

	var (
		g      errgroup.Group
		mu     sync.Mutex
		errs   error
		failed int
	)
	g.SetLimit(jobs)
	for _, in := range inputs {
		g.Go(func() error {
			log := logger.Log.With(zap.String("input", in))
			sc, err := gltfsrc.Load(in, gltfsrc.Options{FPS: cfg.Anim.FPS, Logger: log})
			var report *export.Report
			if err == nil {
				ctx := export.NewContext(log)
				ctx.Textures = textures
				report, err = export.Export(ctx, sc, opts, outputPath(in, outDir))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", in, err))
				failed++
				return nil
			}
			printReport(report)
			return nil
		})
	}
	g.Wait()

	fmt.Printf("Exported %d of %d scenes\n", len(inputs)-failed, len(inputs))
	if errs != nil {
		for _, err := range multierr.Errors(errs) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func cmdNormals(args []string) {
	fs := flag.NewFlagSet("normals", flag.ExitOnError)
	scenePath := fs.String("scene", "", "Scene whose mesh the normals are checked against")
	out := fs.String("o", "", "Export the scene with the imported normals to this file")
	cfg := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: fbxport normals [options] <file.fbx> <model>")
		os.Exit(1)
	}
	file, model := fs.Arg(0), fs.Arg(1)

	f, err := os.Open(file)
	if err != nil {
		fatal(err)
	}
	list, err := fbx.ReadNormals(f, model)
	f.Close()
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%s: %d normals for %s\n", file, len(list), model)
	if *scenePath == "" {
		return
	}

	sc, err := loadScene(*scenePath, cfg)
	if err != nil {
		fatal(err)
	}
	var obj *scene.Object
	for _, o := range sc.Objects {
		if o.Type == scene.TypeMesh && (o.Name == model || scene.CleanName(o.Name) == model) {
			obj = o
			break
		}
	}
	if obj == nil {
		fatal(fmt.Errorf("%s has no mesh named %s", *scenePath, model))
	}

	msg, ok := fbx.Check(list, obj.Mesh.Faces)
	fmt.Println(msg)
	if !ok {
		os.Exit(1)
	}
	if *out == "" {
		return
	}

	obj.Normals = &scene.NormalTables{Split: true, PerLoop: fbx.PerLoop(list, obj.Mesh.Faces)}
	opts, err := export.OptionsFromConfig(cfg)
	if err != nil {
		fatal(err)
	}
	opts.Normals = normals.Override
	report, err := export.Export(export.NewContext(logger.Log), sc, opts, *out)
	if err != nil {
		fatal(err)
	}
	printReport(report)
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save the preset to the user config directory")
	to := fs.String("to", "", "Save the preset to this file")
	cfg := setup(fs, args)
	defer logger.Sync()

	switch {
	case *to != "":
		if err := cfg.SaveTo(*to); err != nil {
			fatal(err)
		}
		fmt.Printf("Saved %s\n", *to)
	case *save:
		path, err := cfg.Save()
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Saved %s\n", path)
	default:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fatal(err)
		}
		os.Stdout.Write(data)
	}
}
