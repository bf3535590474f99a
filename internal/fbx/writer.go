// Package fbx writes export graphs as FBX 7.3 ASCII files and reads back the
// normals written for a model.
package fbx

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Faultbox/fbxport/internal/anim"
	"github.com/Faultbox/fbxport/internal/registry"
	"github.com/Faultbox/fbxport/internal/scene"
	"github.com/Faultbox/fbxport/pkg/math"
)

// Smoothing selects how smoothing information is written.
type Smoothing int

const (
	SmoothFace Smoothing = iota
	SmoothEdge
	SmoothOff
)

// String returns the mode name as used in config files.
func (s Smoothing) String() string {
	switch s {
	case SmoothEdge:
		return "edge"
	case SmoothOff:
		return "off"
	default:
		return "face"
	}
}

// ParseSmoothing parses a smoothing mode name, case-insensitively.
func ParseSmoothing(s string) (Smoothing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "face":
		return SmoothFace, nil
	case "edge":
		return SmoothEdge, nil
	case "off", "none":
		return SmoothOff, nil
	}
	return SmoothFace, fmt.Errorf("fbx: unknown smoothing mode %q", s)
}

// Options controls what the writer emits.
type Options struct {
	Smoothing   Smoothing
	Edges       bool   // write the Edges array
	MergeColors bool   // sum all colour layers into one
	FPS         float64
	Creator     string
	Path        string    // absolute output path, stored as the document url
	Dir         string    // directory texture paths are made relative to
	Time        time.Time // creation stamp, zero means now
}

// Document is everything one file is written from.
type Document struct {
	Graph   *scene.Graph
	Anim    anim.Result
	IDs     *registry.Registry
	Ambient math.Vec3 // world ambient colour, used by materials
}

const defaultCreator = "fbxport FBX 7.3"

// Write serializes doc to w. Object ids are registered in doc.IDs in the
// order the objects are written.
func Write(w io.Writer, doc *Document, opts Options) error {
	if doc == nil || doc.Graph == nil {
		return ErrNoGraph
	}
	if doc.IDs == nil {
		doc.IDs = registry.New()
	}
	if opts.FPS <= 0 {
		opts.FPS = 25
	}
	if opts.Creator == "" {
		opts.Creator = defaultCreator
	}
	if opts.Time.IsZero() {
		opts.Time = time.Now()
	}

	fw := &writer{w: bufio.NewWriterSize(w, 64*1024), doc: doc, g: doc.Graph, opts: opts, ids: doc.IDs}
	if err := fw.assign(); err != nil {
		return err
	}

	fw.header()
	fw.globalSettings()
	fw.documents()
	fw.references()
	fw.definitions()
	fw.objects()
	fw.connections()
	fw.takes()
	fw.str("\n")

	if fw.err != nil {
		return fmt.Errorf("writing fbx: %w", fw.err)
	}
	if err := fw.w.Flush(); err != nil {
		return fmt.Errorf("writing fbx: %w", err)
	}
	return nil
}

// writer keeps the first write error and turns later writes into no-ops.
type writer struct {
	w    *bufio.Writer
	err  error
	buf  []byte
	doc  *Document
	g    *scene.Graph
	opts Options
	ids  *registry.Registry
}

func (w *writer) str(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) bytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}
