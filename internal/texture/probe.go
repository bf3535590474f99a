// Package texture reads image headers so Video records can carry the size
// of the file they point at.
package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/fbxport/internal/scene"
)

var ErrNoPath = errors.New("texture: image has no file path")

// Probe returns the pixel size of the image at path without decoding it.
// TGA has no magic number, so it is picked by extension.
func Probe(path string) (width, height int, err error) {
	if path == "" {
		return 0, 0, ErrNoPath
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg image.Config
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		cfg, err = tga.DecodeConfig(f)
	} else {
		cfg, _, err = image.DecodeConfig(f)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

type size struct {
	w, h int
	err  error
}

// Cache remembers probe results by path. It is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	sizes map[string]size
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{sizes: make(map[string]size)}
}

// Probe is Probe with the result cached, errors included.
func (c *Cache) Probe(path string) (width, height int, err error) {
	c.mu.Lock()
	s, ok := c.sizes[path]
	c.mu.Unlock()
	if ok {
		return s.w, s.h, s.err
	}
	s.w, s.h, s.err = Probe(path)
	c.mu.Lock()
	c.sizes[path] = s
	c.mu.Unlock()
	return s.w, s.h, s.err
}

// Fill sets the size of every texture record it can read and returns one
// warning per texture it cannot. Unreadable textures are still exported.
func (c *Cache) Fill(g *scene.Graph) []string {
	var warnings []string
	for _, t := range g.Textures {
		w, h, err := c.Probe(t.Texture.Path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Texture '%s' could not be read: %v", t.Name, err))
			continue
		}
		t.Width, t.Height = w, h
	}
	return warnings
}
