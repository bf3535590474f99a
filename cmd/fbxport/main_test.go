package main

import (
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, dir string
		want    string
	}{
		{"hero.glb", "", "hero.fbx"},
		{filepath.Join("assets", "hero.gltf"), "", filepath.Join("assets", "hero.fbx")},
		{filepath.Join("assets", "hero.gltf"), "out", filepath.Join("out", "hero.fbx")},
		{"archive.v2.glb", "out", filepath.Join("out", "archive.v2.fbx")},
	}
	for _, tt := range tests {
		if got := outputPath(tt.in, tt.dir); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.in, tt.dir, got, tt.want)
		}
	}
}
