package registry

import (
	"errors"
	"testing"
)

func TestRegisterOrdinals(t *testing.T) {
	r := New()
	tests := []struct {
		cat  Category
		name string
		want int64
	}{
		{Geometry, "Cube", 100000},
		{Geometry, "Sphere", 100001},
		{MeshModel, "Cube", 200000},
		{BoneModel, "root", 300000},
		{BoneAttribute, "root", 310000},
		{Material, "Mat", 400000},
		{AnimCurve, "Cube|T|X", 1000000},
	}
	for _, tt := range tests {
		got, err := r.Register(tt.cat, tt.name)
		if err != nil {
			t.Fatalf("Register(%s, %q) error: %v", tt.cat, tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Register(%s, %q) = %d, want %d", tt.cat, tt.name, got, tt.want)
		}
	}
}

// A repeated (category, name) pair keeps its first id and does not consume
// an ordinal.
func TestRegisterRepeatedNameIsStable(t *testing.T) {
	r := New()
	first, _ := r.Register(Material, "Steel")
	again, _ := r.Register(Material, "Steel")
	if first != again {
		t.Errorf("second Register() = %d, want %d", again, first)
	}
	next, _ := r.Register(Material, "Wood")
	if next != first+1 {
		t.Errorf("Register() after repeat = %d, want %d", next, first+1)
	}
	if r.Count(Material) != 2 {
		t.Errorf("Count() = %d, want 2", r.Count(Material))
	}
}

func TestSameNameAcrossCategories(t *testing.T) {
	r := New()
	geo, _ := r.Register(Geometry, "Cube")
	model, _ := r.Register(MeshModel, "Cube")
	if geo == model {
		t.Errorf("Geometry and MeshModel ids collide: %d", geo)
	}
}

func TestResolve(t *testing.T) {
	r := New()
	id, _ := r.Register(Texture, "brick.png")

	got, ok := r.Resolve(Texture, "brick.png")
	if !ok || got != id {
		t.Errorf("Resolve() = %d, %v, want %d, true", got, ok, id)
	}
	if _, ok := r.Resolve(Texture, "missing.png"); ok {
		t.Error("Resolve() of unregistered name reported ok")
	}
	if _, ok := r.Resolve(Video, "brick.png"); ok {
		t.Error("Resolve() in another category reported ok")
	}
}

func TestCategoryFull(t *testing.T) {
	r := New()
	width := RangeOf(AnimStack).Width
	r.count[AnimStack] = width
	_, err := r.Register(AnimStack, "overflow")
	if !errors.Is(err, ErrCategoryFull) {
		t.Errorf("Register() error = %v, want ErrCategoryFull", err)
	}
}

func TestUnknownCategory(t *testing.T) {
	r := New()
	if _, err := r.Register(Category(99), "x"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Register() error = %v, want ErrUnknownCategory", err)
	}
}

func TestRangesDisjoint(t *testing.T) {
	for a := Category(0); a < numCategories; a++ {
		for b := a + 1; b < numCategories; b++ {
			ra, rb := RangeOf(a), RangeOf(b)
			if ra.Base < rb.Base+rb.Width && rb.Base < ra.Base+ra.Width {
				t.Errorf("%s and %s ranges overlap", a, b)
			}
		}
	}
}

func TestCategoryOf(t *testing.T) {
	r := New()
	for c := Category(0); c < numCategories; c++ {
		id, err := r.Register(c, "x")
		if err != nil {
			t.Fatal(err)
		}
		got, ok := CategoryOf(id)
		if !ok || got != c {
			t.Errorf("CategoryOf(%d) = %s, %v, want %s", id, got, ok, c)
		}
	}
	if _, ok := CategoryOf(PoseID); ok {
		t.Error("CategoryOf(PoseID) reported a category")
	}
}

func TestReset(t *testing.T) {
	r := New()
	r.Register(Skin, "a")
	r.Reset()
	if r.Count(Skin) != 0 {
		t.Errorf("Count() after Reset = %d, want 0", r.Count(Skin))
	}
	id, _ := r.Register(Skin, "b")
	if id != RangeOf(Skin).Base {
		t.Errorf("Register() after Reset = %d, want %d", id, RangeOf(Skin).Base)
	}
}
