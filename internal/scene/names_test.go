package scene

import "testing"

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cube", "Cube"},
		{"Cube.001", "Cube_001"},
		{"Café", "Cafe"},
		{"a b::c", "a_b__c"},
		{"Knochen_ä", "Knochen_a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanName(tt.in); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIncrementName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cube", "Cube_0"},
		{"Cube_0", "Cube_1"},
		{"Bone09", "Bone10"},
		{"", "_0"},
	}
	for _, tt := range tests {
		if got := IncrementName(tt.in); got != tt.want {
			t.Errorf("IncrementName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNamerUnique(t *testing.T) {
	n := NewNamer(ReservedName)

	names := []string{n.Name("Cube"), n.Name("Cube"), n.Name("Cube.0"), n.Name("Scene"), n.Name("")}
	want := []string{"Cube", "Cube_0", "Cube_1", "Scene_0", "unnamed"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Name() #%d = %q, want %q", i, names[i], want[i])
		}
	}

	if got, ok := n.Lookup("Cube"); !ok || got != "Cube_0" {
		t.Errorf("Lookup(Cube) = %q, %v, want Cube_0, true", got, ok)
	}
	if _, ok := n.Lookup("Sphere"); ok {
		t.Error("Lookup(Sphere) found a name that was never allocated")
	}
}
