package scene

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ReservedName cannot be used for objects; FBX importers treat it as the scene.
const ReservedName = "Scene"

// CleanName strips accents and replaces every rune that is not a letter or a
// digit with an underscore.
func CleanName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, stripped)
}

// IncrementName bumps a trailing number, or appends "_0" when there is none.
//
//	"Cube"   -> "Cube_0"
//	"Cube_0" -> "Cube_1"
//	"Bone09" -> "Bone10"
func IncrementName(name string) string {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return name + "_0"
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return name + "_0"
	}
	return name[:i] + strconv.Itoa(n+1)
}

// Namer hands out unique sanitized names within one namespace.
type Namer struct {
	used   map[string]bool
	byOrig map[string]string
}

// NewNamer creates a namespace. Reserved names are never handed out.
func NewNamer(reserved ...string) *Namer {
	n := &Namer{used: make(map[string]bool), byOrig: make(map[string]string)}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

// Name returns a unique sanitized name for orig. Every call allocates a new
// name, so the same original asked twice yields two different names.
func (n *Namer) Name(orig string) string {
	name := "unnamed"
	if orig != "" {
		name = CleanName(orig)
	}
	for n.used[name] {
		name = IncrementName(name)
	}
	n.used[name] = true
	n.byOrig[orig] = name
	return name
}

// Lookup returns the name most recently allocated for orig.
func (n *Namer) Lookup(orig string) (string, bool) {
	name, ok := n.byOrig[orig]
	return name, ok
}
