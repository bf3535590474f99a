package fbx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/fbxport/pkg/math"
)

var (
	ErrModelNotFound = errors.New("fbx: model not found")
	ErrNoNormals     = errors.New("fbx: no normals found for model")
)

// ReadNormals scans an ASCII FBX file for the first line naming
// Model::<name> and returns the normals of the first LayerElementNormal that
// follows it. It does not parse the file structure.
func ReadNormals(r io.Reader, name string) ([]math.Vec3, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	const (
		seekModel = iota
		seekLayer
		seekNormals
		inNormals
	)
	state := seekModel
	var flat []float64

scan:
	for sc.Scan() {
		line := sc.Text()
		switch state {
		case seekModel:
			if namesModel(line, name) {
				state = seekLayer
			}
		case seekLayer:
			if strings.Contains(line, "LayerElementNormal") {
				state = seekNormals
			}
		case seekNormals:
			if !strings.Contains(line, "Normals:") {
				continue
			}
			state = inNormals
			if strings.HasSuffix(strings.TrimSpace(line), "{") {
				continue
			}
			fallthrough
		case inNormals:
			if strings.Contains(line, "}") {
				break scan
			}
			values, err := parseListLine(line)
			if err != nil {
				return nil, fmt.Errorf("reading normals of %q: %w", name, err)
			}
			flat = append(flat, values...)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading normals of %q: %w", name, err)
	}
	switch {
	case state == seekModel:
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	case len(flat) == 0:
		return nil, fmt.Errorf("%w: %q", ErrNoNormals, name)
	}

	out := make([]math.Vec3, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, math.Vec3{X: flat[i], Y: flat[i+1], Z: flat[i+2]})
	}
	return out, nil
}

// namesModel reports whether line mentions Model::<name> as a whole name.
func namesModel(line, name string) bool {
	needle := "Model::" + name
	for {
		i := strings.Index(line, needle)
		if i < 0 {
			return false
		}
		rest := line[i+len(needle):]
		if rest == "" || rest[0] == '"' || rest[0] == ',' {
			return true
		}
		line = rest
	}
}

// parseListLine parses one array line. A line holding ": " starts the list;
// on any other line the first comma-separated token is dropped.
func parseListLine(line string) ([]float64, error) {
	var fields []string
	if i := strings.Index(line, ": "); i >= 0 {
		fields = strings.Split(line[i+2:], ",")
	} else {
		fields = strings.Split(line, ",")
		if len(fields) > 0 {
			fields = fields[1:]
		}
	}
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Check compares normals read from a file with the loops of a mesh. It never
// fails; the returned message is what gets reported to the user and ok tells
// whether the normals can be applied.
func Check(normals []math.Vec3, faces [][]int) (msg string, ok bool) {
	loops := 0
	for _, f := range faces {
		loops += len(f)
	}
	if loops != len(normals) {
		return fmt.Sprintf("Error: Mesh vertices different from file: %d in file / %d in mesh", len(normals), loops), false
	}
	return fmt.Sprintf("imported %d normals", len(normals)), true
}

// PerLoop splits a flat per-loop normal list into one slice per face, the
// layout of split normal tables. The caller checks the lengths with Check.
func PerLoop(normals []math.Vec3, faces [][]int) [][]math.Vec3 {
	out := make([][]math.Vec3, len(faces))
	l := 0
	for i, f := range faces {
		out[i] = normals[l : l+len(f) : l+len(f)]
		l += len(f)
	}
	return out
}
