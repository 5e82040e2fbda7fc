package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// SceneObject describes one primitive in a scene file.
type SceneObject struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"` // box, cylinder, sphere
	Size     [3]float64 `yaml:"size"` // box size; cylinder/sphere use [diameter, diameter, height]
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"` // Euler axis-angle triple, radians
	Group    string     `yaml:"group"`    // objects sharing a group are never cut against each other
}

// SceneFillet describes a fillet request applied after boolean resolution.
type SceneFillet struct {
	Object string    `yaml:"object"` // object name
	Radius float64   `yaml:"radius"`
	FaceA  SceneFace `yaml:"face_a"`
	FaceB  SceneFace `yaml:"face_b"`
}

// SceneFace is a world-space face descriptor in a scene file.
type SceneFace struct {
	Normal [3]float64 `yaml:"normal"`
	Center [3]float64 `yaml:"center"`
}

// Scene represents the full scene-file structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Scene struct {
	Version string        `yaml:"version"`
	Objects []SceneObject `yaml:"objects"`
	Fillets []SceneFillet `yaml:"fillets"`
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// LoadScene reads and validates a scene YAML file. Unknown fields are
// errors: a typo in a scene file must not silently drop geometry.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return ParseScene(data)
}

// ParseScene parses scene YAML with strict field checking.
func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scene); err != nil {
		return nil, fmt.Errorf("parsing scene file: %w", err)
	}

	names := make(map[string]bool)
	for i, o := range scene.Objects {
		if o.Name == "" {
			return nil, fmt.Errorf("object %d: name is required", i)
		}
		if names[o.Name] {
			return nil, fmt.Errorf("duplicate object name %q", o.Name)
		}
		names[o.Name] = true
		switch o.Type {
		case "box", "cylinder", "sphere":
		default:
			return nil, fmt.Errorf("object %q: unknown type %q", o.Name, o.Type)
		}
		if o.Size[0] <= 0 || o.Size[1] <= 0 || o.Size[2] <= 0 {
			return nil, fmt.Errorf("object %q: size must be positive, got %v", o.Name, o.Size)
		}
	}
	for i, f := range scene.Fillets {
		if !names[f.Object] {
			return nil, fmt.Errorf("fillet %d: unknown object %q", i, f.Object)
		}
		if f.Radius <= 0 {
			return nil, fmt.Errorf("fillet %d: radius must be positive, got %v", i, f.Radius)
		}
	}
	return &scene, nil
}
