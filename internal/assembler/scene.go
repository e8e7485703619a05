package assembler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"textcad/internal/shape"
)

// sceneShape is the YAML form of one placed shape. Parameters are keyed by
// slot name so the file stays readable and class-appropriate.
type sceneShape struct {
	Shape      string             `yaml:"shape"`
	Parameters map[string]float64 `yaml:"parameters"`
	Position   [3]float32         `yaml:"position,omitempty"`
	Rotation   [3]float32         `yaml:"rotation,omitempty"` // XYZ Euler, radians
	Scale      float32            `yaml:"scale,omitempty"`
}

type sceneFile struct {
	Shapes []sceneShape `yaml:"shapes"`
}

// SaveScene writes the placed shapes as a YAML scene description. The scene
// captures descriptors and placements, not kernel geometry, so it can be
// re-assembled or viewed later.
func SaveScene(path string, shapes []PlacedShape) error {
	file := sceneFile{Shapes: make([]sceneShape, 0, len(shapes))}
	for i, s := range shapes {
		if err := validate(i, s.Descriptor); err != nil {
			return err
		}
		params := make(map[string]float64)
		for _, slot := range shape.RelevantSlots(s.Descriptor.Class) {
			params[slot.String()] = s.Descriptor.Params[slot]
		}
		file.Shapes = append(file.Shapes, sceneShape{
			Shape:      s.Descriptor.Class.String(),
			Parameters: params,
			Position:   s.Placement.Position,
			Rotation:   [3]float32{s.Placement.Rotation.X, s.Placement.Rotation.Y, s.Placement.Rotation.Z},
			Scale:      s.Placement.Scale,
		})
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene reads a YAML scene written by SaveScene back into placed shapes,
// in file order.
func LoadScene(path string) ([]PlacedShape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assembler: reading scene %s: %w", path, err)
	}
	var file sceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("assembler: parsing scene %s: %w", path, err)
	}
	shapes := make([]PlacedShape, 0, len(file.Shapes))
	for i, s := range file.Shapes {
		class, err := shape.ClassFromString(s.Shape)
		if err != nil {
			return nil, fmt.Errorf("assembler: scene shape %d: %w", i, err)
		}
		var v shape.Vector
		for name, value := range s.Parameters {
			slot, err := shape.SlotFromString(name)
			if err != nil {
				return nil, fmt.Errorf("assembler: scene shape %d: %w", i, err)
			}
			v[slot] = value
		}
		shapes = append(shapes, PlacedShape{
			Descriptor: shape.Descriptor{Class: class, Params: v},
			Placement: shape.Placement{
				Position: s.Position,
				Rotation: shape.Rotation{X: s.Rotation[0], Y: s.Rotation[1], Z: s.Rotation[2]},
				Scale:    s.Scale,
			},
		})
	}
	return shapes, nil
}
