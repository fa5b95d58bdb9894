package model

import (
	"fmt"

	"github.com/asegale/ashlar/pkg/kernel"
)

// ShapeKind distinguishes shape recipe nodes.
type ShapeKind int

const (
	ShapeBox        ShapeKind = iota // rectangular solid, min corner at local origin
	ShapeCylinder                    // Z-axis cylinder, base circle at local origin
	ShapeUnion                       // union of operands
	ShapeDifference                  // first operand minus the rest
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeUnion:
		return "union"
	case ShapeDifference:
		return "difference"
	default:
		return "unknown"
	}
}

// Shape is one node of a shape recipe tree. Leaves are primitives;
// interior nodes combine operands. Rotation (Euler degrees, X then Y
// then Z) is applied before Translation, both in the node's parent
// frame, after the node's own geometry is composed.
type Shape struct {
	Kind ShapeKind

	Dims Vec3 // box edge lengths

	Height float64 // cylinder
	Radius float64 // cylinder

	Operands []*Shape // union/difference children

	Rotation    Vec3 // degrees
	Translation Vec3
}

// Box returns a box shape recipe.
func Box(x, y, z float64) *Shape {
	return &Shape{Kind: ShapeBox, Dims: Vec3{X: x, Y: y, Z: z}}
}

// Cylinder returns a cylinder shape recipe.
func Cylinder(height, radius float64) *Shape {
	return &Shape{Kind: ShapeCylinder, Height: height, Radius: radius}
}

// Union returns the union of the given shapes.
func Union(operands ...*Shape) *Shape {
	return &Shape{Kind: ShapeUnion, Operands: operands}
}

// Difference returns the first shape minus the remaining ones.
func Difference(operands ...*Shape) *Shape {
	return &Shape{Kind: ShapeDifference, Operands: operands}
}

// At returns a copy of the shape translated by v.
func (s *Shape) At(v Vec3) *Shape {
	c := *s
	c.Translation = c.Translation.Add(v)
	return &c
}

// Rotated returns a copy of the shape rotated by Euler angles (degrees).
func (s *Shape) Rotated(v Vec3) *Shape {
	c := *s
	c.Rotation = c.Rotation.Add(v)
	return &c
}

// Validate checks the recipe for dimensions a kernel cannot represent.
func (s *Shape) Validate() error {
	switch s.Kind {
	case ShapeBox:
		if s.Dims.X <= 0 || s.Dims.Y <= 0 || s.Dims.Z <= 0 {
			return fmt.Errorf("box dimensions must be positive, got (%g, %g, %g)", s.Dims.X, s.Dims.Y, s.Dims.Z)
		}
	case ShapeCylinder:
		if s.Height <= 0 || s.Radius <= 0 {
			return fmt.Errorf("cylinder height and radius must be positive, got h=%g r=%g", s.Height, s.Radius)
		}
	case ShapeUnion, ShapeDifference:
		if len(s.Operands) == 0 {
			return fmt.Errorf("%s requires at least one operand", s.Kind)
		}
		for _, op := range s.Operands {
			if err := op.Validate(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown shape kind %d", int(s.Kind))
	}
	return nil
}

// Build constructs a kernel solid from the recipe.
func (s *Shape) Build(k kernel.Kernel) (kernel.Solid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.build(k), nil
}

func (s *Shape) build(k kernel.Kernel) kernel.Solid {
	var solid kernel.Solid
	switch s.Kind {
	case ShapeBox:
		solid = k.Box(s.Dims.X, s.Dims.Y, s.Dims.Z)
	case ShapeCylinder:
		solid = k.Cylinder(s.Height, s.Radius)
	case ShapeUnion:
		solid = s.Operands[0].build(k)
		for _, op := range s.Operands[1:] {
			solid = k.Union(solid, op.build(k))
		}
	case ShapeDifference:
		solid = s.Operands[0].build(k)
		for _, op := range s.Operands[1:] {
			solid = k.Difference(solid, op.build(k))
		}
	}
	if !s.Rotation.IsZero() {
		solid = k.Rotate(solid, s.Rotation.X, s.Rotation.Y, s.Rotation.Z)
	}
	if !s.Translation.IsZero() {
		solid = k.Translate(solid, s.Translation.X, s.Translation.Y, s.Translation.Z)
	}
	return solid
}
