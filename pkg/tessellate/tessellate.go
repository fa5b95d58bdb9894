// Package tessellate produces world-coordinate triangle meshes from
// element shape recipes. This is the mesh path of the shape provider:
// primitives are tessellated analytically (a box is 12 triangles, a
// cylinder a segmented tube), so plan footprints are not subject to
// marching-cubes chamfering. Subtracted opening voids are ignored here;
// a plan footprint does not shrink through interior voids.
package tessellate

import (
	"fmt"
	"math"

	"github.com/asegale/ashlar/pkg/kernel"
	"github.com/asegale/ashlar/pkg/model"
)

// cylinderSegments is the segment count used for cylinder side walls.
const cylinderSegments = 32

// Shape tessellates one shape recipe into a triangle mesh.
func Shape(s *model.Shape) (*kernel.Mesh, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return walk(s)
}

// Element tessellates an element's base shape. Elements without a base
// shape yield model.ErrNoGeometry.
func Element(e *model.Element) (*kernel.Mesh, error) {
	if e.Base == nil {
		return nil, fmt.Errorf("%w: %q", model.ErrNoGeometry, e.GlobalID)
	}
	return Shape(e.Base)
}

// Provider adapts a model to the model.MeshProvider interface.
// Meshes are computed fresh on every call.
type Provider struct {
	M *model.Model
}

var _ model.MeshProvider = Provider{}

// Mesh resolves an element id to its tessellated mesh.
func (p Provider) Mesh(id string) (*kernel.Mesh, error) {
	e := p.M.Element(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %q", model.ErrElementNotFound, id)
	}
	return Element(e)
}

func walk(s *model.Shape) (*kernel.Mesh, error) {
	var m *kernel.Mesh
	switch s.Kind {
	case model.ShapeBox:
		m = boxMesh(s.Dims)
	case model.ShapeCylinder:
		m = cylinderMesh(s.Height, s.Radius)
	case model.ShapeUnion:
		m = &kernel.Mesh{}
		for _, op := range s.Operands {
			sub, err := walk(op)
			if err != nil {
				return nil, err
			}
			appendMesh(m, sub)
		}
	case model.ShapeDifference:
		// Openings do not alter the plan footprint; keep the base.
		sub, err := walk(s.Operands[0])
		if err != nil {
			return nil, err
		}
		m = sub
	default:
		return nil, fmt.Errorf("unknown shape kind %d", int(s.Kind))
	}
	transform(m, s.Rotation, s.Translation)
	return m, nil
}

// appendMesh concatenates src onto dst, offsetting indices.
func appendMesh(dst, src *kernel.Mesh) {
	base := uint32(dst.VertexCount())
	dst.Vertices = append(dst.Vertices, src.Vertices...)
	for _, ix := range src.Indices {
		dst.Indices = append(dst.Indices, base+ix)
	}
}

// transform rotates (Euler degrees, X then Y then Z) and translates
// every vertex in place, matching the kernel's transform order.
func transform(m *kernel.Mesh, rot, tr model.Vec3) {
	if rot.IsZero() && tr.IsZero() {
		return
	}
	sx, cx := math.Sincos(rot.X * math.Pi / 180)
	sy, cy := math.Sincos(rot.Y * math.Pi / 180)
	sz, cz := math.Sincos(rot.Z * math.Pi / 180)
	for i := 0; i < m.VertexCount(); i++ {
		x := m.Vertices[3*i]
		y := m.Vertices[3*i+1]
		z := m.Vertices[3*i+2]
		if !rot.IsZero() {
			// Rx
			y, z = cx*y-sx*z, sx*y+cx*z
			// Ry
			x, z = cy*x+sy*z, -sy*x+cy*z
			// Rz
			x, y = cz*x-sz*y, sz*x+cz*y
		}
		m.Vertices[3*i] = x + tr.X
		m.Vertices[3*i+1] = y + tr.Y
		m.Vertices[3*i+2] = z + tr.Z
	}
}

// boxMesh tessellates an axis-aligned box with its minimum corner at
// the origin into 12 outward-wound triangles.
func boxMesh(d model.Vec3) *kernel.Mesh {
	// Vertex v(i) has corner bits (x, y, z) = (i&1, i&2, i&4).
	verts := make([]float64, 0, 8*3)
	for i := 0; i < 8; i++ {
		var x, y, z float64
		if i&1 != 0 {
			x = d.X
		}
		if i&2 != 0 {
			y = d.Y
		}
		if i&4 != 0 {
			z = d.Z
		}
		verts = append(verts, x, y, z)
	}
	// Corner numbering: bit0 = +X, bit1 = +Y, bit2 = +Z.
	indices := []uint32{
		0, 2, 3, 0, 3, 1, // bottom (-Z)
		4, 5, 7, 4, 7, 6, // top (+Z)
		0, 1, 5, 0, 5, 4, // front (-Y)
		2, 6, 7, 2, 7, 3, // back (+Y)
		0, 4, 6, 0, 6, 2, // left (-X)
		1, 3, 7, 1, 7, 5, // right (+X)
	}
	return &kernel.Mesh{Vertices: verts, Indices: indices}
}

// cylinderMesh tessellates a Z-axis cylinder with its base circle
// centered on the origin.
func cylinderMesh(height, radius float64) *kernel.Mesh {
	n := cylinderSegments
	verts := make([]float64, 0, (2*n+2)*3)
	// Bottom ring: 0..n-1, top ring: n..2n-1, centers: 2n (bottom), 2n+1 (top).
	for _, z := range []float64{0, height} {
		for i := 0; i < n; i++ {
			a := 2 * math.Pi * float64(i) / float64(n)
			verts = append(verts, radius*math.Cos(a), radius*math.Sin(a), z)
		}
	}
	verts = append(verts, 0, 0, 0, 0, 0, height)
	bc := uint32(2 * n)
	tc := uint32(2*n + 1)

	var indices []uint32
	for i := 0; i < n; i++ {
		b0 := uint32(i)
		b1 := uint32((i + 1) % n)
		t0 := uint32(n + i)
		t1 := uint32(n + (i+1)%n)
		// Side quad, outward winding.
		indices = append(indices, b0, b1, t1, b0, t1, t0)
		// Caps.
		indices = append(indices, bc, b1, b0)
		indices = append(indices, tc, t0, t1)
	}
	return &kernel.Mesh{Vertices: verts, Indices: indices}
}
