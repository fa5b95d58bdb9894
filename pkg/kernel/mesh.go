package kernel

import "math"

// Mesh is a triangle mesh in world coordinates.
// Arrays are flat: vertices has 3 floats per vertex (x,y,z),
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Vertex returns the i-th vertex.
func (m *Mesh) Vertex(i int) [3]float64 {
	return [3]float64{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Triangle returns the vertex indices of the i-th triangle.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
}

// Volume computes the enclosed volume via the divergence theorem:
// the sum of signed tetrahedron volumes spanned by the origin and each
// boundary triangle. The result is only meaningful for closed meshes
// with consistent outward winding; numerical noise on degenerate input
// can make it slightly negative, which callers are expected to clamp.
func (m *Mesh) Volume() float64 {
	var sum float64
	for i := 0; i < m.TriangleCount(); i++ {
		ia, ib, ic := m.Triangle(i)
		a := m.Vertex(int(ia))
		b := m.Vertex(int(ib))
		c := m.Vertex(int(ic))
		// a · (b × c)
		sum += a[0]*(b[1]*c[2]-b[2]*c[1]) +
			a[1]*(b[2]*c[0]-b[0]*c[2]) +
			a[2]*(b[0]*c[1]-b[1]*c[0])
	}
	return sum / 6.0
}

// SurfaceArea returns the total area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	var sum float64
	for i := 0; i < m.TriangleCount(); i++ {
		ia, ib, ic := m.Triangle(i)
		a := m.Vertex(int(ia))
		b := m.Vertex(int(ib))
		c := m.Vertex(int(ic))
		ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
		vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
		cx := uy*vz - uz*vy
		cy := uz*vx - ux*vz
		cz := ux*vy - uy*vx
		sum += 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
	}
	return sum
}

// ZRange returns the minimum and maximum Z coordinate over all vertices.
// An empty mesh reports (0, 0).
func (m *Mesh) ZRange() (zmin, zmax float64) {
	if m.VertexCount() == 0 {
		return 0, 0
	}
	zmin, zmax = m.Vertices[2], m.Vertices[2]
	for i := 1; i < m.VertexCount(); i++ {
		z := m.Vertices[3*i+2]
		if z < zmin {
			zmin = z
		}
		if z > zmax {
			zmax = z
		}
	}
	return zmin, zmax
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
// An empty mesh yields a degenerate box at the origin.
func (m *Mesh) Bounds() AABB {
	if m.VertexCount() == 0 {
		return AABB{}
	}
	b := AABB{Min: m.Vertex(0), Max: m.Vertex(0)}
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for ax := 0; ax < 3; ax++ {
			if v[ax] < b.Min[ax] {
				b.Min[ax] = v[ax]
			}
			if v[ax] > b.Max[ax] {
				b.Max[ax] = v[ax]
			}
		}
	}
	return b
}
