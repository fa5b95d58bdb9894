// Package footprint builds 2D plan-view footprints of building
// elements: the union of the XY projections of a mesh's triangles,
// post-processed to stitch tessellation slivers. Footprints answer "do
// these overlap in plan", a deliberately coarser question than 3D
// volumetric clash.
package footprint

import (
	"math"

	"github.com/asegale/ashlar/pkg/kernel"
	"github.com/ctessum/geom"
)

// CloseEps is the dilate/erode distance used to stitch sliver gaps
// between adjacent triangle projections, in length units.
const CloseEps = 1e-4

// degenerateArea is the projected-triangle area below which a triangle
// contributes nothing to the footprint. Vertical faces project to
// segments and fall under this.
const degenerateArea = 1e-12

// IsEmpty reports whether a footprint contains no rings.
func IsEmpty(p geom.Polygon) bool {
	return len(p) == 0
}

// AsPolygon narrows a clipper result back to a concrete polygon. The
// boolean operations always produce a Polygon behind their interface
// return type; anything else narrows to an empty footprint.
func AsPolygon(p geom.Polygonal) geom.Polygon {
	poly, _ := p.(geom.Polygon)
	return poly
}

// Project builds the plan-view footprint of a mesh: every triangle is
// projected by dropping Z, degenerate projections are discarded, the
// rest are unioned, and the result is closed with CloseEps to stitch
// floating-point gaps between triangles that should share edges. A mesh
// with no valid triangles yields an empty footprint, not an error.
func Project(m *kernel.Mesh) geom.Polygon {
	if m == nil || m.IsEmpty() {
		return nil
	}

	tris := make([]geom.Polygon, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		ia, ib, ic := m.Triangle(i)
		a := m.Vertex(int(ia))
		b := m.Vertex(int(ib))
		c := m.Vertex(int(ic))
		// Signed area of the XY projection.
		cross := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		if math.Abs(cross) < 2*degenerateArea {
			continue
		}
		ring := []geom.Point{
			{X: a[0], Y: a[1]},
			{X: b[0], Y: b[1]},
			{X: c[0], Y: c[1]},
		}
		if cross < 0 {
			ring[1], ring[2] = ring[2], ring[1]
		}
		tris = append(tris, geom.Polygon{ring})
	}
	if len(tris) == 0 {
		return nil
	}

	merged := UnionAll(tris)
	return Close(merged, CloseEps)
}

// UnionAll merges polygons with a balanced pairwise tree, keeping the
// intermediate results small: O(n log n) clip operations rather than
// the O(n²) growth of a running left fold.
func UnionAll(polys []geom.Polygon) geom.Polygon {
	for len(polys) > 1 {
		next := make([]geom.Polygon, 0, (len(polys)+1)/2)
		for i := 0; i+1 < len(polys); i += 2 {
			next = append(next, AsPolygon(polys[i].Union(polys[i+1])))
		}
		if len(polys)%2 == 1 {
			next = append(next, polys[len(polys)-1])
		}
		polys = next
	}
	if len(polys) == 0 {
		return nil
	}
	return polys[0]
}

// Close applies a morphological closing (dilate by eps, erode by eps)
// to stitch sliver gaps narrower than ~2·eps. The structuring element
// is the set of diagonal translates, which is exact for axis-aligned
// geometry and conservative otherwise. If the pass degenerates (the
// clipper panics or collapses a non-empty region) the unclosed input
// is returned instead, since a slightly gappy footprint is better than
// none.
func Close(p geom.Polygon, eps float64) (out geom.Polygon) {
	if IsEmpty(p) || eps <= 0 {
		return p
	}
	defer func() {
		if r := recover(); r != nil {
			out = p
		}
	}()

	closed := erode(dilate(p, eps), eps)
	if IsEmpty(closed) {
		return p
	}
	return closed
}

// dilate grows a region by unioning its four diagonal translates with
// the original.
func dilate(p geom.Polygon, eps float64) geom.Polygon {
	out := p
	for _, d := range [][2]float64{{eps, eps}, {eps, -eps}, {-eps, eps}, {-eps, -eps}} {
		out = AsPolygon(out.Union(translate(p, d[0], d[1])))
	}
	return out
}

// erode shrinks a region by eps via its complement: the complement is
// taken against a frame comfortably containing p, dilated, and
// subtracted back out.
func erode(p geom.Polygon, eps float64) geom.Polygon {
	if IsEmpty(p) {
		return p
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, ring := range p {
		for _, pt := range ring {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	if minX > maxX {
		return p
	}
	pad := 4 * eps
	frame := geom.Polygon{{
		{X: minX - pad, Y: minY - pad},
		{X: maxX + pad, Y: minY - pad},
		{X: maxX + pad, Y: maxY + pad},
		{X: minX - pad, Y: maxY + pad},
	}}
	inverse := AsPolygon(frame.Difference(p))
	return AsPolygon(frame.Difference(dilate(inverse, eps)))
}

// translate shifts every point of a polygon by (dx, dy).
func translate(p geom.Polygon, dx, dy float64) geom.Polygon {
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make([]geom.Point, len(ring))
		for j, pt := range ring {
			r[j] = geom.Point{X: pt.X + dx, Y: pt.Y + dy}
		}
		out[i] = r
	}
	return out
}
