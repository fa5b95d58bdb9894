// Package wkt converts footprint polygons to and from well-known text
// and answers simple 2D measurement queries over WKT input.
package wkt

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	orbwkt "github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

// measureScale rounds areas and perimeters to 4 decimal places.
const measureScale = 1e4

// round4 rounds to 4 decimal places, clamping sub-noise magnitudes.
func round4(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 0
	}
	return math.Round(x*measureScale) / measureScale
}

// Marshal serializes a footprint polygon as WKT. Rings are closed on
// the way out since the clipping library keeps them open.
func Marshal(p geom.Polygon) (string, error) {
	op := toOrb(p)
	if len(op) == 0 {
		return "", fmt.Errorf("empty polygon has no WKT form")
	}
	return orbwkt.MarshalString(op), nil
}

// Parse reads a WKT POLYGON or MULTIPOLYGON into a footprint polygon.
func Parse(s string) (geom.Polygon, error) {
	g, err := orbwkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("parsing WKT: %w", err)
	}
	switch v := g.(type) {
	case orb.Polygon:
		return fromOrb(v), nil
	case orb.MultiPolygon:
		var out geom.Polygon
		for _, poly := range v {
			out = append(out, fromOrb(poly)...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported WKT geometry %T", g)
	}
}

// Area returns the planar area of a WKT geometry, rounded to 4 decimal
// places.
func Area(s string) (float64, error) {
	g, err := orbwkt.Unmarshal(s)
	if err != nil {
		return 0, fmt.Errorf("parsing WKT: %w", err)
	}
	return round4(planar.Area(g)), nil
}

// Perimeter returns the boundary length of a WKT geometry, rounded to
// 4 decimal places.
func Perimeter(s string) (float64, error) {
	g, err := orbwkt.Unmarshal(s)
	if err != nil {
		return 0, fmt.Errorf("parsing WKT: %w", err)
	}
	return round4(planar.Length(g)), nil
}

// Intersects reports whether two WKT polygons share at least one
// point. Boundary contact counts: geometries that merely touch along
// an edge or at a corner intersect, even though their common area is
// zero.
func Intersects(a, b string) (bool, error) {
	pa, err := Parse(a)
	if err != nil {
		return false, fmt.Errorf("first geometry: %w", err)
	}
	pb, err := Parse(b)
	if err != nil {
		return false, fmt.Errorf("second geometry: %w", err)
	}
	if len(pa) == 0 || len(pb) == 0 {
		return false, nil
	}
	if pa.Intersection(pb).Area() > 0 {
		return true, nil
	}
	// Zero-area contact between polygons always places a vertex of one
	// on the boundary of the other.
	return touches(pa, pb) || touches(pb, pa), nil
}

// touches reports whether any vertex of p lies on or inside q.
func touches(p, q geom.Polygon) bool {
	for _, ring := range p {
		for _, pt := range ring {
			if pt.Within(q) != geom.Outside {
				return true
			}
		}
	}
	return false
}

// toOrb converts a clipper polygon to an orb polygon, closing rings.
func toOrb(p geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, ring := range p {
		if len(ring) < 3 {
			continue
		}
		r := make(orb.Ring, 0, len(ring)+1)
		for _, pt := range ring {
			r = append(r, orb.Point{pt.X, pt.Y})
		}
		if r[0] != r[len(r)-1] {
			r = append(r, r[0])
		}
		out = append(out, r)
	}
	return out
}

// fromOrb converts an orb polygon to a clipper polygon, dropping the
// duplicated closing point.
func fromOrb(p orb.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		n := len(ring)
		if n > 1 && ring[0] == ring[n-1] {
			n--
		}
		if n < 3 {
			continue
		}
		r := make([]geom.Point, 0, n)
		for i := 0; i < n; i++ {
			r = append(r, geom.Point{X: ring[i][0], Y: ring[i][1]})
		}
		out = append(out, r)
	}
	return out
}
