package wkt

import (
	"math"
	"strings"
	"testing"

	"github.com/ctessum/geom"
)

func TestArea(t *testing.T) {
	got, err := Area("POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))")
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if got != 4 {
		t.Errorf("area = %g, want 4", got)
	}
}

func TestAreaRounded(t *testing.T) {
	// 1/3 x 1 rectangle: area rounds to 4 decimal places.
	got, err := Area("POLYGON((0 0, 0.333333333 0, 0.333333333 1, 0 1, 0 0))")
	if err != nil {
		t.Fatalf("Area: %v", err)
	}
	if got != 0.3333 {
		t.Errorf("area = %g, want 0.3333", got)
	}
}

func TestAreaInvalid(t *testing.T) {
	if _, err := Area("POLYGON owl"); err == nil {
		t.Error("expected parse error")
	}
}

func TestPerimeter(t *testing.T) {
	got, err := Perimeter("POLYGON((0 0, 3 0, 3 1, 0 1, 0 0))")
	if err != nil {
		t.Fatalf("Perimeter: %v", err)
	}
	if got != 8 {
		t.Errorf("perimeter = %g, want 8", got)
	}
}

func TestIntersects(t *testing.T) {
	a := "POLYGON((0 0, 3 0, 3 3, 0 3, 0 0))"
	b := "POLYGON((2 2, 5 2, 5 5, 2 5, 2 2))"
	c := "POLYGON((10 10, 11 10, 11 11, 10 11, 10 10))"

	hit, err := Intersects(a, b)
	if err != nil {
		t.Fatalf("Intersects: %v", err)
	}
	if !hit {
		t.Error("overlapping polygons reported disjoint")
	}

	hit, err = Intersects(a, c)
	if err != nil {
		t.Fatalf("Intersects: %v", err)
	}
	if hit {
		t.Error("disjoint polygons reported intersecting")
	}
}

func TestIntersectsTouching(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{
			"shared edge",
			"POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))",
			"POLYGON((1 0, 2 0, 2 1, 1 1, 1 0))",
		},
		{
			"corner contact",
			"POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))",
			"POLYGON((1 1, 2 1, 2 2, 1 2, 1 1))",
		},
		{
			"vertex on edge interior",
			"POLYGON((0 0, 4 0, 4 4, 0 4, 0 0))",
			"POLYGON((4 2, 6 1, 6 3, 4 2))",
		},
	}
	for _, c := range cases {
		hit, err := Intersects(c.a, c.b)
		if err != nil {
			t.Fatalf("%s: Intersects: %v", c.name, err)
		}
		// Zero-area boundary contact still counts as intersecting.
		if !hit {
			t.Errorf("%s: touching polygons reported disjoint", c.name)
		}
	}
}

func TestIntersectsContained(t *testing.T) {
	outer := "POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))"
	inner := "POLYGON((4 4, 6 4, 6 6, 4 6, 4 4))"

	hit, err := Intersects(outer, inner)
	if err != nil {
		t.Fatalf("Intersects: %v", err)
	}
	if !hit {
		t.Error("contained polygon reported disjoint")
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	p := geom.Polygon{{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 3}, {X: 0, Y: 3},
	}}

	s, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.HasPrefix(s, "POLYGON") {
		t.Errorf("marshalled WKT = %q, want POLYGON form", s)
	}

	back, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if math.Abs(back.Area()-p.Area()) > 1e-9 {
		t.Errorf("round trip area = %g, want %g", back.Area(), p.Area())
	}
	// The closing vertex added for WKT is dropped on the way back in.
	if n := len(back[0]); n != 4 {
		t.Errorf("round trip ring has %d points, want 4", n)
	}
}

func TestMarshalEmpty(t *testing.T) {
	if _, err := Marshal(geom.Polygon{}); err == nil {
		t.Error("expected error marshalling empty polygon")
	}
}
