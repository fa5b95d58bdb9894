package clash

import (
	"fmt"
	"testing"

	"github.com/asegale/ashlar/pkg/kernel"
)

// aabbSolid is an axis-aligned box standing in for an exact solid.
type aabbSolid struct {
	min, max [3]float64
}

func (s aabbSolid) BoundingBox() (min, max [3]float64) {
	return s.min, s.max
}

func (s aabbSolid) volume() float64 {
	v := 1.0
	for i := 0; i < 3; i++ {
		if s.max[i] <= s.min[i] {
			return 0
		}
		v *= s.max[i] - s.min[i]
	}
	return v
}

// aabbKernel is a counting kernel over axis-aligned boxes. The boolean
// common of two boxes is their exact overlap box, which makes expected
// volumes computable by hand and lets tests observe whether the boolean
// step ran at all.
type aabbKernel struct {
	intersections int
}

func (k *aabbKernel) Box(x, y, z float64) kernel.Solid {
	return aabbSolid{max: [3]float64{x, y, z}}
}

func (k *aabbKernel) Cylinder(height, radius float64) kernel.Solid {
	return aabbSolid{
		min: [3]float64{-radius, -radius, 0},
		max: [3]float64{radius, radius, height},
	}
}

func (k *aabbKernel) Union(a, b kernel.Solid) kernel.Solid {
	sa, sb := a.(aabbSolid), b.(aabbSolid)
	out := aabbSolid{}
	for i := 0; i < 3; i++ {
		out.min[i] = min(sa.min[i], sb.min[i])
		out.max[i] = max(sa.max[i], sb.max[i])
	}
	return out
}

func (k *aabbKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return a
}

func (k *aabbKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	k.intersections++
	sa, sb := a.(aabbSolid), b.(aabbSolid)
	out := aabbSolid{}
	for i := 0; i < 3; i++ {
		out.min[i] = max(sa.min[i], sb.min[i])
		out.max[i] = min(sa.max[i], sb.max[i])
	}
	return out
}

func (k *aabbKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	sa := s.(aabbSolid)
	d := [3]float64{x, y, z}
	for i := 0; i < 3; i++ {
		sa.min[i] += d[i]
		sa.max[i] += d[i]
	}
	return sa
}

func (k *aabbKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return s
}

// ToMesh triangulates the box so the boundary-integral volume matches
// the analytic box volume exactly.
func (k *aabbKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sa := s.(aabbSolid)
	for i := 0; i < 3; i++ {
		if sa.max[i] <= sa.min[i] {
			return &kernel.Mesh{}, nil
		}
	}
	m := &kernel.Mesh{}
	for i := 0; i < 8; i++ {
		c := [3]float64{sa.min[0], sa.min[1], sa.min[2]}
		if i&1 != 0 {
			c[0] = sa.max[0]
		}
		if i&2 != 0 {
			c[1] = sa.max[1]
		}
		if i&4 != 0 {
			c[2] = sa.max[2]
		}
		m.Vertices = append(m.Vertices, c[0], c[1], c[2])
	}
	m.Indices = []uint32{
		0, 2, 3, 0, 3, 1,
		4, 5, 7, 4, 7, 6,
		0, 1, 5, 0, 5, 4,
		2, 6, 7, 2, 7, 3,
		0, 4, 6, 0, 6, 2,
		1, 3, 7, 1, 7, 5,
	}
	return m, nil
}

// boxAt places a unit-scale box by min corner and size.
func boxAt(k *aabbKernel, px, py, pz, sx, sy, sz float64) kernel.Solid {
	return k.Translate(k.Box(sx, sy, sz), px, py, pz)
}

func TestIntersectionVolumeSymmetry(t *testing.T) {
	k := &aabbKernel{}
	a := boxAt(k, 0, 0, 0, 2, 2, 2)
	b := boxAt(k, 1, 1, 1, 2, 2, 2)

	vab, err := IntersectionVolume(k, a, b)
	if err != nil {
		t.Fatalf("IntersectionVolume(a,b): %v", err)
	}
	vba, err := IntersectionVolume(k, b, a)
	if err != nil {
		t.Fatalf("IntersectionVolume(b,a): %v", err)
	}
	if vab != vba {
		t.Errorf("asymmetric volumes: %g vs %g", vab, vba)
	}
	if vab != 1.0 {
		t.Errorf("overlap volume = %g, want 1.0", vab)
	}
}

func TestIntersectionVolumeSelf(t *testing.T) {
	k := &aabbKernel{}
	a := boxAt(k, 3, 4, 5, 2, 1.5, 0.5)

	v, err := IntersectionVolume(k, a, a)
	if err != nil {
		t.Fatalf("IntersectionVolume: %v", err)
	}
	if want := a.(aabbSolid).volume(); v != Round6(want) {
		t.Errorf("self clash volume = %g, want own volume %g", v, want)
	}
}

func TestIntersectionVolumeDisjointSkipsBoolean(t *testing.T) {
	k := &aabbKernel{}
	a := boxAt(k, 0, 0, 0, 1, 1, 1)
	b := boxAt(k, 10, 10, 10, 1, 1, 1)

	v, err := IntersectionVolume(k, a, b)
	if err != nil {
		t.Fatalf("IntersectionVolume: %v", err)
	}
	if v != 0 {
		t.Errorf("disjoint volume = %g, want 0", v)
	}
	if k.intersections != 0 {
		t.Errorf("boolean step ran %d times for disjoint boxes, want 0", k.intersections)
	}
}

func TestIntersectionVolumeTouchingIsZero(t *testing.T) {
	// Face contact: bounding boxes overlap with zero thickness, which
	// must report 0 without meshing a degenerate region.
	k := &aabbKernel{}
	a := boxAt(k, 0, 0, 0, 1, 1, 1)
	b := boxAt(k, 1, 0, 0, 1, 1, 1)

	v, err := IntersectionVolume(k, a, b)
	if err != nil {
		t.Fatalf("IntersectionVolume: %v", err)
	}
	if v != 0 {
		t.Errorf("touching volume = %g, want 0", v)
	}
	if k.intersections != 0 {
		t.Errorf("boolean step ran %d times for touching boxes, want 0", k.intersections)
	}
}

// mapProvider resolves ids from a fixed map; missing ids error.
type mapProvider map[string]kernel.Solid

func (p mapProvider) Solid(id string) (kernel.Solid, error) {
	s, ok := p[id]
	if !ok {
		return nil, fmt.Errorf("no solid for %q", id)
	}
	return s, nil
}

func TestPairVolume(t *testing.T) {
	k := &aabbKernel{}
	solids := mapProvider{
		"a": boxAt(k, 0, 0, 0, 2, 2, 2),
		"b": boxAt(k, 1, 0, 0, 2, 2, 2),
	}

	res, err := PairVolume(solids, k, "a", "b")
	if err != nil {
		t.Fatalf("PairVolume: %v", err)
	}
	if res.Element1 != "a" || res.Element2 != "b" {
		t.Errorf("result ids = %q/%q", res.Element1, res.Element2)
	}
	if res.IntersectionVolume != 4.0 {
		t.Errorf("volume = %g, want 4.0", res.IntersectionVolume)
	}
}

func TestPairVolumeResolutionErrorIsNotZero(t *testing.T) {
	k := &aabbKernel{}
	solids := mapProvider{"a": boxAt(k, 0, 0, 0, 1, 1, 1)}

	_, err := PairVolume(solids, k, "a", "ghost")
	if err == nil {
		t.Fatal("expected error for unresolvable element, got result")
	}
}
