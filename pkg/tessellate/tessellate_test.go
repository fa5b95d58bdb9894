package tessellate

import (
	"errors"
	"math"
	"testing"

	"github.com/asegale/ashlar/pkg/model"
)

func TestBoxMeshExactMeasures(t *testing.T) {
	m, err := Shape(model.Box(2, 3, 4))
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangle count = %d, want 12", m.TriangleCount())
	}
	if v := m.Volume(); math.Abs(v-24) > 1e-12 {
		t.Errorf("volume = %g, want 24", v)
	}
	wantArea := 2 * (2*3 + 3*4 + 2*4)
	if a := m.SurfaceArea(); math.Abs(a-float64(wantArea)) > 1e-12 {
		t.Errorf("surface area = %g, want %d", a, wantArea)
	}
}

func TestCylinderMeshVolume(t *testing.T) {
	const h, r = 3.0, 0.5
	m, err := Shape(model.Cylinder(h, r))
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	// The segmented tube inscribes the circle, so its volume is the
	// prism over a regular 32-gon, slightly under pi*r^2*h.
	want := 0.5 * cylinderSegments * r * r * math.Sin(2*math.Pi/cylinderSegments) * h
	if v := m.Volume(); math.Abs(v-want) > 1e-9 {
		t.Errorf("volume = %g, want %g", v, want)
	}
	exact := math.Pi * r * r * h
	if v := m.Volume(); v > exact || v < 0.99*exact {
		t.Errorf("volume = %g, want within 1%% below %g", v, exact)
	}
}

func TestTranslatePreservesVolume(t *testing.T) {
	plain, err := Shape(model.Box(1, 2, 3))
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	moved, err := Shape(model.Box(1, 2, 3).At(model.Vec3{X: 10, Y: -5, Z: 2}))
	if err != nil {
		t.Fatalf("Shape moved: %v", err)
	}
	if math.Abs(plain.Volume()-moved.Volume()) > 1e-9 {
		t.Errorf("translation changed volume: %g vs %g", plain.Volume(), moved.Volume())
	}

	b := moved.Bounds()
	if math.Abs(b.Min[0]-10) > 1e-12 || math.Abs(b.Min[1]+5) > 1e-12 || math.Abs(b.Min[2]-2) > 1e-12 {
		t.Errorf("moved bounds min = %v", b.Min)
	}
}

func TestRotatePreservesVolume(t *testing.T) {
	plain, err := Shape(model.Box(1, 2, 3))
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	rotated, err := Shape(model.Box(1, 2, 3).Rotated(model.Vec3{X: 30, Y: 45, Z: 60}))
	if err != nil {
		t.Fatalf("Shape rotated: %v", err)
	}
	if math.Abs(plain.Volume()-rotated.Volume()) > 1e-9 {
		t.Errorf("rotation changed volume: %g vs %g", plain.Volume(), rotated.Volume())
	}
}

func TestRotateZQuarterTurn(t *testing.T) {
	// A quarter turn about Z maps (x, y) to (-y, x), so the long X
	// extent ends up on the Y axis.
	m, err := Shape(model.Box(2, 1, 1).Rotated(model.Vec3{Z: 90}))
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	b := m.Bounds()
	if math.Abs(b.Max[1]-2) > 1e-9 || math.Abs(b.Min[0]+1) > 1e-9 {
		t.Errorf("rotated bounds = %v..%v, want x in [-1,0], y in [0,2]", b.Min, b.Max)
	}
}

func TestUnionConcatenates(t *testing.T) {
	u := model.Union(
		model.Box(1, 1, 1),
		model.Box(1, 1, 1).At(model.Vec3{X: 5}),
	)
	m, err := Shape(u)
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	// Disjoint operands: volumes add.
	if v := m.Volume(); math.Abs(v-2) > 1e-12 {
		t.Errorf("union volume = %g, want 2", v)
	}
	if m.TriangleCount() != 24 {
		t.Errorf("triangle count = %d, want 24", m.TriangleCount())
	}
}

func TestDifferenceKeepsBase(t *testing.T) {
	// Subtractions are footprint-neutral here: the mesh path keeps the
	// base shape.
	d := model.Difference(model.Box(4, 4, 4), model.Box(1, 1, 1))
	m, err := Shape(d)
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if v := m.Volume(); math.Abs(v-64) > 1e-12 {
		t.Errorf("difference mesh volume = %g, want base volume 64", v)
	}
}

func TestElementWithoutGeometry(t *testing.T) {
	e := &model.Element{GlobalID: "e1", IfcType: "IfcWall"}
	_, err := Element(e)
	if !errors.Is(err, model.ErrNoGeometry) {
		t.Errorf("error = %v, want ErrNoGeometry", err)
	}
}

func TestProviderUnknownID(t *testing.T) {
	p := Provider{M: model.New()}
	_, err := p.Mesh("nope")
	if !errors.Is(err, model.ErrElementNotFound) {
		t.Errorf("error = %v, want ErrElementNotFound", err)
	}
}

func TestInvalidShape(t *testing.T) {
	_, err := Shape(model.Box(0, 1, 1))
	if err == nil {
		t.Error("expected error for degenerate box")
	}
}
