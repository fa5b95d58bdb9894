package clash

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sweepFixture: four structural elements, exactly one overlapping pair
// (w1 and w2 share a 1x1x1 cube).
func sweepFixture(k *aabbKernel) (mapProvider, []Candidate) {
	solids := mapProvider{
		"w1": boxAt(k, 0, 0, 0, 2, 2, 2),
		"w2": boxAt(k, 1, 1, 1, 2, 2, 2),
		"s1": boxAt(k, 10, 0, 0, 3, 3, 0.2),
		"c1": boxAt(k, -10, 0, 0, 0.4, 0.4, 3),
	}
	candidates := []Candidate{
		{ID: "w1", IfcType: "IfcWall"},
		{ID: "w2", IfcType: "IfcWall"},
		{ID: "s1", IfcType: "IfcSlab"},
		{ID: "c1", IfcType: "IfcColumn"},
	}
	return solids, candidates
}

func TestDetectAllSingleOverlap(t *testing.T) {
	k := &aabbKernel{}
	solids, candidates := sweepFixture(k)

	report, err := DetectAll(context.Background(), candidates, solids, k, Options{})
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}

	if report.PairsTried != 6 {
		t.Errorf("pairs tried = %d, want C(4,2) = 6", report.PairsTried)
	}
	if len(report.Clashes) != 1 {
		t.Fatalf("clashes = %+v, want exactly one", report.Clashes)
	}
	got := report.Clashes[0]
	if got.Element1 != "w1" || got.Element2 != "w2" {
		t.Errorf("clash pair = %q/%q, want w1/w2", got.Element1, got.Element2)
	}
	if got.IntersectionVolume != 1.0 {
		t.Errorf("clash volume = %g, want 1.0", got.IntersectionVolume)
	}
	if len(report.Unresolved) != 0 {
		t.Errorf("unexpected unresolved elements: %+v", report.Unresolved)
	}
}

func TestDetectAllIdempotent(t *testing.T) {
	k := &aabbKernel{}
	solids, candidates := sweepFixture(k)
	ctx := context.Background()

	first, err := DetectAll(ctx, candidates, solids, k, Options{})
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := DetectAll(ctx, candidates, solids, k, Options{})
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if diff := cmp.Diff(first.Clashes, second.Clashes); diff != "" {
		t.Errorf("sweeps differ (-first +second):\n%s", diff)
	}
}

func TestDetectAllTypeRestriction(t *testing.T) {
	k := &aabbKernel{}
	solids, _ := sweepFixture(k)

	// Same geometry, but w2 declared as a non-structural type: its
	// pairs drop out of the sweep entirely.
	candidates := []Candidate{
		{ID: "w1", IfcType: "IfcWall"},
		{ID: "w2", IfcType: "IfcFurniture"},
		{ID: "s1", IfcType: "IfcSlab"},
	}

	report, err := DetectAll(context.Background(), candidates, solids, k, Options{})
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if report.PairsTried != 1 {
		t.Errorf("pairs tried = %d, want 1 (w1-s1 only)", report.PairsTried)
	}
	if len(report.Clashes) != 0 {
		t.Errorf("clashes = %+v, want none", report.Clashes)
	}
}

func TestDetectAllCustomTypes(t *testing.T) {
	k := &aabbKernel{}
	solids := mapProvider{
		"d1": boxAt(k, 0, 0, 0, 1, 1, 2),
		"d2": boxAt(k, 0.5, 0, 0, 1, 1, 2),
	}
	candidates := []Candidate{
		{ID: "d1", IfcType: "IfcDoor"},
		{ID: "d2", IfcType: "IfcDoor"},
	}

	// Doors are outside the default population but reachable with an
	// explicit type list.
	report, err := DetectAll(context.Background(), candidates, solids, k, Options{Types: []string{"IfcDoor"}})
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if len(report.Clashes) != 1 {
		t.Fatalf("clashes = %+v, want one", report.Clashes)
	}
	if report.Clashes[0].IntersectionVolume != 1.0 {
		t.Errorf("volume = %g, want 1.0", report.Clashes[0].IntersectionVolume)
	}
}

func TestDetectAllDeduplicatesIDs(t *testing.T) {
	k := &aabbKernel{}
	solids, candidates := sweepFixture(k)
	candidates = append(candidates, Candidate{ID: "w1", IfcType: "IfcWall"})

	report, err := DetectAll(context.Background(), candidates, solids, k, Options{})
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if report.PairsTried != 6 {
		t.Errorf("pairs tried = %d, want 6 (duplicate id collapsed)", report.PairsTried)
	}
}

func TestDetectAllContinuesPastUnresolved(t *testing.T) {
	k := &aabbKernel{}
	solids, candidates := sweepFixture(k)
	delete(solids, "s1")

	report, err := DetectAll(context.Background(), candidates, solids, k, Options{})
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if len(report.Unresolved) != 1 || report.Unresolved[0].ID != "s1" {
		t.Fatalf("unresolved = %+v, want [s1]", report.Unresolved)
	}
	// The failing element removes only its own pairs.
	if report.PairsTried != 3 {
		t.Errorf("pairs tried = %d, want C(3,2) = 3", report.PairsTried)
	}
	if len(report.Clashes) != 1 {
		t.Errorf("clashes = %+v, want the w1/w2 clash to survive", report.Clashes)
	}
}

func TestDetectAllCancellation(t *testing.T) {
	k := &aabbKernel{}
	solids, candidates := sweepFixture(k)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DetectAll(ctx, candidates, solids, k, Options{})
	if err == nil {
		t.Error("expected context error from cancelled sweep")
	}
}

func BenchmarkDetectAll(b *testing.B) {
	k := &aabbKernel{}
	solids := mapProvider{}
	var candidates []Candidate
	for i := 0; i < 100; i++ {
		id := string(rune('a'+i%26)) + string(rune('0'+i/26))
		solids[id] = boxAt(k, float64(i)*3, 0, 0, 1, 1, 1)
		candidates = append(candidates, Candidate{ID: id, IfcType: "IfcWall"})
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DetectAll(ctx, candidates, solids, k, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
