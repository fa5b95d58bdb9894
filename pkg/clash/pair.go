// Package clash implements volumetric clash detection between building
// elements: a cheap bounding-box cull, an exact pairwise intersection
// volume, and the batch sweep over a candidate population.
package clash

import (
	"fmt"

	"github.com/asegale/ashlar/pkg/kernel"
	"github.com/asegale/ashlar/pkg/model"
)

// IntersectionVolume computes the volume of the boolean common of two
// solids, in cubic length units, rounded to 6 decimal places and never
// negative. Disjoint bounding boxes short-circuit to 0 without invoking
// the boolean step. Two solids clash iff the result is strictly
// positive.
func IntersectionVolume(k kernel.Kernel, a, b kernel.Solid) (float64, error) {
	boxA, okA := kernel.BoxOf(a)
	boxB, okB := kernel.BoxOf(b)
	if okA && okB {
		if kernel.Disjoint(boxA, boxB) {
			return 0, nil
		}
		// Boxes that merely touch have a zero-thickness overlap region;
		// the common solid cannot have volume, and meshing a degenerate
		// region is wasted work.
		if overlapExtent(boxA, boxB) < noiseEps {
			return 0, nil
		}
	}

	common := k.Intersection(a, b)
	mesh, err := k.ToMesh(common)
	if err != nil {
		return 0, fmt.Errorf("meshing common solid: %w", err)
	}
	return Round6(mesh.Volume()), nil
}

// overlapExtent returns the smallest axis extent of the overlap region
// of two boxes known to be non-disjoint.
func overlapExtent(a, b kernel.AABB) float64 {
	smallest := -1.0
	for ax := 0; ax < 3; ax++ {
		lo := a.Min[ax]
		if b.Min[ax] > lo {
			lo = b.Min[ax]
		}
		hi := a.Max[ax]
		if b.Max[ax] < hi {
			hi = b.Max[ax]
		}
		if smallest < 0 || hi-lo < smallest {
			smallest = hi - lo
		}
	}
	return smallest
}

// PairVolume resolves two element ids and computes their intersection
// volume. A resolution failure on either element is returned as an
// error, never as a zero volume.
func PairVolume(solids model.SolidProvider, k kernel.Kernel, idA, idB string) (Result, error) {
	sa, err := solids.Solid(idA)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %q: %w", idA, err)
	}
	sb, err := solids.Solid(idB)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %q: %w", idB, err)
	}
	vol, err := IntersectionVolume(k, sa, sb)
	if err != nil {
		return Result{}, err
	}
	return Result{Element1: idA, Element2: idB, IntersectionVolume: vol}, nil
}
