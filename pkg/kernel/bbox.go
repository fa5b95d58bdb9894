package kernel

// AABB is an axis-aligned bounding box. Min must not exceed Max on any
// axis; degenerate (zero-extent) boxes are valid, e.g. planar elements.
type AABB struct {
	Min [3]float64
	Max [3]float64
}

// BoxOf returns the bounding box of a solid. It is only a pre-filter:
// when the solid cannot report an extent (nil solid), the returned box
// spans everything so that culling degrades to "never disjoint" rather
// than skipping real work.
func BoxOf(s Solid) (AABB, bool) {
	if s == nil {
		return AABB{}, false
	}
	min, max := s.BoundingBox()
	return AABB{Min: min, Max: max}, true
}

// Disjoint reports whether two boxes do not overlap on at least one
// axis. A shared face or edge counts as overlapping: the cull must
// never reject a pair the exact test could accept.
func Disjoint(a, b AABB) bool {
	for ax := 0; ax < 3; ax++ {
		if a.Max[ax] < b.Min[ax] || b.Max[ax] < a.Min[ax] {
			return true
		}
	}
	return false
}

// Expand grows the box by eps on every side. Negative eps is ignored:
// a cull box may only ever grow.
func (b AABB) Expand(eps float64) AABB {
	if eps <= 0 {
		return b
	}
	for ax := 0; ax < 3; ax++ {
		b.Min[ax] -= eps
		b.Max[ax] += eps
	}
	return b
}
