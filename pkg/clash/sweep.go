package clash

import (
	"context"

	"github.com/asegale/ashlar/pkg/kernel"
	"github.com/asegale/ashlar/pkg/model"
)

// DefaultStructuralTypes is the curated candidate population for the
// default 3D sweep. Restricting the sweep to structural types bounds
// the quadratic search space; non-structural elements can still clash
// physically but are excluded unless the caller widens the list.
var DefaultStructuralTypes = []string{
	"IfcWall", "IfcSlab", "IfcBeam", "IfcColumn", "IfcFooting", "IfcStair",
}

// Candidate is one element offered to the sweep.
type Candidate struct {
	ID      string
	IfcType string
}

// Result is one reported 3D clash. Presence in a report implies
// IntersectionVolume is strictly positive after rounding.
type Result struct {
	Element1           string  `json:"element1"`
	Element2           string  `json:"element2"`
	IntersectionVolume float64 `json:"intersectionVolume"`
}

// ElementFailure records an element whose geometry could not be
// resolved. Its pairs contribute nothing to the sweep, but the sweep
// itself continues.
type ElementFailure struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// Options tunes a sweep.
type Options struct {
	// Types restricts the candidate population. Empty means
	// DefaultStructuralTypes.
	Types []string
}

// Report is the outcome of one sweep.
type Report struct {
	Clashes    []Result         `json:"clashes"`
	Unresolved []ElementFailure `json:"unresolved,omitempty"`
	PairsTried int              `json:"pairsTried"`
}

// DetectAll enumerates all unordered candidate pairs and reports those
// whose boolean intersection volume is strictly positive.
//
// The scan is quadratic in the candidate count; the bounding-box cull
// inside IntersectionVolume is the only scalability safeguard, so
// callers should size inputs to the low thousands of elements. The
// context is checked once per pair, making the loop cooperatively
// cancellable.
func DetectAll(ctx context.Context, candidates []Candidate, solids model.SolidProvider, k kernel.Kernel, opts Options) (*Report, error) {
	types := opts.Types
	if len(types) == 0 {
		types = DefaultStructuralTypes
	}
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	// Deduplicate ids, keeping first-seen order.
	seen := make(map[string]bool, len(candidates))
	var ids []string
	for _, c := range candidates {
		if !want[c.IfcType] || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		ids = append(ids, c.ID)
	}

	report := &Report{}

	// Resolve each element once, not once per pair. A resolution
	// failure removes only that element's pairs from the sweep.
	resolved := make([]kernel.Solid, len(ids))
	for i, id := range ids {
		s, err := solids.Solid(id)
		if err != nil {
			report.Unresolved = append(report.Unresolved, ElementFailure{ID: id, Err: err})
			continue
		}
		resolved[i] = s
	}

	for i := 0; i < len(ids); i++ {
		if resolved[i] == nil {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			if resolved[j] == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.PairsTried++
			vol, err := IntersectionVolume(k, resolved[i], resolved[j])
			if err != nil {
				report.Unresolved = append(report.Unresolved, ElementFailure{ID: ids[i] + "/" + ids[j], Err: err})
				continue
			}
			if vol > 0 {
				report.Clashes = append(report.Clashes, Result{
					Element1:           ids[i],
					Element2:           ids[j],
					IntersectionVolume: vol,
				})
			}
		}
	}
	return report, nil
}

// Candidates projects model elements into sweep candidates.
func Candidates(elems []*model.Element) []Candidate {
	out := make([]Candidate, 0, len(elems))
	for _, e := range elems {
		out = append(out, Candidate{ID: e.GlobalID, IfcType: e.IfcType})
	}
	return out
}
