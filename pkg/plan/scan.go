// Package plan detects plan-view (per-storey) overlaps between two
// sets of building elements: footprints and vertical extents are
// precomputed once per element, pairs are culled by a Z tolerance band,
// and surviving pairs are intersected in 2D.
package plan

import (
	"context"
	"math"

	"github.com/asegale/ashlar/pkg/footprint"
	"github.com/asegale/ashlar/pkg/model"
	"github.com/asegale/ashlar/pkg/wkt"
	"github.com/ctessum/geom"
)

// DefaultZTolerance is the vertical band within which two elements
// count as being on the same level, in length units.
const DefaultZTolerance = 0.20

// DefaultAreaTolerance separates real plan overlaps from clipping
// noise, in squared length units.
const DefaultAreaTolerance = 1e-6

// areaScale rounds reported areas to 6 decimal places.
const areaScale = 1e6

// Options tunes a scan.
type Options struct {
	ZTolerance    float64 // vertical cull band; zero is a valid, strict setting
	AreaTolerance float64 // minimum raw intersection area to report
	ReturnWKT     bool    // attach intersection geometry as WKT
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ZTolerance:    DefaultZTolerance,
		AreaTolerance: DefaultAreaTolerance,
	}
}

// Item is one element prepared for scanning: its footprint and
// vertical extent, computed once, not per pair.
type Item struct {
	ID        string
	ZMin      float64
	ZMax      float64
	Footprint geom.Polygon
}

// Skip records an element left out of a scan and why: no geometry, an
// empty footprint, or a resolution failure. Skips are not errors; they
// let callers distinguish "skipped because empty" from "succeeded with
// zero overlaps".
type Skip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result is one reported plan overlap. Presence implies Area exceeded
// the scan's area tolerance. WKT is set only when requested and
// serialization succeeded.
type Result struct {
	AID  string  `json:"aId"`
	BID  string  `json:"bId"`
	Area float64 `json:"area"`
	WKT  *string `json:"wkt,omitempty"`
}

// Precompute resolves meshes and builds scan items for the given
// elements. Each element's footprint and Z range are computed exactly
// once; projection cost is linear in the element count, only the
// intersection step is quadratic. Duplicate ids collapse to the
// last-seen element. Elements that cannot be resolved or project to an
// empty footprint are skipped and recorded.
func Precompute(ctx context.Context, elems []*model.Element, meshes model.MeshProvider) ([]Item, []Skip, error) {
	byID := make(map[string]int)
	var items []Item
	var skips []Skip

	for _, e := range elems {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		mesh, err := meshes.Mesh(e.GlobalID)
		if err != nil {
			skips = append(skips, Skip{ID: e.GlobalID, Reason: err.Error()})
			continue
		}
		fp := footprint.Project(mesh)
		if footprint.IsEmpty(fp) {
			skips = append(skips, Skip{ID: e.GlobalID, Reason: "empty footprint"})
			continue
		}
		zmin, zmax := mesh.ZRange()
		item := Item{ID: e.GlobalID, ZMin: zmin, ZMax: zmax, Footprint: fp}
		if i, ok := byID[e.GlobalID]; ok {
			items[i] = item // last-seen wins
			continue
		}
		byID[e.GlobalID] = len(items)
		items = append(items, item)
	}
	return items, skips, nil
}

// Scan intersects every (a, b) pair across the two item sets. Pairs
// whose Z extents, expanded by the tolerance, do not overlap are culled
// before any polygon work. Results follow the iteration order of set A
// outer, set B inner; callers needing a canonical order sort
// explicitly. The loop is quadratic and checks the context once per
// pair.
func Scan(ctx context.Context, a, b []Item, opts Options) ([]Result, error) {
	var results []Result
	for _, ia := range a {
		for _, ib := range b {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			if ia.ZMax+opts.ZTolerance < ib.ZMin || ib.ZMax+opts.ZTolerance < ia.ZMin {
				continue
			}
			inter := footprint.AsPolygon(ia.Footprint.Intersection(ib.Footprint))
			area := inter.Area()
			if area <= opts.AreaTolerance {
				continue
			}
			res := Result{
				AID:  ia.ID,
				BID:  ib.ID,
				Area: math.Round(area*areaScale) / areaScale,
			}
			if opts.ReturnWKT {
				if s, err := wkt.Marshal(inter); err == nil {
					res.WKT = &s
				}
			}
			results = append(results, res)
		}
	}
	return results, nil
}
