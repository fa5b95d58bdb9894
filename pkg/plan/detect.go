package plan

import (
	"context"
	"fmt"

	"github.com/asegale/ashlar/pkg/model"
)

// Report bundles the overlaps of one detection run with the elements
// that were skipped while preparing it.
type Report struct {
	Overlaps []Result `json:"overlaps"`
	Skipped  []Skip   `json:"skipped,omitempty"`
}

// DetectTypeOverlaps builds footprints for all elements of two IFC
// types and scans them against each other.
func DetectTypeOverlaps(ctx context.Context, m *model.Model, meshes model.MeshProvider, aType, bType string, opts Options) (*Report, error) {
	return detect(ctx, m.ElementsOfType(aType), m.ElementsOfType(bType), meshes, opts)
}

// DetectStoreyOverlaps is DetectTypeOverlaps scoped to the elements
// assigned to one storey.
func DetectStoreyOverlaps(ctx context.Context, m *model.Model, meshes model.MeshProvider, storeyID, aType, bType string, opts Options) (*Report, error) {
	if m.Storey(storeyID) == nil {
		return nil, fmt.Errorf("storey %q not found", storeyID)
	}
	a := model.OnStorey(m.ElementsOfType(aType), storeyID)
	b := model.OnStorey(m.ElementsOfType(bType), storeyID)
	return detect(ctx, a, b, meshes, opts)
}

func detect(ctx context.Context, aElems, bElems []*model.Element, meshes model.MeshProvider, opts Options) (*Report, error) {
	aItems, aSkips, err := Precompute(ctx, aElems, meshes)
	if err != nil {
		return nil, err
	}
	bItems, bSkips, err := Precompute(ctx, bElems, meshes)
	if err != nil {
		return nil, err
	}
	results, err := Scan(ctx, aItems, bItems, opts)
	if err != nil {
		return nil, err
	}
	return &Report{Overlaps: results, Skipped: append(aSkips, bSkips...)}, nil
}
