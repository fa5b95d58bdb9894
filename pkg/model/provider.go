package model

import (
	"errors"
	"fmt"

	"github.com/asegale/ashlar/pkg/kernel"
)

// ErrElementNotFound reports that an element id could not be resolved
// in the model. Callers must not conflate this with "zero clash".
var ErrElementNotFound = errors.New("element not found")

// ErrNoGeometry reports that an element resolved but carries no usable
// 3D representation.
var ErrNoGeometry = errors.New("element has no geometry")

// SolidProvider resolves an element id to an exact solid.
type SolidProvider interface {
	Solid(id string) (kernel.Solid, error)
}

// MeshProvider resolves an element id to a tessellated mesh in world
// coordinates.
type MeshProvider interface {
	Mesh(id string) (*kernel.Mesh, error)
}

// solidStrategy is one way of constructing a solid for an element.
// Strategies are tried in a fixed, documented order; the first to
// succeed wins.
type solidStrategy struct {
	name  string
	build func(k kernel.Kernel, e *Element) (kernel.Solid, error)
}

// solidStrategies is the fallback order for solid construction:
// subtract opening voids first, then retry ignoring openings. The
// approximate shape is still useful for clash volumes when a void
// recipe is malformed.
var solidStrategies = []solidStrategy{
	{
		name: "with-openings",
		build: func(k kernel.Kernel, e *Element) (kernel.Solid, error) {
			solid, err := e.Base.Build(k)
			if err != nil {
				return nil, err
			}
			for _, o := range e.Openings {
				void, err := o.Build(k)
				if err != nil {
					return nil, err
				}
				solid = k.Difference(solid, void)
			}
			return solid, nil
		},
	},
	{
		name: "no-openings",
		build: func(k kernel.Kernel, e *Element) (kernel.Solid, error) {
			return e.Base.Build(k)
		},
	},
}

// KernelSolidProvider builds element solids from shape recipes using a
// geometry kernel. Construction is performed fresh on every call;
// nothing is shared between calls, so the provider is safe for
// concurrent use as long as the kernel is.
type KernelSolidProvider struct {
	m *Model
	k kernel.Kernel
}

var _ SolidProvider = (*KernelSolidProvider)(nil)

// NewSolidProvider returns a provider over the given model and kernel.
func NewSolidProvider(m *Model, k kernel.Kernel) *KernelSolidProvider {
	return &KernelSolidProvider{m: m, k: k}
}

// Solid resolves an element id to an exact solid, trying each
// construction strategy in order. It returns ErrElementNotFound for an
// unknown id and ErrNoGeometry for an element without a base shape.
func (p *KernelSolidProvider) Solid(id string) (kernel.Solid, error) {
	e := p.m.Element(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	if e.Base == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoGeometry, id)
	}

	var lastErr error
	for _, st := range solidStrategies {
		solid, err := st.build(p.k, e)
		if err == nil {
			return solid, nil
		}
		lastErr = fmt.Errorf("strategy %s: %w", st.name, err)
	}
	return nil, fmt.Errorf("%w: %q: %v", ErrNoGeometry, id, lastErr)
}
