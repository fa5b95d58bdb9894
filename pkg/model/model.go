// Package model defines the building-model data structures: storeys,
// elements, and the shape recipes their geometry is built from. A Model
// is request-local: every query evaluates its own instance and nothing
// is shared or cached across requests.
package model

// Vec3 is a 3D vector in world length units.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the componentwise sum.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Storey is one level of the spatial structure.
type Storey struct {
	GlobalID  string  `json:"id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
}

// Element is one building element. Geometry is carried as a shape
// recipe, not as evaluated geometry: solids and meshes are constructed
// fresh from the recipe for each computation.
type Element struct {
	GlobalID string `json:"id"`
	Name     string `json:"name"`
	IfcType  string `json:"type"`
	Storey   string `json:"storey,omitempty"` // GlobalID of the containing storey

	Base     *Shape   `json:"-"` // nil means the element has no 3D representation
	Openings []*Shape `json:"-"` // voids subtracted from Base (doors, windows)
}

// Model is an evaluated building model.
type Model struct {
	elements map[string]*Element
	order    []string // GlobalIDs in first-insertion order
	storeys  []*Storey
}

// New creates an empty model.
func New() *Model {
	return &Model{elements: make(map[string]*Element)}
}

// AddStorey appends a storey to the spatial structure.
func (m *Model) AddStorey(s *Storey) {
	m.storeys = append(m.storeys, s)
}

// AddElement indexes an element by GlobalID. A duplicate id replaces
// the earlier element (last-seen wins) without changing its position in
// the listing order.
func (m *Model) AddElement(e *Element) {
	if _, ok := m.elements[e.GlobalID]; !ok {
		m.order = append(m.order, e.GlobalID)
	}
	m.elements[e.GlobalID] = e
}

// Element returns the element with the given GlobalID, or nil.
func (m *Model) Element(id string) *Element {
	return m.elements[id]
}

// Elements returns all elements in insertion order.
func (m *Model) Elements() []*Element {
	out := make([]*Element, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.elements[id])
	}
	return out
}

// ElementsOfType returns elements whose IfcType matches exactly,
// in insertion order.
func (m *Model) ElementsOfType(ifcType string) []*Element {
	var out []*Element
	for _, id := range m.order {
		if e := m.elements[id]; e.IfcType == ifcType {
			out = append(out, e)
		}
	}
	return out
}

// ElementsOfTypes returns elements matching any of the given types, in
// insertion order. Ids are already unique by construction.
func (m *Model) ElementsOfTypes(types []string) []*Element {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []*Element
	for _, id := range m.order {
		if e := m.elements[id]; want[e.IfcType] {
			out = append(out, e)
		}
	}
	return out
}

// OnStorey filters elements down to those assigned to the storey with
// the given GlobalID.
func OnStorey(elems []*Element, storeyID string) []*Element {
	var out []*Element
	for _, e := range elems {
		if e.Storey == storeyID {
			out = append(out, e)
		}
	}
	return out
}

// Storeys returns the spatial structure in declaration order.
func (m *Model) Storeys() []*Storey {
	return m.storeys
}

// StoreyByName returns the storey with the given name, or nil.
func (m *Model) StoreyByName(name string) *Storey {
	for _, s := range m.storeys {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Storey returns the storey with the given GlobalID, or nil.
func (m *Model) Storey(id string) *Storey {
	for _, s := range m.storeys {
		if s.GlobalID == id {
			return s
		}
	}
	return nil
}

// ElementCount returns the number of distinct elements.
func (m *Model) ElementCount() int {
	return len(m.elements)
}
