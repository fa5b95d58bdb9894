package model

import "testing"

func TestAddElementOrderAndDedup(t *testing.T) {
	m := New()
	m.AddElement(&Element{GlobalID: "a", Name: "first", IfcType: "IfcWall"})
	m.AddElement(&Element{GlobalID: "b", Name: "second", IfcType: "IfcSlab"})
	m.AddElement(&Element{GlobalID: "a", Name: "replacement", IfcType: "IfcWall"})

	if m.ElementCount() != 2 {
		t.Fatalf("element count = %d, want 2", m.ElementCount())
	}

	elems := m.Elements()
	if len(elems) != 2 {
		t.Fatalf("Elements returned %d, want 2", len(elems))
	}
	// Duplicate id keeps its original position but takes the new value.
	if elems[0].GlobalID != "a" || elems[0].Name != "replacement" {
		t.Errorf("first element = %q/%q, want a/replacement", elems[0].GlobalID, elems[0].Name)
	}
	if elems[1].GlobalID != "b" {
		t.Errorf("second element = %q, want b", elems[1].GlobalID)
	}
}

func TestElementsOfType(t *testing.T) {
	m := New()
	m.AddElement(&Element{GlobalID: "w1", IfcType: "IfcWall"})
	m.AddElement(&Element{GlobalID: "s1", IfcType: "IfcSlab"})
	m.AddElement(&Element{GlobalID: "w2", IfcType: "IfcWall"})

	walls := m.ElementsOfType("IfcWall")
	if len(walls) != 2 || walls[0].GlobalID != "w1" || walls[1].GlobalID != "w2" {
		t.Errorf("ElementsOfType(IfcWall) = %v", ids(walls))
	}

	both := m.ElementsOfTypes([]string{"IfcWall", "IfcSlab"})
	if len(both) != 3 {
		t.Errorf("ElementsOfTypes = %v, want all 3", ids(both))
	}

	none := m.ElementsOfType("IfcDoor")
	if len(none) != 0 {
		t.Errorf("ElementsOfType(IfcDoor) = %v, want empty", ids(none))
	}
}

func TestOnStorey(t *testing.T) {
	m := New()
	m.AddStorey(&Storey{GlobalID: "L1", Name: "Level 1", Elevation: 0})
	m.AddStorey(&Storey{GlobalID: "L2", Name: "Level 2", Elevation: 3})
	m.AddElement(&Element{GlobalID: "w1", IfcType: "IfcWall", Storey: "L1"})
	m.AddElement(&Element{GlobalID: "w2", IfcType: "IfcWall", Storey: "L2"})
	m.AddElement(&Element{GlobalID: "w3", IfcType: "IfcWall"})

	on := OnStorey(m.Elements(), "L1")
	if len(on) != 1 || on[0].GlobalID != "w1" {
		t.Errorf("OnStorey(L1) = %v, want [w1]", ids(on))
	}
}

func TestStoreyLookups(t *testing.T) {
	m := New()
	m.AddStorey(&Storey{GlobalID: "L1", Name: "Ground", Elevation: 0})

	if st := m.StoreyByName("Ground"); st == nil || st.GlobalID != "L1" {
		t.Errorf("StoreyByName(Ground) = %v", st)
	}
	if st := m.StoreyByName("Roof"); st != nil {
		t.Errorf("StoreyByName(Roof) = %v, want nil", st)
	}
	if st := m.Storey("L1"); st == nil || st.Name != "Ground" {
		t.Errorf("Storey(L1) = %v", st)
	}
	if st := m.Storey("nope"); st != nil {
		t.Errorf("Storey(nope) = %v, want nil", st)
	}
}

func ids(elems []*Element) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.GlobalID
	}
	return out
}
