package netlist

import "testing"

func TestAddCircuitOwnership(t *testing.T) {
	n := NewNetlist("TOP")
	c := NewCircuit("A")
	if err := n.AddCircuit(c); err != nil {
		t.Fatal(err)
	}
	if err := n.AddCircuit(c); err == nil {
		t.Fatal("expected AlreadyOwned error re-adding an owned circuit")
	}
}

func TestRemoveCircuitInvalidatesWeakRefs(t *testing.T) {
	n := NewNetlist("TOP")
	parent := NewCircuit("PARENT")
	child := NewCircuit("CHILD")
	if err := n.AddCircuit(parent); err != nil {
		t.Fatal(err)
	}
	if err := n.AddCircuit(child); err != nil {
		t.Fatal(err)
	}
	sc := NewSubCircuit(child, "X1")
	if err := parent.AddSubcircuit(sc); err != nil {
		t.Fatal(err)
	}
	if err := n.RemoveCircuit(child); err != nil {
		t.Fatal(err)
	}
	if sc.CircuitRef() != nil {
		t.Fatal("subcircuit's weak CircuitRef should be nil after its referenced circuit is removed")
	}
}

func TestChildParentCircuits(t *testing.T) {
	n := NewNetlist("TOP")
	parent := NewCircuit("PARENT")
	child := NewCircuit("CHILD")
	if err := n.AddCircuit(parent); err != nil {
		t.Fatal(err)
	}
	if err := n.AddCircuit(child); err != nil {
		t.Fatal(err)
	}
	sc := NewSubCircuit(child, "X1")
	if err := parent.AddSubcircuit(sc); err != nil {
		t.Fatal(err)
	}
	children := n.ChildCircuits(parent)
	if len(children) != 1 || children[0] != child {
		t.Fatalf("expected [child] got %v", children)
	}
	parents := n.ParentCircuits(child)
	if len(parents) != 1 || parents[0] != parent {
		t.Fatalf("expected [parent] got %v", parents)
	}
}

func TestPurgeCircuitRespectsDontPurgeAndRefs(t *testing.T) {
	n := NewNetlist("TOP")
	parent := NewCircuit("PARENT")
	child := NewCircuit("CHILD")
	if err := n.AddCircuit(parent); err != nil {
		t.Fatal(err)
	}
	if err := n.AddCircuit(child); err != nil {
		t.Fatal(err)
	}
	sc := NewSubCircuit(child, "X1")
	if err := parent.AddSubcircuit(sc); err != nil {
		t.Fatal(err)
	}
	n.PurgeCircuit(child)
	if _, ok := n.CircuitByName("CHILD"); !ok {
		t.Fatal("referenced child circuit must not be purged")
	}
	if err := parent.RemoveSubcircuit(sc); err != nil {
		t.Fatal(err)
	}
	n.PurgeCircuit(child)
	if _, ok := n.CircuitByName("CHILD"); ok {
		t.Fatal("uninstantiated child circuit should be purged")
	}
}
