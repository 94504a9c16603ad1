package compare_test

import (
	"testing"

	"github.com/db47h/netlist"
	"github.com/db47h/netlist/compare"
	"github.com/db47h/netlist/nettest"
)

// classNameCategorizer assigns a device category by class name, so that a
// PMOS and an NMOS in the same circuit are never considered candidates for
// each other by the matcher.
type classNameCategorizer struct{}

func (classNameCategorizer) CategoryForDevice(d *netlist.Device) int {
	switch d.Class().Name() {
	case "PMOS":
		return 1
	case "NMOS":
		return 2
	default:
		return 3
	}
}

func buildInverter(netName string) *nettest.Builder {
	b := nettest.New(netName)
	b.Circuit("INV").
		Pin("IN", "in").
		Pin("OUT", "out").
		Device("PMOS", "in", "out").
		Device("NMOS", "in", "out")
	return b
}

func TestCompareIdenticalInverterMatches(t *testing.T) {
	a := buildInverter("A")
	b := buildInverter("B")

	rec := &compare.MemoryLogger{}
	result := compare.Compare(a.Net, b.Net, a.CurrentCircuit(), b.CurrentCircuit(), rec, compare.Options{}, compare.Categorizers{Device: classNameCategorizer{}})
	nettest.AssertMatched(t, result, rec)
	if len(rec.MatchedDevices) != 2 {
		t.Fatalf("expected both devices to be reported matched, got %d", len(rec.MatchedDevices))
	}
}

func TestCompareSourceDrainSwapTolerated(t *testing.T) {
	a := nettest.New("A")
	a.Circuit("INV").
		Pin("IN", "in").
		Pin("OUT", "out").
		Device("NMOS", "in", "out")

	b := nettest.New("B")
	b.Circuit("INV").
		Pin("IN", "in").
		Pin("OUT", "out").
		Device("NMOS", "out", "in")

	dcA, _ := a.Net.DeviceClassByName("NMOS")
	dcA.SetEquivalentTerminal(1, 0)
	dcB, _ := b.Net.DeviceClassByName("NMOS")
	dcB.SetEquivalentTerminal(1, 0)

	rec := &compare.MemoryLogger{}
	result := compare.Compare(a.Net, b.Net, a.CurrentCircuit(), b.CurrentCircuit(), rec, compare.Options{}, compare.Categorizers{Device: classNameCategorizer{}})
	nettest.AssertMatched(t, result, rec)
}

func TestCompareExtraDeviceMismatches(t *testing.T) {
	a := buildInverter("A")
	b := nettest.New("B")
	b.Circuit("INV").
		Pin("IN", "in").
		Pin("OUT", "out").
		Device("PMOS", "in", "out")

	rec := &compare.MemoryLogger{}
	result := compare.Compare(a.Net, b.Net, a.CurrentCircuit(), b.CurrentCircuit(), rec, compare.Options{}, compare.Categorizers{Device: classNameCategorizer{}})
	nettest.AssertNotMatched(t, result)
}

func TestCompareHierarchicalSubcircuitMatches(t *testing.T) {
	a := nettest.New("A")
	a.Circuit("INV").
		Pin("IN", "in").
		Pin("OUT", "out").
		Device("NMOS", "in", "out")
	a.Circuit("TOP").
		Pin("A", "a").
		Pin("Y", "y").
		SubCircuit("INV", "IN", "a", "OUT", "y")

	b := nettest.New("B")
	b.Circuit("INV").
		Pin("IN", "in").
		Pin("OUT", "out").
		Device("NMOS", "in", "out")
	b.Circuit("TOP").
		Pin("A", "a").
		Pin("Y", "y").
		SubCircuit("INV", "IN", "a", "OUT", "y")

	rec := &compare.MemoryLogger{}
	result := compare.Compare(a.Net, b.Net, a.CurrentCircuit(), b.CurrentCircuit(), rec, compare.Options{}, compare.Categorizers{Device: classNameCategorizer{}})
	nettest.AssertMatched(t, result, rec)
}

func TestTrackerRejectsConflictingMap(t *testing.T) {
	tr := compare.NewTracker()
	x, y, z := new(int), new(int), new(int)
	if isNew, conflict := tr.Map(x, y); !isNew || conflict {
		t.Fatalf("first mapping should be a fresh install, got isNew=%v conflict=%v", isNew, conflict)
	}
	if isNew, conflict := tr.Map(x, y); isNew || conflict {
		t.Fatal("remapping the same pair should be an idempotent no-op, not fresh or a conflict")
	}
	if isNew, conflict := tr.Map(x, z); isNew || !conflict {
		t.Fatal("remapping x to a different partner must conflict")
	}
}

// TestTentativeNodeMappingIdempotentRehitSurvivesRollback guards against a
// later, still-open scope silently erasing an earlier scope's already
// committed equivalence: re-touching an already-mapped pair must not log
// an undo entry, so rolling that later scope back leaves the prior mapping
// intact.
func TestTentativeNodeMappingIdempotentRehitSurvivesRollback(t *testing.T) {
	mapA := compare.NewNodeMap(1)
	mapB := compare.NewNodeMap(1)
	devEq := compare.NewTracker()
	scEq := compare.NewTracker()
	a, b := new(int), new(int)

	first := compare.NewTentativeNodeMapping(mapA, mapB, devEq, scEq)
	if !first.MapDevices(a, b) {
		t.Fatal("first mapping should install cleanly")
	}
	first.Clear()

	second := compare.NewTentativeNodeMapping(mapA, mapB, devEq, scEq)
	if !second.MapDevices(a, b) {
		t.Fatal("idempotent re-hit of an already-committed pair must not be a conflict")
	}
	second.Close() // never cleared: rolled back

	if other, ok := devEq.OtherOfLeft(a); !ok || other != b {
		t.Fatal("rolling back a scope that only re-hit an existing mapping erased it")
	}
}

func TestTentativeNodeMappingRollsBackOnClose(t *testing.T) {
	mapA := compare.NewNodeMap(2)
	mapB := compare.NewNodeMap(2)
	devEq := compare.NewTracker()
	scEq := compare.NewTracker()

	tnm := compare.NewTentativeNodeMapping(mapA, mapB, devEq, scEq)
	tnm.MapPair(0, 1, true)
	if mapA.Get(0).Kind != compare.MappedToIndex {
		t.Fatal("MapPair should install immediately")
	}
	tnm.Close()
	if mapA.Get(0).Kind != compare.Unmapped {
		t.Fatal("Close without Clear should roll back the mapping")
	}
}
