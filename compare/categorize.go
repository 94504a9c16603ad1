package compare

import "github.com/db47h/netlist"

// DeviceCategorizer assigns a non-zero comparison category to a device; a
// zero category means the device is ignored entirely by the graph builder
// (no edges are generated across it). Devices in the same category are
// interchangeable as far as the matcher's edge keys are concerned; the
// matcher does not consult the class's parameter-compare delegate.
type DeviceCategorizer interface {
	CategoryForDevice(d *netlist.Device) int
}

// CircuitCategorizer assigns a non-zero comparison category to a
// subcircuit instance; category zero causes the graph builder to skip it
// (the instance contributes no virtual node and no pin edges to the
// containing circuit's graph). Compare still compares the referenced
// circuit itself as its own circuit pair.
type CircuitCategorizer interface {
	CategoryForSubCircuit(sc *netlist.SubCircuit) int
}

// DeviceFilter allows a caller to exclude specific device instances from
// comparison (e.g. known-parasitic devices) independently of category.
type DeviceFilter interface {
	Filter(d *netlist.Device) bool
}

// CircuitMapper records, per circuit, which of its own pins were
// discovered to be mutually swappable (an ambiguity group resolved at the
// net-pin level), and maps a raw pin id to its swap-equivalence
// representative.
type CircuitMapper interface {
	MapPin(c *netlist.Circuit, pin netlist.PinID) netlist.PinID
	MarkSwappable(c *netlist.Circuit, pins []netlist.PinID)
}

// PinCategoryMapper collapses a circuit's pin id to the representative id
// of its swap-equivalence class, used by the graph builder to normalize
// subcircuit-hop transitions before they're compared.
type PinCategoryMapper interface {
	NormalizePinID(c *netlist.Circuit, pin netlist.PinID) netlist.PinID
}

// Categorizers bundles the three environment-supplied classification
// hooks consumed by Compare and BuildGraph.
type Categorizers struct {
	Device  DeviceCategorizer
	Circuit CircuitCategorizer
	Filter  DeviceFilter
}

// SimpleCircuitMapper is a union-find backed CircuitMapper/PinCategoryMapper
// good enough for single-circuit comparisons: it has no notion of distinct
// circuits and treats every pin id as belonging to one flat space, which is
// correct as long as callers use one mapper per circuit being compared.
type SimpleCircuitMapper struct {
	rep map[netlist.PinID]netlist.PinID
}

// NewSimpleCircuitMapper returns an empty pin swap-equivalence mapper.
func NewSimpleCircuitMapper() *SimpleCircuitMapper {
	return &SimpleCircuitMapper{rep: make(map[netlist.PinID]netlist.PinID)}
}

func (s *SimpleCircuitMapper) find(p netlist.PinID) netlist.PinID {
	for {
		r, ok := s.rep[p]
		if !ok || r == p {
			return p
		}
		p = r
	}
}

// MapPin returns pin's swap-equivalence representative.
func (s *SimpleCircuitMapper) MapPin(_ *netlist.Circuit, pin netlist.PinID) netlist.PinID {
	return s.find(pin)
}

// MarkSwappable unions pins into one swap-equivalence class.
func (s *SimpleCircuitMapper) MarkSwappable(_ *netlist.Circuit, pins []netlist.PinID) {
	if len(pins) == 0 {
		return
	}
	root := s.find(pins[0])
	for _, p := range pins[1:] {
		s.rep[s.find(p)] = root
	}
}

// NormalizePinID is an alias of MapPin so SimpleCircuitMapper satisfies
// PinCategoryMapper too.
func (s *SimpleCircuitMapper) NormalizePinID(c *netlist.Circuit, pin netlist.PinID) netlist.PinID {
	return s.MapPin(c, pin)
}
