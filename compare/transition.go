package compare

import "github.com/db47h/netlist"

// Transition labels one edge leaving a NetGraph node: either a hop across a
// device (from one terminal to another of the same device) or a hop across
// a subcircuit pin (from a pin on the containing circuit's net to the same
// pin's net inside the referenced circuit).
type Transition struct {
	IsSubcircuit bool

	Device         *netlist.Device
	DeviceCategory int
	FromTerminal   netlist.TerminalID
	ToTerminal     netlist.TerminalID

	SubCircuit      *netlist.SubCircuit
	CircuitCategory int
	MappedPin       netlist.PinID
	OriginalPin     netlist.PinID
}

// DeviceTransition builds a device-hop transition. Terminal ids are assumed
// already normalized through the device's class (SetEquivalentTerminal).
func DeviceTransition(d *netlist.Device, category int, from, to netlist.TerminalID) Transition {
	return Transition{Device: d, DeviceCategory: category, FromTerminal: from, ToTerminal: to}
}

// SubcircuitTransition builds a subcircuit-hop transition. mapped is the
// pin id after swap-equivalence normalization; original is the raw pin id
// the reference actually used.
func SubcircuitTransition(sc *netlist.SubCircuit, category int, mapped, original netlist.PinID) Transition {
	return Transition{IsSubcircuit: true, SubCircuit: sc, CircuitCategory: category, MappedPin: mapped, OriginalPin: original}
}

// Less implements the canonical transition ordering: device transitions
// sort before subcircuit transitions, then by category, then by instance
// identity, then by the terminal or pin pair.
func (t Transition) Less(o Transition) bool {
	if t.IsSubcircuit != o.IsSubcircuit {
		return !t.IsSubcircuit
	}
	if !t.IsSubcircuit {
		if t.DeviceCategory != o.DeviceCategory {
			return t.DeviceCategory < o.DeviceCategory
		}
		if t.Device != o.Device {
			return t.Device.ID() < o.Device.ID()
		}
		if t.FromTerminal != o.FromTerminal {
			return t.FromTerminal < o.FromTerminal
		}
		return t.ToTerminal < o.ToTerminal
	}
	if t.CircuitCategory != o.CircuitCategory {
		return t.CircuitCategory < o.CircuitCategory
	}
	if t.SubCircuit != o.SubCircuit {
		return t.SubCircuit.ID() < o.SubCircuit.ID()
	}
	return t.MappedPin < o.MappedPin
}

// Key is the shape of a transition with instance identity erased: two
// transitions sharing a Key are candidates to be the same edge once device
// or subcircuit equivalence has been established between their owners.
type Key struct {
	IsSubcircuit bool
	Category     int
	FromTerminal netlist.TerminalID
	ToTerminal   netlist.TerminalID
	MappedPin    netlist.PinID
}

// Key returns t's equality key.
func (t Transition) Key() Key {
	if t.IsSubcircuit {
		return Key{IsSubcircuit: true, Category: t.CircuitCategory, MappedPin: t.MappedPin}
	}
	return Key{Category: t.DeviceCategory, FromTerminal: t.FromTerminal, ToTerminal: t.ToTerminal}
}

func lessKey(a, b Key) bool {
	if a.IsSubcircuit != b.IsSubcircuit {
		return !a.IsSubcircuit
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.FromTerminal != b.FromTerminal {
		return a.FromTerminal < b.FromTerminal
	}
	if a.ToTerminal != b.ToTerminal {
		return a.ToTerminal < b.ToTerminal
	}
	return a.MappedPin < b.MappedPin
}
