package netlist

import (
	"math"
	"strconv"
)

// NetTerminalRef connects a Net to one terminal of a Device.
type NetTerminalRef struct {
	net      *Net
	device   *Device
	terminal TerminalID
}

// Net returns the owning net.
func (r *NetTerminalRef) Net() *Net { return r.net }

// Device returns the connected device.
func (r *NetTerminalRef) Device() *Device { return r.device }

// Terminal returns the connected terminal id.
func (r *NetTerminalRef) Terminal() TerminalID { return r.terminal }

// NetPinRef connects a Net to one of its owning Circuit's outgoing pins.
type NetPinRef struct {
	net *Net
	pin PinID
}

// Net returns the owning net.
func (r *NetPinRef) Net() *Net { return r.net }

// Pin returns the connected pin id.
func (r *NetPinRef) Pin() PinID { return r.pin }

// NetSubcircuitPinRef connects a Net to one pin of a SubCircuit instance
// (a pin in the name space of the subcircuit's referenced circuit).
type NetSubcircuitPinRef struct {
	net        *Net
	subcircuit *SubCircuit
	pin        PinID
}

// Net returns the owning net.
func (r *NetSubcircuitPinRef) Net() *Net { return r.net }

// SubCircuit returns the connected subcircuit instance.
func (r *NetSubcircuitPinRef) SubCircuit() *SubCircuit { return r.subcircuit }

// Pin returns the connected pin id, in the pin space of the subcircuit's
// referenced circuit.
func (r *NetSubcircuitPinRef) Pin() PinID { return r.pin }

// Net is an electrical node: an equivalence class of device terminals,
// circuit pins and subcircuit pins that must sit at the same potential.
type Net struct {
	id        ID
	name      string
	clusterID uint64
	circuit   *Circuit

	terminalRefs      []*NetTerminalRef
	pinRefs           []*NetPinRef
	subcircuitPinRefs []*NetSubcircuitPinRef
}

// NewNet creates a detached net (not yet owned by any circuit).
func NewNet(name string) *Net {
	return &Net{id: nextID(), name: name}
}

// ID returns the net's unique id.
func (n *Net) ID() ID { return n.id }

// Name returns the net's explicit name, which may be empty.
func (n *Net) Name() string { return n.name }

// SetName renames the net, invalidating the owning circuit's name index.
func (n *Net) SetName(name string) {
	n.name = name
	if n.circuit != nil {
		n.circuit.invalidateNetNameIndex()
	}
}

// ClusterID returns the net's layout-extraction cluster id.
func (n *Net) ClusterID() uint64 { return n.clusterID }

// SetClusterID sets the net's layout-extraction cluster id, invalidating
// the owning circuit's cluster-id index.
func (n *Net) SetClusterID(id uint64) {
	n.clusterID = id
	if n.circuit != nil {
		n.circuit.invalidateNetClusterIndex()
	}
}

// Circuit returns the circuit owning this net, or nil if detached.
func (n *Net) Circuit() *Circuit { return n.circuit }

// TerminalRefs returns the net's device-terminal references, in the order
// they were attached.
func (n *Net) TerminalRefs() []*NetTerminalRef { return n.terminalRefs }

// PinRefs returns the net's outgoing-pin references.
func (n *Net) PinRefs() []*NetPinRef { return n.pinRefs }

// SubcircuitPinRefs returns the net's subcircuit-pin references.
func (n *Net) SubcircuitPinRefs() []*NetSubcircuitPinRef { return n.subcircuitPinRefs }

// IsPassive reports whether the net has no device terminals and no
// subcircuit pins (it may still have outgoing pin refs).
func (n *Net) IsPassive() bool {
	return len(n.terminalRefs) == 0 && len(n.subcircuitPinRefs) == 0
}

// IsFloating reports whether the net has no references of any kind.
func (n *Net) IsFloating() bool {
	return len(n.terminalRefs) == 0 && len(n.subcircuitPinRefs) == 0 && len(n.pinRefs) == 0
}

// ExpandedName returns Name if set, else a synthetic name derived from the
// cluster id: "$<cluster_id>", or "$I<n>" (n = MaxUint64-clusterID+1) for
// cluster ids in the upper half of the 64-bit range, kept short for debug
// output.
func (n *Net) ExpandedName() string {
	if n.name != "" {
		return n.name
	}
	if n.clusterID >= uint64(1)<<63 {
		inv := math.MaxUint64 - n.clusterID + 1
		return "$I" + strconv.FormatUint(inv, 10)
	}
	return "$" + strconv.FormatUint(n.clusterID, 10)
}

// QName returns ExpandedName prefixed with "<circuit>:" when the net
// belongs to a circuit.
func (n *Net) QName() string {
	if n.circuit != nil {
		return n.circuit.name + ":" + n.ExpandedName()
	}
	return n.ExpandedName()
}

// addTerminalRef appends a new terminal reference; it does not update the
// device's terminal-connection cache — the caller (Circuit.ConnectTerminal)
// must do that with the returned ref.
func (n *Net) addTerminalRef(d *Device, t TerminalID) *NetTerminalRef {
	r := &NetTerminalRef{net: n, device: d, terminal: t}
	n.terminalRefs = append(n.terminalRefs, r)
	return r
}

func (n *Net) removeTerminalRef(r *NetTerminalRef) {
	for i, v := range n.terminalRefs {
		if v == r {
			n.terminalRefs = append(n.terminalRefs[:i], n.terminalRefs[i+1:]...)
			return
		}
	}
}

func (n *Net) addPinRef(p PinID) *NetPinRef {
	r := &NetPinRef{net: n, pin: p}
	n.pinRefs = append(n.pinRefs, r)
	return r
}

func (n *Net) removePinRef(r *NetPinRef) {
	for i, v := range n.pinRefs {
		if v == r {
			n.pinRefs = append(n.pinRefs[:i], n.pinRefs[i+1:]...)
			return
		}
	}
}

func (n *Net) addSubcircuitPinRef(sc *SubCircuit, pin PinID) *NetSubcircuitPinRef {
	r := &NetSubcircuitPinRef{net: n, subcircuit: sc, pin: pin}
	n.subcircuitPinRefs = append(n.subcircuitPinRefs, r)
	return r
}

func (n *Net) removeSubcircuitPinRef(r *NetSubcircuitPinRef) {
	for i, v := range n.subcircuitPinRefs {
		if v == r {
			n.subcircuitPinRefs = append(n.subcircuitPinRefs[:i], n.subcircuitPinRefs[i+1:]...)
			return
		}
	}
}

// moveRefsFrom transfers all of other's references onto n (used by
// Circuit.JoinNets to fold drop's references into keep), re-pointing each
// ref's net back-pointer and the corresponding peer-side cache entry.
func (n *Net) moveRefsFrom(other *Net) {
	for _, r := range other.terminalRefs {
		r.net = n
		n.terminalRefs = append(n.terminalRefs, r)
		r.device.setTerminalRef(r.terminal, r)
	}
	other.terminalRefs = nil
	for _, r := range other.subcircuitPinRefs {
		r.net = n
		n.subcircuitPinRefs = append(n.subcircuitPinRefs, r)
		r.subcircuit.setPinRef(r.pin, r)
	}
	other.subcircuitPinRefs = nil
	// pin refs are intentionally NOT moved here: Circuit.JoinNets handles
	// outgoing-pin refs itself, moving them over only while keep carries
	// none and otherwise routing them through JoinPins (pin-joining, not raw
	// merging) so that a parent-level net join is triggered too.
}
