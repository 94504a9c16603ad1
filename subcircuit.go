package netlist

import "strconv"

// SubCircuit is an instance of a Circuit (the "referenced circuit") placed
// inside another Circuit (the "containing circuit").
type SubCircuit struct {
	id     ID
	instID ID
	name   string

	transform  Transform
	circuitRef *Circuit // referenced circuit (weak; nil if dropped)
	circuit    *Circuit // containing circuit (back-reference)

	// pinConn is indexed by PinID in circuitRef's pin space.
	pinConn []*NetSubcircuitPinRef
}

// NewSubCircuit creates a detached instance of ref (not yet owned by any
// containing circuit), registering it in ref.refs so ref knows it is
// instantiated.
func NewSubCircuit(ref *Circuit, name string) *SubCircuit {
	sc := &SubCircuit{
		id:         nextID(),
		name:       name,
		circuitRef: ref,
		transform:  Identity,
	}
	if ref != nil {
		ref.addRef(sc)
	}
	return sc
}

// ID returns the subcircuit instance's unique id.
func (sc *SubCircuit) ID() ID { return sc.id }

// InstanceID returns the subcircuit's per-containing-circuit monotonic
// instance id, assigned when added to a circuit.
func (sc *SubCircuit) InstanceID() ID { return sc.instID }

// Name returns the subcircuit's explicit name, which may be empty.
func (sc *SubCircuit) Name() string { return sc.name }

// SetName renames the subcircuit instance.
func (sc *SubCircuit) SetName(name string) { sc.name = name }

// ExpandedName returns Name if set, else "$<instance id>".
func (sc *SubCircuit) ExpandedName() string {
	if sc.name != "" {
		return sc.name
	}
	return "$" + strconv.FormatUint(uint64(sc.instID), 10)
}

// Transform returns the subcircuit's placement transform.
func (sc *SubCircuit) Transform() Transform { return sc.transform }

// SetTransform sets the subcircuit's placement transform.
func (sc *SubCircuit) SetTransform(t Transform) { sc.transform = t }

// CircuitRef returns the referenced circuit, or nil if it has been dropped
// from the netlist (a weak reference, per spec §3).
func (sc *SubCircuit) CircuitRef() *Circuit { return sc.circuitRef }

// Circuit returns the containing circuit, or nil if detached.
func (sc *SubCircuit) Circuit() *Circuit { return sc.circuit }

// PinRef returns the net-subcircuit-pin reference at pin (in circuitRef's
// pin space), or nil if unconnected.
func (sc *SubCircuit) PinRef(pin PinID) *NetSubcircuitPinRef {
	if int(pin) < 0 || int(pin) >= len(sc.pinConn) {
		return nil
	}
	return sc.pinConn[pin]
}

// NetForPin returns the net connected to pin, or nil.
func (sc *SubCircuit) NetForPin(pin PinID) *Net {
	if r := sc.PinRef(pin); r != nil {
		return r.Net()
	}
	return nil
}

func (sc *SubCircuit) setPinRef(pin PinID, r *NetSubcircuitPinRef) {
	for PinID(len(sc.pinConn)) <= pin {
		sc.pinConn = append(sc.pinConn, nil)
	}
	sc.pinConn[pin] = r
}

// detach deregisters sc from its referenced circuit's refs list and erases
// every subcircuit-pin-ref it held from the nets it was connected to. It is
// called by Circuit.RemoveSubcircuit before the instance is discarded.
func (sc *SubCircuit) detach() {
	if sc.circuitRef != nil {
		sc.circuitRef.removeRef(sc)
	}
	for _, r := range sc.pinConn {
		if r != nil {
			r.net.removeSubcircuitPinRef(r)
		}
	}
	sc.pinConn = nil
}
