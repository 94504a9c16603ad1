// Package nettest provides small fluent helpers for building throwaway
// netlists in tests, and assertions built around a recording logger, so
// that compare package tests read as a sequence of circuit/device/net
// declarations rather than raw constructor calls.
package nettest

import "github.com/db47h/netlist"

// Builder accumulates a Netlist and its in-progress Circuit, Device and
// DeviceClass state across chained calls.
type Builder struct {
	Net     *netlist.Netlist
	classes map[string]*netlist.DeviceClass
	circ    *netlist.Circuit
	nets    map[string]*netlist.Net
	pins    map[string]netlist.PinID
	devSeq  int
}

// New starts a builder over a fresh, empty netlist named name.
func New(name string) *Builder {
	return &Builder{
		Net:     netlist.NewNetlist(name),
		classes: make(map[string]*netlist.DeviceClass),
	}
}

// Class registers (or returns the already-registered) two-terminal device
// class named name, with terminals "A" and "B".
func (b *Builder) Class(name string) *netlist.DeviceClass {
	if dc, ok := b.classes[name]; ok {
		return dc
	}
	dc := netlist.NewDeviceClass(name)
	dc.AddTerminal("A", "")
	dc.AddTerminal("B", "")
	b.classes[name] = dc
	b.Net.AddDeviceClass(dc)
	return dc
}

// Circuit starts (or resumes) building the named circuit, making it the
// target of subsequent Net/Pin/Device calls.
func (b *Builder) Circuit(name string) *Builder {
	if c, ok := b.Net.CircuitByName(name); ok {
		b.circ = c
	} else {
		b.circ = netlist.NewCircuit(name)
		b.Net.AddCircuit(b.circ) //nolint:errcheck — freshly created, cannot already be owned
	}
	b.nets = make(map[string]*netlist.Net)
	b.pins = make(map[string]netlist.PinID)
	return b
}

// Pin adds a boundary pin to the current circuit and connects it to the
// named net (created if not already present).
func (b *Builder) Pin(pinName, netName string) *Builder {
	p := b.circ.AddPin(pinName)
	b.pins[pinName] = p.ID()
	n := b.netNamed(netName)
	b.circ.ConnectPin(p.ID(), n) //nolint:errcheck — pin just created, net owned by this circuit
	return b
}

// Device adds a device of class className to the current circuit,
// connecting its "A" and "B" terminals to the named nets.
func (b *Builder) Device(className, netA, netB string) *Builder {
	dc := b.Class(className)
	b.devSeq++
	d := netlist.NewDevice(dc, "")
	b.circ.AddDevice(d) //nolint:errcheck — freshly created
	b.circ.ConnectTerminal(d, 0, b.netNamed(netA)) //nolint:errcheck
	b.circ.ConnectTerminal(d, 1, b.netNamed(netB)) //nolint:errcheck
	return b
}

// SubCircuit instantiates the named child circuit inside the current one,
// connecting pinNet pairs (alternating pin name, net name) to it.
func (b *Builder) SubCircuit(childName string, pinNetPairs ...string) *Builder {
	child, ok := b.Net.CircuitByName(childName)
	if !ok {
		return b
	}
	sc := netlist.NewSubCircuit(child, "")
	b.circ.AddSubcircuit(sc) //nolint:errcheck
	for i := 0; i+1 < len(pinNetPairs); i += 2 {
		pinName, netName := pinNetPairs[i], pinNetPairs[i+1]
		pid, ok := findPin(child, pinName)
		if !ok {
			continue
		}
		b.circ.ConnectSubcircuitPin(sc, pid, b.netNamed(netName)) //nolint:errcheck
	}
	return b
}

// CurrentCircuit returns the circuit currently being built.
func (b *Builder) CurrentCircuit() *netlist.Circuit { return b.circ }

func (b *Builder) netNamed(name string) *netlist.Net {
	if n, ok := b.nets[name]; ok {
		return n
	}
	n := netlist.NewNet(name)
	b.circ.AddNet(n) //nolint:errcheck
	b.nets[name] = n
	return n
}

func findPin(c *netlist.Circuit, name string) (netlist.PinID, bool) {
	for _, p := range c.Pins() {
		if p != nil && p.Name() == name {
			return p.ID(), true
		}
	}
	return netlist.NilPinID, false
}
