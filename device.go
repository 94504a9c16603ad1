package netlist

import "strconv"

// OtherAbstract records one device abstract absorbed by Device.JoinDevice,
// together with its placement transform relative to the absorbing device.
type OtherAbstract struct {
	Abstract  *DeviceAbstract
	Transform Transform
}

// ReconnectedRoute records, for one terminal of the absorbing device, which
// absorbed abstract (DeviceIndex 0 means the device's own primary abstract;
// k >= 1 means Device.OtherAbstracts()[k-1]) and which of its terminals now effectively
// backs the connection. Device.RerouteTerminal's bookkeeping does not
// create any new internal net — per the original engine, the internal
// connection this implies is not represented, and combined-device
// topologies built from rerouted terminals are therefore approximate. This
// module mirrors that approximation rather than repairing it.
type ReconnectedRoute struct {
	DeviceIndex int
	Terminal    TerminalID
}

// Device is an instance of a DeviceClass inside a Circuit.
type Device struct {
	id     ID
	instID ID
	name   string

	transform Transform
	params    []float64

	class    *DeviceClass
	abstract *DeviceAbstract
	circuit  *Circuit

	// termConn is indexed by TerminalID; a nil entry means unconnected.
	termConn []*NetTerminalRef

	otherAbstracts  []OtherAbstract
	reconnectedTerm map[TerminalID][]ReconnectedRoute
}

// NewDevice creates a detached device of the given class (not yet owned by
// any circuit, and without an assigned instance id — Circuit.AddDevice
// assigns one).
func NewDevice(class *DeviceClass, name string) *Device {
	return &Device{
		id:    nextID(),
		name:  name,
		class: class,
	}
}

// ID returns the device's process-wide unique id.
func (d *Device) ID() ID { return d.id }

// InstanceID returns the device's per-circuit monotonic instance id,
// assigned when the device is added to a circuit (zero until then).
func (d *Device) InstanceID() ID { return d.instID }

// Name returns the device's explicit name, which may be empty.
func (d *Device) Name() string { return d.name }

// SetName renames the device.
func (d *Device) SetName(name string) { d.name = name }

// ExpandedName returns Name if set, else "$<instance id>".
func (d *Device) ExpandedName() string {
	if d.name != "" {
		return d.name
	}
	return "$" + strconv.FormatUint(uint64(d.instID), 10)
}

// Class returns the device's class.
func (d *Device) Class() *DeviceClass { return d.class }

// Abstract returns the device's primary abstract, or nil.
func (d *Device) Abstract() *DeviceAbstract { return d.abstract }

// SetAbstract sets the device's primary abstract.
func (d *Device) SetAbstract(a *DeviceAbstract) { d.abstract = a }

// Transform returns the device's placement transform.
func (d *Device) Transform() Transform { return d.transform }

// SetTransform sets the device's placement transform.
func (d *Device) SetTransform(t Transform) { d.transform = t }

// Circuit returns the circuit owning this device, or nil if detached.
func (d *Device) Circuit() *Circuit { return d.circuit }

// Param returns the value of parameter id: the stored value if present,
// else the class's default for that parameter (missing trailing vector
// entries default to the definition default).
func (d *Device) Param(id ParamID) float64 {
	if int(id) >= 0 && int(id) < len(d.params) {
		return d.params[id]
	}
	if d.class != nil {
		return d.class.ParamDefault(id)
	}
	return 0
}

// SetParam sets the value of parameter id, growing the parameter vector
// (filling any new gap with the class defaults) as needed.
func (d *Device) SetParam(id ParamID, v float64) {
	for ParamID(len(d.params)) <= id {
		d.params = append(d.params, d.class.ParamDefault(ParamID(len(d.params))))
	}
	d.params[id] = v
}

// Params returns the raw parameter vector (not padded to the class's full
// parameter count).
func (d *Device) Params() []float64 { return d.params }

// NTerminals returns the number of terminal slots currently allocated
// (lazily grown by Circuit.ConnectTerminal to one past the highest terminal
// id ever connected; it can be smaller than len(Class().Terminals())).
func (d *Device) NTerminals() int { return len(d.termConn) }

// TerminalRef returns the net-terminal reference at terminal t, or nil if
// unconnected.
func (d *Device) TerminalRef(t TerminalID) *NetTerminalRef {
	if int(t) < 0 || int(t) >= len(d.termConn) {
		return nil
	}
	return d.termConn[t]
}

// IsTerminalConnected reports whether terminal t is connected to a net.
func (d *Device) IsTerminalConnected(t TerminalID) bool {
	return d.TerminalRef(t) != nil
}

// setTerminalRef installs the terminal-connection cache entry; used by
// Circuit.ConnectTerminal, Circuit.RemoveNet and Net.moveRefsFrom to keep
// the device-side cache consistent with the net-side reference list.
func (d *Device) setTerminalRef(t TerminalID, r *NetTerminalRef) {
	for TerminalID(len(d.termConn)) <= t {
		d.termConn = append(d.termConn, nil)
	}
	d.termConn[t] = r
}

// OtherAbstracts returns the device abstracts absorbed via JoinDevice, not
// counting the device's own primary abstract.
func (d *Device) OtherAbstracts() []OtherAbstract { return d.otherAbstracts }

// ReconnectedTerminals returns, per terminal id, the rerouted connection
// history recorded by RerouteTerminal.
func (d *Device) ReconnectedTerminals() map[TerminalID][]ReconnectedRoute {
	return d.reconnectedTerm
}

// JoinDevice absorbs other into d: other's primary abstract (if any) is
// appended to d.OtherAbstracts with a transform expressing its placement
// relative to d, and the two devices' names are merged with joinNames. It
// does not touch terminal connections — the device-class combiner delegate
// is responsible for rerouting/disconnecting other's terminals before the
// caller deletes it (see Circuit.combineParallelDevicesOfClass and
// Circuit.combineSerialDevicesOfClass).
func (d *Device) JoinDevice(other *Device) {
	d.name = joinNames(d.name, other.name)
	rel := other.transform.Concat(invert(d.transform))
	if other.abstract != nil {
		d.otherAbstracts = append(d.otherAbstracts, OtherAbstract{Abstract: other.abstract, Transform: rel})
	}
	for _, oa := range other.otherAbstracts {
		d.otherAbstracts = append(d.otherAbstracts, OtherAbstract{
			Abstract:  oa.Abstract,
			Transform: oa.Transform.Concat(rel),
		})
	}
}

// RerouteTerminal records that terminal t of d is now, for bookkeeping
// purposes, routed through the otherTerminal of the absorbed abstract at
// otherAbstracts[deviceIndex-1] (deviceIndex 0 means d's own primary
// abstract). See ReconnectedRoute's doc comment for the approximation this
// implies.
func (d *Device) RerouteTerminal(t TerminalID, deviceIndex int, otherTerminal TerminalID) {
	if d.reconnectedTerm == nil {
		d.reconnectedTerm = make(map[TerminalID][]ReconnectedRoute)
	}
	d.reconnectedTerm[t] = append(d.reconnectedTerm[t], ReconnectedRoute{DeviceIndex: deviceIndex, Terminal: otherTerminal})
}

// invert returns the inverse of t, so that t.Concat(invert(t)) is the
// identity transform; used by JoinDevice to express other's placement
// relative to d rather than relative to the circuit origin.
func invert(t Transform) Transform {
	mag := t.Mag
	if mag == 0 {
		mag = 1
	}
	rot := (4 - t.Rotation%4) % 4
	if t.Mirrored {
		// mirroring reverses the sense of rotation, so a mirrored
		// transform is undone by the same number of quarter turns
		rot = ((t.Rotation % 4) + 4) % 4
	}
	inv := Transform{Rotation: rot, Mirrored: t.Mirrored, Mag: 1 / mag}
	origin := inv.Apply(Point{X: -t.DX, Y: -t.DY})
	inv.DX, inv.DY = origin.X, origin.Y
	return inv
}
