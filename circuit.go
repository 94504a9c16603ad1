package netlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Circuit is one level of schematic hierarchy: a named collection of pins,
// nets, devices and subcircuit instances, together with the cached
// lookup indices and mutation operations described in §4.E.
type Circuit struct {
	id   ID
	name string

	boundary  *Polygon
	cellIndex int64
	dontPurge bool
	index     int

	netlist *Netlist

	pins        []*Pin
	pinRefCache []*NetPinRef // indexed by PinID; this circuit's own outgoing-pin wiring
	nets        []*Net
	devices     []*Device
	subcircuits []*SubCircuit

	// refs are the SubCircuit instances (owned by OTHER circuits) that
	// instantiate this circuit; a weak back-reference installed by
	// NewSubCircuit.
	refs []*SubCircuit

	nextDeviceInstID     ID
	nextSubcircuitInstID ID

	netByName       map[string]*Net
	netByNameValid  bool
	netByCluster    map[uint64]*Net
	netByClusterOK  bool
	devByInst       map[ID]*Device
	devByInstValid  bool
	scByInst        map[ID]*SubCircuit
	scByInstValid   bool
}

// NewCircuit creates an empty, detached circuit.
func NewCircuit(name string) *Circuit {
	return &Circuit{id: nextID(), name: name}
}

// ID returns the circuit's unique id.
func (c *Circuit) ID() ID { return c.id }

// Name returns the circuit's name.
func (c *Circuit) Name() string { return c.name }

// SetName renames the circuit, invalidating the owning netlist's
// circuit-by-name index.
func (c *Circuit) SetName(name string) {
	c.name = name
	if c.netlist != nil {
		c.netlist.invalidateCircuitNameIndex()
	}
}

// Boundary returns the circuit's optional micrometre-coordinate boundary.
func (c *Circuit) Boundary() *Polygon { return c.boundary }

// SetBoundary sets the circuit's boundary polygon.
func (c *Circuit) SetBoundary(p *Polygon) { c.boundary = p }

// CellIndex returns the opaque layout cell index this circuit links back
// to.
func (c *Circuit) CellIndex() int64 { return c.cellIndex }

// SetCellIndex sets the opaque layout cell index, invalidating the owning
// netlist's circuit-by-cell-index index.
func (c *Circuit) SetCellIndex(idx int64) {
	c.cellIndex = idx
	if c.netlist != nil {
		c.netlist.invalidateCircuitCellIndex()
	}
}

// DontPurge reports whether this circuit is protected from
// Netlist.PurgeCircuit even when uninstantiated.
func (c *Circuit) DontPurge() bool { return c.dontPurge }

// SetDontPurge sets the don't-purge flag.
func (c *Circuit) SetDontPurge(v bool) { c.dontPurge = v }

// Index is a slot reserved for external bookkeeping (e.g. a caller's own
// parallel array indexed by circuit); this module never reads or writes
// it except via these accessors.
func (c *Circuit) Index() int { return c.index }

// SetIndex sets the external bookkeeping slot.
func (c *Circuit) SetIndex(i int) { c.index = i }

// Netlist returns the netlist owning this circuit, or nil if detached.
func (c *Circuit) Netlist() *Netlist { return c.netlist }

// Pins returns the circuit's pin slots in id order; a nil entry marks a
// removed pin (the slot, per spec, becomes null rather than renumbering).
func (c *Circuit) Pins() []*Pin { return c.pins }

// PinCount returns the number of pin slots (including nil/removed ones).
func (c *Circuit) PinCount() int { return len(c.pins) }

// Pin returns the pin at id, or nil if out of range or removed.
func (c *Circuit) Pin(id PinID) *Pin {
	if !c.validPin(id) {
		return nil
	}
	return c.pins[id]
}

func (c *Circuit) validPin(id PinID) bool {
	return id >= 0 && int(id) < len(c.pins) && c.pins[id] != nil
}

// Nets returns the circuit's nets in insertion order.
func (c *Circuit) Nets() []*Net { return c.nets }

// Devices returns the circuit's devices in insertion order.
func (c *Circuit) Devices() []*Device { return c.devices }

// SubCircuits returns the circuit's subcircuit instances in insertion
// order.
func (c *Circuit) SubCircuits() []*SubCircuit { return c.subcircuits }

// Refs returns the SubCircuit instances elsewhere that instantiate this
// circuit.
func (c *Circuit) Refs() []*SubCircuit { return c.refs }

// HasRefs reports whether any SubCircuit instantiates this circuit.
func (c *Circuit) HasRefs() bool { return len(c.refs) > 0 }

func (c *Circuit) addRef(sc *SubCircuit) {
	c.refs = append(c.refs, sc)
}

func (c *Circuit) removeRef(sc *SubCircuit) {
	for i, v := range c.refs {
		if v == sc {
			c.refs = append(c.refs[:i], c.refs[i+1:]...)
			return
		}
	}
}

// ---- pins ----

// AddPin appends a new pin and returns it. Pin ids are dense: the new pin's
// id is always len(Pins()) before the call.
func (c *Circuit) AddPin(name string) *Pin {
	p := &Pin{id: PinID(len(c.pins)), name: name}
	c.pins = append(c.pins, p)
	c.pinRefCache = append(c.pinRefCache, nil)
	return p
}

// RemovePin removes pin id, disconnecting it from its net (if any) and from
// every subcircuit instance that wired it to a parent-level net. The id
// slot becomes null; ids above it are not renumbered (see JoinPins for the
// operation that does renumber).
func (c *Circuit) RemovePin(id PinID) error {
	if !c.validPin(id) {
		return errors.Wrapf(ErrInvalidID, "pin %d", id)
	}
	if r := c.pinRefCache[id]; r != nil {
		r.net.removePinRef(r)
		c.pinRefCache[id] = nil
	}
	for _, sc := range c.refs {
		if r := sc.PinRef(id); r != nil {
			r.net.removeSubcircuitPinRef(r)
			sc.setPinRef(id, nil)
		}
	}
	c.pins[id] = nil
	return nil
}

// JoinPins merges pin drop into pin keep: drop's own outgoing-net
// attachment (if any) is removed and keep's is left as it is (invalid ids
// fail with ErrInvalidID), the pin name becomes the merged union, drop's
// id is closed up (every pin id
// above it shifts down by one, in this circuit and in every subcircuit
// instance wired to this circuit's pins), and for every subcircuit
// instantiating this circuit, the two parent-level nets previously
// attached to keep and drop are joined on the parent circuit.
func (c *Circuit) JoinPins(keep, drop PinID) error {
	if !c.validPin(keep) {
		return errors.Wrapf(ErrInvalidID, "pin %d", keep)
	}
	if !c.validPin(drop) {
		return errors.Wrapf(ErrInvalidID, "pin %d", drop)
	}
	if keep == drop {
		return nil
	}
	c.notifyBefore(MutationJoinPins, [2]PinID{keep, drop})
	defer c.notifyAfter(MutationJoinPins, [2]PinID{keep, drop})
	kp, dp := c.pins[keep], c.pins[drop]
	kp.name = joinNames(kp.name, dp.name)

	for _, sc := range c.refs {
		n1, n2 := sc.NetForPin(keep), sc.NetForPin(drop)
		switch {
		case n1 != nil && n2 != nil && n1 != n2:
			if err := sc.Circuit().JoinNets(n1, n2); err != nil {
				return errors.Wrap(err, "joining parent nets during pin join")
			}
		case n1 == nil && n2 != nil:
			r := sc.PinRef(drop)
			sc.setPinRef(drop, nil)
			r.pin = keep
			sc.setPinRef(keep, r)
		}
	}

	c.closePinGap(drop)
	return nil
}

// closePinGap physically removes pin slot drop and shifts every id above
// it down by one, in this circuit's own pin table/cache and in every
// subcircuit instance wired into this circuit's pin space.
func (c *Circuit) closePinGap(drop PinID) {
	if r := c.pinRefCache[drop]; r != nil {
		r.net.removePinRef(r)
	}
	c.pins = append(c.pins[:drop], c.pins[drop+1:]...)
	c.pinRefCache = append(c.pinRefCache[:drop], c.pinRefCache[drop+1:]...)
	for i := int(drop); i < len(c.pins); i++ {
		if c.pins[i] != nil {
			c.pins[i].id = PinID(i)
		}
		if r := c.pinRefCache[i]; r != nil {
			r.pin = PinID(i)
		}
	}
	for _, sc := range c.refs {
		if int(drop) >= len(sc.pinConn) {
			continue
		}
		if r := sc.pinConn[drop]; r != nil {
			r.net.removeSubcircuitPinRef(r)
		}
		sc.pinConn = append(sc.pinConn[:drop], sc.pinConn[drop+1:]...)
		for i := int(drop); i < len(sc.pinConn); i++ {
			if r := sc.pinConn[i]; r != nil {
				r.pin = PinID(i)
			}
		}
	}
}

// NetForPin returns the net this circuit's own pin id is attached to, or
// nil if unconnected.
func (c *Circuit) NetForPin(id PinID) *Net {
	if !c.validPin(id) {
		return nil
	}
	if r := c.pinRefCache[id]; r != nil {
		return r.net
	}
	return nil
}

// ConnectPin sets pin id's outgoing-net attachment, disconnecting any prior
// attachment first. net == nil disconnects.
func (c *Circuit) ConnectPin(id PinID, net *Net) error {
	if !c.validPin(id) {
		return errors.Wrapf(ErrInvalidID, "pin %d", id)
	}
	if net != nil && net.circuit != c {
		return errors.Wrap(ErrNotOwned, "net")
	}
	if old := c.pinRefCache[id]; old != nil {
		old.net.removePinRef(old)
		c.pinRefCache[id] = nil
	}
	if net == nil {
		return nil
	}
	r := net.addPinRef(id)
	c.pinRefCache[id] = r
	return nil
}

// JoinPinWithNet attaches pin id to net. If net already carries a
// different outgoing pin, JoinPins is invoked on the two pin ids instead,
// preserving the invariant that a net carries at most one outgoing-pin
// reference per id and propagating the join up the hierarchy.
func (c *Circuit) JoinPinWithNet(id PinID, net *Net) error {
	if !c.validPin(id) {
		return errors.Wrapf(ErrInvalidID, "pin %d", id)
	}
	if net == nil || net.circuit != c {
		return errors.Wrap(ErrNotOwned, "net")
	}
	if existing := c.pinRefCache[id]; existing != nil && existing.net == net {
		return nil
	}
	if len(net.pinRefs) > 0 {
		other := net.pinRefs[0].pin
		if other == id {
			return nil
		}
		return c.JoinPins(other, id)
	}
	return c.ConnectPin(id, net)
}

// ---- nets ----

// AddNet takes ownership of net. Fails with AlreadyOwned if net already
// belongs to a circuit.
func (c *Circuit) AddNet(n *Net) error {
	if n.circuit != nil {
		return errors.Wrap(ErrAlreadyOwned, "net")
	}
	c.notifyBefore(MutationAddNet, n)
	n.circuit = c
	c.nets = append(c.nets, n)
	c.invalidateNetNameIndex()
	c.invalidateNetClusterIndex()
	c.notifyAfter(MutationAddNet, n)
	return nil
}

// RemoveNet destroys net, disconnecting every reference that pointed to
// it first. Fails with NotOwned if net does not belong to this circuit.
func (c *Circuit) RemoveNet(n *Net) error {
	if n.circuit != c {
		return errors.Wrap(ErrNotOwned, "net")
	}
	c.notifyBefore(MutationRemoveNet, n)
	for _, r := range n.terminalRefs {
		r.device.setTerminalRef(r.terminal, nil)
	}
	for _, r := range n.subcircuitPinRefs {
		r.subcircuit.setPinRef(r.pin, nil)
	}
	for _, r := range n.pinRefs {
		c.pinRefCache[r.pin] = nil
	}
	c.deleteNet(n)
	c.notifyAfter(MutationRemoveNet, n)
	return nil
}

func (c *Circuit) deleteNet(n *Net) {
	for i, v := range c.nets {
		if v == n {
			c.nets = append(c.nets[:i], c.nets[i+1:]...)
			break
		}
	}
	n.circuit = nil
	c.invalidateNetNameIndex()
	c.invalidateNetClusterIndex()
}

// JoinNets merges net drop into net keep within this circuit: all terminal
// refs and subcircuit-pin refs on drop move to keep; outgoing pin refs are
// moved over as they are while keep carries none, and otherwise folded in
// via pin-joining (not a plain merge) so that parent-level nets are joined
// transitively; drop is then deleted. Both nets must already
// belong to this circuit.
func (c *Circuit) JoinNets(keep, drop *Net) error {
	if keep.circuit != c {
		return errors.Wrap(ErrNotOwned, "keep net")
	}
	if drop.circuit != c {
		return errors.Wrap(ErrNotOwned, "drop net")
	}
	if keep == drop {
		return nil
	}
	c.notifyBefore(MutationJoinNets, [2]*Net{keep, drop})
	if c.netlist != nil && c.netlist.callbacks != nil {
		c.netlist.callbacks.LinkNets(keep, drop)
	}
	keep.name = joinNames(keep.name, drop.name)
	keep.moveRefsFrom(drop)

	for len(drop.pinRefs) > 0 {
		pr := drop.pinRefs[0]
		if len(keep.pinRefs) == 0 {
			drop.removePinRef(pr)
			pr.net = keep
			keep.pinRefs = append(keep.pinRefs, pr)
			c.pinRefCache[pr.pin] = pr
			continue
		}
		kp := keep.pinRefs[0].pin
		dp := pr.pin
		if err := c.JoinPins(kp, dp); err != nil {
			return errors.Wrap(err, "folding outgoing pin during net join")
		}
	}

	c.deleteNet(drop)
	c.notifyAfter(MutationJoinNets, [2]*Net{keep, drop})
	return nil
}

// NetByName looks up a net by its explicit name (empty-named nets are never
// indexed).
func (c *Circuit) NetByName(name string) (*Net, bool) {
	c.rebuildNetNameIndex()
	n, ok := c.netByName[name]
	return n, ok
}

// NetByClusterID looks up a net by its layout cluster id.
func (c *Circuit) NetByClusterID(id uint64) (*Net, bool) {
	c.rebuildNetClusterIndex()
	n, ok := c.netByCluster[id]
	return n, ok
}

func (c *Circuit) invalidateNetNameIndex()    { c.netByNameValid = false }
func (c *Circuit) invalidateNetClusterIndex() { c.netByClusterOK = false }

func (c *Circuit) rebuildNetNameIndex() {
	if c.netByNameValid {
		return
	}
	c.netByName = make(map[string]*Net, len(c.nets))
	for _, n := range c.nets {
		if n.name != "" {
			c.netByName[n.name] = n
		}
	}
	c.netByNameValid = true
}

func (c *Circuit) rebuildNetClusterIndex() {
	if c.netByClusterOK {
		return
	}
	c.netByCluster = make(map[uint64]*Net, len(c.nets))
	for _, n := range c.nets {
		if n.clusterID != 0 {
			c.netByCluster[n.clusterID] = n
		}
	}
	c.netByClusterOK = true
}

// ---- devices ----

// AddDevice takes ownership of d, assigning it a monotonic per-circuit
// instance id. Fails with AlreadyOwned if d already belongs to a circuit.
func (c *Circuit) AddDevice(d *Device) error {
	if d.circuit != nil {
		return errors.Wrap(ErrAlreadyOwned, "device")
	}
	c.notifyBefore(MutationAddDevice, d)
	c.nextDeviceInstID++
	d.instID = c.nextDeviceInstID
	d.circuit = c
	c.devices = append(c.devices, d)
	c.devByInstValid = false
	c.notifyAfter(MutationAddDevice, d)
	return nil
}

// RemoveDevice destroys d, disconnecting every terminal it had connected.
// Fails with NotOwned if d does not belong to this circuit.
func (c *Circuit) RemoveDevice(d *Device) error {
	if d.circuit != c {
		return errors.Wrap(ErrNotOwned, "device")
	}
	c.notifyBefore(MutationRemoveDevice, d)
	for _, r := range d.termConn {
		if r != nil {
			r.net.removeTerminalRef(r)
		}
	}
	d.termConn = nil
	for i, v := range c.devices {
		if v == d {
			c.devices = append(c.devices[:i], c.devices[i+1:]...)
			break
		}
	}
	d.circuit = nil
	c.devByInstValid = false
	c.notifyAfter(MutationRemoveDevice, d)
	return nil
}

// ConnectTerminal wires device d's terminal t to net (nil disconnects),
// disconnecting any prior connection first.
func (c *Circuit) ConnectTerminal(d *Device, t TerminalID, net *Net) error {
	if d.circuit != c {
		return errors.Wrap(ErrNotOwned, "device")
	}
	if net != nil && net.circuit != c {
		return errors.Wrap(ErrNotOwned, "net")
	}
	if old := d.TerminalRef(t); old != nil {
		old.net.removeTerminalRef(old)
		d.setTerminalRef(t, nil)
	}
	if net == nil {
		return nil
	}
	r := net.addTerminalRef(d, t)
	d.setTerminalRef(t, r)
	return nil
}

// DeviceByInstanceID looks up a device owned by this circuit by its
// per-circuit instance id.
func (c *Circuit) DeviceByInstanceID(id ID) (*Device, bool) {
	if !c.devByInstValid {
		c.devByInst = make(map[ID]*Device, len(c.devices))
		for _, d := range c.devices {
			c.devByInst[d.instID] = d
		}
		c.devByInstValid = true
	}
	d, ok := c.devByInst[id]
	return d, ok
}

// ---- subcircuits ----

// AddSubcircuit takes ownership of sc, assigning it a monotonic
// per-circuit instance id. Fails with AlreadyOwned if sc already belongs
// to a circuit.
func (c *Circuit) AddSubcircuit(sc *SubCircuit) error {
	if sc.circuit != nil {
		return errors.Wrap(ErrAlreadyOwned, "subcircuit")
	}
	c.notifyBefore(MutationAddSubcircuit, sc)
	c.nextSubcircuitInstID++
	sc.instID = c.nextSubcircuitInstID
	sc.circuit = c
	c.subcircuits = append(c.subcircuits, sc)
	c.scByInstValid = false
	if c.netlist != nil {
		c.netlist.invalidateTopology()
	}
	c.notifyAfter(MutationAddSubcircuit, sc)
	return nil
}

// RemoveSubcircuit destroys sc: it is deregistered from its referenced
// circuit's refs list and every subcircuit-pin-ref it held is erased from
// the nets it was connected to. Fails with NotOwned if sc does not belong
// to this circuit.
func (c *Circuit) RemoveSubcircuit(sc *SubCircuit) error {
	if sc.circuit != c {
		return errors.Wrap(ErrNotOwned, "subcircuit")
	}
	c.notifyBefore(MutationRemoveSubcircuit, sc)
	sc.detach()
	for i, v := range c.subcircuits {
		if v == sc {
			c.subcircuits = append(c.subcircuits[:i], c.subcircuits[i+1:]...)
			break
		}
	}
	sc.circuit = nil
	c.scByInstValid = false
	if c.netlist != nil {
		c.netlist.invalidateTopology()
	}
	c.notifyAfter(MutationRemoveSubcircuit, sc)
	return nil
}

// ConnectSubcircuitPin wires subcircuit instance sc's pin (in its
// referenced circuit's pin space) to net (nil disconnects), disconnecting
// any prior connection first.
func (c *Circuit) ConnectSubcircuitPin(sc *SubCircuit, pin PinID, net *Net) error {
	if sc.circuit != c {
		return errors.Wrap(ErrNotOwned, "subcircuit")
	}
	if net != nil && net.circuit != c {
		return errors.Wrap(ErrNotOwned, "net")
	}
	if old := sc.PinRef(pin); old != nil {
		old.net.removeSubcircuitPinRef(old)
		sc.setPinRef(pin, nil)
	}
	if net == nil {
		return nil
	}
	r := net.addSubcircuitPinRef(sc, pin)
	sc.setPinRef(pin, r)
	return nil
}

// SubCircuitByInstanceID looks up a subcircuit owned by this circuit by its
// per-circuit instance id.
func (c *Circuit) SubCircuitByInstanceID(id ID) (*SubCircuit, bool) {
	if !c.scByInstValid {
		c.scByInst = make(map[ID]*SubCircuit, len(c.subcircuits))
		for _, sc := range c.subcircuits {
			c.scByInst[sc.instID] = sc
		}
		c.scByInstValid = true
	}
	sc, ok := c.scByInst[id]
	return sc, ok
}

// ---- editing operations ----

// FlattenSubcircuit replaces subcircuit instance sc with a copy of its
// referenced circuit's contents, inlined into this circuit, per §4.E.
func (c *Circuit) FlattenSubcircuit(sc *SubCircuit) error {
	if sc.circuit != c {
		return errors.Wrap(ErrNotOwned, "subcircuit")
	}
	child := sc.circuitRef
	if child == nil {
		return errors.New("subcircuit has no referenced circuit to flatten")
	}
	c.notifyBefore(MutationFlattenSubcircuit, sc)
	defer c.notifyAfter(MutationFlattenSubcircuit, sc)

	netMap := make(map[*Net]*Net, len(child.nets))
	for _, cn := range child.nets {
		var mapped *Net
		for _, pr := range cn.pinRefs {
			pn := sc.NetForPin(pr.pin)
			if pn == nil {
				continue
			}
			if mapped == nil {
				mapped = pn
			} else if mapped != pn {
				if err := c.JoinNets(mapped, pn); err != nil {
					return errors.Wrap(err, "flatten: joining pin-connected nets")
				}
			}
		}
		if mapped == nil {
			name := ""
			if cn.name != "" {
				name = sc.ExpandedName() + "." + cn.name
			}
			nn := NewNet(name)
			if err := c.AddNet(nn); err != nil {
				return err
			}
			if c.netlist != nil && c.netlist.callbacks != nil {
				nn.SetClusterID(c.netlist.callbacks.LinkNetToParentCircuit(cn, c, sc.transform))
			}
			mapped = nn
		}
		netMap[cn] = mapped
	}

	for _, cd := range child.devices {
		nd := NewDevice(cd.class, prefixedName(sc, cd.name))
		nd.abstract = cd.abstract
		nd.params = append([]float64(nil), cd.params...)
		nd.transform = cd.transform.Concat(sc.transform)
		nd.otherAbstracts = append([]OtherAbstract(nil), cd.otherAbstracts...)
		if cd.reconnectedTerm != nil {
			nd.reconnectedTerm = make(map[TerminalID][]ReconnectedRoute, len(cd.reconnectedTerm))
			for k, v := range cd.reconnectedTerm {
				nd.reconnectedTerm[k] = append([]ReconnectedRoute(nil), v...)
			}
		}
		if err := c.AddDevice(nd); err != nil {
			return err
		}
		for t, ref := range cd.termConn {
			if ref == nil {
				continue
			}
			if err := c.ConnectTerminal(nd, TerminalID(t), netMap[ref.net]); err != nil {
				return errors.Wrap(err, "flatten: rewiring device terminal")
			}
		}
	}

	for _, csc := range child.subcircuits {
		nsc := NewSubCircuit(csc.circuitRef, prefixedName(sc, csc.name))
		nsc.transform = csc.transform.Concat(sc.transform)
		if err := c.AddSubcircuit(nsc); err != nil {
			return err
		}
		for p, ref := range csc.pinConn {
			if ref == nil {
				continue
			}
			if err := c.ConnectSubcircuitPin(nsc, PinID(p), netMap[ref.net]); err != nil {
				return errors.Wrap(err, "flatten: rewiring nested subcircuit pin")
			}
		}
	}

	return c.RemoveSubcircuit(sc)
}

func prefixedName(sc *SubCircuit, name string) string {
	if name == "" {
		return ""
	}
	return sc.ExpandedName() + "." + name
}

// PurgeNets removes every passive net, including the pins attached to such
// nets (erasing the corresponding subcircuit-pin refs from parent-level
// nets). Pin ids above a removed one are not renumbered.
func (c *Circuit) PurgeNets() { c.purgeNets(true) }

// PurgeNetsKeepPins removes every passive net but keeps the pins attached
// to them (left disconnected).
func (c *Circuit) PurgeNetsKeepPins() { c.purgeNets(false) }

func (c *Circuit) purgeNets(removePins bool) {
	c.notifyBefore(MutationPurgeNets, removePins)
	defer c.notifyAfter(MutationPurgeNets, removePins)
	var passive []*Net
	for _, n := range c.nets {
		if n.IsPassive() {
			passive = append(passive, n)
		}
	}
	for _, n := range passive {
		for len(n.pinRefs) > 0 {
			pr := n.pinRefs[0]
			if removePins {
				c.RemovePin(pr.pin) //nolint:errcheck — pr.pin is always valid here
			} else {
				c.pinRefCache[pr.pin] = nil
				n.removePinRef(pr)
			}
		}
		c.deleteNet(n)
	}
}

// Blank deletes all nets, devices and subcircuits in this circuit. Any
// child circuit that becomes uninstantiated as a result is offered to the
// owning netlist for purging. The circuit itself is marked don't-purge so
// it survives as a pin-only blackbox shell.
func (c *Circuit) Blank() {
	c.notifyBefore(MutationBlank, c)
	defer c.notifyAfter(MutationBlank, c)
	children := make(map[*Circuit]struct{})
	for _, sc := range c.subcircuits {
		if sc.circuitRef != nil {
			children[sc.circuitRef] = struct{}{}
		}
	}
	for len(c.nets) > 0 {
		c.RemoveNet(c.nets[0]) //nolint:errcheck — always owned
	}
	for len(c.devices) > 0 {
		c.RemoveDevice(c.devices[0]) //nolint:errcheck — always owned
	}
	for len(c.subcircuits) > 0 {
		c.RemoveSubcircuit(c.subcircuits[0]) //nolint:errcheck — always owned
	}
	for child := range children {
		if !child.HasRefs() && c.netlist != nil {
			c.netlist.PurgeCircuit(child)
		}
	}
	c.dontPurge = true
}

// CombineDevices repeatedly parallel- and serial-combines devices of every
// device class that supports it, until a full pass yields no combination.
// Termination is guaranteed because each successful combination strictly
// reduces device count.
func (c *Circuit) CombineDevices() {
	c.notifyBefore(MutationCombineDevices, c)
	defer c.notifyAfter(MutationCombineDevices, c)
	for {
		changed := false
		for _, dc := range c.deviceClassesInUse() {
			if dc.SupportsParallelCombine() && c.combineParallelDevicesOfClass(dc) {
				changed = true
			}
			if dc.SupportsSerialCombine() && c.combineSerialDevicesOfClass(dc) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (c *Circuit) deviceClassesInUse() []*DeviceClass {
	seen := make(map[*DeviceClass]bool)
	var out []*DeviceClass
	for _, d := range c.devices {
		if d.class != nil && !seen[d.class] {
			seen[d.class] = true
			out = append(out, d.class)
		}
	}
	return out
}

// combineParallelDevicesOfClass groups devices of class dc by the
// sorted-unique set of nets attached to their terminals, then attempts
// pairwise combination within each group via dc's combiner delegate.
func (c *Circuit) combineParallelDevicesOfClass(dc *DeviceClass) bool {
	changed := false
	for {
		groups := make(map[string][]*Device)
		var order []string
		for _, d := range c.devices {
			if d.class != dc {
				continue
			}
			key := netSetKey(d)
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], d)
		}
		combinedAny := false
		for _, key := range order {
			g := groups[key]
			for i := 0; i < len(g) && !combinedAny; i++ {
				for j := i + 1; j < len(g); j++ {
					a, b := g[i], g[j]
					if !dc.CombineDevices(a, b) {
						continue
					}
					a.JoinDevice(b)
					if err := checkDeviceBeforeRemove(b); err != nil {
						panic(err)
					}
					c.RemoveDevice(b) //nolint:errcheck — always owned
					changed, combinedAny = true, true
					break
				}
			}
			if combinedAny {
				break
			}
		}
		if !combinedAny {
			return changed
		}
	}
}

// combineSerialDevicesOfClass looks for nets carrying exactly two
// terminals of class dc and no pins, and attempts to combine the two
// devices when the union of their other nets fits within dc's terminal
// count.
func (c *Circuit) combineSerialDevicesOfClass(dc *DeviceClass) bool {
	changed := false
	for {
		combinedAny := false
		for _, n := range c.nets {
			if len(n.pinRefs) > 0 {
				continue
			}
			var terms []*NetTerminalRef
			for _, r := range n.terminalRefs {
				if r.device.class == dc {
					terms = append(terms, r)
				}
			}
			if len(terms) != 2 {
				continue
			}
			d1, d2 := terms[0].device, terms[1].device
			if d1 == d2 {
				continue
			}
			others := otherNets(d1, d2, n)
			if len(others) > len(dc.Terminals()) {
				continue
			}
			if !dc.CombineDevices(d1, d2) {
				continue
			}
			d1.JoinDevice(d2)
			if err := checkDeviceBeforeRemove(d2); err != nil {
				panic(err)
			}
			c.RemoveDevice(d2) //nolint:errcheck — always owned
			changed, combinedAny = true, true
			break
		}
		if !combinedAny {
			return changed
		}
	}
}

func otherNets(d1, d2 *Device, internal *Net) map[ID]struct{} {
	set := make(map[ID]struct{})
	add := func(d *Device) {
		for _, r := range d.termConn {
			if r == nil || r.net == internal {
				continue
			}
			set[r.net.id] = struct{}{}
		}
	}
	add(d1)
	add(d2)
	return set
}

func netSetKey(d *Device) string {
	seen := make(map[ID]struct{})
	var ids []uint64
	for _, r := range d.termConn {
		if r == nil {
			continue
		}
		if _, ok := seen[r.net.id]; ok {
			continue
		}
		seen[r.net.id] = struct{}{}
		ids = append(ids, uint64(r.net.id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%d,", id)
	}
	return b.String()
}

// checkDeviceBeforeRemove enforces the integrity check named in §4.E: a
// device absorbed via JoinDevice must have every terminal disconnected
// before it is removed. A violation is an Internal error (§7) — it should
// never happen from correct combiner-delegate behavior, so it panics
// rather than returning an error a caller might paper over.
func checkDeviceBeforeRemove(d *Device) error {
	for _, r := range d.termConn {
		if r != nil {
			return internalf("device %s still has a connected terminal after combination", d.ExpandedName())
		}
	}
	return nil
}
