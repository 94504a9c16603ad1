package netlist

import "github.com/pkg/errors"

// NetlistCallbacks lets a caller hook into net-joining operations that
// cross a circuit boundary: LinkNets is invoked whenever Circuit.JoinNets
// folds one net into another, and LinkNetToParentCircuit is invoked during
// Circuit.FlattenSubcircuit for every child net that needs a fresh net
// created on the parent side, to recover a linked layout cluster id.
type NetlistCallbacks interface {
	LinkNets(keep, drop *Net)
	LinkNetToParentCircuit(childNet *Net, parent *Circuit, transform Transform) uint64
}

// NameNormalizer is an optional case-folding (or other canonicalization)
// hook applied to names before they're used as index keys.
type NameNormalizer func(string) string

// Netlist owns a set of circuits, device classes and device abstracts, and
// caches the name/cell-index lookup tables and parent/child circuit
// adjacency described in §4.F.
type Netlist struct {
	id        ID
	name      string
	callbacks NetlistCallbacks
	normalize NameNormalizer
	txn       TransactionManager

	circuits        []*Circuit
	deviceClasses   []*DeviceClass
	deviceAbstracts []*DeviceAbstract

	circuitByName      map[string]*Circuit
	circuitByNameOK    bool
	circuitByCell      map[int64]*Circuit
	circuitByCellOK    bool
	abstractByName     map[string]*DeviceAbstract
	abstractByNameOK   bool
	abstractByCell     map[int64]*DeviceAbstract
	abstractByCellOK   bool

	topologyOK bool
	children   map[*Circuit][]*Circuit
	parents    map[*Circuit][]*Circuit
}

// NewNetlist creates an empty netlist.
func NewNetlist(name string) *Netlist {
	return &Netlist{id: nextID(), name: name}
}

// ID returns the netlist's unique id.
func (n *Netlist) ID() ID { return n.id }

// Name returns the netlist's name.
func (n *Netlist) Name() string { return n.name }

// SetName renames the netlist.
func (n *Netlist) SetName(name string) { n.name = name }

// SetCallbacks installs the netlist-level callback hooks used during net
// joins and subcircuit flattening. A nil callbacks value disables them
// (LinkNetToParentCircuit then contributes cluster id 0).
func (n *Netlist) SetCallbacks(cb NetlistCallbacks) { n.callbacks = cb }

// Callbacks returns the installed callback hooks, or nil.
func (n *Netlist) Callbacks() NetlistCallbacks { return n.callbacks }

// SetNameNormalizer installs the optional case-folding hook applied to
// names before they're used as circuit/device-abstract index keys.
func (n *Netlist) SetNameNormalizer(f NameNormalizer) {
	n.normalize = f
	n.circuitByNameOK = false
	n.abstractByNameOK = false
}

// NormalizeName applies the installed name normalizer, or returns s
// unchanged if none is installed.
func (n *Netlist) NormalizeName(s string) string {
	if n.normalize == nil {
		return s
	}
	return n.normalize(s)
}

// ---- circuits ----

// Circuits returns the owned circuits in insertion order.
func (n *Netlist) Circuits() []*Circuit { return n.circuits }

// AddCircuit takes ownership of c. Fails with AlreadyOwned if c already
// belongs to a netlist.
func (n *Netlist) AddCircuit(c *Circuit) error {
	if c.netlist != nil {
		return errors.Wrap(ErrAlreadyOwned, "circuit")
	}
	n.notifyBefore(MutationAddCircuit, c)
	c.netlist = n
	n.circuits = append(n.circuits, c)
	n.invalidateCircuitNameIndex()
	n.invalidateCircuitCellIndex()
	n.invalidateTopology()
	n.notifyAfter(MutationAddCircuit, c)
	return nil
}

// RemoveCircuit releases c from this netlist. Every SubCircuit instance
// elsewhere that references c has its weak CircuitRef invalidated (set to
// nil) rather than left dangling, per this module's chosen representation
// of weak references as explicitly-nulled pointers. Fails with NotOwned if
// c does not belong to this netlist.
func (n *Netlist) RemoveCircuit(c *Circuit) error {
	if c.netlist != n {
		return errors.Wrap(ErrNotOwned, "circuit")
	}
	n.notifyBefore(MutationRemoveCircuit, c)
	for _, sc := range c.refs {
		sc.circuitRef = nil
	}
	c.refs = nil
	for i, v := range n.circuits {
		if v == c {
			n.circuits = append(n.circuits[:i], n.circuits[i+1:]...)
			break
		}
	}
	c.netlist = nil
	n.invalidateCircuitNameIndex()
	n.invalidateCircuitCellIndex()
	n.invalidateTopology()
	n.notifyAfter(MutationRemoveCircuit, c)
	return nil
}

// CircuitByName looks up a circuit by name, applying the installed name
// normalizer to both the index and the query.
func (n *Netlist) CircuitByName(name string) (*Circuit, bool) {
	n.rebuildCircuitNameIndex()
	c, ok := n.circuitByName[n.NormalizeName(name)]
	return c, ok
}

// CircuitByCellIndex looks up a circuit by its opaque layout cell index.
func (n *Netlist) CircuitByCellIndex(idx int64) (*Circuit, bool) {
	n.rebuildCircuitCellIndex()
	c, ok := n.circuitByCell[idx]
	return c, ok
}

func (n *Netlist) invalidateCircuitNameIndex() { n.circuitByNameOK = false }
func (n *Netlist) invalidateCircuitCellIndex() { n.circuitByCellOK = false }

func (n *Netlist) rebuildCircuitNameIndex() {
	if n.circuitByNameOK {
		return
	}
	n.circuitByName = make(map[string]*Circuit, len(n.circuits))
	for _, c := range n.circuits {
		if c.name != "" {
			n.circuitByName[n.NormalizeName(c.name)] = c
		}
	}
	n.circuitByNameOK = true
}

func (n *Netlist) rebuildCircuitCellIndex() {
	if n.circuitByCellOK {
		return
	}
	n.circuitByCell = make(map[int64]*Circuit, len(n.circuits))
	for _, c := range n.circuits {
		n.circuitByCell[c.cellIndex] = c
	}
	n.circuitByCellOK = true
}

// PurgeCircuit removes c from the netlist if it is both uninstantiated
// (HasRefs() == false) and not marked DontPurge; called by Circuit.Blank
// for every child circuit left without references. A no-op otherwise.
func (n *Netlist) PurgeCircuit(c *Circuit) {
	if c.netlist != n || c.dontPurge || c.HasRefs() {
		return
	}
	n.RemoveCircuit(c) //nolint:errcheck — ownership just checked above
}

// ---- child/parent circuit adjacency ----

// ChildCircuits returns, in order of first appearance, the distinct
// circuits instantiated (via any subcircuit) inside c.
func (n *Netlist) ChildCircuits(c *Circuit) []*Circuit {
	n.rebuildTopology()
	return n.children[c]
}

// ParentCircuits returns, in order of first appearance, the distinct
// circuits that instantiate c (via any subcircuit) anywhere in the
// netlist.
func (n *Netlist) ParentCircuits(c *Circuit) []*Circuit {
	n.rebuildTopology()
	return n.parents[c]
}

func (n *Netlist) invalidateTopology() { n.topologyOK = false }

func (n *Netlist) rebuildTopology() {
	if n.topologyOK {
		return
	}
	n.children = make(map[*Circuit][]*Circuit)
	n.parents = make(map[*Circuit][]*Circuit)
	childSeen := make(map[*Circuit]map[*Circuit]bool)
	parentSeen := make(map[*Circuit]map[*Circuit]bool)
	for _, c := range n.circuits {
		for _, sc := range c.subcircuits {
			child := sc.circuitRef
			if child == nil {
				continue
			}
			if childSeen[c] == nil {
				childSeen[c] = make(map[*Circuit]bool)
			}
			if !childSeen[c][child] {
				childSeen[c][child] = true
				n.children[c] = append(n.children[c], child)
			}
			if parentSeen[child] == nil {
				parentSeen[child] = make(map[*Circuit]bool)
			}
			if !parentSeen[child][c] {
				parentSeen[child][c] = true
				n.parents[child] = append(n.parents[child], c)
			}
		}
	}
	n.topologyOK = true
}

// ---- device classes ----

// DeviceClasses returns the registered device classes in insertion order.
func (n *Netlist) DeviceClasses() []*DeviceClass { return n.deviceClasses }

// AddDeviceClass registers dc with this netlist.
func (n *Netlist) AddDeviceClass(dc *DeviceClass) {
	n.deviceClasses = append(n.deviceClasses, dc)
}

// RemoveDeviceClass unregisters dc, if present.
func (n *Netlist) RemoveDeviceClass(dc *DeviceClass) {
	for i, v := range n.deviceClasses {
		if v == dc {
			n.deviceClasses = append(n.deviceClasses[:i], n.deviceClasses[i+1:]...)
			return
		}
	}
}

// DeviceClassByName looks up a registered device class by name.
func (n *Netlist) DeviceClassByName(name string) (*DeviceClass, bool) {
	for _, dc := range n.deviceClasses {
		if dc.name == name {
			return dc, true
		}
	}
	return nil, false
}

// ---- device abstracts ----

// DeviceAbstracts returns the registered device abstracts in insertion
// order.
func (n *Netlist) DeviceAbstracts() []*DeviceAbstract { return n.deviceAbstracts }

// AddDeviceAbstract registers a with this netlist.
func (n *Netlist) AddDeviceAbstract(a *DeviceAbstract) {
	n.deviceAbstracts = append(n.deviceAbstracts, a)
	n.abstractByNameOK = false
	n.abstractByCellOK = false
}

// RemoveDeviceAbstract unregisters a, if present.
func (n *Netlist) RemoveDeviceAbstract(a *DeviceAbstract) {
	for i, v := range n.deviceAbstracts {
		if v == a {
			n.deviceAbstracts = append(n.deviceAbstracts[:i], n.deviceAbstracts[i+1:]...)
			n.abstractByNameOK = false
			n.abstractByCellOK = false
			return
		}
	}
}

// DeviceAbstractByName looks up a device abstract by name, applying the
// installed name normalizer.
func (n *Netlist) DeviceAbstractByName(name string) (*DeviceAbstract, bool) {
	if !n.abstractByNameOK {
		n.abstractByName = make(map[string]*DeviceAbstract, len(n.deviceAbstracts))
		for _, a := range n.deviceAbstracts {
			if a.name != "" {
				n.abstractByName[n.NormalizeName(a.name)] = a
			}
		}
		n.abstractByNameOK = true
	}
	a, ok := n.abstractByName[n.NormalizeName(name)]
	return a, ok
}

// DeviceAbstractByCellIndex looks up a device abstract by its opaque
// layout cell index.
func (n *Netlist) DeviceAbstractByCellIndex(idx int64) (*DeviceAbstract, bool) {
	if !n.abstractByCellOK {
		n.abstractByCell = make(map[int64]*DeviceAbstract, len(n.deviceAbstracts))
		for _, a := range n.deviceAbstracts {
			n.abstractByCell[a.cellIndex] = a
		}
		n.abstractByCellOK = true
	}
	a, ok := n.abstractByCell[idx]
	return a, ok
}
