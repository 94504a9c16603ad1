package netlist

// MutationKind identifies the kind of edit a TransactionManager is notified
// about, per §6's optional on_before_mutation/on_after_mutation hooks.
type MutationKind int

// Mutation kinds posted to an attached TransactionManager.
const (
	MutationAddCircuit MutationKind = iota
	MutationRemoveCircuit
	MutationAddNet
	MutationRemoveNet
	MutationAddDevice
	MutationRemoveDevice
	MutationAddSubcircuit
	MutationRemoveSubcircuit
	MutationJoinNets
	MutationJoinPins
	MutationFlattenSubcircuit
	MutationPurgeNets
	MutationBlank
	MutationCombineDevices
)

func (k MutationKind) String() string {
	switch k {
	case MutationAddCircuit:
		return "add_circuit"
	case MutationRemoveCircuit:
		return "remove_circuit"
	case MutationAddNet:
		return "add_net"
	case MutationRemoveNet:
		return "remove_net"
	case MutationAddDevice:
		return "add_device"
	case MutationRemoveDevice:
		return "remove_device"
	case MutationAddSubcircuit:
		return "add_subcircuit"
	case MutationRemoveSubcircuit:
		return "remove_subcircuit"
	case MutationJoinNets:
		return "join_nets"
	case MutationJoinPins:
		return "join_pins"
	case MutationFlattenSubcircuit:
		return "flatten_subcircuit"
	case MutationPurgeNets:
		return "purge_nets"
	case MutationBlank:
		return "blank"
	case MutationCombineDevices:
		return "combine_devices"
	default:
		return "unknown"
	}
}

// TransactionManager is an external undo/redo collaborator notified around
// each operation named by a MutationKind. Pin/terminal/subcircuit-pin
// connection changes, AddPin/RemovePin and renames are not posted. Per §5,
// its callbacks must not reenter the same Netlist.
type TransactionManager interface {
	OnBeforeMutation(kind MutationKind, object interface{})
	OnAfterMutation(kind MutationKind, object interface{})
}

// NopTransactionManager implements TransactionManager with no-op methods.
// It is the implicit manager when none is attached.
type NopTransactionManager struct{}

// OnBeforeMutation does nothing.
func (NopTransactionManager) OnBeforeMutation(MutationKind, interface{}) {}

// OnAfterMutation does nothing.
func (NopTransactionManager) OnAfterMutation(MutationKind, interface{}) {}

// SetTransactionManager attaches m as the netlist's transaction manager. A
// nil m detaches any previously-attached manager.
func (n *Netlist) SetTransactionManager(m TransactionManager) { n.txn = m }

func (n *Netlist) notifyBefore(kind MutationKind, object interface{}) {
	if n.txn != nil {
		n.txn.OnBeforeMutation(kind, object)
	}
}

func (n *Netlist) notifyAfter(kind MutationKind, object interface{}) {
	if n.txn != nil {
		n.txn.OnAfterMutation(kind, object)
	}
}

// notifyBefore/notifyAfter are Circuit-level conveniences that route
// through the owning netlist's transaction manager, if any (a detached
// circuit has no manager to notify).
func (c *Circuit) notifyBefore(kind MutationKind, object interface{}) {
	if c.netlist != nil {
		c.netlist.notifyBefore(kind, object)
	}
}

func (c *Circuit) notifyAfter(kind MutationKind, object interface{}) {
	if c.netlist != nil {
		c.netlist.notifyAfter(kind, object)
	}
}
