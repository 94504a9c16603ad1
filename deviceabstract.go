package netlist

// DeviceAbstract links a device type to an opaque layout cell: a vector of
// cluster ids indexed by terminal id, used by layout-extraction tools to
// recover which shapes belong to which terminal. This module treats the
// cell index as opaque (§1: layout geometry is only retained as an
// attribute).
type DeviceAbstract struct {
	id        ID
	name      string
	class     *DeviceClass
	cellIndex int64
	clusters  []int64 // indexed by TerminalID
}

// NewDeviceAbstract creates a device abstract for the given class and cell.
func NewDeviceAbstract(name string, class *DeviceClass, cellIndex int64) *DeviceAbstract {
	return &DeviceAbstract{
		id:        nextID(),
		name:      name,
		class:     class,
		cellIndex: cellIndex,
	}
}

// ID returns the abstract's unique id.
func (a *DeviceAbstract) ID() ID { return a.id }

// Name returns the abstract's name.
func (a *DeviceAbstract) Name() string { return a.name }

// SetName renames the abstract.
func (a *DeviceAbstract) SetName(name string) { a.name = name }

// Class returns the owning device class.
func (a *DeviceAbstract) Class() *DeviceClass { return a.class }

// CellIndex returns the opaque layout cell index.
func (a *DeviceAbstract) CellIndex() int64 { return a.cellIndex }

// SetCellIndex sets the opaque layout cell index.
func (a *DeviceAbstract) SetCellIndex(idx int64) { a.cellIndex = idx }

// ClusterID returns the cluster id linked to terminal t, or 0 if unset.
func (a *DeviceAbstract) ClusterID(t TerminalID) int64 {
	if int(t) < 0 || int(t) >= len(a.clusters) {
		return 0
	}
	return a.clusters[t]
}

// SetClusterID links terminal t to the given cluster id, growing the
// cluster table as needed.
func (a *DeviceAbstract) SetClusterID(t TerminalID, cluster int64) {
	for int(t) >= len(a.clusters) {
		a.clusters = append(a.clusters, 0)
	}
	a.clusters[t] = cluster
}
