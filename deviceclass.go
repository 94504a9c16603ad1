package netlist

// TerminalID indexes a device class's terminal definitions and (when
// unnormalized) a device's per-terminal connection table.
type TerminalID int

// ParamID indexes a device class's parameter definitions and a device's
// parameter vector.
type ParamID int

// TerminalDef describes one terminal of a device class.
type TerminalDef struct {
	ID          TerminalID
	Name        string
	Description string
}

// ParamDef describes one parameter of a device class.
//
// SIScale and GeoScaling are carried from the original netlist-compare
// engine's parameter descriptors: SIScale is the SI unit scale applied when
// presenting the parameter value (e.g. 1e-6 for a micrometre width stored
// in metres), and GeoScaling is the geometry-scaling exponent (1 for a
// MOSFET's W, 0 for a threshold voltage). Both are stored for callers and
// delegates to read; this package itself does not read them, and
// Device.JoinDevice leaves parameter values unchanged.
type ParamDef struct {
	ID          ParamID
	Name        string
	Description string
	Default     float64
	Primary     bool
	SIScale     float64
	GeoScaling  float64
}

// DeviceCompareFunc decides whether two devices of the same class have
// equal parameters (the parameter-compare delegate). It is called by
// DeviceClass.DevicesEquivalent; the compare package's matcher pairs
// devices by category and terminal shape only and does not call it.
type DeviceCompareFunc func(a, b *Device) bool

// DeviceCombineFunc attempts to combine device b into device a (the device
// class's combiner delegate). It must not mutate either device unless it
// returns true; when it does, it must itself disconnect (or reroute) every
// terminal of b, after which the caller (Circuit.combineParallelDevicesOfClass
// or Circuit.combineSerialDevicesOfClass) merges b into a via
// Device.JoinDevice, which does not touch terminals, and deletes b.
type DeviceCombineFunc func(a, b *Device) bool

// DeviceClass describes a device type: its terminals, parameters,
// equivalence rules and combination rules.
type DeviceClass struct {
	id          ID
	name        string
	description string
	strict      bool

	terminals []TerminalDef
	params    []ParamDef

	// equivTerminal maps a terminal id to its canonical terminal id for
	// terminals declared swappable (e.g. MOSFET S/D). Absent from strict
	// classes' effective lookups even if populated.
	equivTerminal map[TerminalID]TerminalID

	supportsParallel bool
	supportsSerial   bool

	compareParams  DeviceCompareFunc
	combineDevices DeviceCombineFunc

	// primary links copies of the same logical class (e.g. one instance
	// per Netlist) so the comparison engine can share delegates across
	// them; see DeviceClass.Primary.
	primary *DeviceClass
}

// NewDeviceClass creates an empty device class.
func NewDeviceClass(name string) *DeviceClass {
	return &DeviceClass{
		id:            nextID(),
		name:          name,
		equivTerminal: make(map[TerminalID]TerminalID),
	}
}

// ID returns the class's unique id.
func (c *DeviceClass) ID() ID { return c.id }

// Name returns the class name.
func (c *DeviceClass) Name() string { return c.name }

// SetName renames the class.
func (c *DeviceClass) SetName(name string) { c.name = name }

// Description returns the class description.
func (c *DeviceClass) Description() string { return c.description }

// SetDescription sets the class description.
func (c *DeviceClass) SetDescription(d string) { c.description = d }

// IsStrict reports whether the class's terminals are never swappable, even
// if an equivalent-terminal mapping has been registered.
func (c *DeviceClass) IsStrict() bool { return c.strict }

// SetStrict sets the strict-terminal-mapping flag.
func (c *DeviceClass) SetStrict(strict bool) { c.strict = strict }

// AddTerminal appends a terminal definition and returns its assigned id.
func (c *DeviceClass) AddTerminal(name, description string) TerminalID {
	id := TerminalID(len(c.terminals))
	c.terminals = append(c.terminals, TerminalDef{ID: id, Name: name, Description: description})
	return id
}

// Terminals returns the ordered terminal definitions.
func (c *DeviceClass) Terminals() []TerminalDef { return c.terminals }

// TerminalByName looks up a terminal id by name.
func (c *DeviceClass) TerminalByName(name string) (TerminalID, bool) {
	for _, t := range c.terminals {
		if t.Name == name {
			return t.ID, true
		}
	}
	return 0, false
}

// AddParam appends a parameter definition (with default scaling 1 and
// geometry-scaling exponent 0) and returns its assigned id.
func (c *DeviceClass) AddParam(name, description string, def float64) ParamID {
	id := ParamID(len(c.params))
	c.params = append(c.params, ParamDef{
		ID: id, Name: name, Description: description, Default: def, SIScale: 1,
	})
	return id
}

// Params returns the ordered parameter definitions.
func (c *DeviceClass) Params() []ParamDef { return c.params }

// SetParamDef replaces the parameter definition at id (id must already
// exist via AddParam); used to set SIScale/GeoScaling/Primary after the
// fact without juggling AddParam's return value everywhere.
func (c *DeviceClass) SetParamDef(id ParamID, def ParamDef) {
	def.ID = id
	c.params[id] = def
}

// ParamByName looks up a parameter id by name.
func (c *DeviceClass) ParamByName(name string) (ParamID, bool) {
	for _, p := range c.params {
		if p.Name == name {
			return p.ID, true
		}
	}
	return 0, false
}

// SetEquivalentTerminal declares that terminal t is interchangeable with
// canonical terminal canon (e.g. MOSFET S with D). Has no effect on a
// strict class's NormalizeTerminal.
func (c *DeviceClass) SetEquivalentTerminal(t, canon TerminalID) {
	c.equivTerminal[t] = canon
}

// NormalizeTerminal maps a terminal id through the equivalent-terminal
// table, unless the class is strict (terminal ids are then used raw, per
// the comparison graph builder's normalization rule).
func (c *DeviceClass) NormalizeTerminal(t TerminalID) TerminalID {
	if c.strict {
		return t
	}
	if canon, ok := c.equivTerminal[t]; ok {
		return canon
	}
	return t
}

// SupportsParallelCombine reports whether this class takes part in the
// parallel-combination sweep of Circuit.CombineDevices.
func (c *DeviceClass) SupportsParallelCombine() bool { return c.supportsParallel }

// SetSupportsParallelCombine sets the parallel-combination-supported flag.
func (c *DeviceClass) SetSupportsParallelCombine(v bool) { c.supportsParallel = v }

// SupportsSerialCombine reports whether this class takes part in the
// serial-combination sweep of Circuit.CombineDevices.
func (c *DeviceClass) SupportsSerialCombine() bool { return c.supportsSerial }

// SetSupportsSerialCombine sets the serial-combination-supported flag.
func (c *DeviceClass) SetSupportsSerialCombine(v bool) { c.supportsSerial = v }

// SetCompareDelegate installs the parameter-compare delegate.
func (c *DeviceClass) SetCompareDelegate(fn DeviceCompareFunc) { c.compareParams = fn }

// SetCombineDelegate installs the device-combiner delegate.
func (c *DeviceClass) SetCombineDelegate(fn DeviceCombineFunc) { c.combineDevices = fn }

// Primary returns the class used to share delegates across copies of this
// class (e.g. one DeviceClass object per Netlist for the "same" physical
// device type), or nil if this class is its own primary.
func (c *DeviceClass) Primary() *DeviceClass {
	if c.primary != nil {
		return c.primary
	}
	return c
}

// SetPrimary designates p as the class whose delegates should be used for
// comparison in place of this class's own.
func (c *DeviceClass) SetPrimary(p *DeviceClass) { c.primary = p }

// DevicesEquivalent reports whether a and b (both of this class, or classes
// sharing a Primary) compare equal under the parameter-compare delegate.
// With no delegate installed, devices are equivalent iff their parameter
// vectors are identical element-wise.
func (c *DeviceClass) DevicesEquivalent(a, b *Device) bool {
	p := c.Primary()
	if p.compareParams != nil {
		return p.compareParams(a, b)
	}
	if len(a.params) != len(b.params) {
		return false
	}
	for i := range a.params {
		if a.params[i] != b.params[i] {
			return false
		}
	}
	return true
}

// CombineDevices invokes the combiner delegate, or returns false if the
// class declares no delegate (combination unsupported in practice even if
// the supports-flag is set).
func (c *DeviceClass) CombineDevices(a, b *Device) bool {
	p := c.Primary()
	if p.combineDevices == nil {
		return false
	}
	return p.combineDevices(a, b)
}

// ParamDefault returns the default value for a parameter id, or 0 if out of
// range (used when a device's parameter vector has missing trailing
// entries, per spec: "missing trailing entries default to the definition
// default").
func (c *DeviceClass) ParamDefault(id ParamID) float64 {
	if int(id) < 0 || int(id) >= len(c.params) {
		return 0
	}
	return c.params[id].Default
}
