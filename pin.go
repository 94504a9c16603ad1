package netlist

// PinID is a dense, 0-based index of a pin within its owning Circuit's pin
// list. IDs close up (shift down) only as a side effect of Circuit.JoinPins;
// a plain Circuit.RemovePin leaves a gap.
type PinID int

// NilPinID marks "no pin" in tables indexed by pin id (e.g. a
// SubCircuit's per-pin net table entry that has not been connected).
const NilPinID PinID = -1

// Pin is a connection point on the boundary of a Circuit.
type Pin struct {
	id   PinID
	name string
}

// ID returns the pin's dense index within its circuit.
func (p *Pin) ID() PinID { return p.id }

// Name returns the pin's name (may be empty).
func (p *Pin) Name() string { return p.name }
