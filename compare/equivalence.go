package compare

import "github.com/db47h/netlist"

// Tracker is a bidirectional equivalence map between instances found on
// the two sides of a comparison. It underlies both the
// device-equivalence and subcircuit-equivalence trackers: once a is mapped
// to b, attempting to map a to anything but b (or b to anything but a) is
// a conflict and is rejected rather than silently overwritten.
type Tracker struct {
	fwd map[interface{}]interface{}
	rev map[interface{}]interface{}
}

// NewTracker returns an empty equivalence tracker.
func NewTracker() *Tracker {
	return &Tracker{fwd: make(map[interface{}]interface{}), rev: make(map[interface{}]interface{})}
}

// Map attempts to record a<->b. isNew is true only if the pair was not
// already recorded and this call is what installed it; a repeat call with
// the same pair is idempotent (isNew false, conflict false) so a caller
// building an undo log doesn't mistake a no-op re-hit for a fresh write.
// conflict is true if a or b was already mapped to some other instance.
func (t *Tracker) Map(a, b interface{}) (isNew, conflict bool) {
	if ra, ok := t.fwd[a]; ok {
		if ra == b {
			return false, false
		}
		return false, true
	}
	if rb, ok := t.rev[b]; ok {
		if rb == a {
			return false, false
		}
		return false, true
	}
	t.fwd[a] = b
	t.rev[b] = a
	return true, false
}

// Unmap removes the a<->b pair if it is currently recorded exactly as
// given; used by TentativeNodeMapping to roll back a probe.
func (t *Tracker) Unmap(a, b interface{}) {
	if t.fwd[a] == b {
		delete(t.fwd, a)
	}
	if t.rev[b] == a {
		delete(t.rev, b)
	}
}

// OtherOfLeft returns the instance b that a is mapped to, if any.
func (t *Tracker) OtherOfLeft(a interface{}) (interface{}, bool) {
	b, ok := t.fwd[a]
	return b, ok
}

// OtherOfRight returns the instance a that b is mapped to, if any.
func (t *Tracker) OtherOfRight(b interface{}) (interface{}, bool) {
	a, ok := t.rev[b]
	return a, ok
}

func idOf(x interface{}) uint64 {
	switch v := x.(type) {
	case *netlist.Device:
		return uint64(v.ID())
	case *netlist.SubCircuit:
		return uint64(v.ID())
	default:
		return 0
	}
}
