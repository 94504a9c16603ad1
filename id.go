package netlist

import "sync/atomic"

// ID is a process-wide unique identifier assigned to identity-stable
// entities (circuits, nets, devices, subcircuits, device classes, device
// abstracts). The zero value NilID means "none" and is never assigned.
type ID uint64

// NilID is the reserved "no id" value.
const NilID ID = 0

var idCounter uint64

// nextID returns a fresh, monotonically increasing ID. It is safe to call
// from multiple goroutines, but the data model built from the returned IDs
// is not itself safe for concurrent mutation (see package doc).
func nextID() ID {
	return ID(atomic.AddUint64(&idCounter, 1))
}

// ResetIDsForTest rewinds the global id counter. It exists only so tests
// that need deterministic, reproducible ids can pin a starting point; it
// must never be called by production code sharing a process with other
// netlists.
func ResetIDsForTest(seed uint64) {
	atomic.StoreUint64(&idCounter, seed)
}
