package compare

// MatchKind describes what, if anything, a NodeMap slot currently records.
type MatchKind int

// Node mapping states.
const (
	Unmapped MatchKind = iota
	MappedToIndex
	MappedToUnknown
)

// NodeState is the match state of one NetGraph node.
type NodeState struct {
	Kind  MatchKind
	Other int // index on the other side, meaningful only for MappedToIndex
	Exact bool
}

// NodeMap holds the match state of every node of one side's graph.
type NodeMap struct {
	states []NodeState
}

// NewNodeMap returns a NodeMap with n nodes, all Unmapped.
func NewNodeMap(n int) *NodeMap {
	s := make([]NodeState, n)
	for i := range s {
		s[i] = NodeState{Kind: Unmapped, Other: -1}
	}
	return &NodeMap{states: s}
}

// Get returns the state of node i.
func (m *NodeMap) Get(i int) NodeState { return m.states[i] }

func (m *NodeMap) set(i int, s NodeState) NodeState {
	old := m.states[i]
	m.states[i] = s
	return old
}

type undoKind int

const (
	undoNodeA undoKind = iota
	undoNodeB
	undoDeviceEq
	undoSubCircuitEq
)

type undoEntry struct {
	kind      undoKind
	index     int
	prevState NodeState
	a, b      interface{}
}

// TentativeNodeMapping is a scope guard around a batch of node-mapping and
// equivalence-tracker writes: acquire it, make speculative assignments
// through it, and either Clear it (keep the assignments) or let Close roll
// every one of them back, in reverse order, including across a panic
// unwinding through a deferred Close.
type TentativeNodeMapping struct {
	mapA, mapB  *NodeMap
	devEq, scEq *Tracker
	log         []undoEntry
	cleared     bool
}

// NewTentativeNodeMapping opens a new scope over the given maps/trackers.
func NewTentativeNodeMapping(mapA, mapB *NodeMap, devEq, scEq *Tracker) *TentativeNodeMapping {
	return &TentativeNodeMapping{mapA: mapA, mapB: mapB, devEq: devEq, scEq: scEq}
}

// MapPair records ai<->bi on both sides.
func (t *TentativeNodeMapping) MapPair(ai, bi int, exact bool) {
	prevA := t.mapA.set(ai, NodeState{Kind: MappedToIndex, Other: bi, Exact: exact})
	t.log = append(t.log, undoEntry{kind: undoNodeA, index: ai, prevState: prevA})
	prevB := t.mapB.set(bi, NodeState{Kind: MappedToIndex, Other: ai, Exact: exact})
	t.log = append(t.log, undoEntry{kind: undoNodeB, index: bi, prevState: prevB})
}

// MapDevices attempts to record a<->b in the device equivalence tracker.
// Returns false on conflict, in which case nothing was recorded. An
// idempotent re-hit of a pair some earlier, already-closed scope installed
// is left alone: no undo entry is logged for it, so rolling this scope back
// cannot erase an equivalence it did not itself create.
func (t *TentativeNodeMapping) MapDevices(a, b interface{}) bool {
	isNew, conflict := t.devEq.Map(a, b)
	if conflict {
		return false
	}
	if isNew {
		t.log = append(t.log, undoEntry{kind: undoDeviceEq, a: a, b: b})
	}
	return true
}

// MapSubCircuits attempts to record a<->b in the subcircuit equivalence
// tracker. Returns false on conflict, in which case nothing was recorded.
// As with MapDevices, an idempotent re-hit logs no undo entry.
func (t *TentativeNodeMapping) MapSubCircuits(a, b interface{}) bool {
	isNew, conflict := t.scEq.Map(a, b)
	if conflict {
		return false
	}
	if isNew {
		t.log = append(t.log, undoEntry{kind: undoSubCircuitEq, a: a, b: b})
	}
	return true
}

// NewEquivalences reports every device/subcircuit pair this scope itself
// newly installed (excluding idempotent re-hits of pairs an earlier scope
// already committed), in commit order. Meant to be read after Clear, once
// the scope is known to be a real commit rather than a rolled-back probe —
// a caller uses it to tell a Logger about the matches that actually
// survived, without reporting ones a failed speculative branch touched.
func (t *TentativeNodeMapping) NewEquivalences() (devices, subcircuits [][2]interface{}) {
	for _, e := range t.log {
		switch e.kind {
		case undoDeviceEq:
			devices = append(devices, [2]interface{}{e.a, e.b})
		case undoSubCircuitEq:
			subcircuits = append(subcircuits, [2]interface{}{e.a, e.b})
		}
	}
	return devices, subcircuits
}

// Clear finalizes the scope: Close becomes a no-op.
func (t *TentativeNodeMapping) Clear() { t.cleared = true }

// Close rolls back every recorded write unless Clear was called first.
// Safe to call unconditionally via defer.
func (t *TentativeNodeMapping) Close() {
	if t.cleared {
		return
	}
	for i := len(t.log) - 1; i >= 0; i-- {
		e := t.log[i]
		switch e.kind {
		case undoNodeA:
			t.mapA.states[e.index] = e.prevState
		case undoNodeB:
			t.mapB.states[e.index] = e.prevState
		case undoDeviceEq:
			t.devEq.Unmap(e.a, e.b)
		case undoSubCircuitEq:
			t.scEq.Unmap(e.a, e.b)
		}
	}
	t.log = nil
}
