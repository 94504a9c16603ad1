package compare

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/db47h/netlist"
)

// CancellationToken lets a caller running Compare in one goroutine ask a
// long match to stop from another. Cancel is the only write; Cancelled may
// be polled from the matcher's own goroutine between node expansions.
type CancellationToken struct {
	cancelled int32
}

// Cancel marks the token as cancelled.
func (c *CancellationToken) Cancel() { atomic.StoreInt32(&c.cancelled, 1) }

// Cancelled reports whether Cancel has been called. A nil token is never
// cancelled.
func (c *CancellationToken) Cancelled() bool {
	return c != nil && atomic.LoadInt32(&c.cancelled) != 0
}

// Options configures one Matcher run (and, at the top level, one Compare
// call).
type Options struct {
	MaxDepth             int
	MaxNBranch           int
	DepthFirst           bool
	DontConsiderNetNames bool
	WithAmbiguous        bool
	EnableDebugTrace     bool
	CancellationToken    *CancellationToken
}

const failedMatch = -1

// Matcher runs the backtracking net-graph isomorphism search between two
// circuits' NetGraphs, given an initial seed of already-paired nodes
// (typically the circuits' own boundary pins).
type Matcher struct {
	gA, gB      *Graph
	mapA, mapB  *NodeMap
	devEq, scEq *Tracker
	circuitMap  CircuitMapper
	logger      Logger
	opts        Options

	nBranch     int
	matchedNets int
}

// NewMatcher builds a Matcher over gA/gB, with empty node maps.
func NewMatcher(gA, gB *Graph, circuitMap CircuitMapper, devEq, scEq *Tracker, logger Logger, opts Options) *Matcher {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Matcher{
		gA: gA, gB: gB,
		mapA: NewNodeMap(len(gA.Nodes)), mapB: NewNodeMap(len(gB.Nodes)),
		devEq: devEq, scEq: scEq,
		circuitMap: circuitMap,
		logger:     logger,
		opts:       opts,
	}
}

// SeedPair records an already-known pairing (e.g. a circuit's own
// boundary pins) before Run is called.
func (m *Matcher) SeedPair(ai, bi int) {
	m.mapA.states[ai] = NodeState{Kind: MappedToIndex, Other: bi, Exact: true}
	m.mapB.states[bi] = NodeState{Kind: MappedToIndex, Other: ai, Exact: true}
}

// Run expands every currently-seeded node pair and reports whether the
// whole reachable graph matched without contradiction. On success,
// MatchedNets() reports how many additional net pairs were newly derived.
func (m *Matcher) Run() bool {
	for i, st := range m.mapA.states {
		if st.Kind != MappedToIndex {
			continue
		}
		if !m.edgesCompatible(i, st.Other) {
			return false
		}
		tnm := NewTentativeNodeMapping(m.mapA, m.mapB, m.devEq, m.scEq)
		if !m.deriveEquivalences(i, st.Other, tnm) {
			tnm.Close()
			return false
		}
		tnm.Clear()
		m.logNewEquivalences(tnm)
	}
	for i, st := range m.mapA.states {
		if st.Kind != MappedToIndex {
			continue
		}
		n := m.deriveNodeIdentities(i, 0)
		if n == failedMatch {
			return false
		}
		m.matchedNets += n
	}
	return true
}

// MatchedNets returns the number of net pairs newly derived by Run beyond
// the initial seed.
func (m *Matcher) MatchedNets() int { return m.matchedNets }

// deriveNodeIdentities expands node ai of graph A (already paired with
// some node of graph B) across every edge, grouping edges on both sides by
// their shape and recursively resolving the resulting target-node sets.
func (m *Matcher) deriveNodeIdentities(ai, depth int) int {
	if m.opts.CancellationToken.Cancelled() {
		return failedMatch
	}
	if m.opts.MaxDepth > 0 && depth > m.opts.MaxDepth {
		m.logger.LogEntry(Error, fmt.Sprintf("max_depth exceeded at net %s", netName(m.gA, ai)))
		return failedMatch
	}
	st := m.mapA.Get(ai)
	if st.Kind != MappedToIndex {
		return 0
	}
	bi := st.Other

	edgesA := ExpandSubcircuitNodes(m.gA, ai)
	edgesB := ExpandSubcircuitNodes(m.gB, bi)

	total := 0
	ia, ib := 0, 0
	for ia < len(edgesA) && ib < len(edgesB) {
		ka := edgeKey(edgesA[ia])
		kb := edgeKey(edgesB[ib])
		if ka != kb {
			if lessKey(ka, kb) {
				ia++
			} else {
				ib++
			}
			continue
		}
		ja := ia
		for ja < len(edgesA) && edgeKey(edgesA[ja]) == ka {
			ja++
		}
		jb := ib
		for jb < len(edgesB) && edgeKey(edgesB[jb]) == kb {
			jb++
		}

		var targetsA, targetsB []int
		for _, e := range edgesA[ia:ja] {
			if e.TargetIndex >= 0 && m.mapA.Get(e.TargetIndex).Kind == Unmapped {
				targetsA = append(targetsA, e.TargetIndex)
			}
		}
		for _, e := range edgesB[ib:jb] {
			if e.TargetIndex >= 0 && m.mapB.Get(e.TargetIndex).Kind == Unmapped {
				targetsB = append(targetsB, e.TargetIndex)
			}
		}
		ia, ib = ja, jb
		if len(targetsA) == 0 || len(targetsB) == 0 {
			continue
		}
		targetsA = dedupSorted(targetsA)
		targetsB = dedupSorted(targetsB)
		n, ok := m.deriveFromNodeSet(targetsA, targetsB, depth)
		if !ok {
			return failedMatch
		}
		total += n
	}
	return total
}

func dedupSorted(s []int) []int {
	sort.Ints(s)
	out := s[:0]
	var last int
	for i, v := range s {
		if i == 0 || v != last {
			out = append(out, v)
		}
		last = v
	}
	return out
}

// deriveFromNodeSet resolves a set of candidate target nodes on each side
// that share one edge shape: a 1:1 set recurses directly as a singular
// match, a larger set is handed to the ambiguity-group resolver, subject
// to the max_n_branch complexity cap.
func (m *Matcher) deriveFromNodeSet(a, b []int, depth int) (int, bool) {
	if len(a) == 1 && len(b) == 1 {
		return m.deriveFromSingularMatch(a[0], b[0], depth, false)
	}
	branch := len(a) * len(b)
	if m.opts.MaxNBranch > 0 {
		next := m.nBranch
		if next == 0 {
			next = 1
		}
		next *= branch
		if next > m.opts.MaxNBranch {
			m.logger.LogEntry(Warning, fmt.Sprintf(
				"complexity cap exceeded: branch factor %d exceeds max_n_branch %d", next, m.opts.MaxNBranch))
			return 0, false
		}
	}
	prev := m.nBranch
	if m.nBranch == 0 {
		m.nBranch = 1
	}
	m.nBranch *= branch
	defer func() { m.nBranch = prev }()
	return m.deriveFromAmbiguityGroup(a, b, depth)
}

// deriveFromSingularMatch tries pairing ai with bi: it requires compatible
// edge shapes (per edgesCompatible), rejects a net-name clash when probing
// tentatively (tentative==true; the matcher's own caller, deriveFromNodeSet,
// passes false), and otherwise commits the pairing and recurses.
func (m *Matcher) deriveFromSingularMatch(ai, bi int, depth int, tentative bool) (int, bool) {
	if !m.edgesCompatible(ai, bi) {
		return 0, false
	}
	nameA, nameB := netName(m.gA, ai), netName(m.gB, bi)
	exact := nameA == "" || nameB == "" || nameA == nameB
	if tentative && !m.opts.DontConsiderNetNames && nameA != "" && nameB != "" && !exact {
		return 0, false
	}

	tnm := NewTentativeNodeMapping(m.mapA, m.mapB, m.devEq, m.scEq)
	committed := false
	defer func() {
		if !committed {
			tnm.Close()
		}
	}()
	tnm.MapPair(ai, bi, exact)
	if !m.deriveEquivalences(ai, bi, tnm) {
		return 0, false
	}

	sub := m.deriveNodeIdentities(ai, depth+1)
	if sub == failedMatch {
		return 0, false
	}

	if !tentative {
		if exact {
			m.logMatchedNet(ai, bi)
		} else if !m.opts.DontConsiderNetNames {
			m.gLogMismatch(ai, bi)
		} else {
			m.logMatchedNet(ai, bi)
		}
	}
	tnm.Clear()
	committed = true
	m.logNewEquivalences(tnm)
	return 1 + sub, true
}

// logNewEquivalences tells the logger about every device/subcircuit pair a
// just-cleared (i.e. actually committed, not rolled back) scope newly
// installed.
func (m *Matcher) logNewEquivalences(tnm *TentativeNodeMapping) {
	devices, subcircuits := tnm.NewEquivalences()
	for _, p := range devices {
		m.logger.MatchDevices(p[0].(*netlist.Device), p[1].(*netlist.Device))
	}
	for _, p := range subcircuits {
		m.logger.MatchSubCircuits(p[0].(*netlist.SubCircuit), p[1].(*netlist.SubCircuit))
	}
}

func (m *Matcher) logMatchedNet(ai, bi int) {
	a, b := m.gA.Nodes[ai].Net, m.gB.Nodes[bi].Net
	if a != nil && b != nil {
		m.logger.MatchNets(a, b)
	}
}

func (m *Matcher) gLogMismatch(ai, bi int) {
	a, b := m.gA.Nodes[ai].Net, m.gB.Nodes[bi].Net
	if a != nil && b != nil {
		m.logger.NetMismatch(a, b)
	}
}

// deriveEquivalences records device/subcircuit equivalence for every pair
// of edges leaving ai/bi whose targets are themselves already mapped to
// each other (or which are both dead ends), and whose transitions share a
// key. Returns false on a genuine conflict (the same device/subcircuit
// instance would need to correspond to two different counterparts).
func (m *Matcher) deriveEquivalences(ai, bi int, tnm *TentativeNodeMapping) bool {
	edgesA := m.gA.Nodes[ai].Edges
	edgesB := m.gB.Nodes[bi].Edges
	for _, ea := range edgesA {
		for _, eb := range edgesB {
			if ea.TargetIndex >= 0 && eb.TargetIndex >= 0 {
				st := m.mapA.Get(ea.TargetIndex)
				if st.Kind != MappedToIndex || st.Other != eb.TargetIndex {
					continue
				}
			} else if ea.TargetIndex != eb.TargetIndex {
				continue
			}
			if len(ea.Transitions) != len(eb.Transitions) {
				continue
			}
			for k := range ea.Transitions {
				ta, tb := ea.Transitions[k], eb.Transitions[k]
				if ta.Key() != tb.Key() {
					continue
				}
				if ta.IsSubcircuit && tb.IsSubcircuit {
					if !tnm.MapSubCircuits(ta.SubCircuit, tb.SubCircuit) {
						return false
					}
				} else if !ta.IsSubcircuit && !tb.IsSubcircuit {
					if !tnm.MapDevices(ta.Device, tb.Device) {
						return false
					}
				}
			}
		}
	}
	return true
}

// edgesCompatible reports whether ai and bi could possibly correspond: for
// every transition key present on ai, the multiset of already-committed
// counterparts reachable under that key must match exactly on bi, and no
// key may be present on only one side.
func (m *Matcher) edgesCompatible(ai, bi int) bool {
	ka := flattenByKey(m.gA.Nodes[ai].Edges)
	kb := flattenByKey(m.gB.Nodes[bi].Edges)
	ia, ib := 0, 0
	for ia < len(ka) && ib < len(kb) {
		key := ka[ia].key
		if key != kb[ib].key {
			return false
		}
		var ca, cb []uint64
		for ia < len(ka) && ka[ia].key == key {
			ca = append(ca, m.committedTarget(true, ka[ia].t))
			ia++
		}
		for ib < len(kb) && kb[ib].key == key {
			cb = append(cb, m.committedTarget(false, kb[ib].t))
			ib++
		}
		sort.Slice(ca, func(i, j int) bool { return ca[i] < ca[j] })
		sort.Slice(cb, func(i, j int) bool { return cb[i] < cb[j] })
		if !equalUint64Slices(ca, cb) {
			return false
		}
	}
	return ia == len(ka) && ib == len(kb)
}

func (m *Matcher) committedTarget(left bool, t Transition) uint64 {
	if t.IsSubcircuit {
		if left {
			if o, ok := m.scEq.OtherOfLeft(t.SubCircuit); ok {
				return idOf(o)
			}
		} else if _, ok := m.scEq.OtherOfRight(t.SubCircuit); ok {
			return idOf(t.SubCircuit)
		}
		return 0
	}
	if left {
		if o, ok := m.devEq.OtherOfLeft(t.Device); ok {
			return idOf(o)
		}
	} else if _, ok := m.devEq.OtherOfRight(t.Device); ok {
		return idOf(t.Device)
	}
	return 0
}

func equalUint64Slices(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type keyedTransition struct {
	key Key
	t   Transition
}

func flattenByKey(edges []Edge) []keyedTransition {
	var out []keyedTransition
	for _, e := range edges {
		for _, t := range e.Transitions {
			out = append(out, keyedTransition{key: t.Key(), t: t})
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].key, out[j].key) })
	return out
}

// deriveFromAmbiguityGroup tries, for each unmapped node on side a, every
// still-available candidate on side b whose edges are compatible and
// which survives a tentative recursive probe, in a preferred order that
// tries name matches first. A node with more than one surviving candidate
// fails the whole group unless with_ambiguous is set, in which case it is
// paired with the first candidate and reported to the logger as an
// ambiguous match.
func (m *Matcher) deriveFromAmbiguityGroup(a, b []int, depth int) (int, bool) {
	aOrder := append([]int(nil), a...)
	bOrder := append([]int(nil), b...)
	sortByNamePreference(aOrder, m.gA, bOrder, m.gB)
	sortByNamePreference(bOrder, m.gB, aOrder, m.gA)

	type paired struct {
		ai, bi    int
		exact     bool
		ambiguous bool
		sub       int
	}
	var results []paired
	usedB := make(map[int]bool)

	for _, ai := range aOrder {
		var matched []int
		exact := false
		for _, bi := range bOrder {
			if usedB[bi] {
				continue
			}
			if !m.edgesCompatible(ai, bi) {
				continue
			}
			nameA, nameB := netName(m.gA, ai), netName(m.gB, bi)
			if nameA != "" && nameB != "" && nameA == nameB {
				matched = []int{bi}
				exact = true
				break
			}
			probe := NewTentativeNodeMapping(m.mapA, m.mapB, m.devEq, m.scEq)
			probe.MapPair(ai, bi, false)
			ok := m.deriveEquivalences(ai, bi, probe)
			if ok {
				n := m.deriveNodeIdentities(ai, depth+1)
				ok = n != failedMatch
			}
			probe.Close()
			if ok {
				matched = append(matched, bi)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if len(matched) > 1 && !m.opts.WithAmbiguous {
			return 0, false
		}
		chosen := matched[0]
		usedB[chosen] = true
		for _, extra := range matched[1:] {
			usedB[extra] = true
		}
		tnm := NewTentativeNodeMapping(m.mapA, m.mapB, m.devEq, m.scEq)
		tnm.MapPair(ai, chosen, exact)
		if !m.deriveEquivalences(ai, chosen, tnm) {
			tnm.Close()
			return 0, false
		}
		n := m.deriveNodeIdentities(ai, depth+1)
		if n == failedMatch {
			tnm.Close()
			return 0, false
		}
		tnm.Clear()
		m.logNewEquivalences(tnm)
		results = append(results, paired{ai: ai, bi: chosen, exact: exact, ambiguous: len(matched) > 1, sub: n})
	}

	total := 0
	for _, r := range results {
		total += 1 + r.sub
		na, nb := m.gA.Nodes[r.ai].Net, m.gB.Nodes[r.bi].Net
		if na == nil || nb == nil {
			continue
		}
		if r.ambiguous {
			m.logger.MatchAmbiguousNets(na, nb)
			if m.circuitMap != nil {
				for _, pr := range na.PinRefs() {
					m.circuitMap.MarkSwappable(m.gA.Circuit, []netlist.PinID{pr.Pin()})
				}
			}
		} else if r.exact {
			m.logger.MatchNets(na, nb)
		} else {
			m.logger.NetMismatch(na, nb)
		}
	}
	return total, true
}

func sortByNamePreference(a []int, ga *Graph, b []int, gb *Graph) {
	names := make(map[string]bool, len(b))
	for _, bi := range b {
		if n := netName(gb, bi); n != "" {
			names[n] = true
		}
	}
	sort.SliceStable(a, func(i, j int) bool {
		pi := names[netName(ga, a[i])]
		pj := names[netName(ga, a[j])]
		return pi && !pj
	})
}

func netName(g *Graph, idx int) string {
	n := g.Nodes[idx].Net
	if n == nil {
		return ""
	}
	return n.ExpandedName()
}
