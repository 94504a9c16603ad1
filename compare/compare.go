// Package compare implements netlist-vs-netlist structural comparison by
// graph isomorphism: each circuit is turned into a NetGraph of nets linked
// by device and subcircuit transitions, and a backtracking matcher derives
// a node-by-node correspondence starting from the circuits' own boundary
// pins, working down the instantiation hierarchy from leaves to roots.
package compare

import "github.com/db47h/netlist"

// Stats summarizes one Compare run.
type Stats struct {
	MatchedCircuits    int
	MismatchedCircuits int
	MatchedNets        int
	AmbiguousNets      int
}

// Result is the outcome of comparing two netlists.
type Result struct {
	Matched bool
	Stats   Stats
}

// Compare walks netA's circuit instantiation hierarchy from topA down to
// its leaves, matching each circuit against its counterpart in netB
// (topB for the root, by-name lookup for every descendant), and reports
// whether every reachable circuit matched.
func Compare(netA, netB *netlist.Netlist, topA, topB *netlist.Circuit, logger Logger, opts Options, cats Categorizers) Result {
	if logger == nil {
		logger = NopLogger{}
	}
	order := topoOrderBottomUp(netA, topA)

	var stats Stats
	matched := true
	resolved := map[*netlist.Circuit]*netlist.Circuit{topA: topB}

	for _, ca := range order {
		cb, ok := resolved[ca]
		if !ok {
			cb, ok = netB.CircuitByName(ca.Name())
		}
		if !ok || cb == nil {
			matched = false
			stats.MismatchedCircuits++
			logger.LogEntry(Error, "no counterpart circuit found for "+ca.Name())
			continue
		}
		resolved[ca] = cb

		logger.BeginCircuit(ca, cb)
		pm := NewSimpleCircuitMapper()

		buildOpts := BuildOptions{
			DeviceCategorizer:  cats.Device,
			CircuitCategorizer: cats.Circuit,
			DeviceFilter:       cats.Filter,
			PinMapper:          pm,
		}
		gA := BuildGraph(ca, buildOpts)
		gB := BuildGraph(cb, buildOpts)

		devEq, scEq := NewTracker(), NewTracker()
		mtr := NewMatcher(gA, gB, pm, devEq, scEq, logger, opts)
		seedBoundaryPins(mtr, gA, gB, ca, cb)

		ok = mtr.Run()
		if !ok {
			AnalyzeFailedMatches(mtr)
		}
		logger.EndCircuit(ca, cb, ok)

		if ok {
			stats.MatchedCircuits++
			stats.MatchedNets += mtr.MatchedNets()
		} else {
			matched = false
			stats.MismatchedCircuits++
		}
	}

	return Result{Matched: matched, Stats: stats}
}

// seedBoundaryPins pairs ca and cb's own boundary pins by position: both
// circuits are assumed to expose their pins in the same order (true for
// any pair built from the same source schematic or layout extraction).
func seedBoundaryPins(m *Matcher, gA, gB *Graph, ca, cb *netlist.Circuit) {
	pinsA, pinsB := ca.Pins(), cb.Pins()
	n := len(pinsA)
	if len(pinsB) < n {
		n = len(pinsB)
	}
	for i := 0; i < n; i++ {
		if pinsA[i] == nil || pinsB[i] == nil {
			continue
		}
		na := ca.NetForPin(pinsA[i].ID())
		nb := cb.NetForPin(pinsB[i].ID())
		if na == nil || nb == nil {
			continue
		}
		ai, ok1 := gA.NetIndex[na]
		bi, ok2 := gB.NetIndex[nb]
		if !ok1 || !ok2 {
			continue
		}
		m.SeedPair(ai, bi)
	}
}

func topoOrderBottomUp(net *netlist.Netlist, top *netlist.Circuit) []*netlist.Circuit {
	var order []*netlist.Circuit
	seen := make(map[*netlist.Circuit]bool)
	var visit func(c *netlist.Circuit)
	visit = func(c *netlist.Circuit) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		for _, child := range net.ChildCircuits(c) {
			visit(child)
		}
		order = append(order, c)
	}
	visit(top)
	return order
}
