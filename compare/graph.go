package compare

import (
	"sort"

	"github.com/db47h/netlist"
)

// Edge is one merged group of transitions leaving a Node toward the same
// target node (TargetIndex, -1 if the target net carries no graph node —
// this should not happen for nets actually owned by the built circuit, but
// the builder tolerates it defensively).
type Edge struct {
	Transitions []Transition
	TargetIndex int
	TargetNet   *netlist.Net
}

// Node is one vertex of a NetGraph: either a real net, or (SubCircuit !=
// nil) a virtual node standing for the boundary of a subcircuit instance,
// used to let the matcher walk straight through a subcircuit without first
// resolving which of its internal nets corresponds to which.
type Node struct {
	Net        *netlist.Net
	SubCircuit *netlist.SubCircuit
	Edges      []Edge
}

// Graph is the net-connectivity graph of one Circuit, built for one side
// of a comparison.
type Graph struct {
	Circuit      *netlist.Circuit
	Nodes        []*Node
	NetIndex     map[*netlist.Net]int
	VirtualIndex map[*netlist.SubCircuit]int
}

// BuildOptions configures BuildGraph's traversal.
type BuildOptions struct {
	DeviceCategorizer  DeviceCategorizer
	CircuitCategorizer CircuitCategorizer
	DeviceFilter       DeviceFilter
	PinMapper          PinCategoryMapper
}

// BuildGraph constructs the NetGraph of c: one node per net, one virtual
// node per subcircuit instance whose category is non-zero, and edges for
// every device hop and subcircuit-pin hop, merged and sorted into the
// graph's canonical form.
func BuildGraph(c *netlist.Circuit, opts BuildOptions) *Graph {
	g := &Graph{Circuit: c, NetIndex: make(map[*netlist.Net]int), VirtualIndex: make(map[*netlist.SubCircuit]int)}

	for _, n := range c.Nets() {
		g.NetIndex[n] = len(g.Nodes)
		g.Nodes = append(g.Nodes, &Node{Net: n})
	}

	subCat := func(sc *netlist.SubCircuit) int {
		if opts.CircuitCategorizer == nil {
			return 1
		}
		return opts.CircuitCategorizer.CategoryForSubCircuit(sc)
	}

	for _, sc := range c.SubCircuits() {
		if subCat(sc) == 0 {
			continue
		}
		g.VirtualIndex[sc] = len(g.Nodes)
		g.Nodes = append(g.Nodes, &Node{SubCircuit: sc})
	}

	normTerm := func(d *netlist.Device, t netlist.TerminalID) netlist.TerminalID {
		if d.Class() == nil {
			return t
		}
		return d.Class().NormalizeTerminal(t)
	}
	normPin := func(pin netlist.PinID) netlist.PinID {
		if opts.PinMapper != nil {
			return opts.PinMapper.NormalizePinID(c, pin)
		}
		return pin
	}

	for i, n := range c.Nets() {
		node := g.Nodes[i]

		for _, ref := range n.SubcircuitPinRefs() {
			sc := ref.SubCircuit()
			idx, ok := g.VirtualIndex[sc]
			if !ok {
				continue
			}
			cat := subCat(sc)
			tr := SubcircuitTransition(sc, cat, normPin(ref.Pin()), ref.Pin())
			node.Edges = append(node.Edges, Edge{Transitions: []Transition{tr}, TargetIndex: idx})
		}

		for _, ref := range n.TerminalRefs() {
			d := ref.Device()
			if opts.DeviceFilter != nil && !opts.DeviceFilter.Filter(d) {
				continue
			}
			cat := 1
			if opts.DeviceCategorizer != nil {
				cat = opts.DeviceCategorizer.CategoryForDevice(d)
			}
			if cat == 0 {
				continue
			}
			fromNorm := normTerm(d, ref.Terminal())
			for t := netlist.TerminalID(0); int(t) < d.NTerminals(); t++ {
				if t == ref.Terminal() {
					continue
				}
				other := d.TerminalRef(t)
				if other == nil {
					continue
				}
				toNorm := normTerm(d, t)
				tr := DeviceTransition(d, cat, fromNorm, toNorm)
				e := Edge{Transitions: []Transition{tr}, TargetIndex: -1}
				if idx, ok := g.NetIndex[other.Net()]; ok {
					e.TargetIndex = idx
					e.TargetNet = other.Net()
				}
				node.Edges = append(node.Edges, e)
			}
		}

		mergeAndSortEdges(node)
	}

	for _, sc := range c.SubCircuits() {
		idx, ok := g.VirtualIndex[sc]
		if !ok {
			continue
		}
		node := g.Nodes[idx]
		ref := sc.CircuitRef()
		if ref == nil {
			continue
		}
		cat := subCat(sc)
		for _, p := range ref.Pins() {
			if p == nil {
				continue
			}
			net := sc.NetForPin(p.ID())
			if net == nil {
				continue
			}
			tr := SubcircuitTransition(sc, cat, normPin(p.ID()), p.ID())
			e := Edge{Transitions: []Transition{tr}, TargetIndex: -1}
			if ti, ok := g.NetIndex[net]; ok {
				e.TargetIndex = ti
				e.TargetNet = net
			}
			node.Edges = append(node.Edges, e)
		}
		mergeAndSortEdges(node)
	}

	return g
}

// mergeAndSortEdges groups node's raw one-transition edges by target
// index, sorts the transitions within each group, then sorts the groups by
// (target index, transition list) to produce the graph's canonical edge
// order.
func mergeAndSortEdges(node *Node) {
	byTarget := make(map[int][]Transition)
	var order []int
	for _, e := range node.Edges {
		if _, ok := byTarget[e.TargetIndex]; !ok {
			order = append(order, e.TargetIndex)
		}
		byTarget[e.TargetIndex] = append(byTarget[e.TargetIndex], e.Transitions...)
	}
	merged := make([]Edge, 0, len(order))
	for _, idx := range order {
		trs := byTarget[idx]
		sort.Slice(trs, func(i, j int) bool { return trs[i].Less(trs[j]) })
		merged = append(merged, Edge{TargetIndex: idx, Transitions: trs})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].TargetIndex != merged[j].TargetIndex {
			return merged[i].TargetIndex < merged[j].TargetIndex
		}
		return lessTransitionList(merged[i].Transitions, merged[j].Transitions)
	})
	node.Edges = merged
}

func lessTransitionList(a, b []Transition) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Less(b[i]) {
			return true
		}
		if b[i].Less(a[i]) {
			return false
		}
	}
	return len(a) < len(b)
}

// ExpandSubcircuitNodes returns nodeIndex's edges with every hop into a
// subcircuit virtual node replaced by that virtual node's own edges (minus
// the edge leading straight back to nodeIndex), letting the matcher see
// through a subcircuit boundary to the nets just beyond it without first
// having matched the subcircuit's internals.
func ExpandSubcircuitNodes(g *Graph, nodeIndex int) []Edge {
	node := g.Nodes[nodeIndex]
	var out []Edge
	for _, e := range node.Edges {
		if e.TargetIndex < 0 || e.TargetIndex >= len(g.Nodes) {
			out = append(out, e)
			continue
		}
		target := g.Nodes[e.TargetIndex]
		if target.SubCircuit == nil {
			out = append(out, e)
			continue
		}
		for _, ve := range target.Edges {
			if ve.TargetIndex == nodeIndex {
				continue
			}
			out = append(out, ve)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TargetIndex != out[j].TargetIndex {
			return out[i].TargetIndex < out[j].TargetIndex
		}
		return lessTransitionList(out[i].Transitions, out[j].Transitions)
	})
	return out
}

func edgeKey(e Edge) Key {
	if len(e.Transitions) == 0 {
		return Key{}
	}
	return e.Transitions[0].Key()
}
