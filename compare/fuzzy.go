package compare

import (
	"fmt"
	"sort"
)

// Fuzzy-match tuning constants, reproduced as-is from the original
// engine's heuristic rather than re-derived: they trade recall for
// precision on open/short hints and are not meant to be tuned per-design.
const (
	maxFuzzFactor = 0.25
	maxSearch     = 100
	minEdges      = 2
	maxJoinWidth  = 3
)

// AnalyzeFailedMatches runs after a Matcher.Run failure (or after a run
// that leaves nodes unmatched) to produce best-effort "this net might
// correspond to that net, off by a short or an open" hints. It never
// changes the match result; it only emits Info log entries.
func AnalyzeFailedMatches(m *Matcher) {
	var unmatchedA, unmatchedB []int
	for i, st := range m.mapA.states {
		if st.Kind == Unmapped && m.gA.Nodes[i].Net != nil {
			unmatchedA = append(unmatchedA, i)
		}
	}
	for i, st := range m.mapB.states {
		if st.Kind == Unmapped && m.gB.Nodes[i].Net != nil {
			unmatchedB = append(unmatchedB, i)
		}
	}

	searched := 0
	for _, bi := range unmatchedB {
		for _, ai := range unmatchedA {
			if searched >= maxSearch {
				return
			}
			searched++
			edgesB := m.gB.Nodes[bi].Edges
			if len(edgesB) < minEdges {
				continue
			}
			d := edgeSetDistance(edgesB, m.gA.Nodes[ai].Edges)
			if d == 0 || float64(d) > maxFuzzFactor*float64(len(edgesB)) {
				continue
			}
			m.logger.LogEntry(Info, fmt.Sprintf(
				"net %s may correspond to net %s from the other netlist (open/short hint, distance %d)",
				netName(m.gB, bi), netName(m.gA, ai), d))
		}
	}

	for i := 0; i < len(unmatchedA) && searched < maxSearch; i++ {
		for j := i + 1; j < len(unmatchedA) && j < i+maxJoinWidth && searched < maxSearch; j++ {
			joined := unionEdges(m.gA.Nodes[unmatchedA[i]].Edges, m.gA.Nodes[unmatchedA[j]].Edges)
			if len(joined) < minEdges {
				continue
			}
			for _, bi := range unmatchedB {
				searched++
				d := edgeSetDistance(m.gB.Nodes[bi].Edges, joined)
				if d == 0 || float64(d) > maxFuzzFactor*float64(len(joined)) {
					continue
				}
				m.logger.LogEntry(Info, fmt.Sprintf(
					"net %s may be shorting nets %s and %s from the other netlist (distance %d)",
					netName(m.gB, bi), netName(m.gA, unmatchedA[i]), netName(m.gA, unmatchedA[j]), d))
			}
		}
	}
}

// edgeSetDistance counts edges present on only one side of two edge lists
// (a symmetric difference by shape, ignoring instance identity by comparing
// transition keys rather than Transitions directly). Both lists are copied
// and sorted by key first, so the canonical target-index order of the
// inputs does not matter.
func edgeSetDistance(a, b []Edge) int {
	a = append([]Edge(nil), a...)
	b = append([]Edge(nil), b...)
	for _, s := range [][]Edge{a, b} {
		s := s
		sort.SliceStable(s, func(i, j int) bool { return lessKey(edgeKey(s[i]), edgeKey(s[j])) })
	}
	ia, ib, diff := 0, 0, 0
	for ia < len(a) && ib < len(b) {
		ka, kb := edgeKey(a[ia]), edgeKey(b[ib])
		switch {
		case ka == kb:
			ia++
			ib++
		case lessKey(ka, kb):
			diff++
			ia++
		default:
			diff++
			ib++
		}
	}
	diff += (len(a) - ia) + (len(b) - ib)
	return diff
}

func unionEdges(a, b []Edge) []Edge {
	out := make([]Edge, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
