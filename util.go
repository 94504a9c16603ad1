package netlist

import (
	"sort"
	"strings"
)

// joinNames implements the shared device/net naming rule used by
// Circuit.JoinPins, Circuit.JoinNets and Device.JoinDevice: a returns b if a
// is empty, a if b is empty, a if they're equal, otherwise the comma-joined
// sorted-unique set of comma-separated substrings of both.
func joinNames(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a == b {
		return a
	}
	set := make(map[string]struct{})
	var order []string
	add := func(s string) {
		for _, part := range strings.Split(s, ",") {
			if part == "" {
				continue
			}
			if _, ok := set[part]; !ok {
				set[part] = struct{}{}
				order = append(order, part)
			}
		}
	}
	add(a)
	add(b)
	sort.Strings(order)
	return strings.Join(order, ",")
}
