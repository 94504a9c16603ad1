package nettest

import (
	"testing"

	"github.com/db47h/netlist/compare"
)

// AssertMatched fails t unless result reports a clean match, printing
// every recorded net mismatch and log entry from rec for diagnosis.
func AssertMatched(t *testing.T, result compare.Result, rec *compare.MemoryLogger) {
	t.Helper()
	if result.Matched {
		return
	}
	for _, m := range rec.Mismatches {
		t.Logf("net mismatch: %s <-> %s", m[0].QName(), m[1].QName())
	}
	for _, e := range rec.Entries {
		t.Logf("[%s] %s", e.Severity, e.Message)
	}
	t.Fatalf("netlists did not match: %+v", result.Stats)
}

// AssertNotMatched fails t if result reports a clean match; used by tests
// that assert a deliberately introduced difference is actually caught.
func AssertNotMatched(t *testing.T, result compare.Result) {
	t.Helper()
	if result.Matched {
		t.Fatalf("expected netlists not to match, but they did: %+v", result.Stats)
	}
}

// AssertNetCount fails t unless rec recorded exactly want matched nets
// (MatchNets plus MatchAmbiguousNets).
func AssertNetCount(t *testing.T, rec *compare.MemoryLogger, want int) {
	t.Helper()
	got := len(rec.MatchedNets) + len(rec.AmbiguousNets)
	if got != want {
		t.Fatalf("matched net count = %d, want %d", got, want)
	}
}

// AssertHasInfoHint fails t unless rec recorded at least one Info-severity
// entry, used by fuzzy-match tests that only need to see a hint fire
// without pinning down its exact wording.
func AssertHasInfoHint(t *testing.T, rec *compare.MemoryLogger) {
	t.Helper()
	for _, e := range rec.Entries {
		if e.Severity == compare.Info {
			return
		}
	}
	t.Fatalf("expected at least one info-level hint, got none (entries: %+v)", rec.Entries)
}
