package compare

import (
	"fmt"
	"io"

	"github.com/db47h/netlist"
)

// Severity classifies a free-form log entry.
type Severity int

// Log entry severities.
const (
	NoSeverity Severity = iota
	Warning
	Error
	Info
)

// String returns the severity's lower-case name.
func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Info:
		return "info"
	default:
		return "none"
	}
}

// Logger receives match/mismatch events as a comparison run progresses.
// BeginCircuit/EndCircuit bracket one circuit-pair comparison, letting a
// sink group the net/device/subcircuit events that fall between them.
type Logger interface {
	BeginCircuit(a, b *netlist.Circuit)
	EndCircuit(a, b *netlist.Circuit, matched bool)
	MatchNets(a, b *netlist.Net)
	MatchAmbiguousNets(a, b *netlist.Net)
	NetMismatch(a, b *netlist.Net)
	MatchDevices(a, b *netlist.Device)
	MatchSubCircuits(a, b *netlist.SubCircuit)
	LogEntry(sev Severity, message string)
}

// NopLogger discards every event.
type NopLogger struct{}

// BeginCircuit does nothing.
func (NopLogger) BeginCircuit(*netlist.Circuit, *netlist.Circuit) {}

// EndCircuit does nothing.
func (NopLogger) EndCircuit(*netlist.Circuit, *netlist.Circuit, bool) {}

// MatchNets does nothing.
func (NopLogger) MatchNets(*netlist.Net, *netlist.Net) {}

// MatchAmbiguousNets does nothing.
func (NopLogger) MatchAmbiguousNets(*netlist.Net, *netlist.Net) {}

// NetMismatch does nothing.
func (NopLogger) NetMismatch(*netlist.Net, *netlist.Net) {}

// MatchDevices does nothing.
func (NopLogger) MatchDevices(*netlist.Device, *netlist.Device) {}

// MatchSubCircuits does nothing.
func (NopLogger) MatchSubCircuits(*netlist.SubCircuit, *netlist.SubCircuit) {}

// LogEntry does nothing.
func (NopLogger) LogEntry(Severity, string) {}

// LogEntry is one recorded free-form message.
type LogEntry struct {
	Severity Severity
	Message  string
}

// MemoryLogger accumulates every event in memory, for use by tests and by
// callers that want to post-process a match rather than stream it.
type MemoryLogger struct {
	MatchedNets        [][2]*netlist.Net
	AmbiguousNets      [][2]*netlist.Net
	Mismatches         [][2]*netlist.Net
	MatchedDevices     [][2]*netlist.Device
	MatchedSubCircuits [][2]*netlist.SubCircuit
	Entries            []LogEntry
}

// BeginCircuit is a no-op for MemoryLogger (circuit pairs are inferred from
// which events fall between calls, which the caller can track itself).
func (l *MemoryLogger) BeginCircuit(*netlist.Circuit, *netlist.Circuit) {}

// EndCircuit is a no-op for MemoryLogger.
func (l *MemoryLogger) EndCircuit(*netlist.Circuit, *netlist.Circuit, bool) {}

// MatchNets records a matched net pair.
func (l *MemoryLogger) MatchNets(a, b *netlist.Net) {
	l.MatchedNets = append(l.MatchedNets, [2]*netlist.Net{a, b})
}

// MatchAmbiguousNets records a net pair matched only as part of an
// ambiguity group.
func (l *MemoryLogger) MatchAmbiguousNets(a, b *netlist.Net) {
	l.AmbiguousNets = append(l.AmbiguousNets, [2]*netlist.Net{a, b})
}

// NetMismatch records a net pair matched by position but not by name.
func (l *MemoryLogger) NetMismatch(a, b *netlist.Net) {
	l.Mismatches = append(l.Mismatches, [2]*netlist.Net{a, b})
}

// MatchDevices records a matched device pair.
func (l *MemoryLogger) MatchDevices(a, b *netlist.Device) {
	l.MatchedDevices = append(l.MatchedDevices, [2]*netlist.Device{a, b})
}

// MatchSubCircuits records a matched subcircuit pair.
func (l *MemoryLogger) MatchSubCircuits(a, b *netlist.SubCircuit) {
	l.MatchedSubCircuits = append(l.MatchedSubCircuits, [2]*netlist.SubCircuit{a, b})
}

// LogEntry records a free-form message.
func (l *MemoryLogger) LogEntry(sev Severity, message string) {
	l.Entries = append(l.Entries, LogEntry{Severity: sev, Message: message})
}

// TextLogger writes a human-readable line per event to w.
type TextLogger struct{ w io.Writer }

// NewTextLogger wraps w as a Logger.
func NewTextLogger(w io.Writer) *TextLogger { return &TextLogger{w: w} }

// BeginCircuit announces the start of one circuit-pair comparison.
func (l *TextLogger) BeginCircuit(a, b *netlist.Circuit) {
	fmt.Fprintf(l.w, "begin circuit: %s <-> %s\n", a.Name(), b.Name())
}

// EndCircuit announces the outcome of one circuit-pair comparison.
func (l *TextLogger) EndCircuit(a, b *netlist.Circuit, matched bool) {
	fmt.Fprintf(l.w, "end circuit: %s <-> %s matched=%v\n", a.Name(), b.Name(), matched)
}

// MatchNets logs a matched net pair.
func (l *TextLogger) MatchNets(a, b *netlist.Net) {
	fmt.Fprintf(l.w, "match nets: %s <-> %s\n", a.QName(), b.QName())
}

// MatchAmbiguousNets logs an ambiguously-matched net pair.
func (l *TextLogger) MatchAmbiguousNets(a, b *netlist.Net) {
	fmt.Fprintf(l.w, "match ambiguous nets: %s <-> %s\n", a.QName(), b.QName())
}

// NetMismatch logs a mismatched net pair.
func (l *TextLogger) NetMismatch(a, b *netlist.Net) {
	fmt.Fprintf(l.w, "net mismatch: %s <-> %s\n", a.QName(), b.QName())
}

// MatchDevices logs a matched device pair.
func (l *TextLogger) MatchDevices(a, b *netlist.Device) {
	fmt.Fprintf(l.w, "match devices: %s <-> %s\n", a.ExpandedName(), b.ExpandedName())
}

// MatchSubCircuits logs a matched subcircuit pair.
func (l *TextLogger) MatchSubCircuits(a, b *netlist.SubCircuit) {
	fmt.Fprintf(l.w, "match subcircuits: %s <-> %s\n", a.ExpandedName(), b.ExpandedName())
}

// LogEntry logs a free-form severity-tagged message.
func (l *TextLogger) LogEntry(sev Severity, message string) {
	fmt.Fprintf(l.w, "[%s] %s\n", sev, message)
}
