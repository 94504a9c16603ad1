/*
Package netlist provides an in-memory data model for hierarchical
transistor-level netlists — circuits, subcircuit instances, devices, nets
and pins — together with the cross-link invariants that keep them
consistent under editing.

The data model is owned top-down: a Netlist owns Circuits and DeviceClasses;
a Circuit owns Nets, Devices, SubCircuits and Pins. References that run the
other way (a Net back to its Circuit, a SubCircuit back to the Circuit it
instantiates) are plain pointers kept consistent by the mutating operations
in this package; nothing here is safe for concurrent use without external
synchronization.

The sub-package compare implements the comparison engine: it builds a
NetGraph per circuit and decides whether two circuits (or two whole
netlists) represent the same topology up to device/terminal equivalences.
The sub-package nettest provides test-construction and assertion helpers
used throughout this module's own tests.
*/
package netlist
