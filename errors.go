package netlist

import "github.com/pkg/errors"

// Sentinel error kinds returned by the public API, per the error-handling
// design: ownership-violation and lookup errors are typed and propagated;
// see errors.Wrap/errors.Wrapf call sites throughout this package for the
// context added as they bubble up.
var (
	// ErrAlreadyOwned is returned by Circuit.AddNet/AddDevice/AddSubcircuit
	// when the object already belongs to some circuit.
	ErrAlreadyOwned = errors.New("object already owned by a circuit")
	// ErrNotOwned is returned by Circuit.RemoveNet/RemoveDevice/
	// RemoveSubcircuit when the object does not belong to this circuit.
	ErrNotOwned = errors.New("object not owned by this circuit")
	// ErrInvalidID is returned by id-keyed lookups and operations given an
	// id that does not resolve to a live object.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidName is the error kind for a name with no matching object.
	// The name-keyed lookups in this package (CircuitByName, NetByName, ...)
	// report a missing name with a false ok result instead of returning it.
	ErrInvalidName = errors.New("invalid name")
)

// internalf builds an error for an integrity check failing inside the
// core (§7 "Internal"). Internal errors are never expected from public API
// use and are not meant to be handled — callers are expected to treat them
// as fatal, which is why code paths that detect them panic with this
// rather than returning an error value.
func internalf(format string, args ...interface{}) error {
	return errors.Errorf("netlist: internal: "+format, args...)
}
