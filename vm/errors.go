package vm

import "errors"

// Sentinel runtime errors a cycle can produce. Check with errors.Is.
var (
	// ErrBusBusy means two registers tried to drive different values onto
	// the bus in the same cycle.
	ErrBusBusy = errors.New("vm: bus is already being used")
	// ErrBusEmpty means a register tried to latch from the bus but
	// nothing drove it.
	ErrBusEmpty = errors.New("vm: bus is empty")
	// ErrInvalidOpcode means decode found no instruction for the opcode
	// in IR.
	ErrInvalidOpcode = errors.New("vm: invalid opcode")
)

// ErrInvalidLoadLine is returned by Load for a malformed program line.
var ErrInvalidLoadLine = errors.New("vm: invalid program line")
