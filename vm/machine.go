// Package vm implements the machine: registers, sparse memory, and the
// bus-driven microstep cycle that executes firmware-compiled microcode.
package vm

import (
	"fmt"

	"github.com/mimatoolkit/mima/firmware"
	"github.com/mimatoolkit/mima/masks"
	"github.com/mimatoolkit/mima/numeric"
	"github.com/mimatoolkit/mima/registers"
)

// State is the outcome of one Cycle.
type State int

const (
	// Running means the machine can keep going.
	Running State = iota
	// Halted means a HALT instruction was decoded.
	Halted
	// Errored means the cycle failed; see the error Cycle returned.
	Errored
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine holds the full state of a running MIMA: its registers, sparse
// memory, the firmware it executes, and the bookkeeping the execute cycle
// needs (next microaddress, memory timer, last R/W pattern).
type Machine struct {
	Firmware *firmware.Firmware

	regs   [registers.Count]uint32
	memory map[uint32]uint32
	labels map[string]uint32

	CycleCount      uint64
	nextInstruction uint8
	rwBits          uint32
	memoryTimer     uint8
}

// NewMachine returns a machine loaded with fw, with all registers at zero
// except One, which is hard-wired to 1.
func NewMachine(fw *firmware.Firmware) *Machine {
	m := &Machine{
		Firmware: fw,
		memory:   make(map[uint32]uint32),
		labels:   make(map[string]uint32),
	}
	m.SetRegister(registers.One, 1)
	return m
}

// GetRegister returns the current value of reg.
func (m *Machine) GetRegister(reg registers.Register) uint32 {
	return m.regs[reg]
}

// SetRegister stores value in reg, masked to the register's width.
func (m *Machine) SetRegister(reg registers.Register, value uint32) {
	m.regs[reg] = value & reg.ValueMask()
}

// GetMemory returns the value at address, or 0 if never written.
func (m *Machine) GetMemory(address uint32) uint32 {
	return m.memory[address]
}

// SetMemory stores value at address. Storing 0 removes the entry, keeping
// memory sparse.
func (m *Machine) SetMemory(address uint32, value uint32) {
	if value == 0 {
		delete(m.memory, address)
		return
	}
	m.memory[address] = value
}

// Jump sets IAR to address, for external callers such as a `--start` CLI
// flag. The value is masked to IAR's 20-bit width like any other write.
func (m *Machine) Jump(address uint32) {
	m.SetRegister(registers.IAR, address)
}

// LabelAddress returns the address a label resolves to.
func (m *Machine) LabelAddress(name string) (uint32, bool) {
	addr, ok := m.labels[name]
	return addr, ok
}

// LabelsAt returns every label name that resolves to addr, in no
// particular order.
func (m *Machine) LabelsAt(addr uint32) []string {
	var names []string
	for name, a := range m.labels {
		if a == addr {
			names = append(names, name)
		}
	}
	return names
}

// Labels returns the full label table.
func (m *Machine) Labels() map[string]uint32 {
	return m.labels
}

// Cycle advances the machine by one clock. It returns Running while
// execution should continue, Halted once a HALT instruction decodes, or
// Errored (with a non-nil error wrapping one of the package's sentinel
// errors) if the microcode violates a bus or opcode invariant.
func (m *Machine) Cycle(logger Logger) (State, error) {
	m.CycleCount++

	if m.nextInstruction == masks.DecodeTrigger {
		return m.decode(logger)
	}

	instr := m.Firmware.GetMemory(m.nextInstruction)
	m.nextInstruction = uint8(instr & masks.MicroNext)

	m.stepMemoryTransaction(instr)
	m.stepMemoryTimer(instr)

	bus, driven, err := m.driveBus(instr)
	if err != nil {
		return Errored, err
	}
	if err := m.latchBus(instr, bus, driven); err != nil {
		return Errored, err
	}

	m.stepALU(instr)

	return Running, nil
}

// decode performs the hard-coded decode step: pull the opcode out of IR,
// look up the instruction, and either dispatch a hard-coded mnemonic
// (HALT, JMN) or hand off to its microcode.
func (m *Machine) decode(logger Logger) (State, error) {
	ir := m.GetRegister(registers.IR)
	opcode := uint8((ir >> masks.OpcodeShift) & 0xF)
	if opcode == masks.ExtendedNibble {
		opcode = uint8((ir >> masks.ExtendedShift) & 0xFF)
	}

	instruction, ok := m.Firmware.FindByOpcode(opcode)
	if !ok {
		return Errored, fmt.Errorf("%w: %#x", ErrInvalidOpcode, opcode)
	}

	param := ir & masks.AddressMask
	if logger != nil {
		logger.LogInstruction(m, m.GetRegister(registers.IAR), instruction, param)
	}

	m.nextInstruction = instruction.Start

	switch instruction.Mnemonic {
	case "HALT":
		return Halted, nil
	case "JMN":
		if m.GetRegister(registers.Accu) > 0x7FFFFF {
			m.SetRegister(registers.IAR, ir&masks.AddressMask)
		}
		m.nextInstruction = 0x00
	}

	return Running, nil
}

// stepMemoryTransaction performs a pending read or write, if the previous
// cycle requested one and the memory timer has elapsed.
func (m *Machine) stepMemoryTransaction(instr uint32) {
	if m.memoryTimer != 0 {
		return
	}
	switch {
	case m.rwBits&masks.BitMemRead != 0:
		address := m.GetRegister(registers.SAR)
		m.SetRegister(registers.SDR, m.GetMemory(address))
	case m.rwBits&masks.BitMemWrite != 0:
		address := m.GetRegister(registers.SAR)
		m.SetMemory(address, m.GetRegister(registers.SDR))
	}
}

// stepMemoryTimer implements the 3-cycle memory access: the timer only
// decrements while the current microinstruction keeps asserting the same
// R/W pattern as the previous one; any change resets it to 2.
func (m *Machine) stepMemoryTimer(instr uint32) {
	if m.rwBits&masks.MemAccess == instr&masks.MemAccess && m.memoryTimer > 0 {
		m.memoryTimer--
	} else {
		m.memoryTimer = 2
	}
	m.rwBits = instr & masks.MemAccess
}

// driveBus computes the bus value for this cycle from every register whose
// write (drive) bit is asserted. Drivers that put different values on the
// bus are a fatal bus contention; drivers that agree on the value are not.
func (m *Machine) driveBus(instr uint32) (value uint32, driven bool, err error) {
	for _, reg := range registers.All() {
		bit, ok := reg.DriveBit()
		if !ok || instr&bit == 0 {
			continue
		}
		v := m.GetRegister(reg)
		if driven && v != value {
			return 0, false, ErrBusBusy
		}
		value = v
		driven = true
	}
	return value, driven, nil
}

// latchBus writes the bus value into every register whose read (latch) bit
// is asserted. Asserting a latch bit with nobody driving is fatal.
func (m *Machine) latchBus(instr uint32, bus uint32, driven bool) error {
	for _, reg := range registers.All() {
		bit, ok := reg.LatchBit()
		if !ok || instr&bit == 0 {
			continue
		}
		if !driven {
			return ErrBusEmpty
		}
		m.SetRegister(reg, bus)
	}
	return nil
}

// stepALU dispatches the ALU operation encoded in instr, writing its
// result (if any) to Z.
func (m *Machine) stepALU(instr uint32) {
	op := (instr & masks.ALUControl) >> masks.ALUShift
	x, y := m.GetRegister(registers.X), m.GetRegister(registers.Y)
	switch op {
	case masks.ALUNoop:
	case masks.ALUAdd:
		m.SetRegister(registers.Z, x+y)
	case masks.ALURar:
		m.SetRegister(registers.Z, numeric.Rar(x, 24))
	case masks.ALUAnd:
		m.SetRegister(registers.Z, x&y)
	case masks.ALUOr:
		m.SetRegister(registers.Z, x|y)
	case masks.ALUXor:
		m.SetRegister(registers.Z, x^y)
	case masks.ALUNot:
		m.SetRegister(registers.Z, ^x)
	case masks.ALUEql:
		if x == y {
			m.SetRegister(registers.Z, masks.DataMask)
		} else {
			m.SetRegister(registers.Z, 0)
		}
	}
}
