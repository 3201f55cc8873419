package vm

import (
	"bufio"
	"io"
	"strings"

	"github.com/mimatoolkit/mima/numeric"
)

// Load reads an assembled program: one cell per line, "address value
// ;LABEL1 LABEL2 ...", matching the assembler's output format. Memory and
// the label table are cleared first, so a failed load leaves the machine
// with only whatever was read up to the bad line.
func (m *Machine) Load(r io.Reader) error {
	m.memory = make(map[uint32]uint32)
	m.labels = make(map[string]uint32)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		cell, comment, hasComment := strings.Cut(line, ";")

		fields := strings.Fields(cell)
		if len(fields) < 2 {
			return ErrInvalidLoadLine
		}
		address, ok := numeric.ParseNum(fields[0])
		if !ok {
			return ErrInvalidLoadLine
		}
		value, ok := numeric.ParseNum(fields[1])
		if !ok {
			return ErrInvalidLoadLine
		}

		if value != 0 {
			m.memory[uint32(address)] = uint32(value)
		}

		if hasComment {
			for _, label := range strings.Fields(comment) {
				m.labels[label] = uint32(address)
			}
		}
	}
	return scanner.Err()
}

// MemoryPreset resolves name as either a number literal or a label, then
// writes value (also a number literal or, when it fails to parse as a
// number, left unresolved as an error) into that memory cell. This
// implements the simulator's "-m NAME=VALUE" CLI option.
func (m *Machine) MemoryPreset(name, value string) error {
	address, ok := numeric.ParseNum(name)
	if !ok {
		addr, labelOk := m.LabelAddress(name)
		if !labelOk {
			return ErrInvalidLoadLine
		}
		address = int32(addr)
	}
	val, ok := numeric.ParseNum(value)
	if !ok {
		return ErrInvalidLoadLine
	}
	m.SetMemory(uint32(address), uint32(val))
	return nil
}
