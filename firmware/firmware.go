// Package firmware holds the compiled microcode a machine runs: a sparse
// 256-entry microinstruction memory plus the table mapping each assembly
// mnemonic to its opcode and microcode start address.
package firmware

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mimatoolkit/mima/numeric"
)

// Instruction describes one assembly-level mnemonic as the firmware
// implements it.
type Instruction struct {
	// Opcode is the numeric opcode as it appears in an assembled word.
	Opcode uint8
	// Mnemonic is the human-readable name, e.g. "LDC".
	Mnemonic string
	// Start is the microaddress where this instruction's microcode begins.
	Start uint8
}

// Firmware is the microcode a machine executes: an ordered instruction
// table plus the microinstruction memory those instructions point into.
type Firmware struct {
	Instructions []Instruction
	code         map[uint8]uint32
}

// New returns an empty Firmware.
func New() *Firmware {
	return &Firmware{code: make(map[uint8]uint32)}
}

// InsertInstruction adds instr, replacing any existing instruction that
// shares its opcode. Insertion order among distinct opcodes is preserved.
func (f *Firmware) InsertInstruction(instr Instruction) {
	kept := f.Instructions[:0]
	for _, i := range f.Instructions {
		if i.Opcode != instr.Opcode {
			kept = append(kept, i)
		}
	}
	f.Instructions = append(kept, instr)
}

// FindByOpcode returns the instruction with the given opcode, if any.
func (f *Firmware) FindByOpcode(opcode uint8) (Instruction, bool) {
	for _, instr := range f.Instructions {
		if instr.Opcode == opcode {
			return instr, true
		}
	}
	return Instruction{}, false
}

// FindByMnemonic returns the instruction with the given mnemonic
// (case-sensitive, matching the on-disk format), if any.
func (f *Firmware) FindByMnemonic(mnemonic string) (Instruction, bool) {
	for _, instr := range f.Instructions {
		if instr.Mnemonic == mnemonic {
			return instr, true
		}
	}
	return Instruction{}, false
}

// LoadMemory overwrites the microcode memory with mem, assumed to start at
// address 0x00.
func (f *Firmware) LoadMemory(mem []uint32) {
	if f.code == nil {
		f.code = make(map[uint8]uint32)
	}
	for i, v := range mem {
		f.SetMemory(uint8(i), v)
	}
}

// GetMemory returns the microinstruction at location, or 0 if absent.
func (f *Firmware) GetMemory(location uint8) uint32 {
	return f.code[location]
}

// SetMemory stores value at location. Storing 0 removes the entry, keeping
// the memory sparse.
func (f *Firmware) SetMemory(location uint8, value uint32) {
	if f.code == nil {
		f.code = make(map[uint8]uint32)
	}
	if value == 0 {
		delete(f.code, location)
		return
	}
	f.code[location] = value
}

// Save writes the firmware's on-disk text form: one "I:" line per
// instruction in insertion order, a blank separator, then one "M:" line for
// every microaddress 0x00..0xFF.
func (f *Firmware) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, instr := range f.Instructions {
		if _, err := fmt.Fprintf(bw, "I:%s %#02x %#02x\n", instr.Mnemonic, instr.Opcode, instr.Start); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}
	for i := 0; i < 256; i++ {
		if _, err := fmt.Fprintf(bw, "M:%#02x %#07x\n", uint8(i), f.GetMemory(uint8(i))); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load parses the on-disk text form produced by Save. Both line kinds may
// appear in any order and interleaved; unrecognized lines are ignored.
func Load(r io.Reader) (*Firmware, error) {
	fw := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "I:"):
			instr, err := parseInstructionLine(line[2:])
			if err != nil {
				return nil, err
			}
			fw.InsertInstruction(instr)
		case strings.HasPrefix(line, "M:"):
			addr, value, err := parseMemoryLine(line[2:])
			if err != nil {
				return nil, err
			}
			fw.SetMemory(addr, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fw, nil
}

func parseInstructionLine(rest string) (Instruction, error) {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		return Instruction{}, fmt.Errorf("firmware: malformed instruction line %q", rest)
	}
	opcode, ok := numeric.ParseNum(fields[1])
	if !ok {
		return Instruction{}, fmt.Errorf("firmware: bad opcode %q", fields[1])
	}
	start, ok := numeric.ParseNum(fields[2])
	if !ok {
		return Instruction{}, fmt.Errorf("firmware: bad start address %q", fields[2])
	}
	return Instruction{
		Opcode:   uint8(opcode),
		Mnemonic: fields[0],
		Start:    uint8(start),
	}, nil
}

func parseMemoryLine(rest string) (uint8, uint32, error) {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("firmware: malformed memory line %q", rest)
	}
	addr, ok := numeric.ParseNum(fields[0])
	if !ok {
		return 0, 0, fmt.Errorf("firmware: bad address %q", fields[0])
	}
	value, ok := numeric.ParseNum(fields[1])
	if !ok {
		return 0, 0, fmt.Errorf("firmware: bad value %q", fields[1])
	}
	return uint8(addr), uint32(value), nil
}
