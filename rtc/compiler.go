// Package rtc implements the firmware compiler: it reads microcode written
// in register-transfer notation and produces a firmware.Firmware.
//
// A command definition looks like:
//
//	define ADD 0x3
//	IR -> SAR; R = 1
//	Accu -> X; R = 1
//	R = 1
//	SDR -> Y
//	ALU add
//	Z -> Accu
//
// Each register-transfer line may pack several operations, separated by
// ";": a transfer (reg1 -> reg2), a memory request bit (R=1, W=0), or an
// ALU selector (ALU add, ALU 001, ...). Only one register may drive the bus
// per line.
package rtc

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mimatoolkit/mima/firmware"
	"github.com/mimatoolkit/mima/masks"
	"github.com/mimatoolkit/mima/numeric"
	"github.com/mimatoolkit/mima/registers"
)

var (
	transferRE = regexp.MustCompile(`(\w+)\s*->\s*(\w+)`)
	rwBitRE    = regexp.MustCompile(`([RrWw])\s*=\s*([01])`)
	aluRE      = regexp.MustCompile(`ALU\s+([A-Za-z01]+)`)
	defineRE   = regexp.MustCompile(`^define\s+([A-Z]+)\s+(\S+)$`)
)

// aluCodes maps the mnemonic and binary spellings of each ALU selector to
// its control-bit encoding.
var aluCodes = map[string]uint32{
	"noop": masks.ALUNoop << masks.ALUShift, "000": masks.ALUNoop << masks.ALUShift,
	"add": masks.ALUAdd << masks.ALUShift, "001": masks.ALUAdd << masks.ALUShift,
	"rar": masks.ALURar << masks.ALUShift, "rotate": masks.ALURar << masks.ALUShift, "010": masks.ALURar << masks.ALUShift,
	"and": masks.ALUAnd << masks.ALUShift, "011": masks.ALUAnd << masks.ALUShift,
	"or": masks.ALUOr << masks.ALUShift, "100": masks.ALUOr << masks.ALUShift,
	"xor": masks.ALUXor << masks.ALUShift, "101": masks.ALUXor << masks.ALUShift,
	"not": masks.ALUNot << masks.ALUShift, "complement": masks.ALUNot << masks.ALUShift, "110": masks.ALUNot << masks.ALUShift,
	"eql": masks.ALUEql << masks.ALUShift, "equal": masks.ALUEql << masks.ALUShift,
	"cmp": masks.ALUEql << masks.ALUShift, "compare": masks.ALUEql << masks.ALUShift, "111": masks.ALUEql << masks.ALUShift,
}

// ParseRegisterTransfer compiles one register-transfer-notation line into a
// microinstruction word (the low 8 bits, the next-address field, are left
// zero for the caller to fill in).
func ParseRegisterTransfer(line string) (uint32, error) {
	var source *registers.Register
	var targets []registers.Register
	var alu uint32
	var rBit, wBit bool

	for _, part := range strings.Split(line, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		switch {
		case transferRE.MatchString(part):
			m := transferRE.FindStringSubmatch(part)
			src, err := registers.Parse(m[1])
			if err != nil {
				return 0, &Error{Kind: KindUnknownRegister, Text: m[1]}
			}
			if source != nil && *source != src {
				return 0, &Error{Kind: KindBusBusy, Text: part}
			}
			source = &src
			target, err := registers.Parse(m[2])
			if err != nil {
				return 0, &Error{Kind: KindUnknownRegister, Text: m[2]}
			}
			targets = append(targets, target)

		case rwBitRE.MatchString(part):
			m := rwBitRE.FindStringSubmatch(part)
			bit := m[2] == "1"
			switch strings.ToLower(m[1]) {
			case "r":
				rBit = bit
			case "w":
				wBit = bit
			}

		case aluRE.MatchString(part):
			m := aluRE.FindStringSubmatch(part)
			code, ok := aluCodes[strings.ToLower(m[1])]
			if !ok {
				return 0, &Error{Kind: KindInvalidALU, Text: m[1]}
			}
			alu = code

		default:
			return 0, &Error{Kind: KindSyntax, Text: part}
		}
	}

	var instr uint32
	if source != nil {
		writeBit, ok := source.DriveBit()
		if !ok {
			return 0, &Error{Kind: KindReadViolation, Text: source.String()}
		}
		instr |= writeBit
		for _, target := range targets {
			readBit, ok := target.LatchBit()
			if !ok {
				return 0, &Error{Kind: KindWriteViolation, Text: target.String()}
			}
			instr |= readBit
		}
	}
	if rBit {
		instr |= masks.BitMemRead
	}
	if wBit {
		instr |= masks.BitMemWrite
	}
	return instr | alu, nil
}

// fetchPhaseSource is the hard-coded fetch microcode, always located at
// microaddresses 0x00..0x04 of every firmware.
var fetchPhaseSource = []string{
	"IAR -> SAR; IAR -> X; R = 1",
	"One -> Y; R = 1",
	"ALU add; R = 1",
	"Z -> IAR",
	"SDR -> IR",
}

// FetchPhase returns the five fetch microinstructions, each already linked
// to its successor (the last one's next-address is the decode trigger).
func FetchPhase() []uint32 {
	phase := make([]uint32, len(fetchPhaseSource))
	for i, line := range fetchPhaseSource {
		instr, err := ParseRegisterTransfer(line)
		if err != nil {
			// The fetch phase is a fixed constant of the machine; a
			// failure here is a programming error, not a runtime one.
			panic(fmt.Sprintf("rtc: built-in fetch phase line %d failed to compile: %v", i, err))
		}
		next := uint32(i + 1)
		if i == len(fetchPhaseSource)-1 {
			next = masks.DecodeTrigger
		}
		phase[i] = instr | next
	}
	return phase
}

// Compile reads register-transfer-notation source and returns the
// compiled firmware.
func Compile(r io.Reader) (*firmware.Firmware, error) {
	return CompileVerbose(r, io.Discard)
}

// CompileVerbose is Compile but also streams a per-define diagnostic line
// (mnemonic, opcode, start address) to diag as each definition is
// processed.
func CompileVerbose(r io.Reader, diag io.Writer) (*firmware.Firmware, error) {
	fw := firmware.New()
	memory := FetchPhase()

	closeLastInstruction := func() {
		if len(memory) > 5 {
			memory[len(memory)-1] &= masks.MicroData
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := defineRE.FindStringSubmatch(line); m != nil {
			closeLastInstruction()

			mnemonic, opcodeToken := m[1], m[2]
			opcodeVal, ok := numeric.ParseNum(opcodeToken)
			if !ok {
				return nil, &Error{Line: lineNo, Kind: KindSyntax, Text: opcodeToken}
			}
			opcode := uint8(opcodeVal)
			if opcodeVal == masks.ReservedOpcode {
				return nil, &Error{Line: lineNo, Kind: KindReservedOpcode, Text: mnemonic}
			}
			if _, exists := fw.FindByOpcode(opcode); exists {
				return nil, &Error{Line: lineNo, Kind: KindDuplicateOpcode, Text: mnemonic}
			}

			pos := uint8(len(memory))
			fmt.Fprintf(diag, "defining %s with opcode %#x (start %#x)\n", mnemonic, opcode, pos)
			fw.InsertInstruction(firmware.Instruction{
				Opcode:   opcode,
				Mnemonic: mnemonic,
				Start:    pos,
			})
			continue
		}

		instr, err := ParseRegisterTransfer(line)
		if err != nil {
			if rtErr, ok := err.(*Error); ok {
				rtErr.Line = lineNo
				return nil, rtErr
			}
			return nil, err
		}
		next := uint32(len(memory) + 1)
		memory = append(memory, instr|next)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	closeLastInstruction()
	fw.LoadMemory(memory)
	return fw, nil
}
