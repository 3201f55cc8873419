// Package masks centralizes the bit-field layout of the microinstruction
// word and the assembled instruction word.
package masks

const (
	// BitAccuRead and friends are the individual control bits of a
	// microinstruction, MSB first, matching the 28-bit layout:
	//
	//   27 26 25 24 23 22 21 20 19 18 17 16 15 14 13 12 11 10 09 08 ... 00
	//   Ar Aw  X  Y  Z  E Pr Pw Ir Iw Dr Dw  S C2 C1 C0  R  W  0  0  next
	BitAccuRead  = 1 << 27
	BitAccuWrite = 1 << 26
	BitXRead     = 1 << 25
	BitYRead     = 1 << 24
	BitZWrite    = 1 << 23
	BitOneWrite  = 1 << 22
	BitIARRead   = 1 << 21
	BitIARWrite  = 1 << 20
	BitIRRead    = 1 << 19
	BitIRWrite   = 1 << 18
	BitSDRRead   = 1 << 17
	BitSDRWrite  = 1 << 16
	BitSARRead   = 1 << 15

	// ALUControl occupies bits 14..12; ALUShift is its shift amount.
	ALUControl = 0x7 << ALUShift
	ALUShift   = 12

	// MemAccess is the combined read|write request mask, bits 11..10.
	BitMemRead  = 1 << 11
	BitMemWrite = 1 << 10
	MemAccess   = BitMemRead | BitMemWrite

	// MicroNext is the low 8 bits: the next microaddress. MicroData is
	// everything else (the part a `define` directive keeps when it clears
	// the next-address field to detach a microinstruction from its
	// successor).
	MicroNext = 0x000000FF
	MicroData = 0x0FFFFF00

	// DecodeTrigger is the special next-address value that invokes the
	// hardware decode step instead of continuing through microcode.
	DecodeTrigger = 0xFF
)

// ALU operation codes, as placed in ALUControl.
const (
	ALUNoop = iota
	ALUAdd
	ALURar
	ALUAnd
	ALUOr
	ALUXor
	ALUNot
	ALUEql
)

// Instruction-word layout: a 24-bit assembled word carries either a 4-bit
// opcode in its top nibble, or, when that nibble is 0xF, an 8-bit extended
// opcode in its top byte.
const (
	OpcodeShift   = 20
	ExtendedShift = 16
	AddressMask   = 0xFFFFF
	DataMask      = 0xFFFFFF

	// ExtendedNibble is the top-nibble value that signals "look at the
	// full top byte for the real opcode".
	ExtendedNibble = 0xF

	// ReservedOpcode is the 4-bit opcode value that collides with the
	// extended-decode sentinel and is therefore never assignable to an
	// ordinary instruction.
	ReservedOpcode = 0xF
)

// SignBit24 is the sign bit of a 24-bit two's-complement-like value: a
// 24-bit value has it set exactly when it is above 0x7FFFFF.
const SignBit24 = 1 << 23
