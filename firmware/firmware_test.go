package firmware

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertInstructionReplacesByOpcode(t *testing.T) {
	fw := New()
	fw.InsertInstruction(Instruction{Opcode: 1, Mnemonic: "LDV", Start: 5})
	fw.InsertInstruction(Instruction{Opcode: 2, Mnemonic: "STV", Start: 10})
	fw.InsertInstruction(Instruction{Opcode: 1, Mnemonic: "LDV2", Start: 20})

	if len(fw.Instructions) != 2 {
		t.Fatalf("len(Instructions) = %d, want 2", len(fw.Instructions))
	}
	instr, ok := fw.FindByOpcode(1)
	if !ok || instr.Mnemonic != "LDV2" || instr.Start != 20 {
		t.Errorf("FindByOpcode(1) = %+v, %v, want replaced entry", instr, ok)
	}
}

func TestMemorySparsity(t *testing.T) {
	fw := New()
	fw.SetMemory(3, 0x1234)
	if got := fw.GetMemory(3); got != 0x1234 {
		t.Errorf("GetMemory(3) = %#x, want 0x1234", got)
	}
	fw.SetMemory(3, 0)
	if got := fw.GetMemory(3); got != 0 {
		t.Errorf("GetMemory(3) after zeroing = %#x, want 0", got)
	}
	if _, present := fw.code[3]; present {
		t.Error("zeroed memory location should not be present in sparse map")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fw := New()
	fw.InsertInstruction(Instruction{Opcode: 0x0, Mnemonic: "LDC", Start: 0x05})
	fw.InsertInstruction(Instruction{Opcode: 0xF0, Mnemonic: "HALT", Start: 0x00})
	fw.SetMemory(5, 0x1234567)
	fw.SetMemory(200, 0x89ABCDE)

	var buf bytes.Buffer
	require.NoError(t, fw.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	require.Len(t, loaded.Instructions, len(fw.Instructions))
	for _, instr := range fw.Instructions {
		got, ok := loaded.FindByOpcode(instr.Opcode)
		if !ok || got != instr {
			t.Errorf("FindByOpcode(%#x) = %+v, %v, want %+v", instr.Opcode, got, ok, instr)
		}
	}
	for addr := 0; addr < 256; addr++ {
		if got, want := loaded.GetMemory(uint8(addr)), fw.GetMemory(uint8(addr)); got != want {
			t.Errorf("memory[%#x] = %#x, want %#x", addr, got, want)
		}
	}
}

func TestLoadMemoryFromSlice(t *testing.T) {
	fw := New()
	fw.LoadMemory([]uint32{0, 0x10, 0, 0x30})
	if got := fw.GetMemory(0); got != 0 {
		t.Errorf("GetMemory(0) = %#x, want 0", got)
	}
	if got := fw.GetMemory(1); got != 0x10 {
		t.Errorf("GetMemory(1) = %#x, want 0x10", got)
	}
	if got := fw.GetMemory(3); got != 0x30 {
		t.Errorf("GetMemory(3) = %#x, want 0x30", got)
	}
}
