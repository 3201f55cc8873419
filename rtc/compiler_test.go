package rtc

import (
	"strings"
	"testing"

	"github.com/mimatoolkit/mima/masks"
)

func TestParseRegisterTransferSimple(t *testing.T) {
	instr, err := ParseRegisterTransfer("Accu -> X")
	if err != nil {
		t.Fatalf("ParseRegisterTransfer: %v", err)
	}
	if instr&masks.BitAccuWrite == 0 {
		t.Error("expected Accu write bit set")
	}
	if instr&masks.BitXRead == 0 {
		t.Error("expected X read bit set")
	}
}

func TestParseRegisterTransferBusBusy(t *testing.T) {
	_, err := ParseRegisterTransfer("Accu -> X; IAR -> Y")
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Kind != KindBusBusy {
		t.Fatalf("err = %v, want KindBusBusy", err)
	}
}

func TestParseRegisterTransferSameSourceOK(t *testing.T) {
	_, err := ParseRegisterTransfer("Accu -> X; Accu -> Y")
	if err != nil {
		t.Fatalf("same-source fan-out should be allowed: %v", err)
	}
}

func TestParseRegisterTransferReadViolation(t *testing.T) {
	_, err := ParseRegisterTransfer("X -> Accu")
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Kind != KindReadViolation {
		t.Fatalf("err = %v, want KindReadViolation", err)
	}
}

func TestParseRegisterTransferWriteViolation(t *testing.T) {
	_, err := ParseRegisterTransfer("Accu -> Z")
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Kind != KindWriteViolation {
		t.Fatalf("err = %v, want KindWriteViolation", err)
	}
}

func TestParseRegisterTransferMemBits(t *testing.T) {
	instr, err := ParseRegisterTransfer("R = 1; W = 0")
	if err != nil {
		t.Fatalf("ParseRegisterTransfer: %v", err)
	}
	if instr&masks.BitMemRead == 0 {
		t.Error("expected memory read bit set")
	}
	if instr&masks.BitMemWrite != 0 {
		t.Error("expected memory write bit clear")
	}
}

func TestParseRegisterTransferALU(t *testing.T) {
	instr, err := ParseRegisterTransfer("ALU add")
	if err != nil {
		t.Fatalf("ParseRegisterTransfer: %v", err)
	}
	got := (instr & masks.ALUControl) >> masks.ALUShift
	if got != masks.ALUAdd {
		t.Errorf("ALU control = %d, want %d", got, masks.ALUAdd)
	}
}

func TestParseRegisterTransferInvalidALU(t *testing.T) {
	_, err := ParseRegisterTransfer("ALU frobnicate")
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Kind != KindInvalidALU {
		t.Fatalf("err = %v, want KindInvalidALU", err)
	}
}

func TestFetchPhaseLinksToDecode(t *testing.T) {
	phase := FetchPhase()
	if len(phase) != 5 {
		t.Fatalf("len(FetchPhase()) = %d, want 5", len(phase))
	}
	last := phase[len(phase)-1]
	if last&masks.MicroNext != masks.DecodeTrigger {
		t.Errorf("last fetch microinstruction next = %#x, want decode trigger %#x", last&masks.MicroNext, masks.DecodeTrigger)
	}
	for i := 0; i < 4; i++ {
		if phase[i]&masks.MicroNext != uint32(i+1) {
			t.Errorf("fetch[%d] next = %#x, want %d", i, phase[i]&masks.MicroNext, i+1)
		}
	}
}

func TestCompileSimpleInstruction(t *testing.T) {
	src := `
define ADD 0x3
IR -> SAR; R = 1
Accu -> X; R = 1
R = 1
SDR -> Y
ALU add
Z -> Accu
`
	fw, err := Compile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	instr, ok := fw.FindByOpcode(0x3)
	if !ok || instr.Mnemonic != "ADD" {
		t.Fatalf("FindByOpcode(0x3) = %+v, %v", instr, ok)
	}
	if instr.Start != 5 {
		t.Errorf("ADD start = %d, want 5 (right after the 5-line fetch phase)", instr.Start)
	}
	// the final microinstruction of ADD's body must wrap back to fetch (next=0)
	last := fw.GetMemory(instr.Start + 5)
	if last&masks.MicroNext != 0 {
		t.Errorf("last ADD microinstruction next = %#x, want 0", last&masks.MicroNext)
	}
}

func TestCompileRejectsDuplicateOpcode(t *testing.T) {
	src := "define ADD 0x3\ndefine SUB 0x3\n"
	_, err := Compile(strings.NewReader(src))
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Kind != KindDuplicateOpcode {
		t.Fatalf("err = %v, want KindDuplicateOpcode", err)
	}
}

func TestCompileRejectsReservedOpcode(t *testing.T) {
	_, err := Compile(strings.NewReader("define FOO 0xF\n"))
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Kind != KindReservedOpcode {
		t.Fatalf("err = %v, want KindReservedOpcode", err)
	}
}
