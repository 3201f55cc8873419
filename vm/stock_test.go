package vm_test

import (
	"strings"
	"testing"

	"github.com/mimatoolkit/mima/asm"
	"github.com/mimatoolkit/mima/registers"
	"github.com/mimatoolkit/mima/rtc"
	"github.com/mimatoolkit/mima/vm"
)

const regAccu = registers.Accu

// run compiles the stock firmware, assembles src against it, loads the
// result, jumps to the START label, and cycles the machine to completion
// (or t.Fatal on error/timeout).
func run(t *testing.T, src string) *vm.Machine {
	t.Helper()
	fw, err := rtc.Compile(strings.NewReader(rtc.StockFirmwareSource))
	if err != nil {
		t.Fatalf("rtc.Compile: %v", err)
	}
	program, err := asm.Assemble(fw, strings.NewReader(src))
	if err != nil {
		t.Fatalf("asm.Assemble: %v", err)
	}

	m := vm.NewMachine(fw)
	if err := m.Load(strings.NewReader(program)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if start, ok := m.LabelAddress("START"); ok {
		m.Jump(start)
	}

	for i := 0; i < 10_000; i++ {
		state, err := m.Cycle(vm.NoLogging{})
		if err != nil {
			t.Fatalf("Cycle: %v", err)
		}
		if state == vm.Halted {
			return m
		}
	}
	t.Fatal("program did not halt within 10000 cycles")
	return nil
}

func TestStockProgramAdd(t *testing.T) {
	src := `
VAL:    DS 7
        *= 0x100
START:  LDC 3
        ADD VAL
        HALT
`
	m := run(t, src)
	if got := m.GetRegister(regAccu); got != 10 {
		t.Errorf("Accu = %d, want 10", got)
	}
}

func TestStockProgramStoreAndLoad(t *testing.T) {
	src := `
DEST:   DS 0
        *= 0x100
START:  LDC 42
        STV DEST
        LDC 0
        LDV DEST
        HALT
`
	m := run(t, src)
	if got := m.GetRegister(regAccu); got != 42 {
		t.Errorf("Accu = %d, want 42", got)
	}
}

func TestStockProgramIndirect(t *testing.T) {
	// DS only accepts literal constants, so the pointer cell's value is
	// written as the literal address of the target cell rather than a label.
	src := `
*= 5
        DS 99
*= 6
        DS 5
*= 0x100
START:  LDIV 6
        HALT
`
	m := run(t, src)
	if got := m.GetRegister(regAccu); got != 99 {
		t.Errorf("Accu = %d, want 99", got)
	}
}

func TestStockProgramJump(t *testing.T) {
	src := `
*= 0x100
START:  LDC 1
        JMP OVER
        LDC 99
OVER:   HALT
`
	m := run(t, src)
	if got := m.GetRegister(regAccu); got != 1 {
		t.Errorf("Accu = %d, want 1 (the skipped LDC 99 must not run)", got)
	}
}

func TestStockProgramJMNTaken(t *testing.T) {
	src := `
*= 0x100
START:  LDC 0
        NOT
        JMN OVER
        LDC 99
OVER:   HALT
`
	m := run(t, src)
	want := uint32(0xFFFFFF)
	if got := m.GetRegister(regAccu); got != want {
		t.Errorf("Accu = %#x, want %#x (LDC 99 must be skipped)", got, want)
	}
}

func TestStockProgramNotAndRar(t *testing.T) {
	src := `
*= 0x100
START:  LDC 1
        NOT
        RAR
        HALT
`
	m := run(t, src)
	// LDC 1 -> Accu = 0x000001; NOT -> Accu = 0xFFFFFE; RAR rotates the
	// even (bit0=0) value right by one, giving 0x7FFFFF.
	want := uint32(0x7FFFFF)
	if got := m.GetRegister(regAccu); got != want {
		t.Errorf("Accu = %#x, want %#x", got, want)
	}
}
