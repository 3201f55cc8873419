package vm

import "github.com/mimatoolkit/mima/firmware"

// Logger observes decoded instructions as the machine runs. The default
// action is to do nothing; callers that want tracing supply their own
// implementation (see cmd/sim's console logger).
type Logger interface {
	LogInstruction(m *Machine, iar uint32, instr firmware.Instruction, param uint32)
}

// NoLogging is a Logger that discards everything.
type NoLogging struct{}

// LogInstruction implements Logger.
func (NoLogging) LogInstruction(*Machine, uint32, firmware.Instruction, uint32) {}
