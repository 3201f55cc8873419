package rtc

import _ "embed"

// StockFirmwareSource is the register-transfer source for the instruction
// set most MIMA simulators ship with by default (LDC, LDV, STV, ADD, AND,
// OR, XOR, EQL, JMP, JMN, LDIV, STIV, HALT, NOT, RAR). `fwc --default`
// writes this source out uncompiled instead of reading a file.
//
//go:embed stock-fw.txt
var StockFirmwareSource string
