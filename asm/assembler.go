// Package asm implements the two-pass assembler: a first pass that walks
// source lines to record labels, constants, and command placements, and a
// second pass that encodes each placement into a 24-bit instruction word
// using the firmware's mnemonic table.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/mimatoolkit/mima/firmware"
	"github.com/mimatoolkit/mima/masks"
	"github.com/mimatoolkit/mima/numeric"
)

var (
	setLocRE   = regexp.MustCompile(`^\*\s*=\s*([$x0-9a-fA-F]+)$`)
	constantRE = regexp.MustCompile(`^([A-Za-z]\w*)\s*=\s*([$x0-9a-fA-F]+)$`)
	labelRE    = regexp.MustCompile(`^([A-Za-z]\w*):$`)
	commandRE  = regexp.MustCompile(`^(?:(?P<label>[A-Za-z]\w*):)?\s*(?P<command>[A-Za-z]+)(?:\s+(?P<arg>[-$A-Za-z0-9]+))?$`)
)

// argument is the operand of a placed command: either a literal constant,
// an unresolved name to look up against the symbol table at encode time,
// or no operand at all.
type argument struct {
	kind  argKind
	value int32
	name  string
}

type argKind int

const (
	argNone argKind = iota
	argConstant
	argGlobal
)

type placement struct {
	mnemonic string
	arg      argument
}

// Assemble reads assembly source and returns the assembled program text in
// the simulator's load format ("address value ;label1 label2 ..."), using
// fw's instruction table to resolve mnemonics to opcodes.
func Assemble(fw *firmware.Firmware, r io.Reader) (string, error) {
	symbols := NewSymbolTable()
	placements := make(map[uint32]placement)

	var next int32
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rawLine := scanner.Text()
		line := rawLine
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case setLocRE.MatchString(line):
			m := setLocRE.FindStringSubmatch(line)
			loc, ok := numeric.ParseNum(m[1])
			if !ok {
				return "", &Error{Line: lineNo, Kind: KindInvalidLiteral, Text: line}
			}
			next = loc

		case constantRE.MatchString(line):
			m := constantRE.FindStringSubmatch(line)
			value, ok := numeric.ParseNum(m[2])
			if !ok {
				return "", &Error{Line: lineNo, Kind: KindInvalidLiteral, Text: line}
			}
			symbols.Define(m[1], value)

		case labelRE.MatchString(line):
			m := labelRE.FindStringSubmatch(line)
			symbols.Define(m[1], next)

		case commandRE.MatchString(line):
			m := commandRE.FindStringSubmatch(line)
			groups := submatchMap(commandRE, m)
			if label := groups["label"]; label != "" {
				symbols.Define(label, next)
			}
			arg := argument{kind: argNone}
			if rawArg := groups["arg"]; rawArg != "" {
				if v, ok := numeric.ParseNum(rawArg); ok {
					arg = argument{kind: argConstant, value: v}
				} else {
					arg = argument{kind: argGlobal, name: rawArg}
				}
			}
			placements[uint32(next)] = placement{mnemonic: groups["command"], arg: arg}
			next++

		default:
			return "", &Error{Line: lineNo, Kind: KindInvalidLine, Text: rawLine}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	addresses := make([]uint32, 0, len(placements))
	for addr := range placements {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	var out strings.Builder
	for _, address := range addresses {
		p := placements[address]
		word, err := encode(fw, symbols, p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&out, "%#05x %#06x", address, word)
		if label, ok := symbols.ReverseLookup(address); ok {
			fmt.Fprintf(&out, " ;%s", label)
		}
		out.WriteByte('\n')
	}
	return out.String(), nil
}

func encode(fw *firmware.Firmware, symbols *SymbolTable, p placement) (uint32, error) {
	if p.mnemonic == "DS" {
		if p.arg.kind != argConstant {
			return 0, &Error{Kind: KindInvalidDS, Text: p.mnemonic}
		}
		return uint32(p.arg.value) & masks.DataMask, nil
	}

	instr, ok := fw.FindByMnemonic(p.mnemonic)
	if !ok {
		return 0, &Error{Kind: KindUnknownMnemonic, Text: p.mnemonic}
	}

	var word uint32 = uint32(instr.Opcode)
	if word > 0xF {
		word <<= masks.ExtendedShift
	} else {
		word <<= masks.OpcodeShift
	}

	switch p.arg.kind {
	case argConstant:
		word |= uint32(p.arg.value) & masks.AddressMask
	case argGlobal:
		target, ok := symbols.Lookup(p.arg.name)
		if !ok {
			return 0, &Error{Kind: KindUndefinedLabel, Text: p.arg.name}
		}
		word |= uint32(target) & masks.AddressMask
	}
	return word, nil
}

// submatchMap turns a regexp.FindStringSubmatch result into a name->value
// map using the expression's named groups, for the command line shape
// which mixes an optional label with required/optional fields.
func submatchMap(re *regexp.Regexp, m []string) map[string]string {
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}
