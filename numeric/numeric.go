// Package numeric implements the number literal format shared by the
// firmware compiler, the assembler, and the simulator's program loader, plus
// the right-rotate primitive used by the ALU.
package numeric

import "strings"

// ParseNum parses a signed number literal. The text is decimal unless it
// carries a "0x" or "$" prefix, in which case it is hexadecimal. An
// optional leading "-" negates the result.
//
// Decimal parsing intentionally accepts the letters a-f as digit values —
// this mirrors the original parser, which built every base on the same
// hex-digit table, and programs on disk rely on it.
//
//	ParseNum("123")   == 123,  true
//	ParseNum("0x10")  == 16,   true
//	ParseNum("$10")   == 16,   true
//	ParseNum("-0xF")  == -15,  true
//	ParseNum("foo")   == 0,    false
func ParseNum(text string) (int32, bool) {
	sign := int32(1)
	rest := text
	if strings.HasPrefix(rest, "-") {
		sign = -1
		rest = rest[1:]
	}

	base := int32(10)
	switch {
	case strings.HasPrefix(rest, "0x"):
		base = 16
		rest = rest[2:]
	case strings.HasPrefix(rest, "$"):
		base = 16
		rest = rest[1:]
	}

	if rest == "" {
		return 0, false
	}

	var result int32
	for _, ch := range rest {
		d, ok := hexDigit(ch)
		if !ok {
			return 0, false
		}
		result = result*base + int32(d)
	}
	return sign * result, true
}

func hexDigit(ch rune) (int32, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int32(ch - '0'), true
	case ch >= 'a' && ch <= 'f':
		return int32(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'F':
		return int32(ch-'A') + 10, true
	default:
		return 0, false
	}
}

// Rar right-rotates num, treated as a width-bit value, by one bit. The
// least-significant bit becomes the most-significant bit of the width-bit
// result. Bits above width are ignored on input and absent from the
// output.
//
//	Rar(2, 2) == 1
//	Rar(1, 2) == 2
func Rar(num uint32, width uint32) uint32 {
	num &= uint32(1)<<width - 1
	last := num & 1
	return (num >> 1) | (last << (width - 1))
}
