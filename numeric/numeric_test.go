package numeric

import "testing"

func TestParseNum(t *testing.T) {
	cases := []struct {
		in      string
		want    int32
		wantOk  bool
	}{
		{"123", 123, true},
		{"0x10", 16, true},
		{"$10", 16, true},
		{"-0xF", -15, true},
		{"foo", 0, false},
		{"0", 0, true},
		{"-1", -1, true},
		// decimal mode tolerates hex digits, bug-for-bug
		{"1a", 1*10 + 10, true},
		{"", 0, false},
		{"0x", 0, false},
		{"$", 0, false},
		{"-", 0, false},
	}

	for _, c := range cases {
		got, ok := ParseNum(c.in)
		if ok != c.wantOk {
			t.Errorf("ParseNum(%q) ok = %v, want %v", c.in, ok, c.wantOk)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseNum(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseNumRoundTrip(t *testing.T) {
	for n := int32(0); n <= 0xFFF; n += 37 {
		text := "0x" + hexString(n)
		got, ok := ParseNum(text)
		if !ok || got != n {
			t.Errorf("round trip failed for %d: got %d, %v", n, got, ok)
		}
	}
}

func hexString(n int32) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%16]}, buf...)
		n /= 16
	}
	return string(buf)
}

func TestRar(t *testing.T) {
	if got := Rar(2, 2); got != 1 {
		t.Errorf("Rar(2, 2) = %d, want 1", got)
	}
	if got := Rar(1, 2); got != 2 {
		t.Errorf("Rar(1, 2) = %d, want 2", got)
	}
}

func TestRarFullCycleIsIdentity(t *testing.T) {
	const width = 24
	n := uint32(0x123456)
	got := n
	for i := 0; i < width; i++ {
		got = Rar(got, width)
	}
	mask := uint32(1)<<width - 1
	if got != n&mask {
		t.Errorf("24 rotations of %#x = %#x, want %#x", n, got, n&mask)
	}
}
