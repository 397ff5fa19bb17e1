package gf

import "testing"

func TestMultiplyKnownValues(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		// FIPS-197 section 4.2
		{0x57, 0x83, 0xc1},
		{0x57, 0x13, 0xfe},
		{0x57, 0x02, 0xae},
		{0x57, 0x04, 0x47},
		{0x00, 0xff, 0x00},
		{0x01, 0xab, 0xab},
	}

	for _, tt := range tests {
		if got := Multiply(tt.a, tt.b); got != tt.want {
			t.Errorf("Multiply(0x%02x, 0x%02x) = 0x%02x, want 0x%02x", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestInverse(t *testing.T) {
	if Inverse(0) != 0 {
		t.Fatalf("Inverse(0) = 0x%02x, want 0", Inverse(0))
	}
	for i := 1; i < 256; i++ {
		b := byte(i)
		if p := Multiply(b, Inverse(b)); p != 1 {
			t.Fatalf("0x%02x * Inverse(0x%02x) = 0x%02x, want 1", b, b, p)
		}
	}
}

func TestSBoxKnownEntries(t *testing.T) {
	tests := map[byte]byte{
		0x00: 0x63,
		0x01: 0x7c,
		0x53: 0xed,
		0x9a: 0xb8,
		0xff: 0x16,
	}
	for in, want := range tests {
		if got := SBox(in); got != want {
			t.Errorf("SBox(0x%02x) = 0x%02x, want 0x%02x", in, got, want)
		}
	}
}

func TestInvSBoxRoundTrip(t *testing.T) {
	seen := make(map[byte]bool, 256)
	for i := 0; i < 256; i++ {
		b := byte(i)
		s := SBox(b)
		if seen[s] {
			t.Fatalf("SBox is not a permutation: 0x%02x produced twice", s)
		}
		seen[s] = true

		if got := InvSBox(s); got != b {
			t.Fatalf("InvSBox(SBox(0x%02x)) = 0x%02x", b, got)
		}
	}
}

func TestRcon(t *testing.T) {
	want := []byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}
	for i, w := range want {
		if got := Rcon(i + 1); got != w {
			t.Errorf("Rcon(%d) = 0x%02x, want 0x%02x", i+1, got, w)
		}
	}
	if Rcon(0) != 0 || Rcon(15) != 0 {
		t.Error("Rcon outside 1..14 should be 0")
	}
}

func TestMultiplyTables(t *testing.T) {
	tables := []struct {
		name  string
		c     byte
		table func(byte) byte
	}{
		{"x2", 2, Mul2},
		{"x3", 3, Mul3},
		{"x9", 9, Mul9},
		{"x11", 11, Mul11},
		{"x13", 13, Mul13},
		{"x14", 14, Mul14},
	}

	for _, tt := range tables {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 256; i++ {
				b := byte(i)
				if got, want := tt.table(b), Multiply(b, tt.c); got != want {
					t.Fatalf("table[0x%02x] = 0x%02x, want 0x%02x", b, got, want)
				}
			}
		})
	}
}
