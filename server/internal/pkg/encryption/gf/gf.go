// Package gf provides GF(2^8) arithmetic and the fixed lookup tables AES uses.
// Tables are built once when the package is initialised and are read-only
// afterwards; callers reach them through accessor functions only.
package gf

// Modulus is the AES reduction polynomial x^8+x^4+x^3+x+1 without the x^8 bit
const Modulus byte = 0x1B

type tables struct {
	sBox    [256]byte
	invSBox [256]byte
	rcon    [15]byte
	mul2    [256]byte
	mul3    [256]byte
	mul9    [256]byte
	mul11   [256]byte
	mul13   [256]byte
	mul14   [256]byte
}

var t = buildTables()

// Add adds two field elements (XOR)
func Add(a, b byte) byte {
	return a ^ b
}

// Multiply multiplies two elements of GF(2^8) modulo the AES polynomial
func Multiply(a, b byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		if b&1 == 1 {
			result ^= a
		}
		highBit := a & 0x80
		a <<= 1
		if highBit != 0 {
			a ^= Modulus
		}
		b >>= 1
	}
	return result
}

// Inverse returns the multiplicative inverse of a; zero maps to zero
func Inverse(a byte) byte {
	if a == 0 {
		return 0
	}
	// a^254 = a^-1 in GF(2^8)
	result := byte(1)
	base := a
	for e := 254; e > 0; e >>= 1 {
		if e&1 == 1 {
			result = Multiply(result, base)
		}
		base = Multiply(base, base)
	}
	return result
}

func affineTransform(b byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		bit := (b >> i) & 1
		bit ^= (b >> ((i + 4) % 8)) & 1
		bit ^= (b >> ((i + 5) % 8)) & 1
		bit ^= (b >> ((i + 6) % 8)) & 1
		bit ^= (b >> ((i + 7) % 8)) & 1
		result |= bit << i
	}
	return result ^ 0x63
}

func buildTables() *tables {
	tb := &tables{}

	for i := 0; i < 256; i++ {
		s := affineTransform(Inverse(byte(i)))
		tb.sBox[i] = s
		tb.invSBox[s] = byte(i)
	}

	// rcon[0] is unused; round constants are indexed from 1
	rc := byte(1)
	for i := 1; i < len(tb.rcon); i++ {
		tb.rcon[i] = rc
		rc = Multiply(rc, 0x02)
	}

	for i := 0; i < 256; i++ {
		b := byte(i)
		tb.mul2[i] = Multiply(b, 2)
		tb.mul3[i] = Multiply(b, 3)
		tb.mul9[i] = Multiply(b, 9)
		tb.mul11[i] = Multiply(b, 11)
		tb.mul13[i] = Multiply(b, 13)
		tb.mul14[i] = Multiply(b, 14)
	}

	return tb
}

// SBox returns the forward S-box substitution of b
func SBox(b byte) byte { return t.sBox[b] }

// InvSBox returns the inverse S-box substitution of b
func InvSBox(b byte) byte { return t.invSBox[b] }

// Rcon returns the round constant for i in 1..14. Other indices return 0.
func Rcon(i int) byte {
	if i < 1 || i >= len(t.rcon) {
		return 0
	}
	return t.rcon[i]
}

// Mul2 returns 2*b in GF(2^8)
func Mul2(b byte) byte { return t.mul2[b] }

// Mul3 returns 3*b in GF(2^8)
func Mul3(b byte) byte { return t.mul3[b] }

// Mul9 returns 9*b in GF(2^8)
func Mul9(b byte) byte { return t.mul9[b] }

// Mul11 returns 11*b in GF(2^8)
func Mul11(b byte) byte { return t.mul11[b] }

// Mul13 returns 13*b in GF(2^8)
func Mul13(b byte) byte { return t.mul13[b] }

// Mul14 returns 14*b in GF(2^8)
func Mul14(b byte) byte { return t.mul14[b] }
