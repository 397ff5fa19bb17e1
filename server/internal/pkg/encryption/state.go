package encryption

import "AESFlow/server/internal/pkg/encryption/gf"

// State is the 4x4 working matrix of one block, indexed [row][column].
// Byte i of a block lives at row i%4, column i/4.
type State [4][4]byte

func stateFromBlock(b Block) State {
	var s State
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			s[row][col] = b[row+col*4]
		}
	}
	return s
}

// Block flattens the state back into column-major byte order
func (s State) Block() Block {
	var b Block
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			b[row+col*4] = s[row][col]
		}
	}
	return b
}

func subBytes(s State) State {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			s[row][col] = gf.SBox(s[row][col])
		}
	}
	return s
}

func invSubBytes(s State) State {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			s[row][col] = gf.InvSBox(s[row][col])
		}
	}
	return s
}

// shiftRows rotates row r left by r positions
func shiftRows(s State) State {
	var out State
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row][col] = s[row][(col+row)%4]
		}
	}
	return out
}

// invShiftRows rotates row r right by r positions
func invShiftRows(s State) State {
	var out State
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row][(col+row)%4] = s[row][col]
		}
	}
	return out
}

func mixColumns(s State) State {
	for col := 0; col < 4; col++ {
		a0, a1, a2, a3 := s[0][col], s[1][col], s[2][col], s[3][col]

		s[0][col] = gf.Mul2(a0) ^ gf.Mul3(a1) ^ a2 ^ a3
		s[1][col] = a0 ^ gf.Mul2(a1) ^ gf.Mul3(a2) ^ a3
		s[2][col] = a0 ^ a1 ^ gf.Mul2(a2) ^ gf.Mul3(a3)
		s[3][col] = gf.Mul3(a0) ^ a1 ^ a2 ^ gf.Mul2(a3)
	}
	return s
}

func invMixColumns(s State) State {
	for col := 0; col < 4; col++ {
		a0, a1, a2, a3 := s[0][col], s[1][col], s[2][col], s[3][col]

		s[0][col] = gf.Mul14(a0) ^ gf.Mul11(a1) ^ gf.Mul13(a2) ^ gf.Mul9(a3)
		s[1][col] = gf.Mul9(a0) ^ gf.Mul14(a1) ^ gf.Mul11(a2) ^ gf.Mul13(a3)
		s[2][col] = gf.Mul13(a0) ^ gf.Mul9(a1) ^ gf.Mul14(a2) ^ gf.Mul11(a3)
		s[3][col] = gf.Mul11(a0) ^ gf.Mul13(a1) ^ gf.Mul9(a2) ^ gf.Mul14(a3)
	}
	return s
}

// addRoundKey XORs the round key into the state. The flat round key is read
// column-major, the same way a block is.
func addRoundKey(s State, rk RoundKey) State {
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			s[row][col] ^= rk[row+col*4]
		}
	}
	return s
}
