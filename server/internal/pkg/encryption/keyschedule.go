package encryption

import "AESFlow/server/internal/pkg/encryption/gf"

// KeySchedule is the immutable sequence of rounds+1 round keys derived from
// one cipher key.
type KeySchedule struct {
	rounds    int
	roundKeys []RoundKey
}

// Rounds returns the number of cipher rounds for a key length in bytes
func Rounds(keyLen int) (int, error) {
	switch keyLen {
	case AES128KeySize:
		return 10, nil
	case AES192KeySize:
		return 12, nil
	case AES256KeySize:
		return 14, nil
	default:
		return 0, ErrInvalidKeyLength
	}
}

// ExpandKey runs the AES key expansion over a 16, 24 or 32 byte key
func ExpandKey(key []byte) (*KeySchedule, error) {
	nr, err := Rounds(len(key))
	if err != nil {
		return nil, err
	}

	nk := len(key) / 4
	totalWords := 4 * (nr + 1)
	w := make([][4]byte, totalWords)

	for i := 0; i < nk; i++ {
		copy(w[i][:], key[i*4:(i+1)*4])
	}

	for i := nk; i < totalWords; i++ {
		temp := w[i-1]

		if i%nk == 0 {
			temp = subWord(rotWord(temp))
			temp[0] ^= gf.Rcon(i / nk)
		} else if nk > 6 && i%nk == 4 {
			temp = subWord(temp)
		}

		for j := 0; j < 4; j++ {
			w[i][j] = w[i-nk][j] ^ temp[j]
		}
	}

	roundKeys := make([]RoundKey, nr+1)
	for round := 0; round <= nr; round++ {
		for col := 0; col < 4; col++ {
			copy(roundKeys[round][col*4:(col+1)*4], w[round*4+col][:])
		}
	}

	return &KeySchedule{rounds: nr, roundKeys: roundKeys}, nil
}

// Rounds returns Nr for this schedule
func (ks *KeySchedule) Rounds() int {
	return ks.rounds
}

// Len returns the number of round keys, always Rounds()+1
func (ks *KeySchedule) Len() int {
	return len(ks.roundKeys)
}

// RoundKey returns a copy of round key i
func (ks *KeySchedule) RoundKey(i int) RoundKey {
	return ks.roundKeys[i]
}

func rotWord(word [4]byte) [4]byte {
	return [4]byte{word[1], word[2], word[3], word[0]}
}

func subWord(word [4]byte) [4]byte {
	for i := range word {
		word[i] = gf.SBox(word[i])
	}
	return word
}
