package encryption

import "fmt"

// AES is a block cipher bound to one expanded key. It holds no mutable state
// after construction and is safe for concurrent use.
type AES struct {
	keySize  int
	schedule *KeySchedule
}

// NewAES validates the key and expands its schedule once
func NewAES(key []byte) (*AES, error) {
	schedule, err := ExpandKey(key)
	if err != nil {
		return nil, err
	}

	return &AES{
		keySize:  len(key),
		schedule: schedule,
	}, nil
}

// BlockSize returns the block size of AES
func (a *AES) BlockSize() int {
	return BlockSize
}

// KeySize returns the key size this cipher was built with
func (a *AES) KeySize() int {
	return a.keySize
}

// Name returns the cipher name, e.g. "AES-128"
func (a *AES) Name() string {
	return fmt.Sprintf("AES-%d", a.keySize*8)
}

// Rounds returns Nr
func (a *AES) Rounds() int {
	return a.schedule.Rounds()
}

// EncryptBlock encrypts one block
func (a *AES) EncryptBlock(in Block) Block {
	nr := a.schedule.Rounds()

	state := addRoundKey(stateFromBlock(in), a.schedule.RoundKey(0))

	for round := 1; round < nr; round++ {
		state = subBytes(state)
		state = shiftRows(state)
		state = mixColumns(state)
		state = addRoundKey(state, a.schedule.RoundKey(round))
	}

	// Final round has no MixColumns
	state = subBytes(state)
	state = shiftRows(state)
	state = addRoundKey(state, a.schedule.RoundKey(nr))

	return state.Block()
}

// DecryptBlock decrypts one block
func (a *AES) DecryptBlock(in Block) Block {
	nr := a.schedule.Rounds()

	state := addRoundKey(stateFromBlock(in), a.schedule.RoundKey(nr))

	for round := nr - 1; round > 0; round-- {
		state = invShiftRows(state)
		state = invSubBytes(state)
		state = addRoundKey(state, a.schedule.RoundKey(round))
		state = invMixColumns(state)
	}

	state = invShiftRows(state)
	state = invSubBytes(state)
	state = addRoundKey(state, a.schedule.RoundKey(0))

	return state.Block()
}

// Encrypt encrypts a 16-byte block
func (a *AES) Encrypt(block []byte) ([]byte, error) {
	in, err := BlockFromSlice(block)
	if err != nil {
		return nil, err
	}
	out := a.EncryptBlock(in)
	return out[:], nil
}

// Decrypt decrypts a 16-byte block
func (a *AES) Decrypt(block []byte) ([]byte, error) {
	in, err := BlockFromSlice(block)
	if err != nil {
		return nil, err
	}
	out := a.DecryptBlock(in)
	return out[:], nil
}
