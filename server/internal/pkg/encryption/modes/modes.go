package modes

import (
	"AESFlow/server/internal/pkg/encryption"
	"AESFlow/server/internal/pkg/encryption/hexutil"
)

// Mode interface defines the block mode contract over already padded data
type Mode interface {
	Encrypt(cipher encryption.SymmetricCipher, plaintext []byte, iv []byte) ([]byte, error)
	Decrypt(cipher encryption.SymmetricCipher, ciphertext []byte, iv []byte) ([]byte, error)
	RequiresIV() bool
	Name() string
}

// CBCMode - Cipher Block Chaining Mode. Observer, when set, is told about
// every block as it is processed.
type CBCMode struct {
	Observer Observer
}

func (c *CBCMode) Name() string {
	return "CBC"
}

func (c *CBCMode) RequiresIV() bool {
	return true
}

// Encrypt chains padded plaintext: C[i] = E(P[i] XOR C[i-1]), C[-1] = IV
func (c *CBCMode) Encrypt(cipher encryption.SymmetricCipher, plaintext []byte, iv []byte) ([]byte, error) {
	if cipher.BlockSize() != encryption.BlockSize {
		return nil, encryption.ErrInvalidBlockLength
	}
	prev, err := encryption.BlockFromSlice(iv)
	if err != nil {
		return nil, encryption.ErrInvalidIVLength
	}
	if len(plaintext) == 0 {
		return nil, encryption.ErrInvalidBlockLength
	}

	blocks, err := hexutil.SplitBlocks(plaintext)
	if err != nil {
		return nil, err
	}

	out := make([]encryption.Block, len(blocks))
	for i, plainBlock := range blocks {
		mixed := hexutil.XorBlocks(plainBlock, prev)

		encrypted, err := cipher.Encrypt(mixed[:])
		if err != nil {
			return nil, err
		}
		copy(out[i][:], encrypted)

		if c.Observer != nil {
			c.Observer.ObserveBlock(Step{Index: i, Input: plainBlock, XorResult: mixed, Output: out[i]})
		}

		prev = out[i]
	}

	return hexutil.JoinBlocks(out), nil
}

// Decrypt undoes Encrypt: P[i] = D(C[i]) XOR C[i-1]. The chaining value is
// always the input ciphertext block, never the decrypted output.
func (c *CBCMode) Decrypt(cipher encryption.SymmetricCipher, ciphertext []byte, iv []byte) ([]byte, error) {
	if cipher.BlockSize() != encryption.BlockSize {
		return nil, encryption.ErrInvalidBlockLength
	}
	prev, err := encryption.BlockFromSlice(iv)
	if err != nil {
		return nil, encryption.ErrInvalidIVLength
	}
	if len(ciphertext) == 0 || len(ciphertext)%encryption.BlockSize != 0 {
		return nil, encryption.ErrInvalidCiphertextLength
	}

	blocks, err := hexutil.SplitBlocks(ciphertext)
	if err != nil {
		return nil, encryption.ErrInvalidCiphertextLength
	}

	out := make([]encryption.Block, len(blocks))
	for i, cipherBlock := range blocks {
		decrypted, err := cipher.Decrypt(cipherBlock[:])
		if err != nil {
			return nil, err
		}

		var raw encryption.Block
		copy(raw[:], decrypted)
		out[i] = hexutil.XorBlocks(raw, prev)

		if c.Observer != nil {
			c.Observer.ObserveBlock(Step{Index: i, Input: cipherBlock, XorResult: out[i], Output: raw})
		}

		prev = cipherBlock
	}

	return hexutil.JoinBlocks(out), nil
}
