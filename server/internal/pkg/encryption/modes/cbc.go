package modes

import (
	"crypto/rand"
	"fmt"
	"io"

	"AESFlow/server/internal/pkg/encryption"
	"AESFlow/server/internal/pkg/encryption/padding"
)

// Result is the output of EncryptCBC. The IV is never part of Ciphertext.
type Result struct {
	IV           []byte
	Ciphertext   []byte
	PaddedLength int
}

var pkcs7 = padding.GetPadder("PKCS7")

// EncryptCBC pads plaintext with PKCS#7 and encrypts it with AES-CBC. A nil iv
// means a fresh one is generated; any other iv must be exactly 16 bytes. obs
// may be nil.
func EncryptCBC(plaintext, key, iv []byte, obs Observer) (*Result, error) {
	cipher, err := encryption.NewAES(key)
	if err != nil {
		return nil, err
	}

	if iv == nil {
		iv, err = GenerateIV(rand.Reader)
		if err != nil {
			return nil, err
		}
	} else if len(iv) != encryption.BlockSize {
		return nil, encryption.ErrInvalidIVLength
	} else {
		iv = append([]byte(nil), iv...)
	}

	padded := pkcs7.Pad(plaintext, encryption.BlockSize)

	mode := &CBCMode{Observer: obs}
	ciphertext, err := mode.Encrypt(cipher, padded, iv)
	if err != nil {
		return nil, err
	}

	return &Result{
		IV:           iv,
		Ciphertext:   ciphertext,
		PaddedLength: len(padded),
	}, nil
}

// DecryptCBC decrypts AES-CBC ciphertext and strips PKCS#7 padding. Any
// padding problem is reported as encryption.ErrDecryptionFailed. obs only
// sees the blocks of a call that succeeds.
func DecryptCBC(ciphertext, key, iv []byte, obs Observer) ([]byte, error) {
	cipher, err := encryption.NewAES(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != encryption.BlockSize {
		return nil, encryption.ErrInvalidIVLength
	}
	if len(ciphertext) == 0 || len(ciphertext)%encryption.BlockSize != 0 {
		return nil, encryption.ErrInvalidCiphertextLength
	}

	// Steps are held back until the padding checks out, so a failed call
	// reports nothing to obs.
	mode := &CBCMode{}
	var rec *Recorder
	if obs != nil {
		rec = &Recorder{}
		mode.Observer = rec
	}

	padded, err := mode.Decrypt(cipher, ciphertext, iv)
	if err != nil {
		return nil, err
	}

	plaintext, err := pkcs7.Unpad(padded)
	if err != nil {
		return nil, encryption.ErrDecryptionFailed
	}

	if rec != nil {
		for _, step := range rec.Steps {
			obs.ObserveBlock(step)
		}
	}
	return plaintext, nil
}

// GenerateIV reads a 16-byte IV from r
func GenerateIV(r io.Reader) ([]byte, error) {
	iv := make([]byte, encryption.BlockSize)
	if _, err := io.ReadFull(r, iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return iv, nil
}

// GenerateKey reads a key of the given size in bits (128, 192 or 256) from r
func GenerateKey(r io.Reader, bits int) ([]byte, error) {
	if bits%8 != 0 {
		return nil, encryption.ErrInvalidKeyLength
	}
	if _, err := encryption.Rounds(bits / 8); err != nil {
		return nil, err
	}

	key := make([]byte, bits/8)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}
