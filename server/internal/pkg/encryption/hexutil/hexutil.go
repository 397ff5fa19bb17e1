// Package hexutil converts between text, hex and raw bytes at the engine
// boundary and provides the small block helpers the modes package uses.
package hexutil

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"AESFlow/server/internal/pkg/encryption"
)

// HexToBytes decodes a hex string. Case is ignored, as is whitespace anywhere
// in the input, so grouped input like "00 11 22" is accepted.
func HexToBytes(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	b, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", encryption.ErrInvalidHexInput, err)
	}
	return b, nil
}

// BytesToHex encodes b as lowercase hex
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// TextToBytes returns the UTF-8 bytes of s
func TextToBytes(s string) []byte {
	return []byte(s)
}

// BytesToText interprets b as UTF-8 text
func BytesToText(b []byte) string {
	return string(b)
}

// XorBlocks returns a XOR b
func XorBlocks(a, b encryption.Block) encryption.Block {
	var out encryption.Block
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// SplitBlocks cuts data into 16-byte blocks
func SplitBlocks(data []byte) ([]encryption.Block, error) {
	if len(data)%encryption.BlockSize != 0 {
		return nil, encryption.ErrInvalidBlockLength
	}

	blocks := make([]encryption.Block, len(data)/encryption.BlockSize)
	for i := range blocks {
		copy(blocks[i][:], data[i*encryption.BlockSize:])
	}
	return blocks, nil
}

// JoinBlocks concatenates blocks in order
func JoinBlocks(blocks []encryption.Block) []byte {
	out := make([]byte, 0, len(blocks)*encryption.BlockSize)
	for _, b := range blocks {
		out = append(out, b[:]...)
	}
	return out
}
