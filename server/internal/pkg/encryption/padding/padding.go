package padding

import (
	"AESFlow/server/internal/pkg/encryption"
)

// Padder interface defines the padding contract
type Padder interface {
	Pad(data []byte, blockSize int) []byte
	Unpad(data []byte) ([]byte, error)
	Name() string
}

// PKCS7Padding - PKCS#7 padding scheme. BlockSize bounds the largest padding
// length Unpad accepts; zero means encryption.BlockSize.
type PKCS7Padding struct {
	BlockSize int
}

func (p *PKCS7Padding) Name() string {
	return "PKCS7"
}

func (p *PKCS7Padding) maxPadding() int {
	if p.BlockSize <= 0 {
		return encryption.BlockSize
	}
	return p.BlockSize
}

// Pad appends n = blockSize - len(data)%blockSize bytes of value n. Input
// already aligned to blockSize gets a full extra block. data is not modified.
func (p *PKCS7Padding) Pad(data []byte, blockSize int) []byte {
	paddingLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+paddingLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(paddingLen)
	}
	return padded
}

// Unpad checks every padding byte before stripping them
func (p *PKCS7Padding) Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, encryption.ErrEmptyInput
	}

	paddingLen := int(data[len(data)-1])
	if paddingLen == 0 || paddingLen > p.maxPadding() || paddingLen > len(data) {
		return nil, encryption.ErrInvalidPadding
	}

	for i := len(data) - paddingLen; i < len(data); i++ {
		if data[i] != byte(paddingLen) {
			return nil, encryption.ErrInvalidPadding
		}
	}

	return data[:len(data)-paddingLen], nil
}

// GetPadder returns a Padder implementation for the given padding name
func GetPadder(paddingName string) Padder {
	switch paddingName {
	case "PKCS7":
		return &PKCS7Padding{BlockSize: encryption.BlockSize}
	default:
		return nil
	}
}
