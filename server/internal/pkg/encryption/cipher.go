package encryption

// SymmetricCipher is the interface block ciphers implement for the modes package
type SymmetricCipher interface {
	// Encrypt encrypts exactly one block
	Encrypt(block []byte) ([]byte, error)

	// Decrypt decrypts exactly one block
	Decrypt(block []byte) ([]byte, error)

	// BlockSize returns the block size in bytes
	BlockSize() int

	// KeySize returns the key size in bytes
	KeySize() int

	// Name returns the algorithm name
	Name() string
}

const (
	// BlockSize is the AES block size in bytes
	BlockSize = 16

	AES128KeySize = 16
	AES192KeySize = 24
	AES256KeySize = 32
)

// Block is one 16-byte cipher block
type Block [BlockSize]byte

// RoundKey is one 16-byte slice of an expanded key schedule, in the same
// flat byte order as a Block.
type RoundKey [BlockSize]byte

// BlockFromSlice copies b into a Block, failing unless len(b) == 16
func BlockFromSlice(b []byte) (Block, error) {
	var blk Block
	if len(b) != BlockSize {
		return blk, ErrInvalidBlockLength
	}
	copy(blk[:], b)
	return blk, nil
}
