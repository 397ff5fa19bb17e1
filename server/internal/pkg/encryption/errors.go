package encryption

import "errors"

// Validation errors. All of them are reported before any block is processed,
// except ErrInvalidPadding which can only be known after full decryption.
var (
	ErrInvalidKeyLength        = errors.New("invalid key length: must be 16, 24 or 32 bytes")
	ErrInvalidIVLength         = errors.New("invalid IV length: must be 16 bytes")
	ErrInvalidBlockLength      = errors.New("invalid block length: must be 16 bytes")
	ErrInvalidCiphertextLength = errors.New("invalid ciphertext length: must be a positive multiple of 16")
	ErrInvalidHexInput         = errors.New("invalid hex input")
	ErrEmptyInput              = errors.New("empty input")
	ErrInvalidPadding          = errors.New("invalid padding")
)

// ErrDecryptionFailed is the only error callers of CBC decryption see for a
// bad padding block. It deliberately carries no offset or reason.
var ErrDecryptionFailed = errors.New("decryption failed")

// IsValidationError reports whether err is one of the input validation errors
// above (or ErrDecryptionFailed), as opposed to an internal failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidKeyLength,
		ErrInvalidIVLength,
		ErrInvalidBlockLength,
		ErrInvalidCiphertextLength,
		ErrInvalidHexInput,
		ErrEmptyInput,
		ErrInvalidPadding,
		ErrDecryptionFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
