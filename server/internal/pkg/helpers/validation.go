package helpers

import (
	"errors"
	"strconv"
)

// ParseKeyBits parses a key size query value, defaulting when empty
func ParseKeyBits(raw string, defaultBits int) (int, error) {
	if raw == "" {
		return defaultBits, nil
	}

	bits, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("bits must be a number")
	}
	if !ValidKeyBits(bits) {
		return 0, errors.New("bits must be 128, 192 or 256")
	}
	return bits, nil
}

// ValidKeyBits reports whether bits is an AES key size
func ValidKeyBits(bits int) bool {
	switch bits {
	case 128, 192, 256:
		return true
	default:
		return false
	}
}

// ParseRunID parses a positive archive run ID
func ParseRunID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid run ID")
	}
	return id, nil
}

// ParseLimit parses a list limit, clamping it to [1, max]
func ParseLimit(raw string, defaultLimit, max int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}
