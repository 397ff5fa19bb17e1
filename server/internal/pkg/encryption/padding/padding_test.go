package padding

import (
	"bytes"
	"errors"
	"testing"

	"AESFlow/server/internal/pkg/encryption"
)

func TestPKCS7RoundTrip(t *testing.T) {
	p := GetPadder("PKCS7")

	for n := 0; n <= 48; n++ {
		data := bytes.Repeat([]byte{0x42}, n)
		padded := p.Pad(data, 16)

		if len(padded)%16 != 0 {
			t.Fatalf("len=%d: padded length %d not multiple of 16", n, len(padded))
		}
		if len(padded) < n+1 || len(padded) > n+16 {
			t.Fatalf("len=%d: padded length %d out of range", n, len(padded))
		}

		unpadded, err := p.Unpad(padded)
		if err != nil {
			t.Fatalf("len=%d: unpad error: %v", n, err)
		}
		if !bytes.Equal(unpadded, data) {
			t.Fatalf("len=%d: round-trip mismatch", n)
		}
	}
}

func TestPKCS7AlignedInputGetsFullBlock(t *testing.T) {
	p := &PKCS7Padding{}
	padded := p.Pad(bytes.Repeat([]byte{0x01}, 16), 16)

	if len(padded) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(padded))
	}
	for _, b := range padded[16:] {
		if b != 0x10 {
			t.Fatalf("expected padding byte 0x10, got 0x%02x", b)
		}
	}

	empty := p.Pad(nil, 16)
	if !bytes.Equal(empty, bytes.Repeat([]byte{0x10}, 16)) {
		t.Fatalf("empty input padded to %x", empty)
	}
}

func TestPKCS7PadDoesNotAliasInput(t *testing.T) {
	p := &PKCS7Padding{}
	backing := make([]byte, 5, 32)
	padded := p.Pad(backing, 16)
	padded[0] = 0xff

	if backing[0] != 0 {
		t.Fatal("Pad wrote into the caller's backing array")
	}
}

func TestPKCS7UnpadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", []byte{}, encryption.ErrEmptyInput},
		{"zero padding byte", bytes.Repeat([]byte{0x00}, 16), encryption.ErrInvalidPadding},
		{"padding too large", append(bytes.Repeat([]byte{0x00}, 15), 17), encryption.ErrInvalidPadding},
		{"padding longer than data", []byte{0x01, 0x05}, encryption.ErrInvalidPadding},
		{"inconsistent padding", append(bytes.Repeat([]byte{0x00}, 14), 0x01, 0x02), encryption.ErrInvalidPadding},
		{"tampered first pad byte", append(bytes.Repeat([]byte{0x41}, 12), 0x03, 0x04, 0x04, 0x04), encryption.ErrInvalidPadding},
	}

	p := GetPadder("PKCS7")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Unpad(tc.data)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGetPadder(t *testing.T) {
	if p := GetPadder("PKCS7"); p == nil || p.Name() != "PKCS7" {
		t.Fatal("PKCS7 padder not found")
	}
	if GetPadder("ZEROS") != nil {
		t.Fatal("unexpected padder for ZEROS")
	}
}
