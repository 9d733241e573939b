package encryption

import (
	"fmt"

	"github.com/textcipher-go/internal/errors"
)

// XORCipher applies a repeating key. The key index is derived from the
// cumulative stream offset, never from the offset within a chunk.
type XORCipher struct {
	key      []byte
	position int64
}

// NewXORCipher creates a repeating-key XOR cipher. The key must be non-empty.
func NewXORCipher(key []byte) (*XORCipher, error) {
	if len(key) == 0 {
		return nil, errors.NewInvalidKey("xor key must not be empty")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &XORCipher{key: k}, nil
}

// XOR returns data XORed with the cyclically repeated key.
// Encryption and decryption are the same call.
func XOR(data, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.NewInvalidKey("xor key must not be empty")
	}
	out := make([]byte, len(data))
	copy(out, data)
	xorKeyStream(out, key, 0)
	return out, nil
}

func xorKeyStream(data, key []byte, offset int64) {
	keyLen := len(key)
	idx := int(offset % int64(keyLen))
	for i := range data {
		data[i] ^= key[idx]
		idx++
		if idx == keyLen {
			idx = 0
		}
	}
}

// Algorithm returns the cipher algorithm name
func (x *XORCipher) Algorithm() string {
	return MethodXOR.String()
}

// SetPosition moves the key index to match the given stream offset
func (x *XORCipher) SetPosition(position int64) error {
	if position < 0 {
		return fmt.Errorf("position cannot be negative")
	}
	x.position = position
	return nil
}

// Position returns the current stream position
func (x *XORCipher) Position() int64 {
	return x.position
}

// Encrypt XORs data in place
func (x *XORCipher) Encrypt(data []byte) {
	xorKeyStream(data, x.key, x.position)
	x.position += int64(len(data))
}

// Decrypt decrypts data in place (same as encrypt for XOR)
func (x *XORCipher) Decrypt(data []byte) {
	x.Encrypt(data)
}
