package encryption

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/textcipher-go/internal/errors"
)

// Method represents a cipher method
type Method int

const (
	MethodRotation Method = iota + 1
	MethodXOR
)

func (m Method) String() string {
	switch m {
	case MethodRotation:
		return "rotation"
	case MethodXOR:
		return "xor"
	default:
		return "unknown"
	}
}

// ParseMethod maps a method tag to a Method. The second return value is
// false for tags outside the known set.
func ParseMethod(tag string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "rotation", "caesar", "1":
		return MethodRotation, true
	case "xor", "2":
		return MethodXOR, true
	default:
		return MethodRotation, false
	}
}

// Key holds the key payload for a method: Shift for rotation, Bytes for xor
type Key struct {
	Shift int
	Bytes []byte
}

// ShiftKey creates a rotation key
func ShiftKey(shift int) Key {
	return Key{Shift: shift}
}

// BytesKey creates an xor key
func BytesKey(b []byte) Key {
	return Key{Bytes: b}
}

// Selection is a validated method and key pair
type Selection struct {
	Method Method
	Key    Key
	// Fallback is set when the requested tag was unknown and rotation was used instead
	Fallback bool
	Tag      string
}

// Select validates a method tag and raw key. Unknown tags fall back to
// rotation with Fallback set; callers surface that as a warning. Select
// itself has no side effects.
func Select(methodTag, rawKey string) (Selection, error) {
	method, ok := ParseMethod(methodTag)
	sel := Selection{Method: method, Fallback: !ok, Tag: methodTag}

	switch method {
	case MethodXOR:
		if rawKey == "" {
			return sel, errors.NewEmptyKey("xor key must not be empty")
		}
		sel.Key = BytesKey([]byte(rawKey))
	default:
		trimmed := strings.TrimSpace(rawKey)
		shift, err := strconv.Atoi(trimmed)
		if err != nil {
			return sel, errors.NewNotANumber(rawKey, err)
		}
		sel.Key = ShiftKey(shift)
	}
	return sel, nil
}

// Fingerprint returns a short one-way digest of the key, safe to persist
func (s Selection) Fingerprint() string {
	var material []byte
	salt := "ROTATION"
	if s.Method == MethodXOR {
		material = s.Key.Bytes
		salt = "XOR"
	} else {
		material = []byte(strconv.Itoa(s.Key.Shift))
	}
	key := pbkdf2.Key(material, []byte(salt), 1000, 8, sha256.New)
	return hex.EncodeToString(key)
}

// Flow binds a selected cipher to a direction for one stream
type Flow struct {
	cipher    Cipher
	direction Direction
}

// NewFlow creates a fresh cipher for the selection
func NewFlow(sel Selection, dir Direction) (*Flow, error) {
	c, err := NewCipher(sel.Method, sel.Key)
	if err != nil {
		return nil, err
	}
	return &Flow{cipher: c, direction: dir}, nil
}

// Transform applies the cipher in the flow's direction, in place
func (f *Flow) Transform(data []byte) {
	if f.direction == Decrypt {
		f.cipher.Decrypt(data)
		return
	}
	f.cipher.Encrypt(data)
}

