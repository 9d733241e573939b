package encryption

import "fmt"

const (
	letterCount = 26
	digitCount  = 10
)

// RotationCipher shifts ASCII letters within A-Z / a-z and digits within
// 0-9. All other bytes pass through unchanged.
type RotationCipher struct {
	shift    int
	position int64
}

// NewRotationCipher creates a rotation cipher for the given shift.
// Any int is accepted, including negative values and values beyond 26.
func NewRotationCipher(shift int) *RotationCipher {
	return &RotationCipher{shift: shift}
}

// Rotate returns a rotated copy of text. Decryption is Rotate(text, -shift).
func Rotate(text []byte, shift int) []byte {
	out := make([]byte, len(text))
	copy(out, text)
	rotate(out, shift%letterCount, shift%digitCount)
	return out
}

// rotate expects letterShift in (-26, 26) and digitShift in (-10, 10) so
// that the bias below keeps every intermediate value non-negative.
func rotate(data []byte, letterShift, digitShift int) {
	for i, b := range data {
		switch {
		case b >= 'A' && b <= 'Z':
			data[i] = byte((int(b-'A')+letterShift+letterCount)%letterCount) + 'A'
		case b >= 'a' && b <= 'z':
			data[i] = byte((int(b-'a')+letterShift+letterCount)%letterCount) + 'a'
		case b >= '0' && b <= '9':
			data[i] = byte((int(b-'0')+digitShift+digitCount)%digitCount) + '0'
		}
	}
}

// Algorithm returns the cipher algorithm name
func (r *RotationCipher) Algorithm() string {
	return MethodRotation.String()
}

// SetPosition sets the stream position. Rotation is position independent,
// the offset is only tracked for callers.
func (r *RotationCipher) SetPosition(position int64) error {
	if position < 0 {
		return fmt.Errorf("position cannot be negative")
	}
	r.position = position
	return nil
}

// Position returns the current stream position
func (r *RotationCipher) Position() int64 {
	return r.position
}

// Encrypt rotates data forward in place
func (r *RotationCipher) Encrypt(data []byte) {
	rotate(data, r.shift%letterCount, r.shift%digitCount)
	r.position += int64(len(data))
}

// Decrypt rotates data backward in place
func (r *RotationCipher) Decrypt(data []byte) {
	// Negate after reducing so math.MinInt cannot overflow.
	rotate(data, -(r.shift % letterCount), -(r.shift % digitCount))
	r.position += int64(len(data))
}
