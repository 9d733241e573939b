package encryption

// Direction selects whether a cipher encrypts or decrypts
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// SeekableCipher tracks the cumulative stream offset
type SeekableCipher interface {
	// SetPosition sets the stream position for seeking
	SetPosition(position int64) error
	// Position returns the current stream position
	Position() int64
}

// CipherInfo provides metadata about a cipher
type CipherInfo interface {
	// Algorithm returns the cipher algorithm name
	Algorithm() string
}

// Cipher transforms byte streams in place. Every call advances the stream
// position by len(data), so consecutive chunks of one stream must go
// through the same instance.
type Cipher interface {
	SeekableCipher
	CipherInfo
	// Encrypt encrypts data in place
	Encrypt(data []byte)
	// Decrypt decrypts data in place
	Decrypt(data []byte)
}
