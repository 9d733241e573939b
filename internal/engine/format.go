package engine

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/textcipher-go/internal/errors"
)

// Text encodings for inline payloads. XOR output is arbitrary bytes, so
// hex and base64 let it survive a terminal or a JSON string.
const (
	FormatText   = "text"
	FormatHex    = "hex"
	FormatBase64 = "base64"
)

// ValidFormat reports whether f names a known encoding. Empty means text.
func ValidFormat(f string) bool {
	switch strings.ToLower(f) {
	case "", FormatText, FormatHex, FormatBase64:
		return true
	}
	return false
}

// EncodeOutput renders data in format f
func EncodeOutput(f string, data []byte) (string, error) {
	switch strings.ToLower(f) {
	case "", FormatText:
		return string(data), nil
	case FormatHex:
		return hex.EncodeToString(data), nil
	case FormatBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return "", errors.NewBadRequest("unknown format: " + f)
}

// DecodeInput parses s from format f
func DecodeInput(f string, s string) ([]byte, error) {
	switch strings.ToLower(f) {
	case "", FormatText:
		return []byte(s), nil
	case FormatHex:
		data, err := hex.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.NewBadRequestWithCause("input is not valid hex", err)
		}
		return data, nil
	case FormatBase64:
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.NewBadRequestWithCause("input is not valid base64", err)
		}
		return data, nil
	}
	return nil, errors.NewBadRequest("unknown format: " + f)
}
