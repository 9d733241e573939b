package engine

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textcipher-go/internal/errors"
)

func TestFormatRoundTrip(t *testing.T) {
	data := []byte{0x03, 0x00, 0x15, 0xff, 'A'}
	for _, f := range []string{FormatHex, FormatBase64, "HEX"} {
		s, err := EncodeOutput(f, data)
		require.NoError(t, err)
		got, err := DecodeInput(f, s+"\n")
		require.NoError(t, err)
		assert.Equal(t, data, got, f)
	}

	s, err := EncodeOutput("", []byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", s)

	hexOut, err := EncodeOutput(FormatHex, []byte{0x03, 0x00, 0x15})
	require.NoError(t, err)
	assert.Equal(t, "030015", hexOut)
}

func TestFormatErrors(t *testing.T) {
	assert.False(t, ValidFormat("rot13"))
	assert.True(t, ValidFormat(""))

	_, err := EncodeOutput("rot13", nil)
	assert.True(t, stderrors.Is(err, errors.ErrBadRequest))

	_, err = DecodeInput(FormatHex, "zz")
	assert.True(t, stderrors.Is(err, errors.ErrBadRequest))

	_, err = DecodeInput(FormatBase64, "***")
	assert.True(t, stderrors.Is(err, errors.ErrBadRequest))
}
