package diff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, ""},
		{"plain", []byte("1.0 Scope\nBody."), "1.0 Scope\nBody."},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Hi"...), "Hi"},
		{"crlf", []byte("a\r\nb\r\n"), "a\nb\n"},
		{"utf16le bom", []byte{0xFF, 0xFE, 'O', 0, 'K', 0}, "OK"},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'O', 0, 'K'}, "OK"},
		// "e" + combining acute composes to a single code point.
		{"nfc", []byte("caf\x65\xcc\x81"), "café"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode("doc.txt", tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := Decode("old.txt", []byte("valid\xff\xfeinvalid"))
	require.Error(t, err)

	var decErr *DecodingError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "old.txt", decErr.Name)
	assert.Equal(t, 5, decErr.Offset)
	assert.ErrorIs(t, err, ErrDecoding)
	assert.Contains(t, err.Error(), "invalid UTF-8 at byte 5")
}
